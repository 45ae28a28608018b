package routing

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"ridehail/pkg/apperr"
)

// GoogleRouter resolves road distance via the Google Maps Directions API.
type GoogleRouter struct {
	client *maps.Client
}

// NewGoogleRouter creates a router with the given API key.
func NewGoogleRouter(apiKey string) (*GoogleRouter, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleRouter{client: client}, nil
}

// Route returns the driving distance and duration between two points.
func (g *GoogleRouter) Route(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (Estimate, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", fromLat, fromLng),
		Destination: fmt.Sprintf("%f,%f", toLat, toLng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return Estimate{}, apperr.Dependency("routing", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Estimate{}, apperr.Dependency("routing", fmt.Errorf("no route found"))
	}

	leg := routes[0].Legs[0]
	return Estimate{
		DistanceKm:      float64(leg.Distance.Meters) / 1000.0,
		DurationMinutes: leg.Duration.Minutes(),
	}, nil
}
