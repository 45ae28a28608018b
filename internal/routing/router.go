// Package routing wraps the external road-distance provider.
package routing

import "context"

// Estimate is a road distance/duration pair between two points.
type Estimate struct {
	DistanceKm      float64
	DurationMinutes float64
}

// Router computes road distance and travel time between two coordinates.
// Implementations call an external provider and may fail; callers decide
// whether a failure is hard (quoting) or soft (live location ingest).
type Router interface {
	Route(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (Estimate, error)
}
