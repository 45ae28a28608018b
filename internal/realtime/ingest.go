package realtime

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"ridehail/internal/routing"
	"ridehail/internal/trips"
	"ridehail/internal/users"
	"ridehail/internal/vehicles"
	"ridehail/pkg/apperr"
	"ridehail/pkg/validation"
)

// TripSource reads trips for the ingest path.
type TripSource interface {
	Get(ctx context.Context, id string) (*trips.Trip, error)
}

// PartySource resolves trip parties for payload enrichment.
type PartySource interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// PlateSource resolves the assigned vehicle.
type PlateSource interface {
	GetByID(ctx context.Context, id string) (*vehicles.Vehicle, error)
}

// LocationStore appends position samples. Rows are never mutated.
type LocationStore interface {
	Append(ctx context.Context, tripID string, lat, lng float64, leg string) error
}

// Ingestor handles inbound location reports: persist the sample,
// recompute distance/ETA toward the leg's endpoint, and republish to
// both trip parties. Routing failures degrade to the last good estimate
// instead of dropping the update.
type Ingestor struct {
	trips   TripSource
	parties PartySource
	plates  PlateSource
	store   LocationStore
	router  routing.Router
	hub     *Hub
	now     func() time.Time

	mu   sync.Mutex
	last map[string]routing.Estimate // trip id → last good estimate
}

// NewIngestor wires the location ingest path.
func NewIngestor(t TripSource, p PartySource, v PlateSource, s LocationStore, r routing.Router, hub *Hub) *Ingestor {
	return &Ingestor{
		trips:   t,
		parties: p,
		plates:  v,
		store:   s,
		router:  r,
		hub:     hub,
		now:     time.Now,
		last:    make(map[string]routing.Estimate),
	}
}

// Handle processes one location report from the given connected user.
func (ing *Ingestor) Handle(ctx context.Context, senderID string, report LocationReport) error {
	if report.Leg != LegPickup && report.Leg != LegDrop {
		return apperr.Validation("leg", "leg must be pickup or drop")
	}
	if !validation.ValidateCoordinates(report.Lat, report.Lng) {
		return apperr.Validation("lat", "invalid coordinates")
	}

	trip, err := ing.trips.Get(ctx, report.TripID)
	if err != nil {
		return err
	}
	if trip.CustomerID != senderID && (trip.DriverID == nil || *trip.DriverID != senderID) {
		return apperr.Forbidden("not a party to this trip")
	}

	if err := ing.store.Append(ctx, trip.ID, report.Lat, report.Lng, report.Leg); err != nil {
		return err
	}

	est, hasEstimate := ing.estimate(ctx, trip, report)

	payload := map[string]any{
		"trip_id":         trip.ID,
		"leg":             report.Leg,
		"pickup_location": trip.PickupAddress,
		"drop_location":   trip.DropAddress,
		"total_fare":      trip.Fare,
	}
	if hasEstimate {
		minutes := int(math.Ceil(est.DurationMinutes))
		payload["distance"] = fmt.Sprintf("%.2f km", est.DistanceKm)
		payload["estimated_time"] = fmt.Sprintf("%d mins", minutes)
		payload["durations"] = ing.now().Add(time.Duration(minutes) * time.Minute).Format("03:04 PM")
	}

	driverPayload := clone(payload)
	customerPayload := clone(payload)

	if customer, err := ing.parties.GetByID(ctx, trip.CustomerID); err == nil {
		driverPayload["customer_name"] = customer.Name
		driverPayload["customer_contact"] = customer.Phone
		driverPayload["customer_photo"] = customer.ProfilePic
	}

	if trip.DriverID != nil {
		if driver, err := ing.parties.GetByID(ctx, *trip.DriverID); err == nil {
			customerPayload["driver_name"] = driver.Name
			customerPayload["driver_contact"] = driver.Phone
			customerPayload["driver_photo"] = driver.ProfilePic
		}
		if trip.PickupCode != nil {
			customerPayload["pickup_code"] = *trip.PickupCode
		}
		if trip.VehicleID != nil {
			if v, err := ing.plates.GetByID(ctx, *trip.VehicleID); err == nil {
				customerPayload["vehicle_plate"] = v.RegistrationNo
			}
		}
		ing.hub.Publish(Subject(*trip.DriverID), OK(EventLocationUpdate, "Location Updated Successfully", driverPayload))
	}
	ing.hub.Publish(Subject(trip.CustomerID), OK(EventLocationUpdate, "Location Updated Successfully", customerPayload))
	return nil
}

// estimate routes from the reported position to the leg's endpoint.
// On provider failure the last good estimate for the trip is reused.
func (ing *Ingestor) estimate(ctx context.Context, trip *trips.Trip, report LocationReport) (routing.Estimate, bool) {
	var toLat, toLng *float64
	if report.Leg == LegPickup {
		toLat, toLng = trip.PickupLat, trip.PickupLng
	} else {
		toLat, toLng = trip.DropLat, trip.DropLng
	}
	if toLat == nil || toLng == nil {
		return routing.Estimate{}, false
	}

	est, err := ing.router.Route(ctx, report.Lat, report.Lng, *toLat, *toLng)
	if err != nil {
		log.Printf("[realtime] routing for trip %s: %v", trip.ID, err)
		ing.mu.Lock()
		est, ok := ing.last[trip.ID]
		ing.mu.Unlock()
		return est, ok
	}

	ing.mu.Lock()
	ing.last[trip.ID] = est
	ing.mu.Unlock()
	return est, true
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
