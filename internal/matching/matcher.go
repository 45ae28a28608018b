package matching

import (
	"context"
	"encoding/json"
	"log"

	"ridehail/internal/drivers"
	"ridehail/internal/events"
	"ridehail/internal/realtime"
	"ridehail/pkg/kafka"
)

// DriverPool lists drivers able to serve a vehicle class right now.
type DriverPool interface {
	Eligible(ctx context.Context, vehicleClass string) ([]drivers.Eligible, error)
}

// NearbySource narrows a request fan-out to drivers whose last reported
// position is close to the pickup point.
type NearbySource interface {
	GetNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64, count int) ([]string, error)
}

// Radius and cap for the proximity filter on new trip announcements.
const (
	nearbyRadiusKm = 10.0
	nearbyLimit    = 50
)

// Matcher consumes trip lifecycle events and fans them out to eligible
// drivers' mailboxes. trip.requested announces new work; trip.accepted
// and trip.cancelled tell the rest of the pool to drop the trip from
// their feed.
type Matcher struct {
	kafka *kafka.Client
	pool  DriverPool
	near  NearbySource
	hub   *realtime.Hub
}

// NewMatcher creates a matcher.
func NewMatcher(k *kafka.Client, pool DriverPool, near NearbySource, hub *realtime.Hub) *Matcher {
	return &Matcher{kafka: k, pool: pool, near: near, hub: hub}
}

// Start begins consuming in background goroutines. The consumers stop
// when ctx is cancelled.
func (m *Matcher) Start(ctx context.Context) {
	m.kafka.Subscribe(ctx, kafka.TopicTripRequested, "matching-group", func(data []byte) error {
		var ev events.TripRequestedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}

		n := m.announce(ctx, ev, realtime.OK(realtime.EventNewTripAvailable, "New Trip Available", map[string]any{
			"trip_id":         ev.TripID,
			"pickup_location": ev.PickupAddress,
			"drop_location":   ev.DropAddress,
			"pickup":          ev.Pickup,
			"drop":            ev.Drop,
			"distance_km":     ev.DistanceKm,
			"total_fare":      ev.Fare,
			"vehicle_class":   ev.VehicleClass,
			"requested_at":    ev.RequestedAt,
		}))
		log.Printf("[matching] trip.requested %s → %d drivers", ev.TripID, n)
		return nil
	})

	m.kafka.Subscribe(ctx, kafka.TopicTripAccepted, "matching-group", func(data []byte) error {
		var ev events.TripAcceptedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}

		n := m.fanout(ctx, ev.VehicleClass, realtime.OK(realtime.EventTripRemoved, "Trip No Longer Available", map[string]any{
			"trip_id": ev.TripID,
		}))
		log.Printf("[matching] trip.accepted %s by %s → cleared from %d feeds", ev.TripID, ev.DriverID, n)
		return nil
	})

	m.kafka.Subscribe(ctx, kafka.TopicTripCancelled, "matching-group", func(data []byte) error {
		var ev events.TripCancelledEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}

		n := m.fanout(ctx, ev.VehicleClass, realtime.OK(realtime.EventTripRemoved, "Trip Cancelled", map[string]any{
			"trip_id":      ev.TripID,
			"cancelled_by": ev.CancelledBy,
		}))
		log.Printf("[matching] trip.cancelled %s (%s) → cleared from %d feeds", ev.TripID, ev.CancelledBy, n)
		return nil
	})
}

// announce pushes a new-trip frame to eligible drivers near the pickup.
// If the proximity lookup fails or finds nobody, every eligible driver
// is addressed instead, so a degraded cache widens the net rather than
// silencing the request.
func (m *Matcher) announce(ctx context.Context, ev events.TripRequestedEvent, f realtime.Frame) int {
	eligible, err := m.pool.Eligible(ctx, ev.VehicleClass)
	if err != nil {
		log.Printf("[matching] eligible lookup: %v", err)
		return 0
	}

	if m.near != nil {
		nearby, err := m.near.GetNearbyDrivers(ctx, ev.Pickup.Lat, ev.Pickup.Lng, nearbyRadiusKm, nearbyLimit)
		if err != nil {
			log.Printf("[matching] proximity lookup: %v", err)
		} else if len(nearby) > 0 {
			nearSet := make(map[string]bool, len(nearby))
			for _, id := range nearby {
				nearSet[id] = true
			}
			var narrowed []drivers.Eligible
			for _, d := range eligible {
				if nearSet[d.DriverID] {
					narrowed = append(narrowed, d)
				}
			}
			if len(narrowed) > 0 {
				eligible = narrowed
			}
		}
	}

	for _, d := range eligible {
		m.hub.Publish(realtime.Subject(d.DriverID), f)
	}
	return len(eligible)
}

// fanout publishes a frame to every eligible driver and returns how many
// were addressed. Offline delivery is not attempted: a driver with no
// live connection simply misses the push.
func (m *Matcher) fanout(ctx context.Context, vehicleClass string, f realtime.Frame) int {
	eligible, err := m.pool.Eligible(ctx, vehicleClass)
	if err != nil {
		log.Printf("[matching] eligible lookup: %v", err)
		return 0
	}
	for _, d := range eligible {
		m.hub.Publish(realtime.Subject(d.DriverID), f)
	}
	return len(eligible)
}
