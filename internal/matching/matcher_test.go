package matching

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ridehail/internal/drivers"
	"ridehail/internal/events"
	"ridehail/internal/realtime"
)

type staticPool struct {
	eligible []drivers.Eligible
	err      error
}

func (p *staticPool) Eligible(_ context.Context, _ string) ([]drivers.Eligible, error) {
	return p.eligible, p.err
}

type staticNearby struct {
	ids []string
	err error
}

func (n *staticNearby) GetNearbyDrivers(_ context.Context, _, _, _ float64, _ int) ([]string, error) {
	return n.ids, n.err
}

type countingConn struct {
	mu     sync.Mutex
	frames []realtime.Frame
}

func (c *countingConn) Send(f realtime.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *countingConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func pool(ids ...string) *staticPool {
	p := &staticPool{}
	for _, id := range ids {
		p.eligible = append(p.eligible, drivers.Eligible{
			DriverID: id, VehicleID: "veh-" + id, VehicleClass: "4 Wheeler",
		})
	}
	return p
}

func connect(hub *realtime.Hub, ids ...string) map[string]*countingConn {
	conns := make(map[string]*countingConn, len(ids))
	for _, id := range ids {
		c := &countingConn{}
		hub.Subscribe(realtime.Subject(id), c)
		conns[id] = c
	}
	return conns
}

func requestedEvent() events.TripRequestedEvent {
	return events.TripRequestedEvent{
		TripID:       "trip-1",
		VehicleClass: "4 Wheeler",
		Pickup:       events.LatLng{Lat: 12.97, Lng: 77.59},
	}
}

func TestAnnounceNarrowsToNearbyDrivers(t *testing.T) {
	t.Parallel()
	hub := realtime.NewHub()
	conns := connect(hub, "d1", "d2", "d3")

	m := NewMatcher(nil, pool("d1", "d2", "d3"), &staticNearby{ids: []string{"d2", "d9"}}, hub)

	n := m.announce(context.Background(), requestedEvent(),
		realtime.OK(realtime.EventNewTripAvailable, "New Trip Available", nil))

	if n != 1 {
		t.Fatalf("addressed %d drivers, want 1", n)
	}
	if conns["d2"].count() != 1 {
		t.Error("nearby eligible driver missed the announcement")
	}
	if conns["d1"].count() != 0 || conns["d3"].count() != 0 {
		t.Error("far drivers should not be announced to")
	}
}

func TestAnnounceFallsBackWhenProximityFails(t *testing.T) {
	t.Parallel()
	hub := realtime.NewHub()
	conns := connect(hub, "d1", "d2")

	m := NewMatcher(nil, pool("d1", "d2"), &staticNearby{err: errors.New("redis down")}, hub)

	n := m.announce(context.Background(), requestedEvent(),
		realtime.OK(realtime.EventNewTripAvailable, "New Trip Available", nil))

	if n != 2 {
		t.Fatalf("addressed %d drivers, want all 2", n)
	}
	for id, c := range conns {
		if c.count() != 1 {
			t.Errorf("driver %s got %d frames, want 1", id, c.count())
		}
	}
}

func TestAnnounceFallsBackWhenNobodyIsNear(t *testing.T) {
	t.Parallel()
	hub := realtime.NewHub()
	conns := connect(hub, "d1")

	m := NewMatcher(nil, pool("d1"), &staticNearby{}, hub)

	n := m.announce(context.Background(), requestedEvent(),
		realtime.OK(realtime.EventNewTripAvailable, "New Trip Available", nil))

	if n != 1 || conns["d1"].count() != 1 {
		t.Fatalf("addressed %d, d1 frames %d; want the full pool", n, conns["d1"].count())
	}
}

func TestAnnounceNoIntersectionWidensTheNet(t *testing.T) {
	t.Parallel()
	hub := realtime.NewHub()
	conns := connect(hub, "d1", "d2")

	// Nearby drivers exist but none can serve the class.
	m := NewMatcher(nil, pool("d1", "d2"), &staticNearby{ids: []string{"x1", "x2"}}, hub)

	n := m.announce(context.Background(), requestedEvent(),
		realtime.OK(realtime.EventNewTripAvailable, "New Trip Available", nil))

	if n != 2 || conns["d1"].count() != 1 || conns["d2"].count() != 1 {
		t.Fatalf("addressed %d drivers, want the full pool of 2", n)
	}
}

func TestFanoutAddressesWholePool(t *testing.T) {
	t.Parallel()
	hub := realtime.NewHub()
	conns := connect(hub, "d1", "d2", "d3")

	m := NewMatcher(nil, pool("d1", "d2", "d3"), nil, hub)

	n := m.fanout(context.Background(), "4 Wheeler",
		realtime.OK(realtime.EventTripRemoved, "Trip No Longer Available", nil))

	if n != 3 {
		t.Fatalf("addressed %d drivers, want 3", n)
	}
	for id, c := range conns {
		if c.count() != 1 {
			t.Errorf("driver %s got %d frames", id, c.count())
		}
	}
}

func TestFanoutPoolErrorAddressesNobody(t *testing.T) {
	t.Parallel()
	hub := realtime.NewHub()

	m := NewMatcher(nil, &staticPool{err: errors.New("db down")}, nil, hub)

	if n := m.fanout(context.Background(), "4 Wheeler", realtime.Frame{}); n != 0 {
		t.Fatalf("addressed %d drivers, want 0", n)
	}
}
