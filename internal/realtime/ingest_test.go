package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ridehail/internal/routing"
	"ridehail/internal/trips"
	"ridehail/internal/users"
	"ridehail/internal/vehicles"
	"ridehail/pkg/apperr"
)

func strp(s string) *string { return &s }
func fp(v float64) *float64 { return &v }

type fakeTrips struct {
	trip *trips.Trip
}

func (f *fakeTrips) Get(_ context.Context, id string) (*trips.Trip, error) {
	if f.trip == nil || f.trip.ID != id {
		return nil, apperr.NotFound("trip")
	}
	cp := *f.trip
	return &cp, nil
}

type fakeParties struct {
	users map[string]*users.User
}

func (f *fakeParties) GetByID(_ context.Context, id string) (*users.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

type fakePlates struct {
	vehicle *vehicles.Vehicle
}

func (f *fakePlates) GetByID(_ context.Context, id string) (*vehicles.Vehicle, error) {
	if f.vehicle == nil || f.vehicle.ID != id {
		return nil, apperr.NotFound("vehicle")
	}
	return f.vehicle, nil
}

type fakeLocations struct {
	mu      sync.Mutex
	samples []string
}

func (f *fakeLocations) Append(_ context.Context, tripID string, _, _ float64, leg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, tripID+"/"+leg)
	return nil
}

type scriptedRouter struct {
	mu    sync.Mutex
	est   routing.Estimate
	err   error
	calls int
}

func (r *scriptedRouter) Route(_ context.Context, _, _, _, _ float64) (routing.Estimate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.est, r.err
}

func acceptedTrip() *trips.Trip {
	return &trips.Trip{
		ID:            "trip-1",
		CustomerID:    "cust-1",
		DriverID:      strp("drv-1"),
		VehicleID:     strp("veh-1"),
		VehicleClass:  "4 Wheeler",
		PickupAddress: "1 Main St",
		DropAddress:   "9 Station Rd",
		PickupLat:     fp(12.97),
		PickupLng:     fp(77.59),
		DropLat:       fp(12.93),
		DropLng:       fp(77.62),
		Fare:          133.0,
		Status:        trips.StatusAccepted,
		PickupCode:    strp("4821"),
	}
}

func testIngestor(trip *trips.Trip, router routing.Router) (*Ingestor, *fakeLocations, *Hub) {
	hub := NewHub()
	store := &fakeLocations{}
	parties := &fakeParties{users: map[string]*users.User{
		"cust-1": {ID: "cust-1", Name: "Asha", Phone: "+919812345670"},
		"drv-1":  {ID: "drv-1", Name: "Ravi", Phone: "+919812345671"},
	}}
	plates := &fakePlates{vehicle: &vehicles.Vehicle{ID: "veh-1", RegistrationNo: "KA01AB1234"}}

	ing := NewIngestor(&fakeTrips{trip: trip}, parties, plates, store, router, hub)
	ing.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return ing, store, hub
}

func report() LocationReport {
	return LocationReport{TripID: "trip-1", Lat: 12.95, Lng: 77.60, Leg: LegPickup}
}

func TestHandleRejectsNonParty(t *testing.T) {
	t.Parallel()
	ing, store, _ := testIngestor(acceptedTrip(), &scriptedRouter{})

	err := ing.Handle(context.Background(), "stranger", report())
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if len(store.samples) != 0 {
		t.Fatal("sample must not be stored for a non-party")
	}
}

func TestHandleRejectsBadLeg(t *testing.T) {
	t.Parallel()
	ing, _, _ := testIngestor(acceptedTrip(), &scriptedRouter{})

	r := report()
	r.Leg = "detour"
	if err := ing.Handle(context.Background(), "drv-1", r); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestHandleRejectsBadCoordinates(t *testing.T) {
	t.Parallel()
	ing, _, _ := testIngestor(acceptedTrip(), &scriptedRouter{})

	r := report()
	r.Lat = 91
	if err := ing.Handle(context.Background(), "drv-1", r); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestHandleFansOutToBothParties(t *testing.T) {
	t.Parallel()
	router := &scriptedRouter{est: routing.Estimate{DistanceKm: 2.5, DurationMinutes: 8}}
	ing, store, hub := testIngestor(acceptedTrip(), router)

	driverConn := &fakeConn{}
	customerConn := &fakeConn{}
	hub.Subscribe(Subject("drv-1"), driverConn)
	hub.Subscribe(Subject("cust-1"), customerConn)

	if err := ing.Handle(context.Background(), "drv-1", report()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(store.samples) != 1 || store.samples[0] != "trip-1/pickup" {
		t.Fatalf("samples = %v", store.samples)
	}

	dFrames := driverConn.received()
	cFrames := customerConn.received()
	if len(dFrames) != 1 || len(cFrames) != 1 {
		t.Fatalf("driver got %d frames, customer got %d, want 1 each", len(dFrames), len(cFrames))
	}

	dData := dFrames[0].Data.(map[string]any)
	cData := cFrames[0].Data.(map[string]any)

	if dData["distance"] != "2.50 km" || dData["estimated_time"] != "8 mins" {
		t.Errorf("driver estimate fields = %v / %v", dData["distance"], dData["estimated_time"])
	}
	if dData["customer_name"] != "Asha" {
		t.Errorf("driver frame missing customer info: %v", dData)
	}
	if _, leaked := dData["pickup_code"]; leaked {
		t.Error("pickup code must not reach the driver frame")
	}

	if cData["pickup_code"] != "4821" {
		t.Errorf("customer frame pickup_code = %v", cData["pickup_code"])
	}
	if cData["driver_name"] != "Ravi" || cData["vehicle_plate"] != "KA01AB1234" {
		t.Errorf("customer frame driver/vehicle info = %v / %v", cData["driver_name"], cData["vehicle_plate"])
	}
}

func TestHandleKeepsLastEstimateOnRoutingFailure(t *testing.T) {
	t.Parallel()
	router := &scriptedRouter{est: routing.Estimate{DistanceKm: 2.5, DurationMinutes: 8}}
	ing, _, hub := testIngestor(acceptedTrip(), router)

	c := &fakeConn{}
	hub.Subscribe(Subject("cust-1"), c)

	if err := ing.Handle(context.Background(), "drv-1", report()); err != nil {
		t.Fatalf("first handle: %v", err)
	}

	router.mu.Lock()
	router.err = errors.New("upstream down")
	router.mu.Unlock()

	if err := ing.Handle(context.Background(), "drv-1", report()); err != nil {
		t.Fatalf("degraded handle: %v", err)
	}

	frames := c.received()
	if len(frames) != 2 {
		t.Fatalf("customer got %d frames, want 2", len(frames))
	}
	data := frames[1].Data.(map[string]any)
	if data["distance"] != "2.50 km" {
		t.Fatalf("degraded frame distance = %v, want last-known 2.50 km", data["distance"])
	}
}

func TestHandleNoEstimateBeforeFirstSuccess(t *testing.T) {
	t.Parallel()
	router := &scriptedRouter{err: errors.New("upstream down")}
	ing, store, hub := testIngestor(acceptedTrip(), router)

	c := &fakeConn{}
	hub.Subscribe(Subject("cust-1"), c)

	if err := ing.Handle(context.Background(), "drv-1", report()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.samples) != 1 {
		t.Fatal("sample must be stored despite routing failure")
	}

	frames := c.received()
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	data := frames[0].Data.(map[string]any)
	if _, ok := data["distance"]; ok {
		t.Fatalf("frame carries a distance with no estimate available: %v", data)
	}
}

func TestHandleCustomerReportsToo(t *testing.T) {
	t.Parallel()
	router := &scriptedRouter{est: routing.Estimate{DistanceKm: 1.0, DurationMinutes: 3}}
	ing, store, _ := testIngestor(acceptedTrip(), router)

	r := report()
	r.Leg = LegDrop
	if err := ing.Handle(context.Background(), "cust-1", r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.samples) != 1 || store.samples[0] != "trip-1/drop" {
		t.Fatalf("samples = %v", store.samples)
	}
}
