package trips

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/events"
	"ridehail/internal/fare"
	"ridehail/internal/routing"
	"ridehail/internal/vehicles"
	"ridehail/pkg/apperr"
	"ridehail/pkg/jwt"
	"ridehail/pkg/kafka"
	"ridehail/pkg/validation"
)

// DriverSource answers which vehicle a driver currently has in use.
type DriverSource interface {
	CurrentVehicle(ctx context.Context, driverID string) (vehicleID, vehicleClass string, err error)
}

// BandSource loads the configured fare bands.
type BandSource interface {
	Bands(ctx context.Context) ([]fare.Band, error)
}

// Publisher emits lifecycle events. Satisfied by the kafka client.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// Service owns the trip state machine.
type Service struct {
	store         Store
	drivers       DriverSource
	bands         BandSource
	router        routing.Router
	pub           Publisher
	commissionPct float64
	now           func() time.Time
}

// NewService creates the trip lifecycle service.
func NewService(store Store, drivers DriverSource, bands BandSource, router routing.Router, pub Publisher, commissionPct float64) *Service {
	return &Service{
		store:         store,
		drivers:       drivers,
		bands:         bands,
		router:        router,
		pub:           pub,
		commissionPct: commissionPct,
		now:           time.Now,
	}
}

// Quote prices a prospective trip for every configured vehicle class.
// Missing coordinates short-circuit to an empty result rather than an
// error; a routing failure is a hard dependency error on this path.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if req.PickupLat == nil || req.PickupLng == nil || req.DropLat == nil || req.DropLng == nil {
		return &QuoteResponse{Fares: map[string]float64{}}, nil
	}
	if !validation.ValidateCoordinates(*req.PickupLat, *req.PickupLng) {
		return nil, apperr.Validation("pickup", "invalid pickup coordinates")
	}
	if !validation.ValidateCoordinates(*req.DropLat, *req.DropLng) {
		return nil, apperr.Validation("drop", "invalid drop coordinates")
	}

	est, err := s.router.Route(ctx, *req.PickupLat, *req.PickupLng, *req.DropLat, *req.DropLng)
	if err != nil {
		return nil, err
	}

	bands, err := s.bands.Bands(ctx)
	if err != nil {
		return nil, err
	}

	return &QuoteResponse{
		DistanceKm:       est.DistanceKm,
		EstimatedMinutes: est.DurationMinutes,
		Fares:            fare.Quote(est.DistanceKm, s.now(), bands),
	}, nil
}

// Create records a new trip in pending state. Customers only.
func (s *Service) Create(ctx context.Context, actor Actor, req CreateRequest) (*Trip, error) {
	if actor.Role != jwt.RoleCustomer {
		return nil, apperr.Forbidden("only customers request trips")
	}
	if !vehicles.ValidClass(req.VehicleClass) {
		return nil, apperr.Validation("vehicle_class", "unknown vehicle class %q", req.VehicleClass)
	}
	if strings.TrimSpace(req.PickupAddress) == "" {
		return nil, apperr.Validation("pickup_address", "pickup address is required")
	}
	if strings.TrimSpace(req.DropAddress) == "" {
		return nil, apperr.Validation("drop_address", "drop address is required")
	}
	if req.PickupLat == nil || req.PickupLng == nil || req.DropLat == nil || req.DropLng == nil {
		return nil, apperr.Validation("pickup", "pickup and drop coordinates are required")
	}
	if req.DistanceKm <= 0 {
		return nil, apperr.Validation("distance_km", "distance must be positive")
	}
	if req.Fare <= 0 {
		return nil, apperr.Validation("fare", "fare must be positive")
	}

	t := &Trip{
		ID:               uuid.New().String(),
		CustomerID:       actor.ID,
		VehicleClass:     req.VehicleClass,
		PickupAddress:    req.PickupAddress,
		DropAddress:      req.DropAddress,
		PickupLat:        req.PickupLat,
		PickupLng:        req.PickupLng,
		DropLat:          req.DropLat,
		DropLng:          req.DropLng,
		DistanceKm:       req.DistanceKm,
		EstimatedMinutes: req.EstimatedMinutes,
		Fare:             req.Fare,
		Status:           StatusPending,
		RequestedAt:      s.now(),
	}
	if strings.TrimSpace(req.Description) != "" {
		t.Description = &req.Description
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}

	s.publish(kafka.TopicTripRequested, t.ID, events.TripRequestedEvent{
		TripID:        t.ID,
		CustomerID:    t.CustomerID,
		VehicleClass:  t.VehicleClass,
		PickupAddress: t.PickupAddress,
		DropAddress:   t.DropAddress,
		Pickup:        events.LatLng{Lat: *t.PickupLat, Lng: *t.PickupLng},
		Drop:          events.LatLng{Lat: *t.DropLat, Lng: *t.DropLng},
		DistanceKm:    t.DistanceKm,
		Fare:          t.Fare,
		RequestedAt:   t.RequestedAt.Format(time.RFC3339),
	})
	return t, nil
}

// Accept assigns the calling driver and their in-use vehicle to a pending
// trip. Exactly one of N concurrent accepts wins; the rest get a
// conflict. The driver's vehicle lookup happens before the CAS so no
// external call sits inside the critical section.
func (s *Service) Accept(ctx context.Context, actor Actor, tripID string) (*AcceptResponse, error) {
	if actor.Role != jwt.RoleDriver {
		return nil, apperr.Forbidden("only drivers accept trips")
	}

	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusPending {
		return nil, apperr.Conflict("status", "trip already "+t.Status)
	}

	vehicleID, vehicleClass, err := s.drivers.CurrentVehicle(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if vehicleClass != t.VehicleClass {
		return nil, apperr.Validation("vehicle_class", "trip needs a %s", t.VehicleClass)
	}

	code := newPickupCode()
	now := s.now()
	ok, err := s.store.AcceptCAS(ctx, tripID, actor.ID, vehicleID, code, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("status", "trip already accepted")
	}

	t, err = s.store.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	s.publish(kafka.TopicTripAccepted, t.ID, events.TripAcceptedEvent{
		TripID:       t.ID,
		CustomerID:   t.CustomerID,
		DriverID:     actor.ID,
		VehicleID:    vehicleID,
		VehicleClass: t.VehicleClass,
		AcceptedAt:   now.Format(time.RFC3339),
	})
	return &AcceptResponse{Trip: t, PickupCode: code}, nil
}

// VerifyPickup checks the rider's 4-digit code and moves the trip to
// on_going. Malformed codes fail before equality is checked; the stored
// code stays in place afterwards.
func (s *Service) VerifyPickup(ctx context.Context, actor Actor, tripID, code string) (*Trip, error) {
	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.DriverID == nil || *t.DriverID != actor.ID {
		return nil, apperr.Forbidden("trip is not assigned to this driver")
	}
	if t.Status != StatusAccepted {
		return nil, apperr.Validation("status", "trip is not accepted")
	}
	if !validation.ValidatePickupCode(code) {
		return nil, apperr.Validation("code", "pickup code must be 4 digits")
	}

	supplied, _ := strconv.Atoi(code)
	stored, err := strconv.Atoi(*t.PickupCode)
	if err != nil || supplied != stored {
		return nil, apperr.Validation("code", "invalid pickup code")
	}

	ok, err := s.store.StartCAS(ctx, tripID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("status", "trip is no longer accepted")
	}
	return s.store.Get(ctx, tripID)
}

// Complete finishes an on-going trip and records the settlement:
// commission = fare × commission percentage.
func (s *Service) Complete(ctx context.Context, actor Actor, tripID string) (*Trip, error) {
	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.DriverID == nil || *t.DriverID != actor.ID {
		return nil, apperr.Forbidden("trip is not assigned to this driver")
	}
	if t.Status != StatusOnGoing {
		return nil, apperr.Validation("status", "trip is not on going")
	}

	commission := round2(t.Fare * s.commissionPct / 100)
	st := &Settlement{
		TripID:     t.ID,
		DriverID:   actor.ID,
		Fare:       t.Fare,
		Commission: commission,
		NetAmount:  round2(t.Fare - commission),
	}

	now := s.now()
	ok, err := s.store.CompleteCAS(ctx, tripID, now, st)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("status", "trip is no longer on going")
	}

	s.publish(kafka.TopicTripCompleted, t.ID, events.TripCompletedEvent{
		TripID:      t.ID,
		CustomerID:  t.CustomerID,
		DriverID:    actor.ID,
		Fare:        t.Fare,
		Commission:  commission,
		CompletedAt: now.Format(time.RFC3339),
	})
	return s.store.Get(ctx, tripID)
}

// Cancel moves a pending or accepted trip to cancelled. Admin accounts
// are always rejected; a driver may only cancel a trip they accepted; a
// customer must be the requesting party. The automated timeout actor may
// cancel either live state.
func (s *Service) Cancel(ctx context.Context, actor Actor, tripID, reason string) (*Trip, error) {
	if actor.Role == jwt.RoleAdmin {
		return nil, apperr.Forbidden("admin accounts cannot cancel trips")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("reason", "cancellation reason is required")
	}

	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusCancelled {
		return nil, apperr.Validation("status", "trip is already cancelled")
	}

	var by string
	switch actor.Role {
	case jwt.RoleCustomer:
		if t.CustomerID != actor.ID {
			return nil, apperr.Forbidden("trip belongs to another customer")
		}
		if t.Status != StatusPending && t.Status != StatusAccepted {
			return nil, apperr.Validation("status", "trip can no longer be cancelled")
		}
		by = CancelledByCustomer
	case jwt.RoleDriver:
		if t.Status != StatusAccepted {
			return nil, apperr.Validation("status", "driver can only cancel an accepted trip")
		}
		if t.DriverID == nil || *t.DriverID != actor.ID {
			return nil, apperr.Forbidden("trip is not assigned to this driver")
		}
		by = CancelledByDriver
	case CancelledByAuto:
		if t.Status != StatusPending && t.Status != StatusAccepted {
			return nil, apperr.Validation("status", "trip can no longer be cancelled")
		}
		by = CancelledByAuto
	default:
		return nil, apperr.Forbidden("unknown actor")
	}

	now := s.now()
	ok, err := s.store.CancelCAS(ctx, tripID, by, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("status", "trip state changed, cancel lost the race")
	}

	s.publish(kafka.TopicTripCancelled, t.ID, events.TripCancelledEvent{
		TripID:       t.ID,
		CustomerID:   t.CustomerID,
		VehicleClass: t.VehicleClass,
		CancelledBy:  by,
		Reason:       reason,
		CancelledAt:  now.Format(time.RFC3339),
	})
	return s.store.Get(ctx, tripID)
}

// Feedback stores a rating from one party about the other.
func (s *Service) Feedback(ctx context.Context, actor Actor, tripID string, req FeedbackRequest) error {
	if !validation.ValidateRating(req.Rating) {
		return apperr.Validation("rating", "rating must be between 1 and 5")
	}

	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return err
	}

	switch {
	case t.CustomerID == actor.ID:
		return s.store.SetFeedback(ctx, tripID, true, req.Rating, req.Feedback)
	case t.DriverID != nil && *t.DriverID == actor.ID:
		return s.store.SetFeedback(ctx, tripID, false, req.Rating, req.Feedback)
	default:
		return apperr.Forbidden("only trip parties can leave feedback")
	}
}

// Get fetches a trip visible to the actor.
func (s *Service) Get(ctx context.Context, actor Actor, tripID string) (*Trip, error) {
	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if actor.Role != jwt.RoleAdmin && t.CustomerID != actor.ID &&
		(t.DriverID == nil || *t.DriverID != actor.ID) && t.Status != StatusPending {
		return nil, apperr.Forbidden("not a party to this trip")
	}
	return t, nil
}

// ListMine lists the actor's trips.
func (s *Service) ListMine(ctx context.Context, actor Actor) ([]*Trip, error) {
	return s.store.ListByUser(ctx, actor.ID)
}

// Settlements lists the calling driver's settlement records.
func (s *Service) Settlements(ctx context.Context, actor Actor) ([]*Settlement, error) {
	if actor.Role != jwt.RoleDriver {
		return nil, apperr.Forbidden("only drivers have settlements")
	}
	return s.store.ListSettlements(ctx, actor.ID)
}

// publish sends a lifecycle event without blocking the caller. Delivery
// failure is operational noise; trip state is already persisted.
func (s *Service) publish(topic, key string, value any) {
	if s.pub == nil {
		return
	}
	go func() {
		if err := s.pub.Publish(context.Background(), topic, key, value); err != nil {
			log.Printf("[trips] failed to publish %s: %v", topic, err)
		}
	}()
}

// newPickupCode returns a fresh 4-digit numeric code.
func newPickupCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "1000"
	}
	return fmt.Sprintf("%04d", n.Int64()+1000)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
