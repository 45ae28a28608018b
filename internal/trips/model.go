package trips

import "time"

// Trip lifecycle states. Transitions only move forward:
// pending → accepted → on_going → completed, with cancelled reachable
// from pending and accepted only.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusOnGoing   = "on_going"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Cancellation actors.
const (
	CancelledByCustomer = "customer"
	CancelledByDriver   = "driver"
	CancelledByAuto     = "auto"
)

// Trip represents one ride from request to terminal state.
type Trip struct {
	ID               string     `json:"id"`
	CustomerID       string     `json:"customer_id"`
	DriverID         *string    `json:"driver_id,omitempty"`
	VehicleID        *string    `json:"vehicle_id,omitempty"`
	VehicleClass     string     `json:"vehicle_class"`
	PickupAddress    string     `json:"pickup_address"`
	DropAddress      string     `json:"drop_address"`
	PickupLat        *float64   `json:"pickup_lat,omitempty"`
	PickupLng        *float64   `json:"pickup_lng,omitempty"`
	DropLat          *float64   `json:"drop_lat,omitempty"`
	DropLng          *float64   `json:"drop_lng,omitempty"`
	DistanceKm       float64    `json:"distance_km"`
	EstimatedMinutes float64    `json:"estimated_minutes"`
	Fare             float64    `json:"fare"`
	Status           string     `json:"status"`
	PickupCode       *string    `json:"-"`
	Description      *string    `json:"description,omitempty"`
	RequestedAt      time.Time  `json:"requested_at"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	PickupAt         *time.Time `json:"pickup_at,omitempty"`
	DropAt           *time.Time `json:"drop_at,omitempty"`
	CancelledBy      *string    `json:"cancelled_by,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CancelReason     *string    `json:"cancel_reason,omitempty"`
	CustomerRating   *int       `json:"customer_rating,omitempty"`
	CustomerFeedback *string    `json:"customer_feedback,omitempty"`
	DriverRating     *int       `json:"driver_rating,omitempty"`
	DriverFeedback   *string    `json:"driver_feedback,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Settlement records the platform's cut of a completed trip.
type Settlement struct {
	ID         string    `json:"id"`
	TripID     string    `json:"trip_id"`
	DriverID   string    `json:"driver_id"`
	Fare       float64   `json:"fare"`
	Commission float64   `json:"commission"`
	NetAmount  float64   `json:"net_amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// Actor identifies who is performing a trip operation.
type Actor struct {
	ID   string
	Role string // customer | driver | admin, or "auto" for the timeout sweep
}

// QuoteRequest is the body for POST /trips/quote.
type QuoteRequest struct {
	PickupLat *float64 `json:"pickup_lat,omitempty"`
	PickupLng *float64 `json:"pickup_lng,omitempty"`
	DropLat   *float64 `json:"drop_lat,omitempty"`
	DropLng   *float64 `json:"drop_lng,omitempty"`
}

// QuoteResponse maps vehicle class → quoted fare, with the road distance
// and duration used for the quote.
type QuoteResponse struct {
	DistanceKm       float64            `json:"distance_km"`
	EstimatedMinutes float64            `json:"estimated_minutes"`
	Fares            map[string]float64 `json:"fares"`
}

// CreateRequest is the body for POST /trips.
type CreateRequest struct {
	VehicleClass     string   `json:"vehicle_class"`
	PickupAddress    string   `json:"pickup_address"`
	DropAddress      string   `json:"drop_address"`
	PickupLat        *float64 `json:"pickup_lat"`
	PickupLng        *float64 `json:"pickup_lng"`
	DropLat          *float64 `json:"drop_lat"`
	DropLng          *float64 `json:"drop_lng"`
	DistanceKm       float64  `json:"distance_km"`
	EstimatedMinutes float64  `json:"estimated_minutes"`
	Fare             float64  `json:"fare"`
	Description      string   `json:"description"`
}

// VerifyPickupRequest is the body for POST /trips/:id/verify-pickup.
type VerifyPickupRequest struct {
	Code string `json:"code"`
}

// CancelRequest is the body for POST /trips/:id/cancel.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// FeedbackRequest is the body for POST /trips/:id/feedback.
type FeedbackRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// AcceptResponse is returned to the winning driver on accept.
type AcceptResponse struct {
	Trip       *Trip  `json:"trip"`
	PickupCode string `json:"pickup_code"`
}
