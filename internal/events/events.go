package events

// LatLng is a coordinate pair used in event payloads.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TripRequestedEvent is published to trip.requested when a customer
// creates a trip. The matching consumer fans it out to eligible drivers.
type TripRequestedEvent struct {
	TripID        string  `json:"trip_id"`
	CustomerID    string  `json:"customer_id"`
	VehicleClass  string  `json:"vehicle_class"`
	PickupAddress string  `json:"pickup_address"`
	DropAddress   string  `json:"drop_address"`
	Pickup        LatLng  `json:"pickup"`
	Drop          LatLng  `json:"drop"`
	DistanceKm    float64 `json:"distance_km"`
	Fare          float64 `json:"fare"`
	RequestedAt   string  `json:"requested_at"`
}

// TripAcceptedEvent is published to trip.accepted. Competing drivers are
// told to drop the trip from their feed.
type TripAcceptedEvent struct {
	TripID       string `json:"trip_id"`
	CustomerID   string `json:"customer_id"`
	DriverID     string `json:"driver_id"`
	VehicleID    string `json:"vehicle_id"`
	VehicleClass string `json:"vehicle_class"`
	AcceptedAt   string `json:"accepted_at"`
}

// TripCancelledEvent is published to trip.cancelled.
type TripCancelledEvent struct {
	TripID       string `json:"trip_id"`
	CustomerID   string `json:"customer_id"`
	VehicleClass string `json:"vehicle_class"`
	CancelledBy  string `json:"cancelled_by"` // customer | driver | auto
	Reason       string `json:"reason"`
	CancelledAt  string `json:"cancelled_at"`
}

// TripCompletedEvent is published to trip.completed.
type TripCompletedEvent struct {
	TripID      string  `json:"trip_id"`
	CustomerID  string  `json:"customer_id"`
	DriverID    string  `json:"driver_id"`
	Fare        float64 `json:"fare"`
	Commission  float64 `json:"commission"`
	CompletedAt string  `json:"completed_at"`
}
