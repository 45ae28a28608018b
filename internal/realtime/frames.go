package realtime

import "encoding/json"

// Outbound event names.
const (
	EventNewTripAvailable = "new_trip_available"
	EventTripRemoved      = "trip_removed"
	EventLocationUpdate   = "location_update"
)

// Inbound message kinds.
const (
	TypeLocationUpdate = "receive_location_update"
)

// Trip legs a location report can pertain to.
const (
	LegPickup = "pickup"
	LegDrop   = "drop"
)

// Frame is the outbound wire shape. Every push a client receives has
// this envelope.
type Frame struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}

// Envelope is the inbound wire shape: a type discriminator plus a raw
// payload decoded per kind.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// LocationReport is the payload of a receive_location_update frame.
type LocationReport struct {
	TripID string  `json:"trip_id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"long"`
	Leg    string  `json:"leg"`
}

// OK builds a success frame for an event.
func OK(event, message string, data any) Frame {
	return Frame{Status: "success", Message: message, Event: event, Data: data}
}

// Err builds an error frame for an event.
func Err(event, message string) Frame {
	return Frame{Status: "error", Message: message, Event: event}
}
