package drivers

import "time"

// Detail is a driver's presence row plus the vehicle currently in use.
type Detail struct {
	UserID       string     `json:"user_id"`
	IsOnline     bool       `json:"is_online"`
	LastOnlineAt *time.Time `json:"last_online_at,omitempty"`
	InUseVehicle *string    `json:"in_use_vehicle,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// HeartbeatRequest is the body for POST /drivers/heartbeat.
type HeartbeatRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SelectVehicleRequest is the body for POST /drivers/vehicle.
type SelectVehicleRequest struct {
	VehicleID string `json:"vehicle_id"`
}

// Eligible identifies an online driver able to serve a vehicle class.
type Eligible struct {
	DriverID     string
	VehicleID    string
	VehicleClass string
}
