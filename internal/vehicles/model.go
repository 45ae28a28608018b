package vehicles

import "time"

// Vehicle classes. The string values double as fare-band keys.
const (
	ClassTwoWheeler   = "2 Wheeler"
	ClassThreeWheeler = "3 Wheeler"
	ClassFourWheeler  = "4 Wheeler"
)

// Verification statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Vehicle represents a registered vehicle awaiting or holding approval.
type Vehicle struct {
	ID              string     `json:"id"`
	DriverID        string     `json:"driver_id"`
	RegistrationNo  string     `json:"registration_no"`
	VehicleClass    string     `json:"vehicle_class"`
	ImageURL        string     `json:"image_url,omitempty"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// RegisterRequest is the body for POST /vehicles.
type RegisterRequest struct {
	RegistrationNo string `json:"registration_no"`
	VehicleClass   string `json:"vehicle_class"`
	ImageURL       string `json:"image_url"`
}

// ReviewRequest is the body for PATCH /vehicles/:id/review.
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// ValidClass reports whether class names a known vehicle class.
func ValidClass(class string) bool {
	switch class {
	case ClassTwoWheeler, ClassThreeWheeler, ClassFourWheeler:
		return true
	}
	return false
}
