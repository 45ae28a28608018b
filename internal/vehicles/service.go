package vehicles

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridehail/internal/access"
	"ridehail/pkg/apperr"
)

// Service contains vehicle registration and approval logic.
type Service struct {
	db   *pgxpool.Pool
	caps *access.Checker
}

// NewService creates a vehicle service.
func NewService(db *pgxpool.Pool, caps *access.Checker) *Service {
	return &Service{db: db, caps: caps}
}

// Register stores a new vehicle in pending state for the given driver.
func (s *Service) Register(ctx context.Context, driverID string, req RegisterRequest) (*Vehicle, error) {
	reg := strings.TrimSpace(req.RegistrationNo)
	if reg == "" {
		return nil, apperr.Validation("registration_no", "registration number is required")
	}
	if !ValidClass(req.VehicleClass) {
		return nil, apperr.Validation("vehicle_class", "unknown vehicle class %q", req.VehicleClass)
	}

	var exists bool
	_ = s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM vehicles WHERE registration_no=$1 AND deleted_at IS NULL)", reg).Scan(&exists)
	if exists {
		return nil, apperr.Validation("registration_no", "vehicle already registered")
	}

	v := &Vehicle{
		ID:             uuid.New().String(),
		DriverID:       driverID,
		RegistrationNo: reg,
		VehicleClass:   req.VehicleClass,
		ImageURL:       req.ImageURL,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO vehicles (id,driver_id,registration_no,vehicle_class,image_url,status)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		v.ID, v.DriverID, v.RegistrationNo, v.VehicleClass, v.ImageURL, v.Status)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Review approves or rejects a pending vehicle. Requires the
// vehicle_verify capability; rejection requires a reason.
func (s *Service) Review(ctx context.Context, reviewerID, vehicleID string, req ReviewRequest) (*Vehicle, error) {
	if !s.caps.HasCapability(ctx, reviewerID, access.CapVehicleVerify) {
		return nil, apperr.Forbidden("vehicle_verify capability required")
	}

	status := StatusApproved
	var reason *string
	if !req.Approve {
		if strings.TrimSpace(req.Reason) == "" {
			return nil, apperr.Validation("reason", "rejection reason is required")
		}
		status = StatusRejected
		reason = &req.Reason
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE vehicles SET status=$1, rejection_reason=$2
		 WHERE id=$3 AND status=$4 AND deleted_at IS NULL`,
		status, reason, vehicleID, StatusPending)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.Conflict("status", "vehicle is not pending review")
	}
	return s.GetByID(ctx, vehicleID)
}

// GetByID fetches a vehicle by primary key.
func (s *Service) GetByID(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	err := s.db.QueryRow(ctx,
		`SELECT id,driver_id,registration_no,vehicle_class,image_url,status,rejection_reason,deleted_at,created_at
		 FROM vehicles WHERE id=$1`, id).
		Scan(&v.ID, &v.DriverID, &v.RegistrationNo, &v.VehicleClass, &v.ImageURL,
			&v.Status, &v.RejectionReason, &v.DeletedAt, &v.CreatedAt)
	if err != nil {
		return nil, apperr.NotFound("vehicle")
	}
	return &v, nil
}

// ListByDriver lists a driver's live vehicles.
func (s *Service) ListByDriver(ctx context.Context, driverID string) ([]*Vehicle, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id,driver_id,registration_no,vehicle_class,image_url,status,rejection_reason,deleted_at,created_at
		 FROM vehicles WHERE driver_id=$1 AND deleted_at IS NULL ORDER BY created_at`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.DriverID, &v.RegistrationNo, &v.VehicleClass, &v.ImageURL,
			&v.Status, &v.RejectionReason, &v.DeletedAt, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// Delete soft-deletes a vehicle owned by the driver.
func (s *Service) Delete(ctx context.Context, driverID, vehicleID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE vehicles SET deleted_at=NOW() WHERE id=$1 AND driver_id=$2 AND deleted_at IS NULL`,
		vehicleID, driverID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("vehicle")
	}
	return nil
}
