package drivers

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ridehail/internal/vehicles"
	"ridehail/pkg/apperr"
	rredis "ridehail/pkg/redis"
)

// Service contains driver presence and vehicle-selection logic.
type Service struct {
	db    *pgxpool.Pool
	redis *rredis.Client
}

// NewService creates a driver service.
func NewService(db *pgxpool.Pool, redis *rredis.Client) *Service {
	return &Service{db: db, redis: redis}
}

// Heartbeat marks the driver online, stamps last seen, and refreshes the
// driver's position in redis. Last writer wins against the sweeper.
func (s *Service) Heartbeat(ctx context.Context, driverID string, lat, lng float64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE driver_details SET is_online=TRUE, last_online_at=NOW() WHERE user_id=$1`,
		driverID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("driver")
	}

	if s.redis != nil {
		if err := s.redis.SetDriverPosition(ctx, driverID, lat, lng); err != nil {
			log.Printf("[drivers] position update for %s: %v", driverID, err)
		}
	}
	return nil
}

// SelectVehicle puts one of the driver's approved vehicles in use.
func (s *Service) SelectVehicle(ctx context.Context, driverID, vehicleID string) error {
	var status, owner string
	err := s.db.QueryRow(ctx,
		`SELECT status, driver_id FROM vehicles WHERE id=$1 AND deleted_at IS NULL`, vehicleID).
		Scan(&status, &owner)
	if err != nil {
		return apperr.NotFound("vehicle")
	}
	if owner != driverID {
		return apperr.Forbidden("vehicle belongs to another driver")
	}
	if status != vehicles.StatusApproved {
		return apperr.Validation("vehicle_id", "vehicle is not approved")
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE driver_details SET in_use_vehicle=$1 WHERE user_id=$2`, vehicleID, driverID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("driver")
	}
	return nil
}

// GoOffline clears presence and the in-use vehicle.
func (s *Service) GoOffline(ctx context.Context, driverID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE driver_details SET is_online=FALSE, in_use_vehicle=NULL WHERE user_id=$1`, driverID)
	if err != nil {
		return err
	}
	if s.redis != nil {
		_ = s.redis.RemoveDriverPosition(ctx, driverID)
	}
	return nil
}

// GetDetail fetches a driver's presence row.
func (s *Service) GetDetail(ctx context.Context, driverID string) (*Detail, error) {
	var d Detail
	err := s.db.QueryRow(ctx,
		`SELECT user_id,is_online,last_online_at,in_use_vehicle,created_at
		 FROM driver_details WHERE user_id=$1`, driverID).
		Scan(&d.UserID, &d.IsOnline, &d.LastOnlineAt, &d.InUseVehicle, &d.CreatedAt)
	if err != nil {
		return nil, apperr.NotFound("driver")
	}
	return &d, nil
}

// Eligible returns online drivers whose in-use vehicle is approved and
// matches the requested class. Used by the trip fan-out.
func (s *Service) Eligible(ctx context.Context, vehicleClass string) ([]Eligible, error) {
	rows, err := s.db.Query(ctx,
		`SELECT dd.user_id, v.id, v.vehicle_class
		 FROM driver_details dd
		 JOIN vehicles v ON v.id = dd.in_use_vehicle
		 WHERE dd.is_online AND v.status='approved' AND v.deleted_at IS NULL AND v.vehicle_class=$1`,
		vehicleClass)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Eligible
	for rows.Next() {
		var e Eligible
		if err := rows.Scan(&e.DriverID, &e.VehicleID, &e.VehicleClass); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CurrentVehicle returns the driver's in-use vehicle id and class, or a
// validation error if the driver is offline or has no vehicle in use.
func (s *Service) CurrentVehicle(ctx context.Context, driverID string) (vehicleID, vehicleClass string, err error) {
	var online bool
	var inUse *string
	err = s.db.QueryRow(ctx,
		`SELECT dd.is_online, dd.in_use_vehicle FROM driver_details dd WHERE dd.user_id=$1`,
		driverID).Scan(&online, &inUse)
	if err != nil {
		return "", "", apperr.NotFound("driver")
	}
	if !online {
		return "", "", apperr.Validation("driver", "driver is offline")
	}
	if inUse == nil {
		return "", "", apperr.Validation("vehicle", "no vehicle in use")
	}
	err = s.db.QueryRow(ctx,
		`SELECT vehicle_class FROM vehicles WHERE id=$1 AND status='approved' AND deleted_at IS NULL`,
		*inUse).Scan(&vehicleClass)
	if err != nil {
		return "", "", apperr.Validation("vehicle", "in-use vehicle is not approved")
	}
	return *inUse, vehicleClass, nil
}

// SweepStale flips drivers offline whose last heartbeat is older than the
// threshold and drops their cached positions. Returns how many were swept.
func (s *Service) SweepStale(ctx context.Context, olderThan time.Time) (int, error) {
	rows, err := s.db.Query(ctx,
		`UPDATE driver_details SET is_online=FALSE
		 WHERE is_online AND last_online_at < $1
		 RETURNING user_id`, olderThan)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var swept []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return len(swept), err
		}
		swept = append(swept, id)
	}
	if err := rows.Err(); err != nil {
		return len(swept), err
	}

	if s.redis != nil {
		for _, id := range swept {
			_ = s.redis.RemoveDriverPosition(ctx, id)
		}
	}
	return len(swept), nil
}
