package trips

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridehail/pkg/apperr"
)

// Store is the trip persistence port. Compare-and-set methods return
// false when the status precondition no longer holds, so a lost race
// surfaces as a clean conflict instead of a double write.
type Store interface {
	Insert(ctx context.Context, t *Trip) error
	Get(ctx context.Context, id string) (*Trip, error)
	ListByUser(ctx context.Context, userID string) ([]*Trip, error)
	AcceptCAS(ctx context.Context, tripID, driverID, vehicleID, code string, at time.Time) (bool, error)
	StartCAS(ctx context.Context, tripID string, at time.Time) (bool, error)
	CompleteCAS(ctx context.Context, tripID string, at time.Time, st *Settlement) (bool, error)
	CancelCAS(ctx context.Context, tripID, by, reason string, at time.Time) (bool, error)
	SetFeedback(ctx context.Context, tripID string, byCustomer bool, rating int, feedback string) error
	ListSettlements(ctx context.Context, driverID string) ([]*Settlement, error)
}

const tripColumns = `id,customer_id,driver_id,vehicle_id,vehicle_class,pickup_address,drop_address,
	pickup_lat,pickup_lng,drop_lat,drop_lng,distance_km,estimated_minutes,fare,status,pickup_code,
	description,requested_at,approved_at,pickup_at,drop_at,cancelled_by,cancelled_at,cancel_reason,
	customer_rating,customer_feedback,driver_rating,driver_feedback,created_at`

// PGStore is the postgres-backed trip store.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a postgres trip store.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO trips (id,customer_id,vehicle_class,pickup_address,drop_address,
		                    pickup_lat,pickup_lng,drop_lat,drop_lng,distance_km,estimated_minutes,
		                    fare,status,description,requested_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		t.ID, t.CustomerID, t.VehicleClass, t.PickupAddress, t.DropAddress,
		t.PickupLat, t.PickupLng, t.DropLat, t.DropLng, t.DistanceKm, t.EstimatedMinutes,
		t.Fare, t.Status, t.Description, t.RequestedAt)
	return err
}

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	err := row.Scan(&t.ID, &t.CustomerID, &t.DriverID, &t.VehicleID, &t.VehicleClass,
		&t.PickupAddress, &t.DropAddress, &t.PickupLat, &t.PickupLng, &t.DropLat, &t.DropLng,
		&t.DistanceKm, &t.EstimatedMinutes, &t.Fare, &t.Status, &t.PickupCode,
		&t.Description, &t.RequestedAt, &t.ApprovedAt, &t.PickupAt, &t.DropAt,
		&t.CancelledBy, &t.CancelledAt, &t.CancelReason,
		&t.CustomerRating, &t.CustomerFeedback, &t.DriverRating, &t.DriverFeedback, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Trip, error) {
	t, err := scanTrip(s.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id=$1`, id))
	if err != nil {
		return nil, apperr.NotFound("trip")
	}
	return t, nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID string) ([]*Trip, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE customer_id=$1 OR driver_id=$1 ORDER BY requested_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AcceptCAS assigns the driver and vehicle iff the trip is still pending.
func (s *PGStore) AcceptCAS(ctx context.Context, tripID, driverID, vehicleID, code string, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE trips SET driver_id=$1, vehicle_id=$2, status=$3, pickup_code=$4, approved_at=$5
		 WHERE id=$6 AND status=$7`,
		driverID, vehicleID, StatusAccepted, code, at, tripID, StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// StartCAS moves accepted → on_going.
func (s *PGStore) StartCAS(ctx context.Context, tripID string, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE trips SET status=$1, pickup_at=$2 WHERE id=$3 AND status=$4`,
		StatusOnGoing, at, tripID, StatusAccepted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteCAS moves on_going → completed and records the settlement in
// the same transaction.
func (s *PGStore) CompleteCAS(ctx context.Context, tripID string, at time.Time, st *Settlement) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE trips SET status=$1, drop_at=$2 WHERE id=$3 AND status=$4`,
		StatusCompleted, at, tripID, StatusOnGoing)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	st.ID = uuid.New().String()
	st.CreatedAt = at
	_, err = tx.Exec(ctx,
		`INSERT INTO settlements (id,trip_id,driver_id,fare,commission,net_amount,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		st.ID, st.TripID, st.DriverID, st.Fare, st.Commission, st.NetAmount, st.CreatedAt)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// CancelCAS moves pending or accepted → cancelled.
func (s *PGStore) CancelCAS(ctx context.Context, tripID, by, reason string, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE trips SET status=$1, cancelled_by=$2, cancel_reason=$3, cancelled_at=$4
		 WHERE id=$5 AND status IN ($6,$7)`,
		StatusCancelled, by, reason, at, tripID, StatusPending, StatusAccepted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PGStore) ListSettlements(ctx context.Context, driverID string) ([]*Settlement, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id,trip_id,driver_id,fare,commission,net_amount,created_at
		 FROM settlements WHERE driver_id=$1 ORDER BY created_at DESC`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Settlement
	for rows.Next() {
		var st Settlement
		if err := rows.Scan(&st.ID, &st.TripID, &st.DriverID, &st.Fare, &st.Commission, &st.NetAmount, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}

func (s *PGStore) SetFeedback(ctx context.Context, tripID string, byCustomer bool, rating int, feedback string) error {
	var err error
	if byCustomer {
		_, err = s.db.Exec(ctx,
			`UPDATE trips SET customer_rating=$1, customer_feedback=$2 WHERE id=$3`,
			rating, feedback, tripID)
	} else {
		_, err = s.db.Exec(ctx,
			`UPDATE trips SET driver_rating=$1, driver_feedback=$2 WHERE id=$3`,
			rating, feedback, tripID)
	}
	return err
}
