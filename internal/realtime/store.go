package realtime

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGLocationStore persists location samples to trip_locations.
type PGLocationStore struct {
	db *pgxpool.Pool
}

func NewPGLocationStore(db *pgxpool.Pool) *PGLocationStore {
	return &PGLocationStore{db: db}
}

func (s *PGLocationStore) Append(ctx context.Context, tripID string, lat, lng float64, leg string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO trip_locations (trip_id, latitude, longitude, leg) VALUES ($1, $2, $3, $4)`,
		tripID, lat, lng, leg)
	return err
}
