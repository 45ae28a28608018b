package fare

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store loads fare bands from postgres.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a fare band store.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Bands returns every configured fare band.
func (s *Store) Bands(ctx context.Context) ([]Band, error) {
	rows, err := s.db.Query(ctx,
		`SELECT vehicle_class, base_fare, normal_rate, night_surcharge, peak_surcharge,
		        night_start, night_end, morning_peak_start, morning_peak_end,
		        evening_peak_start, evening_peak_end
		 FROM fare_bands ORDER BY vehicle_class`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bands []Band
	for rows.Next() {
		var b Band
		var nightStart, nightEnd, mpStart, mpEnd, epStart, epEnd time.Time
		if err := rows.Scan(&b.VehicleClass, &b.BaseFare, &b.NormalRate, &b.NightSurcharge, &b.PeakSurcharge,
			&nightStart, &nightEnd, &mpStart, &mpEnd, &epStart, &epEnd); err != nil {
			return nil, err
		}
		b.NightStart = minuteOfDay(nightStart)
		b.NightEnd = minuteOfDay(nightEnd)
		b.MorningPeakStart = minuteOfDay(mpStart)
		b.MorningPeakEnd = minuteOfDay(mpEnd)
		b.EveningPeakStart = minuteOfDay(epStart)
		b.EveningPeakEnd = minuteOfDay(epEnd)
		bands = append(bands, b)
	}
	return bands, rows.Err()
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
