package fare

import (
	"math"
	"time"
)

// Quote evaluates every band against the distance and wall-clock time and
// returns vehicle class → fare. For each band exactly one branch applies:
// night window first, then either peak window, else the normal rate alone.
// Zero bands yield an empty map; a zero distance yields base fares only.
func Quote(distanceKm float64, now time.Time, bands []Band) map[string]float64 {
	quotes := make(map[string]float64, len(bands))
	minute := now.Hour()*60 + now.Minute()

	for _, b := range bands {
		surcharge := 0.0
		switch {
		case inWindow(minute, b.NightStart, b.NightEnd):
			surcharge = b.NightSurcharge
		case inWindow(minute, b.MorningPeakStart, b.MorningPeakEnd),
			inWindow(minute, b.EveningPeakStart, b.EveningPeakEnd):
			surcharge = b.PeakSurcharge
		}
		quotes[b.VehicleClass] = round2(b.BaseFare + (b.NormalRate+surcharge)*distanceKm)
	}
	return quotes
}

// inWindow reports whether minute falls in [start, end), where a window
// with start > end wraps past midnight (e.g. 22:00-05:00).
func inWindow(minute, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
