package fare

// Band is one fare configuration row for a vehicle class. Night and peak
// values are per-km surcharges added on top of the normal rate when the
// quoting time falls inside the matching window.
type Band struct {
	VehicleClass   string
	BaseFare       float64
	NormalRate     float64
	NightSurcharge float64
	PeakSurcharge  float64

	// Windows as minutes since midnight, half-open [start, end).
	// A window whose start is after its end wraps midnight.
	NightStart       int
	NightEnd         int
	MorningPeakStart int
	MorningPeakEnd   int
	EveningPeakStart int
	EveningPeakEnd   int
}
