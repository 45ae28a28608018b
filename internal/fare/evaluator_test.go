package fare

import (
	"testing"
	"time"
)

func bandFixture() Band {
	return Band{
		VehicleClass:     "4 Wheeler",
		BaseFare:         7.00,
		NormalRate:       15.00,
		NightSurcharge:   3.00,
		PeakSurcharge:    2.50,
		NightStart:       22 * 60, // 22:00
		NightEnd:         5 * 60,  // 05:00, wraps midnight
		MorningPeakStart: 7 * 60,
		MorningPeakEnd:   9 * 60,
		EveningPeakStart: 17 * 60,
		EveningPeakEnd:   20 * 60,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func TestQuoteNormalRate(t *testing.T) {
	t.Parallel()

	// 10:00 falls in no window: base + normal × distance.
	got := Quote(10, at(10, 0), []Band{bandFixture()})
	want := 7.00 + 15.00*10

	if got["4 Wheeler"] != want {
		t.Fatalf("normal fare = %v, want %v", got["4 Wheeler"], want)
	}
}

func TestQuoteNightSurcharge(t *testing.T) {
	t.Parallel()

	want := 7.00 + (15.00+3.00)*10

	for _, clock := range []time.Time{at(22, 0), at(23, 30), at(2, 0), at(4, 59)} {
		got := Quote(10, clock, []Band{bandFixture()})
		if got["4 Wheeler"] != want {
			t.Errorf("night fare at %s = %v, want %v", clock.Format("15:04"), got["4 Wheeler"], want)
		}
	}
}

func TestQuoteNightEndExclusive(t *testing.T) {
	t.Parallel()

	got := Quote(10, at(5, 0), []Band{bandFixture()})
	want := 7.00 + 15.00*10

	if got["4 Wheeler"] != want {
		t.Fatalf("fare at window end = %v, want normal %v", got["4 Wheeler"], want)
	}
}

func TestQuotePeakSurcharge(t *testing.T) {
	t.Parallel()

	want := 7.00 + (15.00+2.50)*10

	for _, clock := range []time.Time{at(7, 0), at(8, 59), at(17, 0), at(19, 59)} {
		got := Quote(10, clock, []Band{bandFixture()})
		if got["4 Wheeler"] != want {
			t.Errorf("peak fare at %s = %v, want %v", clock.Format("15:04"), got["4 Wheeler"], want)
		}
	}
}

func TestQuoteNightBeatsPeak(t *testing.T) {
	t.Parallel()

	// Overlapping windows resolve in favour of the night surcharge.
	b := bandFixture()
	b.EveningPeakStart = 21 * 60
	b.EveningPeakEnd = 23 * 60

	got := Quote(10, at(22, 30), []Band{b})
	want := 7.00 + (15.00+3.00)*10

	if got["4 Wheeler"] != want {
		t.Fatalf("overlap fare = %v, want night %v", got["4 Wheeler"], want)
	}
}

func TestQuoteZeroDistance(t *testing.T) {
	t.Parallel()

	got := Quote(0, at(10, 0), []Band{bandFixture()})
	if got["4 Wheeler"] != 7.00 {
		t.Fatalf("zero-distance fare = %v, want base fare", got["4 Wheeler"])
	}
}

func TestQuoteNoBands(t *testing.T) {
	t.Parallel()

	got := Quote(10, at(10, 0), nil)
	if len(got) != 0 {
		t.Fatalf("expected empty quote map, got %v", got)
	}
}

func TestQuoteMultipleClasses(t *testing.T) {
	t.Parallel()

	two := bandFixture()
	two.VehicleClass = "2 Wheeler"
	two.NormalRate = 10.00

	got := Quote(4, at(12, 0), []Band{bandFixture(), two})

	if len(got) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(got))
	}
	if got["2 Wheeler"] != 7.00+10.00*4 {
		t.Errorf("2 Wheeler fare = %v", got["2 Wheeler"])
	}
	if got["4 Wheeler"] != 7.00+15.00*4 {
		t.Errorf("4 Wheeler fare = %v", got["4 Wheeler"])
	}
}

func TestQuoteDeterministic(t *testing.T) {
	t.Parallel()

	clock := at(8, 15)
	first := Quote(12.345, clock, []Band{bandFixture()})
	for i := 0; i < 50; i++ {
		again := Quote(12.345, clock, []Band{bandFixture()})
		if again["4 Wheeler"] != first["4 Wheeler"] {
			t.Fatalf("run %d: fare %v != %v", i, again["4 Wheeler"], first["4 Wheeler"])
		}
	}
}

func TestQuoteRoundsToCents(t *testing.T) {
	t.Parallel()

	b := bandFixture()
	got := Quote(1.2345, at(12, 0), []Band{b})

	// 7 + 15 × 1.2345 = 25.5175 → 25.52 after rounding.
	if got["4 Wheeler"] != 25.52 {
		t.Fatalf("rounded fare = %v, want 25.52", got["4 Wheeler"])
	}
}

func TestInWindowDegenerate(t *testing.T) {
	t.Parallel()

	if inWindow(600, 600, 600) {
		t.Fatal("empty window should match nothing")
	}
}
