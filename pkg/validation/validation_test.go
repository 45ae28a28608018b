package validation

import "testing"

func TestValidatePickupCode(t *testing.T) {
	t.Parallel()

	valid := []string{"0000", "1000", "4821", "9999"}
	for _, code := range valid {
		if !ValidatePickupCode(code) {
			t.Errorf("ValidatePickupCode(%q) = false, want true", code)
		}
	}

	invalid := []string{"", "1", "123", "12345", "12a4", " 1234", "1234 ", "12.4", "-123", "١٢٣٤"}
	for _, code := range invalid {
		if ValidatePickupCode(code) {
			t.Errorf("ValidatePickupCode(%q) = true, want false", code)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	t.Parallel()

	ok := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {12.97, 77.59}}
	for _, c := range ok {
		if !ValidateCoordinates(c[0], c[1]) {
			t.Errorf("ValidateCoordinates(%v, %v) = false", c[0], c[1])
		}
	}

	bad := [][2]float64{{90.1, 0}, {-90.1, 0}, {0, 180.1}, {0, -180.1}}
	for _, c := range bad {
		if ValidateCoordinates(c[0], c[1]) {
			t.Errorf("ValidateCoordinates(%v, %v) = true", c[0], c[1])
		}
	}
}

func TestValidateRating(t *testing.T) {
	t.Parallel()

	for r := 1; r <= 5; r++ {
		if !ValidateRating(r) {
			t.Errorf("ValidateRating(%d) = false", r)
		}
	}
	for _, r := range []int{0, -1, 6, 100} {
		if ValidateRating(r) {
			t.Errorf("ValidateRating(%d) = true", r)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	if !ValidatePhone("+919812345670") || !ValidatePhone("19812345670") {
		t.Error("expected valid phone numbers to pass")
	}
	for _, p := range []string{"", "0123", "+0123", "abc", "+91 98123"} {
		if ValidatePhone(p) {
			t.Errorf("ValidatePhone(%q) = true", p)
		}
	}
}
