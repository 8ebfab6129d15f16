package units

import (
	"math"
	"testing"
)

func TestConvertSpeed(t *testing.T) {
	cases := []struct {
		name     string
		speedMPS float64
		units    string
		want     float64
	}{
		{"mps passthrough", 20, MPS, 20},
		{"mph", 20, MPH, 44.7388},
		{"kph", 20, KPH, 72},
		{"unknown unit passthrough", 20, "furlongs", 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ConvertSpeed(tc.speedMPS, tc.units)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("ConvertSpeed(%v, %q) = %v, want %v", tc.speedMPS, tc.units, got, tc.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	for _, unit := range ValidUnits {
		if !IsValid(unit) {
			t.Errorf("IsValid(%q) = false, want true", unit)
		}
	}
	if IsValid("knots") {
		t.Error(`IsValid("knots") = true, want false`)
	}
}

func TestFormatSpeed(t *testing.T) {
	if got, want := FormatSpeed(20, KPH), "72.0 kph"; got != want {
		t.Errorf("FormatSpeed(20, kph) = %q, want %q", got, want)
	}
}
