package domain_test

import (
	"math"
	"testing"

	"calories/internal/domain"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestConvertWeight(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		from, to string
		want     float64
	}{
		{"kg to lb", 100.0, "kg", "lb", 220.46226218},
		{"lb to kg", 220.46226218, "lb", "kg", 100.0},
		{"same unit kg", 80.0, "kg", "kg", 80.0},
		{"same unit lb", 180.0, "lb", "lb", 180.0},
		{"unknown units", 50.0, "st", "kg", 50.0},
		{"zero value", 0, "kg", "lb", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ConvertWeight(tc.value, tc.from, tc.to)
			if !almostEqual(got, tc.want, 0.001) {
				t.Errorf("ConvertWeight(%v, %q, %q) = %v; want %v",
					tc.value, tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestWholeKg(t *testing.T) {
	tests := []struct {
		kg   float64
		want int
	}{
		{80.0, 80},
		{80.4, 80},
		{80.5, 81},
		{81.6466, 82},
	}
	for _, tc := range tests {
		if got := domain.WholeKg(tc.kg); got != tc.want {
			t.Errorf("WholeKg(%v) = %d; want %d", tc.kg, got, tc.want)
		}
	}
}

func TestWeightEntryKg(t *testing.T) {
	e := domain.WeightEntry{Value: 180, Unit: domain.UnitLb}
	if got := e.Kg(); !almostEqual(got, 81.6466, 0.001) {
		t.Errorf("Kg() = %v", got)
	}
}
