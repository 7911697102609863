package domain

import (
	"context"
	"time"
)

// WeightEntry represents a single weight measurement.
type WeightEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Day       string    `json:"day"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}

// Kg returns the entry's value in kilograms.
func (e WeightEntry) Kg() float64 {
	return ConvertWeight(e.Value, e.Unit, UnitKg)
}

// WeightRepository is the port for weight persistence.
type WeightRepository interface {
	AddWeightEvent(ctx context.Context, userID int64, value float64, unit string, createdAt time.Time) (int64, error)
	DeleteLatestWeightEvent(ctx context.Context, userID int64) (bool, error)
	LatestWeightForLocalDay(ctx context.Context, userID int64, localDay string) (*WeightEntry, error)
	ListRecentWeightEvents(ctx context.Context, userID int64, limit int) ([]WeightEntry, error)
}

// ValidateWeightEntry checks a logged weight value and unit.
func ValidateWeightEntry(value float64, unit string) error {
	if unit != UnitKg && unit != UnitLb {
		return invalid("unit", "must be \"kg\" or \"lb\"")
	}
	if !(value > 0) || value > 1000 {
		return invalid("value", "must be > 0 and at most 1000")
	}
	return nil
}
