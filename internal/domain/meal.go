package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// MealEntry is a single logged meal.
type MealEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Calories  int       `json:"calories"`
	ProteinG  int       `json:"proteinG"`
	FatG      int       `json:"fatG"`
	CarbsG    int       `json:"carbsG"`
	CreatedAt time.Time `json:"createdAt"`
}

// MealTotals sums the meals of one local day.
type MealTotals struct {
	Calories int `json:"calories"`
	ProteinG int `json:"proteinG"`
	FatG     int `json:"fatG"`
	CarbsG   int `json:"carbsG"`
	Count    int `json:"count"`
}

// Add accumulates a meal into the totals.
func (t *MealTotals) Add(m MealEntry) {
	t.Calories += m.Calories
	t.ProteinG += m.ProteinG
	t.FatG += m.FatG
	t.CarbsG += m.CarbsG
	t.Count++
}

// MealRepository is the port for meal persistence.
type MealRepository interface {
	AddMeal(ctx context.Context, m MealEntry) (int64, error)
	DeleteMeal(ctx context.Context, userID, id int64) error
	ListRecentMeals(ctx context.Context, userID int64, limit int) ([]MealEntry, error)
	ListMealsSince(ctx context.Context, userID int64, since time.Time) ([]MealEntry, error)
	MealTotalsForLocalDay(ctx context.Context, userID int64, localDay string) (MealTotals, error)
}

// Meal input limits.
const (
	MaxMealNameLength = 120
	MaxMealCalories   = 10000
	MaxMealMacroG     = 1000
)

// Validate checks a meal before it is stored. The name is trimmed in place.
func (m *MealEntry) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return invalid("name", "must not be empty")
	}
	if utf8.RuneCountInString(m.Name) > MaxMealNameLength {
		return invalid("name", "must be at most %d characters", MaxMealNameLength)
	}
	if m.Calories < 1 || m.Calories > MaxMealCalories {
		return invalid("calories", "must be within [1, %d]", MaxMealCalories)
	}
	for _, f := range []struct {
		name string
		v    int
	}{{"proteinG", m.ProteinG}, {"fatG", m.FatG}, {"carbsG", m.CarbsG}} {
		if f.v < 0 || f.v > MaxMealMacroG {
			return invalid(f.name, "must be within [0, %d]", MaxMealMacroG)
		}
	}
	return nil
}
