package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"calories/internal/app"
	"calories/internal/domain"
	"calories/internal/nutrition"
)

var dashNow = time.Date(2026, 6, 10, 18, 0, 0, 0, time.Local)

func mealsOn(days ...int) []domain.MealEntry {
	var out []domain.MealEntry
	for _, d := range days {
		out = append(out, domain.MealEntry{CreatedAt: dashNow.AddDate(0, 0, -d)})
	}
	return out
}

func TestDashboard_Defaults(t *testing.T) {
	meals := &mockMealRepo{
		totalsFn: func(_ context.Context, _ int64, _ string) (domain.MealTotals, error) {
			return domain.MealTotals{Calories: 2500, ProteinG: 40}, nil
		},
	}
	svc := app.NewDashboardService(newProfileStore(), meals)
	svc.SetNow(fixedClock(dashNow))

	got, err := svc.Today(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HasPlan {
		t.Error("HasPlan should be false")
	}
	want := app.Budget{Goal: 2000, Consumed: 2500, Remaining: -500}
	if got.Calories != want {
		t.Errorf("Calories = %+v; want %+v", got.Calories, want)
	}
	if got.Protein != (app.Budget{Goal: 150, Consumed: 40, Remaining: 110}) {
		t.Errorf("Protein = %+v", got.Protein)
	}
	if got.Fat.Goal != 67 || got.Carbs.Goal != 200 {
		t.Errorf("Fat/Carbs goals = %d/%d", got.Fat.Goal, got.Carbs.Goal)
	}
	if got.Day != "2026-06-10" {
		t.Errorf("Day = %s", got.Day)
	}
}

func TestDashboard_UsesStoredPlan(t *testing.T) {
	store := newProfileStore()
	store.plans[1] = &domain.StoredPlan{UserID: 1, Plan: nutrition.Plan{
		DailyCalorieGoal: 1800, ProteinGoalG: 135, FatGoalG: 60, CarbsGoalG: 180,
	}}
	svc := app.NewDashboardService(store, &mockMealRepo{})
	svc.SetNow(fixedClock(dashNow))

	got, err := svc.Today(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.HasPlan || got.Calories.Remaining != 1800 || got.Carbs.Goal != 180 {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestDashboard_Streak(t *testing.T) {
	tests := []struct {
		name string
		days []int
		want int
	}{
		{"none", nil, 0},
		{"today only", []int{0}, 1},
		{"ending yesterday", []int{1, 2, 3}, 3},
		{"gap breaks streak", []int{0, 1, 3, 4}, 2},
		{"two days ago only", []int{2}, 0},
		{"several meals one day", []int{0, 0, 0, 1}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meals := &mockMealRepo{
				sinceFn: func(_ context.Context, _ int64, _ time.Time) ([]domain.MealEntry, error) {
					return mealsOn(tc.days...), nil
				},
			}
			svc := app.NewDashboardService(newProfileStore(), meals)
			svc.SetNow(fixedClock(dashNow))
			got, err := svc.Today(context.Background(), 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Streak != tc.want {
				t.Errorf("Streak = %d; want %d", got.Streak, tc.want)
			}
		})
	}
}

func TestDashboard_RepoError(t *testing.T) {
	meals := &mockMealRepo{
		sinceFn: func(_ context.Context, _ int64, _ time.Time) ([]domain.MealEntry, error) {
			return nil, errors.New("db down")
		},
	}
	svc := app.NewDashboardService(newProfileStore(), meals)
	if _, err := svc.Today(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
}
