package app

import (
	"context"
	"fmt"
	"time"

	"calories/internal/domain"
)

// Goals used on the dashboard before a plan has been computed.
const (
	DefaultCalorieGoal  = 2000
	DefaultProteinGoalG = 150
	DefaultFatGoalG     = 67
	DefaultCarbsGoalG   = 200
)

// streakWindowDays bounds how far back the streak is counted.
const streakWindowDays = 366

// Budget is a goal together with what has been consumed against it.
// Remaining goes negative once the goal is exceeded.
type Budget struct {
	Goal      int `json:"goal"`
	Consumed  int `json:"consumed"`
	Remaining int `json:"remaining"`
}

func newBudget(goal, consumed int) Budget {
	return Budget{Goal: goal, Consumed: consumed, Remaining: goal - consumed}
}

// HomeState is everything the home screen shows for one day.
type HomeState struct {
	Day      string `json:"day"`
	HasPlan  bool   `json:"hasPlan"`
	Calories Budget `json:"calories"`
	Protein  Budget `json:"protein"`
	Fat      Budget `json:"fat"`
	Carbs    Budget `json:"carbs"`
	Streak   int    `json:"streak"`
}

// DashboardService assembles the home screen.
type DashboardService struct {
	plans domain.PlanRepository
	meals domain.MealRepository
	now   func() time.Time
}

// NewDashboardService creates a DashboardService backed by the given repositories.
func NewDashboardService(plans domain.PlanRepository, meals domain.MealRepository) *DashboardService {
	return &DashboardService{plans: plans, meals: meals, now: time.Now}
}

// Today returns the home state for the current local day.
func (s *DashboardService) Today(ctx context.Context, userID int64) (*HomeState, error) {
	now := s.now().In(time.Local)
	today := now.Format(dayLayout)

	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	totals, err := s.meals.MealTotalsForLocalDay(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("meal totals: %w", err)
	}
	streak, err := s.streak(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	cal, protein, fat, carbs := DefaultCalorieGoal, DefaultProteinGoalG, DefaultFatGoalG, DefaultCarbsGoalG
	if plan != nil {
		cal, protein, fat, carbs = plan.DailyCalorieGoal, plan.ProteinGoalG, plan.FatGoalG, plan.CarbsGoalG
	}
	return &HomeState{
		Day:      today,
		HasPlan:  plan != nil,
		Calories: newBudget(cal, totals.Calories),
		Protein:  newBudget(protein, totals.ProteinG),
		Fat:      newBudget(fat, totals.FatG),
		Carbs:    newBudget(carbs, totals.CarbsG),
		Streak:   streak,
	}, nil
}

// streak counts consecutive local days with at least one meal, ending today,
// or yesterday when nothing has been logged today yet.
func (s *DashboardService) streak(ctx context.Context, userID int64, now time.Time) (int, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := midnight.AddDate(0, 0, -streakWindowDays)
	meals, err := s.meals.ListMealsSince(ctx, userID, since)
	if err != nil {
		return 0, fmt.Errorf("list meals: %w", err)
	}
	days := make(map[string]struct{}, len(meals))
	for _, m := range meals {
		days[localDay(m.CreatedAt)] = struct{}{}
	}

	day := midnight
	if _, ok := days[day.Format(dayLayout)]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for {
		if _, ok := days[day.Format(dayLayout)]; !ok {
			return n, nil
		}
		n++
		day = day.AddDate(0, 0, -1)
	}
}
