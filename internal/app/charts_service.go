package app

import (
	"context"
	"time"

	"calories/internal/domain"
)

// MaxChartDays caps the range GetDaily will return.
const MaxChartDays = 366

// ChartsService encapsulates chart data retrieval use cases.
type ChartsService struct {
	weightRepo domain.WeightRepository
	mealRepo   domain.MealRepository
	planRepo   domain.PlanRepository
	now        func() time.Time
}

// NewChartsService creates a ChartsService backed by the given repositories.
func NewChartsService(wr domain.WeightRepository, mr domain.MealRepository, pr domain.PlanRepository) *ChartsService {
	return &ChartsService{weightRepo: wr, mealRepo: mr, planRepo: pr, now: time.Now}
}

// DayPoint is a single data point returned by GetDaily.
type DayPoint struct {
	Day         string       `json:"day"`
	Calories    int          `json:"calories"`
	CalorieGoal int          `json:"calorieGoal"`
	Weight      *WeightPoint `json:"weight"`
}

// WeightPoint is the optional weight value within a DayPoint.
type WeightPoint struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// GetDaily returns per-day chart data for the last days days, oldest first,
// with weights converted to the requested unit.
func (s *ChartsService) GetDaily(ctx context.Context, userID int64, days int, unit string) ([]DayPoint, error) {
	if unit != domain.UnitKg && unit != domain.UnitLb {
		return nil, &domain.ValidationError{Field: "unit", Reason: "must be \"kg\" or \"lb\""}
	}
	if days < 1 {
		days = 1
	}
	if days > MaxChartDays {
		days = MaxChartDays
	}

	goal := DefaultCalorieGoal
	plan, err := s.planRepo.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		goal = plan.DailyCalorieGoal
	}

	today := s.now().In(time.Local)
	points := make([]DayPoint, 0, days)

	for i := days - 1; i >= 0; i-- {
		dayStr := today.AddDate(0, 0, -i).Format(dayLayout)

		totals, err := s.mealRepo.MealTotalsForLocalDay(ctx, userID, dayStr)
		if err != nil {
			return nil, err
		}

		entry, err := s.weightRepo.LatestWeightForLocalDay(ctx, userID, dayStr)
		if err != nil {
			return nil, err
		}

		var wp *WeightPoint
		if entry != nil {
			wp = &WeightPoint{Value: domain.ConvertWeight(entry.Value, entry.Unit, unit), Unit: unit}
		}

		points = append(points, DayPoint{Day: dayStr, Calories: totals.Calories, CalorieGoal: goal, Weight: wp})
	}
	return points, nil
}
