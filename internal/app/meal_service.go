package app

import (
	"context"
	"fmt"
	"time"

	"calories/internal/domain"
)

const dayLayout = "2006-01-02"

func localDay(t time.Time) string {
	return t.In(time.Local).Format(dayLayout)
}

// MealService encapsulates meal-logging use cases.
type MealService struct {
	repo domain.MealRepository
	now  func() time.Time
}

// NewMealService creates a MealService backed by the given repository.
func NewMealService(repo domain.MealRepository) *MealService {
	return &MealService{repo: repo, now: time.Now}
}

// RecordMeal validates and stores a meal, returning the stored entry and the
// totals for today after the insert.
func (s *MealService) RecordMeal(ctx context.Context, userID int64, m domain.MealEntry) (*domain.MealEntry, domain.MealTotals, string, error) {
	now := s.now()
	today := localDay(now)
	if err := m.Validate(); err != nil {
		return nil, domain.MealTotals{}, today, err
	}
	m.UserID = userID
	m.CreatedAt = now
	id, err := s.repo.AddMeal(ctx, m)
	if err != nil {
		return nil, domain.MealTotals{}, today, fmt.Errorf("add meal: %w", err)
	}
	m.ID = id
	totals, err := s.repo.MealTotalsForLocalDay(ctx, userID, today)
	return &m, totals, today, err
}

// GetTodayTotals sums today's meals.
func (s *MealService) GetTodayTotals(ctx context.Context, userID int64) (domain.MealTotals, string, error) {
	today := localDay(s.now())
	totals, err := s.repo.MealTotalsForLocalDay(ctx, userID, today)
	return totals, today, err
}

// ListRecent returns the most recent meals up to limit.
func (s *MealService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.MealEntry, error) {
	return s.repo.ListRecentMeals(ctx, userID, limit)
}

// UndoLast deletes the most recent meal and returns today's totals afterwards.
func (s *MealService) UndoLast(ctx context.Context, userID int64) (bool, domain.MealTotals, string, error) {
	today := localDay(s.now())
	recent, err := s.repo.ListRecentMeals(ctx, userID, 1)
	if err != nil {
		return false, domain.MealTotals{}, today, err
	}
	deleted := false
	if len(recent) > 0 {
		if err := s.repo.DeleteMeal(ctx, userID, recent[0].ID); err != nil {
			return false, domain.MealTotals{}, today, fmt.Errorf("delete meal: %w", err)
		}
		deleted = true
	}
	totals, err := s.repo.MealTotalsForLocalDay(ctx, userID, today)
	return deleted, totals, today, err
}
