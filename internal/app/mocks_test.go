package app_test

import (
	"context"
	"errors"
	"time"

	"calories/internal/domain"
)

type mockWeightRepo struct {
	addFn    func(ctx context.Context, userID int64, v float64, u string, t time.Time) (int64, error)
	deleteFn func(ctx context.Context, userID int64) (bool, error)
	latestFn func(ctx context.Context, userID int64, day string) (*domain.WeightEntry, error)
	listFn   func(ctx context.Context, userID int64, limit int) ([]domain.WeightEntry, error)
}

func (m *mockWeightRepo) AddWeightEvent(ctx context.Context, userID int64, v float64, u string, t time.Time) (int64, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, v, u, t)
	}
	return 0, nil
}

func (m *mockWeightRepo) DeleteLatestWeightEvent(ctx context.Context, userID int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return false, nil
}

func (m *mockWeightRepo) LatestWeightForLocalDay(ctx context.Context, userID int64, day string) (*domain.WeightEntry, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, userID, day)
	}
	return nil, nil
}

func (m *mockWeightRepo) ListRecentWeightEvents(ctx context.Context, userID int64, limit int) ([]domain.WeightEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

type mockMealRepo struct {
	addFn    func(ctx context.Context, m domain.MealEntry) (int64, error)
	deleteFn func(ctx context.Context, userID, id int64) error
	listFn   func(ctx context.Context, userID int64, limit int) ([]domain.MealEntry, error)
	sinceFn  func(ctx context.Context, userID int64, since time.Time) ([]domain.MealEntry, error)
	totalsFn func(ctx context.Context, userID int64, day string) (domain.MealTotals, error)
}

func (m *mockMealRepo) AddMeal(ctx context.Context, e domain.MealEntry) (int64, error) {
	if m.addFn != nil {
		return m.addFn(ctx, e)
	}
	return 0, nil
}

func (m *mockMealRepo) DeleteMeal(ctx context.Context, userID, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockMealRepo) ListRecentMeals(ctx context.Context, userID int64, limit int) ([]domain.MealEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockMealRepo) ListMealsSince(ctx context.Context, userID int64, since time.Time) ([]domain.MealEntry, error) {
	if m.sinceFn != nil {
		return m.sinceFn(ctx, userID, since)
	}
	return nil, nil
}

func (m *mockMealRepo) MealTotalsForLocalDay(ctx context.Context, userID int64, day string) (domain.MealTotals, error) {
	if m.totalsFn != nil {
		return m.totalsFn(ctx, userID, day)
	}
	return domain.MealTotals{}, nil
}

// profileStore is a small in-test store used where function fields would be
// too noisy.
var errPlansDown = errors.New("plans down")

type profileStore struct {
	profiles map[int64]*domain.ProfileDraft
	plans    map[int64]*domain.StoredPlan
	saveErr  error
	// failPlans is the number of upcoming SavePlan calls that fail.
	failPlans int
}

func newProfileStore() *profileStore {
	return &profileStore{
		profiles: map[int64]*domain.ProfileDraft{},
		plans:    map[int64]*domain.StoredPlan{},
	}
}

func (s *profileStore) GetProfile(_ context.Context, userID int64) (*domain.ProfileDraft, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *profileStore) UpdateProfile(_ context.Context, userID int64, fn func(p *domain.ProfileDraft) error) (*domain.ProfileDraft, error) {
	p := domain.ProfileDraft{UserID: userID, Conditions: []string{}}
	if cur, ok := s.profiles[userID]; ok {
		p = *cur
		p.Conditions = append([]string{}, cur.Conditions...)
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	cp := p
	s.profiles[userID] = &cp
	return &p, nil
}

func (s *profileStore) GetPlan(_ context.Context, userID int64) (*domain.StoredPlan, error) {
	p, ok := s.plans[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *profileStore) SavePlan(_ context.Context, p *domain.StoredPlan) error {
	if s.failPlans > 0 {
		s.failPlans--
		return errPlansDown
	}
	cp := *p
	s.plans[p.UserID] = &cp
	return nil
}

func ptr[T any](v T) *T { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
