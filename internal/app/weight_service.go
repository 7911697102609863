package app

import (
	"context"
	"fmt"
	"time"

	"calories/internal/domain"
)

// WeightSyncer receives every newly logged weight in kilograms.
type WeightSyncer interface {
	SyncWeight(ctx context.Context, userID int64, kg float64) (*domain.StoredPlan, error)
}

// WeightService encapsulates weight-tracking use cases.
type WeightService struct {
	repo   domain.WeightRepository
	syncer WeightSyncer
	now    func() time.Time
}

// NewWeightService creates a WeightService backed by the given repository.
// syncer may be nil.
func NewWeightService(repo domain.WeightRepository, syncer WeightSyncer) *WeightService {
	return &WeightService{repo: repo, syncer: syncer, now: time.Now}
}

// GetTodayWeight returns the latest weight entry for today.
func (s *WeightService) GetTodayWeight(ctx context.Context, userID int64) (*domain.WeightEntry, string, error) {
	today := localDay(s.now())
	entry, err := s.repo.LatestWeightForLocalDay(ctx, userID, today)
	return entry, today, err
}

// WeightRecorded is the outcome of RecordWeight.
type WeightRecorded struct {
	Today string
	Entry *domain.WeightEntry
	// Plan is set when the new weight recomputed the user's plan.
	Plan *domain.StoredPlan
	// SyncErr is set when the weight was stored but the profile could not
	// follow it. Logging the weight again retries the sync.
	SyncErr error
}

// RecordWeight validates and stores a new weight measurement, syncs it into
// the profile and reports the latest entry for today after the insert.
func (s *WeightService) RecordWeight(ctx context.Context, userID int64, value float64, unit string) (*WeightRecorded, error) {
	now := s.now()
	if err := domain.ValidateWeightEntry(value, unit); err != nil {
		return nil, err
	}
	if _, err := s.repo.AddWeightEvent(ctx, userID, value, unit, now); err != nil {
		return nil, fmt.Errorf("add weight: %w", err)
	}
	res := &WeightRecorded{Today: localDay(now)}
	if s.syncer != nil {
		plan, err := s.syncer.SyncWeight(ctx, userID, domain.ConvertWeight(value, unit, domain.UnitKg))
		if err != nil {
			res.SyncErr = fmt.Errorf("sync profile weight: %w", err)
		}
		res.Plan = plan
	}
	entry, err := s.repo.LatestWeightForLocalDay(ctx, userID, res.Today)
	if err != nil {
		return nil, err
	}
	res.Entry = entry
	return res, nil
}

// ListRecent returns the most recent weight events up to limit.
func (s *WeightService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.WeightEntry, error) {
	return s.repo.ListRecentWeightEvents(ctx, userID, limit)
}

// UndoLast deletes the most recent weight event and returns the new latest
// entry for today.
func (s *WeightService) UndoLast(ctx context.Context, userID int64) (bool, *domain.WeightEntry, string, error) {
	today := localDay(s.now())
	deleted, err := s.repo.DeleteLatestWeightEvent(ctx, userID)
	if err != nil {
		return false, nil, today, err
	}
	entry, err := s.repo.LatestWeightForLocalDay(ctx, userID, today)
	return deleted, entry, today, err
}
