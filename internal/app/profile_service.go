package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calories/internal/domain"
	"calories/internal/nutrition"
)

// ErrPlanNotFound is returned when a user has no stored nutrition plan yet.
var ErrPlanNotFound = errors.New("nutrition plan not found")

// ProfileUpdate is a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	Gender          *string   `json:"gender"`
	AgeYears        *int      `json:"ageYears"`
	HeightCm        *int      `json:"heightCm"`
	WeightKg        *int      `json:"weightKg"`
	DesiredWeightKg *int      `json:"desiredWeightKg"`
	ActivityLevel   *string   `json:"activityLevel"`
	Conditions      *[]string `json:"conditions"`
}

// ProfileService runs the onboarding flow and keeps each user's nutrition
// plan in step with their profile.
type ProfileService struct {
	profiles domain.ProfileRepository
	plans    domain.PlanRepository
	now      func() time.Time
}

// NewProfileService creates a ProfileService backed by the given repositories.
func NewProfileService(profiles domain.ProfileRepository, plans domain.PlanRepository) *ProfileService {
	return &ProfileService{profiles: profiles, plans: plans, now: time.Now}
}

// GetProfile returns the user's profile, or an empty draft when none exists.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*domain.ProfileDraft, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return &domain.ProfileDraft{UserID: userID, Conditions: []string{}}, nil
	}
	return p, nil
}

// UpdateProfile applies u and saves the profile. Once onboarding is complete
// every change recomputes the plan, which is stored before the profile so a
// failed plan write leaves the profile untouched.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, u ProfileUpdate) (*domain.ProfileDraft, *domain.StoredPlan, error) {
	var plan *domain.StoredPlan
	p, err := s.profiles.UpdateProfile(ctx, userID, func(p *domain.ProfileDraft) error {
		plan = nil
		if err := applyUpdate(p, u); err != nil {
			return err
		}
		p.UpdatedAt = s.now().UTC()
		if !p.OnboardingComplete {
			return nil
		}
		var err error
		plan, err = s.storePlan(ctx, p)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return p, plan, nil
}

func applyUpdate(p *domain.ProfileDraft, u ProfileUpdate) error {
	if u.Gender != nil {
		if err := domain.ValidateGender(*u.Gender); err != nil {
			return err
		}
		g := string(nutrition.ParseGender(*u.Gender))
		p.Gender = &g
	}
	if u.AgeYears != nil {
		if err := domain.ValidateAge(*u.AgeYears); err != nil {
			return err
		}
		p.AgeYears = u.AgeYears
	}
	if u.HeightCm != nil {
		if err := domain.ValidateHeight(*u.HeightCm); err != nil {
			return err
		}
		p.HeightCm = u.HeightCm
	}
	if u.WeightKg != nil {
		if err := domain.ValidateWeight("weightKg", *u.WeightKg); err != nil {
			return err
		}
		p.WeightKg = u.WeightKg
	}
	if u.DesiredWeightKg != nil {
		if err := domain.ValidateWeight("desiredWeightKg", *u.DesiredWeightKg); err != nil {
			return err
		}
		p.DesiredWeightKg = u.DesiredWeightKg
	}
	if u.ActivityLevel != nil {
		if err := domain.ValidateActivityLevel(*u.ActivityLevel); err != nil {
			return err
		}
		level := strings.ToLower(strings.TrimSpace(*u.ActivityLevel))
		p.ActivityLevel = &level
	}
	if u.Conditions != nil {
		c, err := domain.NormalizeConditions(*u.Conditions)
		if err != nil {
			return err
		}
		p.Conditions = c
	}
	return nil
}

// CompleteOnboarding computes and stores the plan for a complete profile and
// marks onboarding as finished.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, userID int64) (*domain.StoredPlan, error) {
	var plan *domain.StoredPlan
	_, err := s.profiles.UpdateProfile(ctx, userID, func(p *domain.ProfileDraft) error {
		if _, err := p.Complete(); err != nil {
			return err
		}
		if !p.OnboardingComplete {
			p.OnboardingComplete = true
			p.UpdatedAt = s.now().UTC()
		}
		var err error
		plan, err = s.storePlan(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// GetPlan returns the stored plan.
func (s *ProfileService) GetPlan(ctx context.Context, userID int64) (*domain.StoredPlan, error) {
	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// SyncWeight copies a logged weight into the profile. Weights outside the
// onboarding range are ignored. Returns the recomputed plan when onboarding is
// complete, otherwise nil. An unchanged weight still rewrites the plan when
// the stored one no longer matches the profile.
func (s *ProfileService) SyncWeight(ctx context.Context, userID int64, kg float64) (*domain.StoredPlan, error) {
	whole := domain.WholeKg(kg)
	if domain.ValidateWeight("weightKg", whole) != nil {
		return nil, nil
	}
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.WeightKg == nil || *p.WeightKg != whole {
		_, plan, err := s.UpdateProfile(ctx, userID, ProfileUpdate{WeightKg: &whole})
		return plan, err
	}
	if !p.OnboardingComplete {
		return nil, nil
	}
	stale, err := s.planStale(ctx, p)
	if err != nil || !stale {
		return nil, err
	}
	return s.storePlan(ctx, p)
}

func (s *ProfileService) planStale(ctx context.Context, d *domain.ProfileDraft) (bool, error) {
	p, err := d.Complete()
	if err != nil {
		return false, err
	}
	stored, err := s.plans.GetPlan(ctx, d.UserID)
	if err != nil {
		return false, fmt.Errorf("get plan: %w", err)
	}
	return stored == nil || stored.Plan != nutrition.CalculatePlan(p), nil
}

// PreviewPlan computes a plan for a draft without storing anything.
func PreviewPlan(d *domain.ProfileDraft) (nutrition.Plan, error) {
	p, err := d.Complete()
	if err != nil {
		return nutrition.Plan{}, err
	}
	return nutrition.CalculatePlan(p), nil
}

func (s *ProfileService) storePlan(ctx context.Context, d *domain.ProfileDraft) (*domain.StoredPlan, error) {
	p, err := d.Complete()
	if err != nil {
		return nil, err
	}
	stored := &domain.StoredPlan{
		UserID:     d.UserID,
		Direction:  nutrition.DirectionOf(p.WeightKg, p.DesiredWeightKg),
		ComputedAt: s.now().UTC(),
		Plan:       nutrition.CalculatePlan(p),
	}
	if err := s.plans.SavePlan(ctx, stored); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}
	return stored, nil
}
