package domain

import (
	"context"
	"sort"
	"strings"
	"time"

	"calories/internal/nutrition"
)

// Accepted onboarding ranges.
const (
	MinWeightKg = 30
	MaxWeightKg = 300
	MinHeightCm = 100
	MaxHeightCm = 250
	MinAgeYears = 10
	MaxAgeYears = 120

	maxConditions      = 20
	maxConditionLength = 64
)

// ProfileDraft is the onboarding profile as collected so far. Any field may
// still be missing; Complete is the only way to obtain planner input from it.
type ProfileDraft struct {
	UserID             int64     `json:"userId"`
	Gender             *string   `json:"gender"`
	AgeYears           *int      `json:"ageYears"`
	HeightCm           *int      `json:"heightCm"`
	WeightKg           *int      `json:"weightKg"`
	DesiredWeightKg    *int      `json:"desiredWeightKg"`
	ActivityLevel      *string   `json:"activityLevel"`
	Conditions         []string  `json:"conditions"`
	OnboardingComplete bool      `json:"onboardingComplete"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Missing returns the names of required fields that are still unset.
func (d *ProfileDraft) Missing() []string {
	var missing []string
	if d.Gender == nil {
		missing = append(missing, "gender")
	}
	if d.AgeYears == nil {
		missing = append(missing, "ageYears")
	}
	if d.HeightCm == nil {
		missing = append(missing, "heightCm")
	}
	if d.WeightKg == nil {
		missing = append(missing, "weightKg")
	}
	if d.DesiredWeightKg == nil {
		missing = append(missing, "desiredWeightKg")
	}
	if d.ActivityLevel == nil {
		missing = append(missing, "activityLevel")
	}
	return missing
}

// Complete validates the draft and converts it into planner input.
func (d *ProfileDraft) Complete() (nutrition.Profile, error) {
	if missing := d.Missing(); len(missing) > 0 {
		return nutrition.Profile{}, &IncompleteProfileError{Missing: missing}
	}
	if err := d.Validate(); err != nil {
		return nutrition.Profile{}, err
	}
	return nutrition.Profile{
		Gender:          nutrition.ParseGender(*d.Gender),
		WeightKg:        *d.WeightKg,
		HeightCm:        *d.HeightCm,
		AgeYears:        *d.AgeYears,
		DesiredWeightKg: *d.DesiredWeightKg,
		ActivityLevel:   nutrition.ParseActivityLevel(*d.ActivityLevel),
	}, nil
}

// Validate checks the range of every field that is set.
func (d *ProfileDraft) Validate() error {
	if d.Gender != nil {
		if err := ValidateGender(*d.Gender); err != nil {
			return err
		}
	}
	if d.AgeYears != nil {
		if err := ValidateAge(*d.AgeYears); err != nil {
			return err
		}
	}
	if d.HeightCm != nil {
		if err := ValidateHeight(*d.HeightCm); err != nil {
			return err
		}
	}
	if d.WeightKg != nil {
		if err := ValidateWeight("weightKg", *d.WeightKg); err != nil {
			return err
		}
	}
	if d.DesiredWeightKg != nil {
		if err := ValidateWeight("desiredWeightKg", *d.DesiredWeightKg); err != nil {
			return err
		}
	}
	if d.ActivityLevel != nil {
		if err := ValidateActivityLevel(*d.ActivityLevel); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGender accepts "male" or "female" in any case.
func ValidateGender(g string) error {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case string(nutrition.GenderMale), string(nutrition.GenderFemale):
		return nil
	}
	return invalid("gender", "must be \"male\" or \"female\"")
}

// ValidateAge checks the onboarding age range.
func ValidateAge(age int) error {
	if age < MinAgeYears || age > MaxAgeYears {
		return invalid("ageYears", "must be within [%d, %d]", MinAgeYears, MaxAgeYears)
	}
	return nil
}

// ValidateHeight checks the onboarding height range.
func ValidateHeight(cm int) error {
	if cm < MinHeightCm || cm > MaxHeightCm {
		return invalid("heightCm", "must be within [%d, %d]", MinHeightCm, MaxHeightCm)
	}
	return nil
}

// ValidateWeight checks a current or desired weight.
func ValidateWeight(field string, kg int) error {
	if kg < MinWeightKg || kg > MaxWeightKg {
		return invalid(field, "must be within [%d, %d]", MinWeightKg, MaxWeightKg)
	}
	return nil
}

// ValidateActivityLevel requires one of the five known levels.
func ValidateActivityLevel(level string) error {
	if !nutrition.ActivityLevel(strings.ToLower(strings.TrimSpace(level))).Known() {
		return invalid("activityLevel", "must be one of sedentary, light, moderate, very_active, extremely_active")
	}
	return nil
}

// NormalizeConditions trims, drops empties and duplicates, and sorts the
// health condition labels.
func NormalizeConditions(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if len(c) > maxConditionLength {
			return nil, invalid("conditions", "entries must be at most %d characters", maxConditionLength)
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	if len(out) > maxConditions {
		return nil, invalid("conditions", "must have at most %d entries", maxConditions)
	}
	sort.Strings(out)
	return out, nil
}

// StoredPlan is a computed plan persisted for a user.
type StoredPlan struct {
	UserID     int64               `json:"userId"`
	Direction  nutrition.Direction `json:"direction"`
	ComputedAt time.Time           `json:"computedAt"`
	nutrition.Plan
}

// ProfileRepository is the port for onboarding profile persistence.
// GetProfile returns (nil, nil) when the user has no profile yet.
//
// UpdateProfile passes fn the current profile, or an empty draft when none
// exists, and stores the result only if fn returns nil. Updates for the same
// user are serialized, so fn never sees a stale profile.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (*ProfileDraft, error)
	UpdateProfile(ctx context.Context, userID int64, fn func(p *ProfileDraft) error) (*ProfileDraft, error)
}

// PlanRepository is the port for nutrition plan persistence.
// GetPlan returns (nil, nil) when no plan has been stored.
type PlanRepository interface {
	GetPlan(ctx context.Context, userID int64) (*StoredPlan, error)
	SavePlan(ctx context.Context, p *StoredPlan) error
}
