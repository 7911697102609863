package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"calories/internal/domain"

	"github.com/lib/pq"
)

const profileSelect = `SELECT gender, age_years, height_cm, weight_kg, desired_weight_kg, activity_level,
		conditions, onboarding_complete, updated_at
	FROM profiles WHERE user_id=$1`

// GetProfile returns the user's onboarding profile, or nil when none exists.
func (d *DB) GetProfile(ctx context.Context, userID int64) (*domain.ProfileDraft, error) {
	p, err := scanProfile(d.sql.QueryRowContext(ctx, profileSelect+";", userID), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// UpdateProfile locks the user's profile row, runs fn on it and writes the
// result in the same transaction. A missing row is created empty first so
// there is always a row to lock.
func (d *DB) UpdateProfile(ctx context.Context, userID int64, fn func(p *domain.ProfileDraft) error) (*domain.ProfileDraft, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin profile update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles(user_id, updated_at) VALUES($1, $2) ON CONFLICT (user_id) DO NOTHING;`,
		userID, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("seed profile: %w", err)
	}
	p, err := scanProfile(tx.QueryRowContext(ctx, profileSelect+" FOR UPDATE;", userID), userID)
	if err != nil {
		return nil, fmt.Errorf("lock profile: %w", err)
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	p.UserID = userID
	if err := upsertProfile(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile: %w", err)
	}
	return p, nil
}

func scanProfile(row *sql.Row, userID int64) (*domain.ProfileDraft, error) {
	p := domain.ProfileDraft{UserID: userID}
	var (
		gender, activity                   sql.NullString
		age, height, weight, desiredWeight sql.NullInt64
		conditions                         pq.StringArray
	)
	err := row.Scan(&gender, &age, &height, &weight, &desiredWeight, &activity, &conditions, &p.OnboardingComplete, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Gender = fromNullString(gender)
	p.ActivityLevel = fromNullString(activity)
	p.AgeYears = fromNullInt(age)
	p.HeightCm = fromNullInt(height)
	p.WeightKg = fromNullInt(weight)
	p.DesiredWeightKg = fromNullInt(desiredWeight)
	p.Conditions = []string(conditions)
	if p.Conditions == nil {
		p.Conditions = []string{}
	}
	return &p, nil
}

func upsertProfile(ctx context.Context, tx *sql.Tx, p *domain.ProfileDraft) error {
	conditions := p.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO profiles(user_id, gender, age_years, height_cm, weight_kg, desired_weight_kg,
			activity_level, conditions, onboarding_complete, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			gender=EXCLUDED.gender, age_years=EXCLUDED.age_years, height_cm=EXCLUDED.height_cm,
			weight_kg=EXCLUDED.weight_kg, desired_weight_kg=EXCLUDED.desired_weight_kg,
			activity_level=EXCLUDED.activity_level, conditions=EXCLUDED.conditions,
			onboarding_complete=EXCLUDED.onboarding_complete, updated_at=EXCLUDED.updated_at;`,
		p.UserID, toNullString(p.Gender), toNullInt(p.AgeYears), toNullInt(p.HeightCm),
		toNullInt(p.WeightKg), toNullInt(p.DesiredWeightKg), toNullString(p.ActivityLevel),
		pq.Array(conditions), p.OnboardingComplete, p.UpdatedAt.UTC(),
	)
	return err
}

// GetPlan returns the user's stored plan, or nil when none exists.
func (d *DB) GetPlan(ctx context.Context, userID int64) (*domain.StoredPlan, error) {
	p := domain.StoredPlan{UserID: userID}
	err := d.sql.QueryRowContext(ctx,
		`SELECT direction, bmr, tdee, daily_calorie_goal, protein_goal_g, fat_goal_g, carbs_goal_g,
			weekly_weight_change_kg, computed_at
		FROM plans WHERE user_id=$1;`, userID,
	).Scan(&p.Direction, &p.BMR, &p.TDEE, &p.DailyCalorieGoal, &p.ProteinGoalG, &p.FatGoalG, &p.CarbsGoalG,
		&p.WeeklyWeightChangeKg, &p.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePlan inserts or replaces the user's plan.
func (d *DB) SavePlan(ctx context.Context, p *domain.StoredPlan) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO plans(user_id, direction, bmr, tdee, daily_calorie_goal, protein_goal_g, fat_goal_g,
			carbs_goal_g, weekly_weight_change_kg, computed_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			direction=EXCLUDED.direction, bmr=EXCLUDED.bmr, tdee=EXCLUDED.tdee,
			daily_calorie_goal=EXCLUDED.daily_calorie_goal, protein_goal_g=EXCLUDED.protein_goal_g,
			fat_goal_g=EXCLUDED.fat_goal_g, carbs_goal_g=EXCLUDED.carbs_goal_g,
			weekly_weight_change_kg=EXCLUDED.weekly_weight_change_kg, computed_at=EXCLUDED.computed_at;`,
		p.UserID, string(p.Direction), p.BMR, p.TDEE, p.DailyCalorieGoal, p.ProteinGoalG, p.FatGoalG,
		p.CarbsGoalG, p.WeeklyWeightChangeKg, p.ComputedAt.UTC(),
	)
	return err
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func fromNullInt(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}
