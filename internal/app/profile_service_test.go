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

func fullUpdate() app.ProfileUpdate {
	return app.ProfileUpdate{
		Gender:          ptr("Male"),
		AgeYears:        ptr(25),
		HeightCm:        ptr(175),
		WeightKg:        ptr(70),
		DesiredWeightKg: ptr(65),
		ActivityLevel:   ptr("Light"),
		Conditions:      ptr([]string{"asthma", " Asthma "}),
	}
}

func newProfileService(store *profileStore) *app.ProfileService {
	svc := app.NewProfileService(store, store)
	svc.SetNow(fixedClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)))
	return svc
}

func TestProfileService_GetProfile_Empty(t *testing.T) {
	svc := newProfileService(newProfileStore())
	p, err := svc.GetProfile(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != 4 || p.OnboardingComplete || len(p.Missing()) != 6 {
		t.Fatalf("unexpected empty profile: %+v", p)
	}
}

func TestProfileService_UpdateProfile_Partial(t *testing.T) {
	store := newProfileStore()
	svc := newProfileService(store)
	ctx := context.Background()

	if _, _, err := svc.UpdateProfile(ctx, 1, app.ProfileUpdate{Gender: ptr("FEMALE")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, plan, err := svc.UpdateProfile(ctx, 1, app.ProfileUpdate{AgeYears: ptr(30)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan != nil {
		t.Fatal("no plan expected before onboarding completes")
	}
	if p.Gender == nil || *p.Gender != "female" {
		t.Errorf("gender = %v; want female", p.Gender)
	}
	if p.AgeYears == nil || *p.AgeYears != 30 {
		t.Errorf("age = %v; want 30", p.AgeYears)
	}
	if len(store.plans) != 0 {
		t.Error("plan must not be stored for an incomplete onboarding")
	}
}

func TestProfileService_UpdateProfile_Invalid(t *testing.T) {
	store := newProfileStore()
	svc := newProfileService(store)

	tests := []struct {
		name   string
		update app.ProfileUpdate
		field  string
	}{
		{"gender", app.ProfileUpdate{Gender: ptr("other")}, "gender"},
		{"age", app.ProfileUpdate{AgeYears: ptr(5)}, "ageYears"},
		{"height", app.ProfileUpdate{HeightCm: ptr(300)}, "heightCm"},
		{"weight", app.ProfileUpdate{WeightKg: ptr(10)}, "weightKg"},
		{"desired", app.ProfileUpdate{DesiredWeightKg: ptr(400)}, "desiredWeightKg"},
		{"activity", app.ProfileUpdate{ActivityLevel: ptr("athlete")}, "activityLevel"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.UpdateProfile(context.Background(), 1, tc.update)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected validation error on %s, got %v", tc.field, err)
			}
		})
	}
	if len(store.profiles) != 0 {
		t.Fatal("invalid updates must not be saved")
	}
}

func TestProfileService_CompleteOnboarding_Incomplete(t *testing.T) {
	svc := newProfileService(newProfileStore())
	ctx := context.Background()
	if _, _, err := svc.UpdateProfile(ctx, 1, app.ProfileUpdate{Gender: ptr("male")}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CompleteOnboarding(ctx, 1)
	if !errors.Is(err, domain.ErrIncompleteProfile) {
		t.Fatalf("expected ErrIncompleteProfile, got %v", err)
	}
}

func TestProfileService_CompleteOnboarding(t *testing.T) {
	store := newProfileStore()
	svc := newProfileService(store)
	ctx := context.Background()

	if _, _, err := svc.UpdateProfile(ctx, 1, fullUpdate()); err != nil {
		t.Fatal(err)
	}
	plan, err := svc.CompleteOnboarding(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10*70 + 6.25*175 - 5*25 + 5 = 1673.75; * 1.375 = 2301
	if plan.TDEE != 2301 || plan.DailyCalorieGoal != 1801 {
		t.Fatalf("plan = %+v", plan.Plan)
	}
	if plan.Direction != nutrition.DirectionLose {
		t.Errorf("direction = %s", plan.Direction)
	}
	if !store.profiles[1].OnboardingComplete {
		t.Error("onboarding flag not persisted")
	}
	if got := store.profiles[1].Conditions; len(got) != 1 || got[0] != "asthma" {
		t.Errorf("conditions = %v", got)
	}

	stored, err := svc.GetPlan(ctx, 1)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.Plan != plan.Plan {
		t.Errorf("stored plan %+v differs from returned %+v", stored.Plan, plan.Plan)
	}
}

func TestProfileService_UpdateAfterOnboarding_Recomputes(t *testing.T) {
	store := newProfileStore()
	svc := newProfileService(store)
	ctx := context.Background()
	if _, _, err := svc.UpdateProfile(ctx, 1, fullUpdate()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteOnboarding(ctx, 1); err != nil {
		t.Fatal(err)
	}

	_, plan, err := svc.UpdateProfile(ctx, 1, app.ProfileUpdate{DesiredWeightKg: ptr(80)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan == nil || plan.Direction != nutrition.DirectionGain || plan.DailyCalorieGoal != 2801 {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestProfileService_GetPlan_NotFound(t *testing.T) {
	svc := newProfileService(newProfileStore())
	if _, err := svc.GetPlan(context.Background(), 1); !errors.Is(err, app.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestProfileService_SyncWeight(t *testing.T) {
	store := newProfileStore()
	svc := newProfileService(store)
	ctx := context.Background()
	if _, _, err := svc.UpdateProfile(ctx, 1, fullUpdate()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteOnboarding(ctx, 1); err != nil {
		t.Fatal(err)
	}

	plan, err := svc.SyncWeight(ctx, 1, 65.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *store.profiles[1].WeightKg != 66 {
		t.Errorf("weight = %d; want 66", *store.profiles[1].WeightKg)
	}
	// 10*66 + 1093.75 - 125 + 5 = 1633.75; * 1.375 = 2246
	if plan == nil || plan.TDEE != 2246 || plan.DailyCalorieGoal != 1746 {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestProfileService_SyncWeight_OutOfRangeIgnored(t *testing.T) {
	store := newProfileStore()
	svc := newProfileService(store)
	plan, err := svc.SyncWeight(context.Background(), 1, 500)
	if err != nil || plan != nil {
		t.Fatalf("plan=%v err=%v", plan, err)
	}
	if len(store.profiles) != 0 {
		t.Fatal("out of range weight must not touch the profile")
	}
}

func TestProfileService_SyncWeight_BeforeOnboarding(t *testing.T) {
	store := newProfileStore()
	svc := newProfileService(store)
	plan, err := svc.SyncWeight(context.Background(), 1, 80)
	if err != nil || plan != nil {
		t.Fatalf("plan=%v err=%v", plan, err)
	}
	if *store.profiles[1].WeightKg != 80 {
		t.Fatal("weight not synced")
	}
}

func TestProfileService_SaveError(t *testing.T) {
	store := newProfileStore()
	store.saveErr = errors.New("db down")
	svc := newProfileService(store)
	_, _, err := svc.UpdateProfile(context.Background(), 1, app.ProfileUpdate{AgeYears: ptr(30)})
	if !errors.Is(err, store.saveErr) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}

func TestPreviewPlan(t *testing.T) {
	d := &domain.ProfileDraft{
		Gender:          ptr("female"),
		AgeYears:        ptr(30),
		HeightCm:        ptr(165),
		WeightKg:        ptr(60),
		DesiredWeightKg: ptr(60),
		ActivityLevel:   ptr("moderate"),
	}
	plan, err := app.PreviewPlan(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 600 + 1031.25 - 150 - 161 = 1320.25; * 1.55 = 2046
	if plan.TDEE != 2046 || plan.DailyCalorieGoal != 2046 || plan.WeeklyWeightChangeKg != 0 {
		t.Fatalf("plan = %+v", plan)
	}

	d.ActivityLevel = nil
	if _, err := app.PreviewPlan(d); !errors.Is(err, domain.ErrIncompleteProfile) {
		t.Fatalf("expected ErrIncompleteProfile, got %v", err)
	}
}

func onboarded(t *testing.T, store *profileStore) *app.ProfileService {
	t.Helper()
	svc := newProfileService(store)
	ctx := context.Background()
	if _, _, err := svc.UpdateProfile(ctx, 1, fullUpdate()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteOnboarding(ctx, 1); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestProfileService_PlanFailureKeepsProfile(t *testing.T) {
	store := newProfileStore()
	svc := onboarded(t, store)
	before := store.plans[1].Plan

	store.failPlans = 1
	_, _, err := svc.UpdateProfile(context.Background(), 1, app.ProfileUpdate{WeightKg: ptr(66)})
	if !errors.Is(err, errPlansDown) {
		t.Fatalf("expected plan error, got %v", err)
	}
	if *store.profiles[1].WeightKg != 70 {
		t.Errorf("weight = %d; want 70 after failed plan write", *store.profiles[1].WeightKg)
	}
	if store.plans[1].Plan != before {
		t.Error("plan changed after failed write")
	}
}

func TestProfileService_SyncWeight_RepairsStalePlan(t *testing.T) {
	store := newProfileStore()
	svc := onboarded(t, store)
	store.plans[1].DailyCalorieGoal = 1234

	plan, err := svc.SyncWeight(context.Background(), 1, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan == nil || plan.DailyCalorieGoal != 1801 {
		t.Fatalf("plan = %+v; want goal 1801", plan)
	}
	if store.plans[1].DailyCalorieGoal != 1801 {
		t.Errorf("stored goal = %d; want 1801", store.plans[1].DailyCalorieGoal)
	}
}

func TestProfileService_SyncWeight_UnchangedSkips(t *testing.T) {
	store := newProfileStore()
	svc := onboarded(t, store)
	computed := store.plans[1].ComputedAt

	store.failPlans = 1
	plan, err := svc.SyncWeight(context.Background(), 1, 70.2)
	if err != nil || plan != nil {
		t.Fatalf("plan=%v err=%v; want no write", plan, err)
	}
	if store.failPlans != 1 || !store.plans[1].ComputedAt.Equal(computed) {
		t.Fatal("current plan must not be rewritten")
	}
}
