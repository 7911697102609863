// Package nutrition computes daily calorie budgets and macronutrient targets
// from a user's biometric profile.
package nutrition

import "strings"

// Gender selects the Mifflin-St Jeor constant.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender matches case-insensitively. Anything other than "male" uses the
// female formula.
func ParseGender(s string) Gender {
	if strings.EqualFold(strings.TrimSpace(s), string(GenderMale)) {
		return GenderMale
	}
	return GenderFemale
}

// ActivityLevel describes how much exercise the user does per week.
type ActivityLevel string

const (
	ActivitySedentary       ActivityLevel = "sedentary"
	ActivityLight           ActivityLevel = "light"
	ActivityModerate        ActivityLevel = "moderate"
	ActivityVeryActive      ActivityLevel = "very_active"
	ActivityExtremelyActive ActivityLevel = "extremely_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:       1.2,
	ActivityLight:           1.375,
	ActivityModerate:        1.55,
	ActivityVeryActive:      1.725,
	ActivityExtremelyActive: 1.9,
}

// ActivityLevels lists the recognised levels from least to most active.
func ActivityLevels() []ActivityLevel {
	return []ActivityLevel{
		ActivitySedentary,
		ActivityLight,
		ActivityModerate,
		ActivityVeryActive,
		ActivityExtremelyActive,
	}
}

// ParseActivityLevel matches case-insensitively and falls back to moderate.
func ParseActivityLevel(s string) ActivityLevel {
	level := ActivityLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := activityMultipliers[level]; ok {
		return level
	}
	return ActivityModerate
}

// Known reports whether the level is one of the five recognised levels.
func (a ActivityLevel) Known() bool {
	_, ok := activityMultipliers[a]
	return ok
}

// Multiplier returns the TDEE factor for the level, 1.55 when unrecognised.
func (a ActivityLevel) Multiplier() float64 {
	if m, ok := activityMultipliers[a]; ok {
		return m
	}
	return activityMultipliers[ActivityModerate]
}

// ActivityMultiplier looks up the TDEE factor for a raw level string.
func ActivityMultiplier(level string) float64 {
	return ParseActivityLevel(level).Multiplier()
}

const (
	goalAdjustmentKcal = 500
	minDailyCalories   = 1200
	kcalPerKgFat       = 7700.0

	proteinShare = 0.30
	fatShare     = 0.30
	carbsShare   = 0.40

	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
	kcalPerGramCarbs   = 4
)

// Profile is a complete set of planner inputs. Range validation is the
// caller's job.
type Profile struct {
	Gender          Gender        `json:"gender"`
	WeightKg        int           `json:"weightKg"`
	HeightCm        int           `json:"heightCm"`
	AgeYears        int           `json:"ageYears"`
	DesiredWeightKg int           `json:"desiredWeightKg"`
	ActivityLevel   ActivityLevel `json:"activityLevel"`
}

// Macros holds daily macronutrient targets in grams.
type Macros struct {
	ProteinG int `json:"proteinG"`
	FatG     int `json:"fatG"`
	CarbsG   int `json:"carbsG"`
}

// Plan is the computed daily nutrition budget.
//
// WeeklyWeightChangeKg is (TDEE - goal) * 7 / 7700 with its arithmetic sign
// kept: a deficit yields a positive number. Use ProjectedWeeklyChangeKg for a
// value where negative means loss.
type Plan struct {
	BMR                  int     `json:"bmr"`
	TDEE                 int     `json:"tdee"`
	DailyCalorieGoal     int     `json:"dailyCalorieGoal"`
	ProteinGoalG         int     `json:"proteinGoalG"`
	FatGoalG             int     `json:"fatGoalG"`
	CarbsGoalG           int     `json:"carbsGoalG"`
	WeeklyWeightChangeKg float64 `json:"weeklyWeightChangeKg"`
}

// ProjectedWeeklyChangeKg returns the expected body-weight change per week,
// negative while losing and positive while gaining.
func (p Plan) ProjectedWeeklyChangeKg() float64 {
	if p.WeeklyWeightChangeKg == 0 {
		return 0
	}
	return -p.WeeklyWeightChangeKg
}

// Macros returns the plan's macro targets.
func (p Plan) Macros() Macros {
	return Macros{ProteinG: p.ProteinGoalG, FatG: p.FatGoalG, CarbsG: p.CarbsGoalG}
}

// Direction is the weight goal relative to the current weight.
type Direction string

const (
	DirectionLose     Direction = "lose"
	DirectionGain     Direction = "gain"
	DirectionMaintain Direction = "maintain"
)

// DirectionOf classifies a goal from current and desired weights.
func DirectionOf(currentKg, desiredKg int) Direction {
	switch {
	case desiredKg < currentKg:
		return DirectionLose
	case desiredKg > currentKg:
		return DirectionGain
	default:
		return DirectionMaintain
	}
}

// CalculateBMR returns the Mifflin-St Jeor basal metabolic rate in kcal/day.
func CalculateBMR(gender Gender, weightKg, heightCm, ageYears int) float64 {
	base := 10*float64(weightKg) + 6.25*float64(heightCm) - 5*float64(ageYears)
	if gender == GenderMale {
		return base + 5
	}
	return base - 161
}

// CalculateTDEE returns BMR times the activity multiplier, truncated.
func CalculateTDEE(gender Gender, weightKg, heightCm, ageYears int, level ActivityLevel) int {
	return int(CalculateBMR(gender, weightKg, heightCm, ageYears) * level.Multiplier())
}

// CalculateDailyCalorieGoal applies a fixed 500 kcal deficit or surplus.
// Losing never goes below 1200 kcal.
func CalculateDailyCalorieGoal(currentWeightKg, desiredWeightKg, tdee int) int {
	switch DirectionOf(currentWeightKg, desiredWeightKg) {
	case DirectionLose:
		return max(tdee-goalAdjustmentKcal, minDailyCalories)
	case DirectionGain:
		return tdee + goalAdjustmentKcal
	default:
		return tdee
	}
}

// CalculateMacros splits calories 30/30/40 into protein, fat and carbs grams.
// Each value is truncated on its own, so their calories may not add back up
// to totalCalories.
func CalculateMacros(totalCalories int) Macros {
	kcal := float64(totalCalories)
	return Macros{
		ProteinG: int(kcal * proteinShare / kcalPerGramProtein),
		FatG:     int(kcal * fatShare / kcalPerGramFat),
		CarbsG:   int(kcal * carbsShare / kcalPerGramCarbs),
	}
}

// CalculatePlan runs BMR, TDEE, calorie goal and macros in order.
func CalculatePlan(p Profile) Plan {
	bmr := CalculateBMR(p.Gender, p.WeightKg, p.HeightCm, p.AgeYears)
	tdee := int(bmr * p.ActivityLevel.Multiplier())
	goal := CalculateDailyCalorieGoal(p.WeightKg, p.DesiredWeightKg, tdee)
	macros := CalculateMacros(goal)

	return Plan{
		BMR:                  int(bmr),
		TDEE:                 tdee,
		DailyCalorieGoal:     goal,
		ProteinGoalG:         macros.ProteinG,
		FatGoalG:             macros.FatG,
		CarbsGoalG:           macros.CarbsG,
		WeeklyWeightChangeKg: float64((tdee-goal)*7) / kcalPerKgFat,
	}
}
