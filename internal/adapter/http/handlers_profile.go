package adapthttp

import (
	"net/http"

	"calories/internal/app"
	"calories/internal/domain"
	"calories/internal/nutrition"
)

func planView(p nutrition.Plan) map[string]any {
	return map[string]any{
		"bmr":                     p.BMR,
		"tdee":                    p.TDEE,
		"dailyCalorieGoal":        p.DailyCalorieGoal,
		"macros":                  p.Macros(),
		"weeklyWeightChangeKg":    p.WeeklyWeightChangeKg,
		"projectedWeeklyChangeKg": p.ProjectedWeeklyChangeKg(),
	}
}

func storedPlanView(p *domain.StoredPlan) map[string]any {
	if p == nil {
		return nil
	}
	v := planView(p.Plan)
	v["direction"] = p.Direction
	v["computedAt"] = p.ComputedAt
	return v
}

func (s *Server) planStored(p *domain.StoredPlan) {
	if p != nil && s.metrics != nil {
		s.metrics.PlanComputed(string(p.Direction))
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		p, err := s.profile.GetProfile(ctx, user.ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": p, "missing": p.Missing()})

	case http.MethodPatch:
		var body app.ProfileUpdate
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		p, plan, err := s.profile.UpdateProfile(ctx, user.ID, body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.planStored(plan)
		writeJSON(w, http.StatusOK, map[string]any{
			"profile": p,
			"missing": p.Missing(),
			"plan":    storedPlanView(plan),
		})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleProfileComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	plan, err := s.profile.CompleteOnboarding(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.planStored(plan)
	writeJSON(w, http.StatusOK, map[string]any{"plan": storedPlanView(plan)})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	plan, err := s.profile.GetPlan(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": storedPlanView(plan)})
}

func (s *Server) handlePlanPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body struct {
		Gender          *string `json:"gender"`
		AgeYears        *int    `json:"ageYears"`
		HeightCm        *int    `json:"heightCm"`
		WeightKg        *int    `json:"weightKg"`
		DesiredWeightKg *int    `json:"desiredWeightKg"`
		ActivityLevel   *string `json:"activityLevel"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	plan, err := app.PreviewPlan(&domain.ProfileDraft{
		Gender:          body.Gender,
		AgeYears:        body.AgeYears,
		HeightCm:        body.HeightCm,
		WeightKg:        body.WeightKg,
		DesiredWeightKg: body.DesiredWeightKg,
		ActivityLevel:   body.ActivityLevel,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	v := planView(plan)
	v["direction"] = nutrition.DirectionOf(*body.WeightKg, *body.DesiredWeightKg)
	writeJSON(w, http.StatusOK, map[string]any{"plan": v})
}
