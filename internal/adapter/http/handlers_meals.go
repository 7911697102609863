package adapthttp

import (
	"net/http"

	"calories/internal/domain"
)

func (s *Server) handleMeals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body struct {
		Name     string `json:"name"`
		Calories int    `json:"calories"`
		ProteinG int    `json:"proteinG"`
		FatG     int    `json:"fatG"`
		CarbsG   int    `json:"carbsG"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, totals, today, err := s.meals.RecordMeal(r.Context(), userFromContext(r).ID, domain.MealEntry{
		Name:     body.Name,
		Calories: body.Calories,
		ProteinG: body.ProteinG,
		FatG:     body.FatG,
		CarbsG:   body.CarbsG,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.MealLogged()
	}
	writeJSON(w, http.StatusOK, map[string]any{"today": today, "entry": entry, "totals": totals})
}

func (s *Server) handleMealsToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	totals, today, err := s.meals.GetTodayTotals(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"today": today, "totals": totals})
}

func (s *Server) handleMealsRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit := intQuery(r, "limit", 20)
	if limit > 200 {
		limit = 200
	}
	items, err := s.meals.ListRecent(r.Context(), userFromContext(r).ID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.MealEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleMealsUndoLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	deleted, totals, today, err := s.meals.UndoLast(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted, "today": today, "totals": totals})
}
