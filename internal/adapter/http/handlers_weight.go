package adapthttp

import (
	"net/http"

	"calories/internal/domain"
	"calories/internal/logging"

	"go.uber.org/zap"
)

func (s *Server) handleWeightToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		entry, today, err := s.weight.GetTodayWeight(ctx, user.ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"today": today, "entry": entry})

	case http.MethodPut:
		var body struct {
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		res, err := s.weight.RecordWeight(ctx, user.ID, body.Value, body.Unit)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if s.metrics != nil {
			s.metrics.WeightLogged()
		}
		if res.SyncErr != nil {
			logging.FromContext(ctx).Warn("profile weight not synced",
				zap.Int64("user_id", user.ID), zap.Error(res.SyncErr))
		}
		s.planStored(res.Plan)
		writeJSON(w, http.StatusOK, map[string]any{
			"today":         res.Today,
			"entry":         res.Entry,
			"profileSynced": res.SyncErr == nil,
			"plan":          storedPlanView(res.Plan),
		})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleWeightRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit := intQuery(r, "limit", 14)
	if limit > 200 {
		limit = 200
	}
	items, err := s.weight.ListRecent(r.Context(), userFromContext(r).ID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.WeightEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleWeightUndoLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	deleted, entry, today, err := s.weight.UndoLast(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted, "today": today, "entry": entry})
}
