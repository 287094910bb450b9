package api

import (
	"net/http"
	"strconv"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/services"
)

// InsightsHandler serves analytics, stats and the AI circuit status.
type InsightsHandler struct {
	authn
	analytics   *services.AnalyticsService
	stats       *services.StatsService
	suggestions *services.SuggestionsService
}

func NewInsightsHandler(analytics *services.AnalyticsService, stats *services.StatsService, suggestions *services.SuggestionsService, authorizer auth.Authorizer) *InsightsHandler {
	return &InsightsHandler{authn: authn{authorizer}, analytics: analytics, stats: stats, suggestions: suggestions}
}

// ListAnalytics GET /api/analytics?days=30
func (h *InsightsHandler) ListAnalytics(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	days := services.DefaultAnalyticsDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 366 {
			respond.WriteBadRequest(w, "days must be an integer between 1 and 366")
			return
		}
		days = n
	}
	entries, err := h.analytics.List(r.Context(), actor.UserID, days)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"analytics": entries, "count": len(entries)})
}

// RecordAnalytics POST /api/analytics
func (h *InsightsHandler) RecordAnalytics(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in services.AnalyticsInput
	if !decode(w, r, &in) {
		return
	}
	e, err := h.analytics.Record(r.Context(), actor.UserID, in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// GetStats GET /api/stats
func (h *InsightsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	st, err := h.stats.Calculate(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, st)
}

// AIStatus GET /api/ai/status
func (h *InsightsHandler) AIStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.suggestions.Status())
}

// AIReset POST /api/ai/reset
func (h *InsightsHandler) AIReset(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.suggestions.Reset())
}
