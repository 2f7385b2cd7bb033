package server

import (
	"net/http"
	"strconv"

	"quizbuzzer/internal/analytics"
	"quizbuzzer/internal/rooms"

	"github.com/rs/zerolog/log"
)

const maxAnalyticsLimit = 100

func queryLimit(r *http.Request, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return fallback
	}
	return min(n, maxAnalyticsLimit)
}

func (s *Server) analytics(w http.ResponseWriter) *analytics.Queries {
	if s.DB == nil {
		http.Error(w, "Analytics requires a database connection", http.StatusServiceUnavailable)
		return nil
	}
	return analytics.NewQueries(s.DB)
}

func (s *Server) handleAnalyticsLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := s.analytics(w)
	if q == nil {
		return
	}
	category := r.URL.Query().Get("cat")
	if category == "" {
		category = "correct"
	}

	entries, err := q.GetLeaderboard(r.Context(), category, queryLimit(r, 10))
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("leaderboard query failed")
		http.Error(w, "Error loading leaderboard", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "entries": entries})
}

func (s *Server) handleAnalyticsRoom(w http.ResponseWriter, r *http.Request) {
	q := s.analytics(w)
	if q == nil {
		return
	}
	code := rooms.NormalizeCode(r.PathValue("code"))
	history, err := q.GetRoomHistory(r.Context(), code, queryLimit(r, 50))
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("room history query failed")
		http.Error(w, "Error loading room history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAnalyticsPlayer(w http.ResponseWriter, r *http.Request) {
	q := s.analytics(w)
	if q == nil {
		return
	}
	name := r.PathValue("name")
	stats, err := q.GetPlayerStats(r.Context(), name)
	if err != nil {
		log.Error().Err(err).Str("player", name).Msg("player stats query failed")
		http.Error(w, "Error loading player stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
