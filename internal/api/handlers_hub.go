package api

import "net/http"

// handleGetLaunch handles GET /api/launch
func (s *Server) handleGetLaunch(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{
		"hasLaunched": s.hub.Launch().HasLaunched(r.Context()),
	})
}

// handleFirstLaunch handles POST /api/launch - true only on the very first call
func (s *Server) handleFirstLaunch(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{
		"firstLaunch": s.hub.Launch().FirstLaunch(r.Context()),
	})
}

// handleClearCache handles POST /api/cache/clear
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.hub.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleGetPoints handles GET /api/points
func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.hub.Points().Profile())
}

// handleAddPoints handles POST /api/points
func (s *Server) handleAddPoints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int    `json:"amount"`
		Action string `json:"action"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	result, err := s.hub.Points().AddPoints(r.Context(), req.Amount, req.Action)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleGetAwardTotals handles GET /api/points/totals
func (s *Server) handleGetAwardTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.hub.AwardTotals(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}
