package api

import (
	"net/http"

	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/service"
	"github.com/gorilla/mux"
)

// TabsResponse lists the open tabs and the active one
type TabsResponse struct {
	Tabs     []models.Tab `json:"tabs"`
	ActiveID string       `json:"activeId"`
}

type pageRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (s *Server) tabsResponse() TabsResponse {
	browser := s.hub.Browser()
	return TabsResponse{Tabs: browser.Tabs(), ActiveID: browser.ActiveTab().ID}
}

// handleGetTabs handles GET /api/browser/tabs
func (s *Server) handleGetTabs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.tabsResponse())
}

// handleAddTab handles POST /api/browser/tabs
func (s *Server) handleAddTab(w http.ResponseWriter, r *http.Request) {
	s.hub.Browser().AddTab()
	respondJSON(w, http.StatusCreated, s.tabsResponse())
}

// handleCloseTab handles DELETE /api/browser/tabs/{id}
func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.Browser().CloseTab(mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.tabsResponse())
}

// handleActivateTab handles POST /api/browser/tabs/{id}/activate
func (s *Server) handleActivateTab(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.Browser().ActivateTab(mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.tabsResponse())
}

// handleNavigate handles POST /api/browser/navigate
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input string `json:"input"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	tab, err := s.hub.Browser().Navigate(r.Context(), req.Input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tab)
}

// handleRecordVisit handles POST /api/browser/visits
func (s *Server) handleRecordVisit(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	tab, err := s.hub.Browser().RecordVisit(r.Context(), req.URL, req.Title)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tab)
}

// handleGetBookmarks handles GET /api/browser/bookmarks
func (s *Server) handleGetBookmarks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.hub.Browser().Bookmarks())
}

// handleToggleBookmark handles POST /api/browser/bookmarks
func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	bookmarked, err := s.hub.Browser().ToggleBookmark(r.Context(), req.URL, req.Title)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}

// handleRemoveBookmark handles DELETE /api/browser/bookmarks?url=...
func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "url query parameter is required", nil)
		return
	}
	s.hub.Browser().RemoveBookmark(r.Context(), url)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetHistory handles GET /api/browser/history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.hub.Browser().History())
}

// handleClearHistory handles DELETE /api/browser/history
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.hub.Browser().ClearHistory(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleGetQuickLinks handles GET /api/browser/quicklinks
func (s *Server) handleGetQuickLinks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, service.QuickLinks())
}
