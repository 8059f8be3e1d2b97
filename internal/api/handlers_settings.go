package api

import (
	"net/http"

	"github.com/ecosystem-hub/internal/service"
	"github.com/ecosystem-hub/internal/types"
)

// updateSettingsRequest carries optional preference changes
type updateSettingsRequest struct {
	Theme          *string `json:"theme"`
	Notifications  *bool   `json:"notifications"`
	Biometrics     *bool   `json:"biometrics"`
	Language       *string `json:"language"`
	GlassIntensity *string `json:"glassIntensity"`
}

// handleGetSettings handles GET /api/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.hub.Settings().Get())
}

// handleUpdateSettings handles PUT /api/settings. Fields are applied in
// order and the first invalid one stops the update.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	ctx := r.Context()
	settings := s.hub.Settings()

	if req.Theme != nil {
		if err := settings.SetTheme(ctx, types.Theme(*req.Theme)); err != nil {
			respondServiceError(w, err)
			return
		}
	}
	if req.Notifications != nil {
		settings.SetNotifications(ctx, *req.Notifications)
	}
	if req.Biometrics != nil {
		settings.SetBiometrics(ctx, *req.Biometrics)
	}
	if req.Language != nil {
		if err := settings.SetLanguage(ctx, *req.Language); err != nil {
			respondServiceError(w, err)
			return
		}
	}
	if req.GlassIntensity != nil {
		if err := settings.SetGlassIntensity(ctx, types.GlassIntensity(*req.GlassIntensity)); err != nil {
			respondServiceError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, settings.Get())
}

// handleGetLanguages handles GET /api/settings/languages
func (s *Server) handleGetLanguages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, service.SupportedLanguages())
}

// handleSetPassword handles PUT /api/settings/password
func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := s.hub.Settings().SetPassword(r.Context(), req.Password, req.ConfirmPassword); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"hasPassword": true})
}

// handleVerifyPassword handles POST /api/settings/password/verify
func (s *Server) handleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"valid": s.hub.Settings().VerifyPassword(req.Password)})
}
