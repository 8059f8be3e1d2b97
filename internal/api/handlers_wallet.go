package api

import (
	"net/http"

	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/service"
)

// CreateWalletResponse returns the new phrase once; it is never shown again
// by the API.
type CreateWalletResponse struct {
	Mnemonic string            `json:"mnemonic"`
	Wallet   models.WalletView `json:"wallet"`
}

// handleGetWallet handles GET /api/wallet
func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.hub.Wallet().View())
}

// handleCreateWallet handles POST /api/wallet
func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	mnemonic, err := s.hub.CreateWallet(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, CreateWalletResponse{
		Mnemonic: mnemonic,
		Wallet:   s.hub.Wallet().View(),
	})
}

// handleImportWallet handles POST /api/wallet/import
func (s *Server) handleImportWallet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mnemonic string `json:"mnemonic"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if _, err := s.hub.ImportWallet(r.Context(), req.Mnemonic); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.hub.Wallet().View())
}

// handleDeleteWallet handles DELETE /api/wallet
func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	s.hub.Wallet().Delete(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleRefreshWallet handles POST /api/wallet/refresh
func (s *Server) handleRefreshWallet(w http.ResponseWriter, r *http.Request) {
	view, err := s.hub.RefreshWallet(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// handleSend handles POST /api/wallet/send
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req service.SendInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	receipt, err := s.hub.SendTransaction(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}
