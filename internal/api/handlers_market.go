package api

import (
	"net/http"

	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/service"
)

// MarketResponse pairs raw statistics with their display strings
type MarketResponse struct {
	Stats     models.MarketStats `json:"stats"`
	Formatted map[string]string  `json:"formatted"`
}

func marketResponse(stats models.MarketStats) MarketResponse {
	return MarketResponse{
		Stats: stats,
		Formatted: map[string]string{
			"price":             service.FormatUSD(stats.Price),
			"marketCap":         service.FormatUSD(stats.MarketCap),
			"volume24h":         service.FormatUSD(stats.Volume24h),
			"totalSupply":       service.FormatSupply(stats.TotalSupply),
			"circulatingSupply": service.FormatSupply(stats.CirculatingSupply),
			"burnedSupply":      service.FormatSupply(stats.BurnedSupply),
		},
	}
}

// handleGetMarket handles GET /api/market
func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, marketResponse(s.hub.Market().Stats()))
}

// handleRefreshMarket handles POST /api/market/refresh
func (s *Server) handleRefreshMarket(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, marketResponse(s.hub.RefreshMarket(r.Context())))
}

// handleGetDApps handles GET /api/dapps
func (s *Server) handleGetDApps(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, service.DApps())
}

// handleVisitDApp handles POST /api/dapps/visit
func (s *Server) handleVisitDApp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	dapp, err := s.hub.VisitDApp(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dapp)
}
