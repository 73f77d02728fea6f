package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-charts/internal/charts"
	"github.com/bobmcallan/vire-charts/internal/common"
)

// ChartQuerier resolves a symbol (or "all") to its chart index.
type ChartQuerier interface {
	Query(symbol string) (interface{}, error)
}

// ChartsHandler serves GET /charts/{symbol}.
type ChartsHandler struct {
	logger        *common.Logger
	charts        ChartQuerier
	invalidStatus int
}

// NewChartsHandler creates a charts handler. invalidStatus is the HTTP status
// written alongside the invalid symbol payload.
func NewChartsHandler(logger *common.Logger, querier ChartQuerier, invalidStatus int) *ChartsHandler {
	if invalidStatus == 0 {
		invalidStatus = http.StatusOK
	}
	return &ChartsHandler{
		logger:        logger,
		charts:        querier,
		invalidStatus: invalidStatus,
	}
}

// ServeHTTP handles GET /charts/{symbol}.
func (h *ChartsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbol := r.PathValue("symbol")
	if symbol == "" {
		symbol = strings.Trim(strings.TrimPrefix(r.URL.Path, "/charts/"), "/")
	}

	result, err := h.charts.Query(symbol)
	if err != nil {
		if errors.Is(err, charts.ErrInvalidSymbol) {
			if h.logger != nil {
				h.logger.Debug().Str("symbol", symbol).Msg("invalid symbol requested")
			}
			WriteError(w, h.invalidStatus, "Invalid symbol")
			return
		}
		if h.logger != nil {
			h.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to build chart index")
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
