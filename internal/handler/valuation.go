package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"carvalue/internal/model"
	"carvalue/internal/service"

	"github.com/gin-gonic/gin"
)

// HistoryReader lists past valuations
type HistoryReader interface {
	RecentValuations(ctx context.Context, limit int) ([]model.ValuationRecord, error)
}

// ValuationHandler handles the form-based valuation endpoints
type ValuationHandler struct {
	valuations *service.ValuationService
	history    HistoryReader
	now        func() time.Time
}

// NewValuationHandler creates a new valuation handler. history may be nil
// when no database is configured.
func NewValuationHandler(valuations *service.ValuationService, history HistoryReader) *ValuationHandler {
	return &ValuationHandler{
		valuations: valuations,
		history:    history,
		now:        time.Now,
	}
}

// Estimate handles POST /api/v1/estimate
func (h *ValuationHandler) Estimate(c *gin.Context) {
	vehicle, ok := h.bindForm(c)
	if !ok {
		return
	}

	valuation := h.valuations.Estimate(c.Request.Context(), vehicle, service.SourceForm)
	c.JSON(http.StatusOK, model.EstimateResponse{
		Valuation: valuation,
		Vehicle:   vehicle,
	})
}

// EstimateStream handles POST /api/v1/estimate/stream - SSE streaming valuation
func (h *ValuationHandler) EstimateStream(c *gin.Context) {
	vehicle, ok := h.bindForm(c)
	if !ok {
		return
	}

	flusher, ok := startSSE(c)
	if !ok {
		return
	}

	sendSSE(c, "start", gin.H{"vehicle": vehicle, "provider": h.valuations.ProviderName()})
	flusher.Flush()

	valuation := h.valuations.EstimateStream(c.Request.Context(), vehicle, service.SourceForm, func(chunk string) error {
		sendSSE(c, "chunk", gin.H{"content": chunk})
		flusher.Flush()
		return nil
	})

	sendSSE(c, "result", model.EstimateResponse{Valuation: valuation, Vehicle: vehicle})
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// History handles GET /api/v1/valuations
func (h *ValuationHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Valuation history is not enabled"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	records, err := h.history.RecentValuations(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load valuations: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valuations": records, "count": len(records)})
}

func (h *ValuationHandler) bindForm(c *gin.Context) (model.VehicleAttributes, bool) {
	var req model.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return model.VehicleAttributes{}, false
	}

	vehicle, err := service.ValidateForm(req, h.now().Year())
	if err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verrs})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return model.VehicleAttributes{}, false
	}
	return vehicle, true
}
