package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushq/coordination-api/internal/service"
	"github.com/campushq/coordination-api/pkg/response"
)

// SystemHandler exposes operational endpoints for administrators.
type SystemHandler struct {
	metrics *service.MetricsService
}

// NewSystemHandler constructs the handler.
func NewSystemHandler(metrics *service.MetricsService) *SystemHandler {
	return &SystemHandler{metrics: metrics}
}

// Metrics godoc
// @Summary Aggregated runtime metrics
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /system/metrics [get]
func (h *SystemHandler) Metrics(c *gin.Context) {
	response.OK(c, h.metrics.Snapshot())
}
