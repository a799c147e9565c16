package handler

import (
	"net/http"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/middleware"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/service"
	"github.com/edworkspace8869-ctrl/personal-rules-base/pkg/response"

	"github.com/gin-gonic/gin"
)

type SweepHandler struct {
	sweepService service.SweepService
	statsService service.StatsService
}

func NewSweepHandler(sweepService service.SweepService, statsService service.StatsService) *SweepHandler {
	return &SweepHandler{sweepService: sweepService, statsService: statsService}
}

func (h *SweepHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.POST("/sweep", h.Sweep)
		api.GET("/stats", h.Stats)
	}
}

// Sweep runs the status sweep on demand — the UI calls this once per session
// before the first render, in addition to the daily scheduled run
// @Summary Run the status sweep
// @Tags sweep
// @Success 200 {object} response.Response
// @Router /api/sweep [post]
func (h *SweepHandler) Sweep(c *gin.Context) {
	changed, err := h.sweepService.Sweep(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"changed": changed}))
}

// Stats returns aggregate counts over the rule set
// @Summary Rule set statistics
// @Tags sweep
// @Success 200 {object} response.Response
// @Router /api/stats [get]
func (h *SweepHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.GetRuleStats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
