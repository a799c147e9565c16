package handler

import (
	"net/http"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/middleware"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/service"
	"github.com/edworkspace8869-ctrl/personal-rules-base/pkg/response"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	systemService service.SystemService
}

func NewSystemHandler(systemService service.SystemService) *SystemHandler {
	return &SystemHandler{systemService: systemService}
}

func (h *SystemHandler) RegisterRoutes(router *gin.RouterGroup) {
	systems := router.Group("/api/systems")
	systems.Use(middleware.RequireAuth())
	{
		systems.GET("", h.ListSystems)
		systems.POST("", h.CreateSystem)
		systems.GET("/:name", h.GetSystem)
		systems.PUT("/:name", h.UpdateSystem)
		systems.DELETE("/:name", h.DeleteSystem)
		systems.POST("/repair-ids", h.RepairSystemIDs)
	}
}

// ListSystems returns all systems
// @Summary List systems
// @Tags systems
// @Success 200 {object} response.Response
// @Router /api/systems [get]
func (h *SystemHandler) ListSystems(c *gin.Context) {
	systems, err := h.systemService.ListSystems(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, systems))
}

// CreateSystem creates a new named system
// @Summary Create a system
// @Tags systems
// @Accept json
// @Param system body service.CreateSystemRequest true "System"
// @Success 201 {object} response.Response
// @Router /api/systems [post]
func (h *SystemHandler) CreateSystem(c *gin.Context) {
	var req service.CreateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	system, err := h.systemService.CreateSystem(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, system))
}

// GetSystem returns a single system by name
// @Summary Get a system
// @Tags systems
// @Param name path string true "System name"
// @Success 200 {object} response.Response
// @Router /api/systems/{name} [get]
func (h *SystemHandler) GetSystem(c *gin.Context) {
	system, err := h.systemService.GetSystem(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, system))
}

// UpdateSystem changes a system's default success metrics
// @Summary Update a system
// @Tags systems
// @Accept json
// @Param name path string true "System name"
// @Param system body service.UpdateSystemRequest true "Fields"
// @Success 200 {object} response.Response
// @Router /api/systems/{name} [put]
func (h *SystemHandler) UpdateSystem(c *gin.Context) {
	var req service.UpdateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	system, err := h.systemService.UpdateSystem(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, system))
}

// DeleteSystem deletes a system when no rule references it
// @Summary Delete a system
// @Tags systems
// @Param name path string true "System name"
// @Success 200 {object} response.Response
// @Router /api/systems/{name} [delete]
func (h *SystemHandler) DeleteSystem(c *gin.Context) {
	if err := h.systemService.DeleteSystem(c.Request.Context(), c.Param("name")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("name")}))
}

// RepairSystemIDs backfills sequential ids for systems that predate the field
// @Summary Assign missing system ids
// @Tags systems
// @Success 200 {object} response.Response
// @Router /api/systems/repair-ids [post]
func (h *SystemHandler) RepairSystemIDs(c *gin.Context) {
	assigned, err := h.systemService.AssignMissingSystemIDs(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"assigned": assigned}))
}
