package handler

import (
	"errors"
	"net/http"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/middleware"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/repository"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/service"
	"github.com/edworkspace8869-ctrl/personal-rules-base/pkg/pagination"
	"github.com/edworkspace8869-ctrl/personal-rules-base/pkg/response"

	"github.com/gin-gonic/gin"
)

type RuleHandler struct {
	ruleService service.RuleService
}

func NewRuleHandler(ruleService service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

func (h *RuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/rules")
	rules.Use(middleware.RequireAuth())
	{
		rules.GET("", h.ListRules)
		rules.POST("", h.CreateRule)
		rules.GET("/:id", h.GetRule)
		rules.PUT("/:id", h.UpdateRule)
		rules.DELETE("/:id", h.DeleteRule)
		rules.POST("/:id/pass", h.PassRule)
		rules.POST("/:id/reject", h.RejectRule)
		rules.POST("/:id/amend", h.AmendRule)
		rules.POST("/:id/archive", h.ArchiveRule)
		rules.POST("/:id/unarchive", h.UnarchiveRule)
		rules.GET("/:id/amendments", h.GetAmendments)
	}
}

// statusFromError maps the domain error taxonomy to HTTP status codes.
// Shared by every handler in this package.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrDuplicateID),
		errors.Is(err, model.ErrDuplicateName),
		errors.Is(err, model.ErrInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFromError(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// ListRules returns rules filtered by status/system/archived with pagination
// @Summary List rules
// @Tags rules
// @Param status query string false "Filter by status"
// @Param system query string false "Filter by system name"
// @Param archived query bool false "Filter by archive flag"
// @Success 200 {object} response.Response
// @Router /api/rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.RuleFilter{
		Status: c.Query("status"),
		System: c.Query("system"),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if archived := c.Query("archived"); archived != "" {
		v := archived == "true" || archived == "1"
		filter.Archived = &v
	}

	rules, total, err := h.ruleService.ListRules(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"rules": rules,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// CreateRule proposes a new rule, auto-provisioning its system when needed
// @Summary Create a rule
// @Tags rules
// @Accept json
// @Param rule body service.CreateRuleRequest true "Rule"
// @Success 201 {object} response.Response
// @Router /api/rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req service.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// GetRule returns a single rule by id
// @Summary Get a rule
// @Tags rules
// @Param id path string true "Rule id"
// @Success 200 {object} response.Response
// @Router /api/rules/{id} [get]
func (h *RuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// UpdateRule edits a rule while it is still proposed
// @Summary Edit a proposed rule
// @Tags rules
// @Accept json
// @Param id path string true "Rule id"
// @Param rule body service.UpdateRuleRequest true "Rule"
// @Success 200 {object} response.Response
// @Router /api/rules/{id} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var req service.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.UpdateProposedRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// DeleteRule permanently deletes an archived rule
// @Summary Delete an archived rule
// @Tags rules
// @Param id path string true "Rule id"
// @Success 200 {object} response.Response
// @Router /api/rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	if err := h.ruleService.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("id")}))
}

// PassRule passes a proposed rule with an effective date choice
// @Summary Pass a rule
// @Tags rules
// @Accept json
// @Param id path string true "Rule id"
// @Param choice body service.PassRuleRequest true "Effective date choice"
// @Success 200 {object} response.Response
// @Router /api/rules/{id}/pass [post]
func (h *RuleHandler) PassRule(c *gin.Context) {
	var req service.PassRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.PassRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// RejectRule rejects a proposed rule
// @Summary Reject a rule
// @Tags rules
// @Param id path string true "Rule id"
// @Success 200 {object} response.Response
// @Router /api/rules/{id}/reject [post]
func (h *RuleHandler) RejectRule(c *gin.Context) {
	rule, err := h.ruleService.RejectRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// AmendRule creates a new amendment proposal against an active base rule
// @Summary Amend an active rule
// @Tags rules
// @Accept json
// @Param id path string true "Base rule id"
// @Param amendment body service.AmendRuleRequest true "Amendment"
// @Success 201 {object} response.Response
// @Router /api/rules/{id}/amend [post]
func (h *RuleHandler) AmendRule(c *gin.Context) {
	var req service.AmendRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	amendment, err := h.ruleService.AmendRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, amendment))
}

// ArchiveRule moves a rejected or expired rule to cold storage
// @Summary Archive a rule
// @Tags rules
// @Param id path string true "Rule id"
// @Success 200 {object} response.Response
// @Router /api/rules/{id}/archive [post]
func (h *RuleHandler) ArchiveRule(c *gin.Context) {
	rule, err := h.ruleService.ArchiveRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// UnarchiveRule restores a rule from cold storage
// @Summary Unarchive a rule
// @Tags rules
// @Param id path string true "Rule id"
// @Success 200 {object} response.Response
// @Router /api/rules/{id}/unarchive [post]
func (h *RuleHandler) UnarchiveRule(c *gin.Context) {
	rule, err := h.ruleService.UnarchiveRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// GetAmendments lists a base rule's amendments ordered by amendment number
// @Summary List amendments
// @Tags rules
// @Param id path string true "Base rule id"
// @Success 200 {object} response.Response
// @Router /api/rules/{id}/amendments [get]
func (h *RuleHandler) GetAmendments(c *gin.Context) {
	amendments, err := h.ruleService.GetAmendments(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, amendments))
}
