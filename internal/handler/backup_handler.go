package handler

import (
	"net/http"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/middleware"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/service"
	"github.com/edworkspace8869-ctrl/personal-rules-base/pkg/response"

	"github.com/gin-gonic/gin"
)

type BackupHandler struct {
	backupService service.BackupService
}

func NewBackupHandler(backupService service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

func (h *BackupHandler) RegisterRoutes(router *gin.RouterGroup) {
	backup := router.Group("/api/backup")
	backup.Use(middleware.RequireAuth())
	{
		backup.GET("/export", h.Export)
		backup.POST("/import", h.Import)
	}
}

// Export produces a full-snapshot backup document
// @Summary Export all rules and systems
// @Tags backup
// @Success 200 {object} service.BackupDocument
// @Router /api/backup/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	// The document itself is the payload so it round-trips through import
	// without unwrapping.
	c.Header("Content-Disposition", `attachment; filename="rules-backup.json"`)
	c.JSON(http.StatusOK, doc)
}

// Import replaces all rules and systems with the uploaded document
// @Summary Import a backup document
// @Tags backup
// @Accept json
// @Param backup body service.BackupDocument true "Backup document"
// @Success 200 {object} response.Response
// @Router /api/backup/import [post]
func (h *BackupHandler) Import(c *gin.Context) {
	var doc service.BackupDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid backup document: "+err.Error()))
		return
	}

	if err := h.backupService.Import(c.Request.Context(), &doc); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"rules":   len(doc.Rules),
		"systems": len(doc.Systems),
	}))
}
