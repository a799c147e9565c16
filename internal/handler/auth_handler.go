package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/middleware"
	"github.com/edworkspace8869-ctrl/personal-rules-base/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler authenticates the single owner of the rule base. The password
// is configured via APP_PASSWORD_HASH (bcrypt) or, for development only,
// APP_PASSWORD in plain text.
type AuthHandler struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthHandler(accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/me", middleware.RequireAuth(), h.Me)
	}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login verifies the owner password and sets token cookies
// @Summary Log in
// @Tags auth
// @Accept json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} response.Response
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if !verifyPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid password"))
		return
	}

	access, refresh, err := middleware.IssueTokens(h.accessTTL, h.refreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to issue tokens"))
		return
	}

	middleware.SetTokenCookies(c, access, refresh)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	}))
}

// Logout clears the token cookies
// @Summary Log out
// @Tags auth
// @Success 200 {object} response.Response
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"logged_out": true}))
}

// Refresh exchanges a valid refresh token for a new token pair
// @Summary Refresh tokens
// @Tags auth
// @Success 200 {object} response.Response
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	tokenString, err := c.Cookie("refresh_token")
	if err != nil || tokenString == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Refresh token is missing"))
		return
	}

	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid refresh token"))
		return
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Not a refresh token"))
		return
	}

	access, refresh, err := middleware.IssueTokens(h.accessTTL, h.refreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to issue tokens"))
		return
	}

	middleware.SetTokenCookies(c, access, refresh)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	}))
}

// Me confirms the current session
// @Summary Current session
// @Tags auth
// @Success 200 {object} response.Response
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"user": c.GetString("userID"),
	}))
}

func verifyPassword(password string) bool {
	if hash := os.Getenv("APP_PASSWORD_HASH"); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}

	// Development fallback: plain-text comparison against APP_PASSWORD.
	plain := os.Getenv("APP_PASSWORD")
	if plain == "" {
		if os.Getenv("GIN_MODE") == "release" {
			return false
		}
		plain = "rulesbase"
	}
	return password == plain
}
