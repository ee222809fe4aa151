package handlers

import (
	"net/http"

	"chatiip-backend/logger"
	"chatiip-backend/middleware"
	"chatiip-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles login sessions and user administration
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
	log          *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, cookieSecure bool, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure, log: log.With("handler", "AuthHandler")}
}

// LoginRequest represents the login form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, h.log, "login", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, result.Token, int(h.auth.TTL().Seconds()), "/", "", h.cookieSecure, true)
	respondOK(c, http.StatusOK, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cookieSecure, true)
	respondOK(c, http.StatusOK, gin.H{"loggedOut": true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": gin.H{
		"id":    claims.UserID,
		"email": claims.Email,
		"role":  claims.Role,
	}})
}

// ListUsers handles GET /api/admin/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	result, err := h.auth.ListUsers(c.Request.Context(), c.Query("q"), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondServiceError(c, h.log, "list users", err)
		return
	}
	respondPage(c, result.Items, result.Page, result.Limit, result.Total)
}

// GetUser handles GET /api/admin/users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "get user", err)
		return
	}
	respondOK(c, http.StatusOK, user)
}
