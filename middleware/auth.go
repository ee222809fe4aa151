package middleware

import (
	"net/http"
	"strings"

	"chatiip-backend/logger"
	"chatiip-backend/service"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie holding the session token
const TokenCookie = "token"

const claimsKey = "auth.claims"

// TokenParser verifies session tokens
type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

// AuthMiddleware guards routes behind a session token
type AuthMiddleware struct {
	log    *logger.Logger
	tokens TokenParser
}

func NewAuthMiddleware(log *logger.Logger, tokens TokenParser) *AuthMiddleware {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), tokens: tokens}
}

// RequireAuth rejects requests without a valid token and stores the
// claims on the context
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
			return
		}
		claims, err := am.tokens.ParseToken(token)
		if err != nil {
			am.log.Debug("token rejected", "path", c.Request.URL.Path, "error", err)
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
			return
		}
		if !claims.IsAdmin() {
			abort(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireAuth
func ClaimsFrom(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok && claims != nil
}

// ExtractToken reads the token cookie, then an Authorization bearer header
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
