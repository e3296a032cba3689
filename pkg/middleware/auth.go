package middleware

import (
	"net/http"
	"strings"

	"animov/pkg/jwt"
	"animov/pkg/session"
	"animov/pkg/sessioncookie"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "user_id"
	ContextSessionID = "session_id"
)

// TokenFromRequest reads the session token from the Authorization header,
// falling back to the session cookie. Both carry the same token.
func TokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}
	return sessioncookie.Read(r)
}

func authenticate(c *gin.Context, jwtService *jwt.Service, sessions session.Lookup) bool {
	token, ok := TokenFromRequest(c.Request)
	if !ok {
		return false
	}

	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		return false
	}

	userID, err := sessions.Resolve(c.Request.Context(), claims.SessionID)
	if err != nil || userID != claims.UserID {
		return false
	}

	c.Set(ContextUserID, userID)
	c.Set(ContextSessionID, claims.SessionID)
	return true
}

// AuthMiddleware rejects requests without a live session with 401.
func AuthMiddleware(jwtService *jwt.Service, sessions session.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, jwtService, sessions) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the session when one is presented but lets anonymous
// requests through.
func OptionalAuth(jwtService *jwt.Service, sessions session.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, jwtService, sessions)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
