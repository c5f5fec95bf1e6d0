package middleware

import (
	"crypto/subtle"
	"strings"

	"examarchive/internal/admin/service"
	"examarchive/pkg/errors"
	"examarchive/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	apiKeyHeader        = "X-Admin-Api-Key"
)

// BearerToken extracts the bearer token from the Authorization header, or
// returns "" when the header is missing or malformed.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader(authorizationHeader)
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

// RequireSession rejects requests whose bearer token does not resolve to a
// live admin session.
func RequireSession(sessions *service.SessionRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.AbortWithErrorCode(c, errors.TokenInvalid, "Missing bearer token")
			return
		}
		if _, err := sessions.Verify(c.Request.Context(), token); err != nil {
			response.AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin passes requests that carry either a live session token or
// the configured admin API key.
func RequireAdmin(sessions *service.SessionRegistry, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			if _, err := sessions.Verify(c.Request.Context(), token); err == nil {
				c.Next()
				return
			}
		}
		if key != "" {
			presented := c.GetHeader(apiKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
				c.Next()
				return
			}
		}
		response.AbortWithErrorCode(c, errors.Unauthorized, "Admin credentials required")
	}
}
