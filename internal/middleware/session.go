package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/logger"
	"github.com/pageza/preflight/backend/internal/types"
	"go.uber.org/zap"
)

const sessionKey = "session"

// SessionResolver turns a bearer token into a caller identity
type SessionResolver interface {
	SessionFromToken(token string) (types.Session, error)
}

// SessionMiddleware resolves the optional bearer token into a types.Session.
// Missing or invalid tokens leave the request anonymous; routes that need a
// caller enforce that themselves.
func SessionMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := types.Session{}

		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			resolved, err := resolver.SessionFromToken(token)
			if err != nil {
				logger.Log.Debug("Ignoring invalid session token",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
			} else {
				session = resolved
			}
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if !session.Authenticated() {
			AbortWithError(c, apierrors.Unauthorized("Authentication required."))
			return
		}
		if !session.IsAdmin {
			AbortWithError(c, apierrors.Forbidden("Admin access required."))
			return
		}
		c.Next()
	}
}

// GetSession returns the session stored by SessionMiddleware, or an anonymous one
func GetSession(c *gin.Context) types.Session {
	if value, ok := c.Get(sessionKey); ok {
		if session, ok := value.(types.Session); ok {
			return session
		}
	}
	return types.Session{}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
