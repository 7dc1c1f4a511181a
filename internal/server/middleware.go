package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"go.uber.org/zap"
)

const (
	contextUserIDKey = "user_id"
	contextRoleKey   = "user_role"
)

// AuthRequired validates the bearer token and puts the subject on the
// request context. The subject's plan is never taken from the token.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.issuer.Verify(strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, claims.Subject)
		c.Set(contextRoleKey, claims.Role)
		if claims.Actor != "" {
			s.log.Info("impersonated request",
				zap.String("actor", claims.Actor),
				zap.String("user_id", claims.Subject),
				zap.String("path", c.FullPath()),
			)
		}
		c.Next()
	}
}

// RequireAdmin gates operator routes. Role comes from the verified token;
// impersonation tokens carry the target's role, so an impersonating admin
// can not reach these routes through an impersonated tenant.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(contextRoleKey) != string(identitydomain.RoleAdmin) {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(contextUserIDKey)
}
