package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, roles []string)
}

// RequireRoles creates middleware that lets through callers holding any of the roles
func RequireRoles(roles ...string) gin.HandlerFunc {
	return RequireRolesWithConfig(RoleConfig{}, roles...)
}

// RequireRolesWithConfig creates role middleware with custom config
func RequireRolesWithConfig(cfg RoleConfig, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, roles, "No authentication claims found")
			return
		}
		if !claims.HasRole(roles...) {
			handleRoleDenied(c, cfg, roles, "User lacks required role")
			return
		}
		c.Next()
	}
}

// HasRole reports whether the authenticated caller holds one of the roles
func HasRole(c *gin.Context, roles ...string) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.HasRole(roles...)
}

func handleRoleDenied(c *gin.Context, cfg RoleConfig, roles []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, roles)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Role check denied",
			zap.String("reason", reason),
			zap.String("user_id", GetJWTUserID(c)),
			zap.String("role", GetJWTRole(c)),
			zap.Strings("required_roles", roles),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":       "ERR_FORBIDDEN",
			"message":    "Access denied: insufficient role",
			"request_id": c.GetString(RequestIDKey),
		},
	})
}
