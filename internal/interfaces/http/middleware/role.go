package middleware

import (
	"net/http"
	"slices"

	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// accessDeniedBody is the only detail a denied caller sees. Unknown and wrong
// roles are indistinguishable.
var accessDeniedBody = gin.H{"message": "Access denied"}

// DenialObserver counts role guard rejections
type DenialObserver interface {
	ObserveAccessDenied(route string)
}

// RoleAllowed reports whether role is a member of permitted. Membership is
// exact string equality; an empty set admits nobody and an empty role is
// never a member.
func RoleAllowed(role string, permitted []string) bool {
	if role == "" {
		return false
	}
	return slices.Contains(permitted, role)
}

// RoleGuardConfig holds configuration for the role guard
type RoleGuardConfig struct {
	// Observer is optional
	Observer DenialObserver
}

// RequireRole admits the request only when the established principal's role
// is in permitted. The set is copied, so later changes by the caller have no
// effect. A missing principal or a non-string role is denied.
func RequireRole(permitted ...string) gin.HandlerFunc {
	return RequireRoleWithConfig(RoleGuardConfig{}, permitted...)
}

// RequireRoleWithConfig is RequireRole with an observer for denials
func RequireRoleWithConfig(cfg RoleGuardConfig, permitted ...string) gin.HandlerFunc {
	allowed := slices.Clone(permitted)
	return func(c *gin.Context) {
		role, _ := GetJWTRole(c)
		if !RoleAllowed(role, allowed) {
			denyAccess(c, cfg, role)
			return
		}
		c.Next()
	}
}

func denyAccess(c *gin.Context, cfg RoleGuardConfig, role string) {
	route := c.FullPath()
	logger.L(c.Request.Context()).Warn("access denied",
		zap.String("role", role),
		zap.String("route", route),
		zap.String("method", c.Request.Method),
	)
	if cfg.Observer != nil {
		cfg.Observer.ObserveAccessDenied(route)
	}
	c.AbortWithStatusJSON(http.StatusForbidden, accessDeniedBody)
}
