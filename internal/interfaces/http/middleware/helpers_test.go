package middleware

import (
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// observedLogger installs an observer-backed logger in the request context
func observedLogger(level zapcore.Level) (gin.HandlerFunc, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	log := zap.New(core)
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))
		c.Next()
	}, logs
}
