package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func newSystemRouter(db Pinger) *gin.Engine {
	h := NewSystemHandler("dropship-backend", "1.2.3", db)
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/system/info", h.GetSystemInfo)
	return router
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		status   int
		overall  string
		database string
	}{
		{"database reachable", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, "ok", "ok"},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("connection refused") }), http.StatusServiceUnavailable, "degraded", "unreachable"},
		{"no database", nil, http.StatusOK, "ok", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, newSystemRouter(tt.db), http.MethodGet, "/health", nil)

			require.Equal(t, tt.status, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.overall, resp.Status)
			assert.Equal(t, tt.database, resp.Database)
			assert.NotEmpty(t, resp.Uptime)
		})
	}
}

func TestSystemHandler_HealthPingHasDeadline(t *testing.T) {
	var hadDeadline bool
	db := pingerFunc(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})

	serve(t, newSystemRouter(db), http.MethodGet, "/health", nil)

	assert.True(t, hadDeadline)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	w := serve(t, newSystemRouter(nil), http.MethodGet, "/system/info", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	decodeData(t, w, &info)
	assert.Equal(t, "dropship-backend", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
