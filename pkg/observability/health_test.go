package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRegistry_Check(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("db", func(context.Context) HealthCheckResult { return Healthy() })
	registry.Register("broker", func(context.Context) HealthCheckResult {
		return Unhealthy(errors.New("connection refused"))
	})

	results := registry.Check(context.Background())

	require.Len(t, results, 2)
	assert.Equal(t, HealthStatusHealthy, results["db"].Status)
	assert.Equal(t, HealthStatusUnhealthy, results["broker"].Status)
	assert.Equal(t, "connection refused", results["broker"].Message)
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, HealthStatusHealthy, OverallStatus(map[string]HealthCheckResult{
		"db": Healthy(),
	}))
	assert.Equal(t, HealthStatusUnhealthy, OverallStatus(map[string]HealthCheckResult{
		"db":     Healthy(),
		"broker": Unhealthy(errors.New("down")),
	}))
	assert.Equal(t, HealthStatusHealthy, OverallStatus(nil))
}

func TestHealthRegistry_Handler(t *testing.T) {
	t.Run("healthy responds 200", func(t *testing.T) {
		registry := NewHealthRegistry()
		registry.Register("db", func(context.Context) HealthCheckResult { return Healthy() })

		rec := httptest.NewRecorder()
		registry.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

		assert.Equal(t, 200, rec.Code)

		var body struct {
			Status     HealthStatus                 `json:"status"`
			Components map[string]HealthCheckResult `json:"components"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, HealthStatusHealthy, body.Status)
		assert.Contains(t, body.Components, "db")
	})

	t.Run("unhealthy responds 503", func(t *testing.T) {
		registry := NewHealthRegistry()
		registry.Register("db", func(context.Context) HealthCheckResult {
			return Unhealthy(errors.New("down"))
		})

		rec := httptest.NewRecorder()
		registry.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

		assert.Equal(t, 503, rec.Code)
	})
}
