package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler_Test(t *testing.T) {
	h := NewHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.Test(rec, httptest.NewRequest(http.MethodGet, "/api/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"HealthSure Backend Working!"}`, rec.Body.String())
}

func TestHealthHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all dependencies up", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"database": ok, "redis": ok})

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok","redis":"ok"}}`, string(decodeEnvelope(t, rec).Data))
	})

	t.Run("redis down", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{
			"database": ok,
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.JSONEq(t, `{"status":"degraded","checks":{"database":"ok","redis":"connection refused"}}`, string(env.Details))
	})
}
