package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"healthsure/internal/delivery/dto"
	"healthsure/pkg/response"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Test is the liveness probe the web client calls on load.
func (h *HealthHandler) Test(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"message": "HealthSure Backend Working!"})
}

// Health pings every dependency and answers 503 when any of them fails.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	result := dto.HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			result.Status = "degraded"
			result.Checks[name] = err.Error()
			continue
		}
		result.Checks[name] = "ok"
	}

	if result.Status != "ok" {
		response.ServiceUnavailable(w, "Dependency check failed", result)
		return
	}
	response.Success(w, http.StatusOK, "", result)
}
