package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/policylens/pkg/types/common"
)

// HealthChecker probes one backing dependency.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// namedChecker pairs a checker with its display name.
type namedChecker struct {
	name    string
	checker HealthChecker
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checkers []namedChecker
}

// NewHealthHandler constructs the handler with zero or more dependency
// probes registered via AddChecker.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// AddChecker registers a dependency probe for readiness.
func (h *HealthHandler) AddChecker(name string, c HealthChecker) {
	if c != nil {
		h.checkers = append(h.checkers, namedChecker{name: name, checker: c})
	}
}

// Liveness handles GET /healthz.  The process is alive if it can answer.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": string(common.HealthUp)})
}

// Readiness handles GET /readyz, probing every registered dependency.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := common.HealthUp
	components := make([]common.ComponentHealth, 0, len(h.checkers))
	for _, nc := range h.checkers {
		start := time.Now()
		err := nc.checker.HealthCheck(ctx)
		ch := common.ComponentHealth{
			Name:    nc.name,
			Status:  common.HealthUp,
			Latency: time.Since(start),
		}
		if err != nil {
			ch.Status = common.HealthDown
			ch.Message = err.Error()
			status = common.HealthDown
		}
		components = append(components, ch)
	}

	code := http.StatusOK
	if status == common.HealthDown {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"components": components,
	})
}
