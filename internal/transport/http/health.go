package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

type CheckResult struct {
	Status string `json:"status"`
}

// HealthResponse maps dependency names to their status.
type HealthResponse map[string]CheckResult

func handleHealth(logger *zap.Logger, checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		results := make(HealthResponse, len(checks)+1)
		results["service"] = CheckResult{Status: "ok"}
		status := http.StatusOK

		for name, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.Error("health check failed", zap.String("name", name), zap.Error(err))
				results[name] = CheckResult{Status: "error"}
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = CheckResult{Status: "ok"}
		}

		writeJSON(w, status, results)
	}
}
