package handler

import (
	"context"
	"net/http"
	"time"
)

// CheckFunc は依存先1つの死活確認を行う関数。
type CheckFunc func(ctx context.Context) error

// HealthHandler は依存先（DB、Redis）の状態を集約して返す。
type HealthHandler struct {
	checks map[string]CheckFunc
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health は各依存先を確認し、全て正常なら200、1つでも異常なら503を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":     overall,
		"components": components,
	})
}
