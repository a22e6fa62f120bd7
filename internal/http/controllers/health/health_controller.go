// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/sideline/internal/authn"
	httpx "github.com/dropDatabas3/sideline/internal/http"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
)

// Pinger es lo que el readiness check necesita de la base.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	db   Pinger
	keys authn.KeySource
}

func NewHealthController(db Pinger, keys authn.KeySource) *HealthController {
	return &HealthController{db: db, keys: keys}
}

type componentStatus struct {
	Status string `json:"status"` // ok|error
	Detail string `json:"detail,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"` // ready|degraded|unavailable
	Components map[string]componentStatus `json:"components,omitempty"`
}

// Healthz maneja GET /healthz: liveness puro, sin tocar dependencias.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ready"})
}

// Readyz maneja GET /readyz: chequea base y key set. El JWKS caído NO baja el
// readiness (el verifier sirve stale); se reporta como degraded.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ready", Components: map[string]componentStatus{}}

	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Components["postgres"] = componentStatus{Status: "error", Detail: err.Error()}
			logger.From(ctx).Warn("readiness: postgres down", logger.Err(err))
		} else {
			resp.Components["postgres"] = componentStatus{Status: "ok"}
		}
	}

	if c.keys != nil {
		if _, err := c.keys.Keys(ctx); err != nil {
			if resp.Status == "ready" {
				resp.Status = "degraded"
			}
			resp.Components["jwks"] = componentStatus{Status: "error", Detail: err.Error()}
		} else {
			resp.Components["jwks"] = componentStatus{Status: "ok"}
		}
	}

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, resp)
}
