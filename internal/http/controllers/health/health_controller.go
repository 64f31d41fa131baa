// Package health contiene el controller para health checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/socialsignin/socialguard/internal/observability/logger"
)

// StorePinger chequea la conectividad del backend de cuentas.
type StorePinger func(ctx context.Context) error

// HealthController maneja las rutas de health check.
type HealthController struct {
	ping StorePinger
}

// NewHealthController crea un nuevo controller de health check.
// ping puede ser nil (store en memoria: siempre listo).
func NewHealthController(ping StorePinger) *HealthController {
	return &HealthController{ping: ping}
}

type response struct {
	Status string `json:"status"`
}

// Healthz maneja GET /healthz: liveness, siempre OK si el proceso responde.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// Readyz maneja GET /readyz: readiness, incluye el backend de cuentas.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	if c.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.ping(ctx); err != nil {
			log.Warn("store not ready", logger.Err(err))
			writeJSON(w, http.StatusServiceUnavailable, response{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, response{Status: "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
