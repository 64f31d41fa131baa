// Package connect expone la landing de vinculación de providers.
package connect

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/socialsignin/socialguard/internal/http/errors"
	mw "github.com/socialsignin/socialguard/internal/http/middlewares"
	"github.com/socialsignin/socialguard/internal/observability/logger"
	"github.com/socialsignin/socialguard/internal/security/registry"
)

// LandingResponse describe la página de vinculación de un provider.
type LandingResponse struct {
	// Provider a vincular.
	Provider string `json:"provider"`
	// Required es el conjunto completo de providers que desbloquearía el
	// recurso original (si el redirect vino del guard).
	Required []string `json:"required,omitempty"`
}

// Controller maneja GET /connect/{provider}.
type Controller struct {
	registry *registry.Registry
}

// NewController construye el controller de connect.
func NewController(reg *registry.Registry) *Controller {
	return &Controller{registry: reg}
}

// Landing valida el provider pedido y devuelve el contexto de vinculación.
// El conjunto "required" llega por query param desde el redirect del guard.
func (c *Controller) Landing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Connect.Landing"))

	provider := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "provider")))
	if !c.registry.Known(provider) {
		log.Warn("unknown provider requested", logger.Provider(provider))
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown provider"))
		return
	}

	required := parseRequired(r.URL.Query().Get("required"))
	if required == nil {
		required = mw.RequiredProvidersFrom(ctx)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(LandingResponse{Provider: provider, Required: required})
}

func parseRequired(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
