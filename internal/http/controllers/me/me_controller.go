// Package me expone el recurso protegido del usuario actual.
package me

import (
	"encoding/json"
	"net/http"

	"github.com/socialsignin/socialguard/internal/domain/repository"
	httperrors "github.com/socialsignin/socialguard/internal/http/errors"
	mw "github.com/socialsignin/socialguard/internal/http/middlewares"
	"github.com/socialsignin/socialguard/internal/observability/logger"
)

// Response describe al usuario autenticado y sus vinculaciones.
type Response struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
	Providers   []string `json:"providers"`
}

// Controller maneja GET /me.
type Controller struct {
	accounts repository.AccountRepository
}

// NewController construye el controller.
func NewController(accounts repository.AccountRepository) *Controller {
	return &Controller{accounts: accounts}
}

// Me devuelve el perfil del usuario autenticado con sus providers vinculados.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Me.Me"))

	a := mw.AuthFrom(ctx)
	if !a.Authenticated() {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	resp := Response{
		Username:    a.Principal(),
		Authorities: authorityStrings(a.Authorities()),
		Providers:   []string{},
	}

	acc, err := c.accounts.FindByUsername(ctx, a.Principal())
	switch {
	case err == nil:
		conns, err := c.accounts.ConnectionsByAccount(ctx, acc.ID)
		if err != nil {
			log.Error("connections lookup failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
			return
		}
		for _, conn := range conns {
			resp.Providers = append(resp.Providers, conn.Provider)
		}
	case repository.IsNotFound(err):
		// Sesión válida sin cuenta local (p.ej. cuenta borrada): perfil mínimo.
	default:
		log.Error("account lookup failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func authorityStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
