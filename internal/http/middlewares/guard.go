package middlewares

import (
	"net/http"
	"strings"

	"github.com/socialsignin/socialguard/internal/http/errors"
	"github.com/socialsignin/socialguard/internal/observability/logger"
	"github.com/socialsignin/socialguard/internal/security/access"
)

// RequiredProvidersHeader lleva el conjunto completo de providers requeridos
// en el redirect al linking, para UIs que quieran mostrar todas las opciones.
const RequiredProvidersHeader = "X-Required-Providers"

// WithGuard protege las rutas con el policy oracle. Ante una denegación
// consulta al resolver qué providers no vinculados desbloquearían el recurso:
//
//   - hay combinación → redirect a /connect/{provider} (uno del conjunto,
//     elegido determinísticamente) con el conjunto completo en el header
//     y en el query param "required";
//   - no hay combinación → 403 genérico (denegación real).
//
// Un error del oracle o del resolver aborta el request con 500: sin respuesta
// de la política no se puede afirmar denegación.
func WithGuard(oracle access.PolicyOracle, resolver *access.Resolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			a := AuthFrom(ctx)
			log := logger.From(ctx).With(logger.Layer("middleware"), logger.Op("guard"))

			allowed, err := oracle.IsAllowed(ctx, "", r.URL.Path, r.Method, a)
			if err != nil {
				log.Error("policy evaluation failed", logger.Err(err))
				errors.WriteError(w, errors.ErrInternalServerError.WithCause(err))
				return
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			required, err := resolver.RequiredProviders(ctx, a, "", r.URL.Path, r.Method)
			if err != nil {
				log.Error("provider resolution failed", logger.Err(err))
				errors.WriteError(w, errors.ErrInternalServerError.WithCause(err))
				return
			}
			if len(required) == 0 {
				// Ningún provider ayuda: denegación genérica.
				errors.WriteError(w, errors.ErrForbidden)
				return
			}

			nextProvider := access.NextProvider(required)
			log.Info("access requires additional providers",
				logger.Providers(required),
				logger.Provider(nextProvider),
				logger.Path(r.URL.Path),
			)

			w.Header().Set(RequiredProvidersHeader, strings.Join(required, ","))
			target := "/connect/" + nextProvider + "?required=" + strings.Join(required, ",")
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}
