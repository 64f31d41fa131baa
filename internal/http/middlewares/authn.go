package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/socialsignin/socialguard/internal/observability/logger"
	"github.com/socialsignin/socialguard/internal/session"
)

const signupSessionCookie = "sg_signup"

// WithAuthentication resuelve la autenticación del request (cookie de sesión
// o Bearer) y la deja en el contexto junto con un logger scoped.
func WithAuthentication(issuer *session.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := issuer.FromRequest(r)
			ctx := WithAuth(r.Context(), a)
			if a.Authenticated() {
				ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.Principal(a.Principal())))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSignupCookie garantiza un ID de sesión de sign-up (cookie efímera) y
// lo deja en el contexto. La maquinaria de conexiones pendientes se indexa
// por este ID.
func WithSignupCookie() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(signupSessionCookie); err == nil && c.Value != "" {
				id = c.Value
			} else {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     signupSessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSignupSession(r.Context(), id)))
		})
	}
}
