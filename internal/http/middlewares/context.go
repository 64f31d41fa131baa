package middlewares

import (
	"context"
	"net/http"

	"github.com/socialsignin/socialguard/internal/security/authn"
)

// Middleware es el tipo estándar de middleware HTTP.
type Middleware func(http.Handler) http.Handler

type authKey struct{}
type requiredProvidersKey struct{}
type signupSessionKey struct{}

// WithAuth inyecta la autenticación del request en el contexto.
func WithAuth(ctx context.Context, a authn.Authentication) context.Context {
	return context.WithValue(ctx, authKey{}, a)
}

// AuthFrom extrae la autenticación del contexto (Anonymous si no hay).
func AuthFrom(ctx context.Context) authn.Authentication {
	if v := ctx.Value(authKey{}); v != nil {
		if a, ok := v.(authn.Authentication); ok {
			return a
		}
	}
	return authn.Anonymous()
}

// WithRequiredProviders inyecta el conjunto completo de providers requeridos,
// para que la UI del linking pueda mostrar todas las opciones.
func WithRequiredProviders(ctx context.Context, ids []string) context.Context {
	return context.WithValue(ctx, requiredProvidersKey{}, ids)
}

// RequiredProvidersFrom extrae el conjunto de providers requeridos (nil si no hay).
func RequiredProvidersFrom(ctx context.Context) []string {
	if v := ctx.Value(requiredProvidersKey{}); v != nil {
		if ids, ok := v.([]string); ok {
			return ids
		}
	}
	return nil
}

// WithSignupSession inyecta el ID de la sesión de sign-up.
func WithSignupSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, signupSessionKey{}, id)
}

// SignupSessionFrom extrae el ID de la sesión de sign-up ("" si no hay).
func SignupSessionFrom(ctx context.Context) string {
	if v := ctx.Value(signupSessionKey{}); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
