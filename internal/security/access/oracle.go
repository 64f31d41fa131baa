package access

import (
	"context"

	"github.com/socialsignin/socialguard/internal/security/authn"
)

// PolicyOracle responde allow/deny para un (recurso, autenticación). Caja
// negra para el resolver: puede ser el evaluador de reglas local (RuleOracle)
// o un policy engine externo.
//
// Debe ser seguro para invocación concurrente con autenticaciones hipotéticas
// distintas. Se asume disponible; la política de timeout/retry de sus llamadas
// es externa a este core.
type PolicyOracle interface {
	IsAllowed(ctx context.Context, contextPath, uri, method string, a authn.Authentication) (bool, error)
}
