package access

import (
	"context"
	"strings"

	"github.com/socialsignin/socialguard/internal/security/authn"
)

// Rule asocia un patrón de recurso con las authorities que requiere.
type Rule struct {
	// PathPrefix matchea la URI por prefijo ("/feed", "/feed/"). "/" matchea todo.
	PathPrefix string

	// Methods restringe la regla a métodos HTTP concretos. Vacío = cualquiera.
	Methods []string

	// AnyOf: al menos una de estas authorities debe estar presente.
	AnyOf []authn.Authority

	// AllOf: todas estas authorities deben estar presentes.
	AllOf []authn.Authority
}

func (r Rule) matches(uri, method string) bool {
	if r.PathPrefix != "" && !strings.HasPrefix(uri, r.PathPrefix) {
		return false
	}
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func (r Rule) satisfiedBy(a authn.Authentication) bool {
	for _, required := range r.AllOf {
		if !a.Has(required) {
			return false
		}
	}
	if len(r.AnyOf) == 0 {
		return true
	}
	for _, candidate := range r.AnyOf {
		if a.Has(candidate) {
			return true
		}
	}
	return false
}

// RuleOracle es un PolicyOracle de referencia evaluado sobre reglas estáticas
// cargadas desde la configuración. La primera regla que matchea (uri, method)
// decide; sin regla que matchee, el acceso se permite.
type RuleOracle struct {
	rules []Rule
}

// NewRuleOracle construye el oracle sobre las reglas dadas (orden relevante).
func NewRuleOracle(rules []Rule) *RuleOracle {
	return &RuleOracle{rules: rules}
}

// IsAllowed implementa PolicyOracle. No usa contextPath: las reglas se
// escriben sobre URIs ya relativas al root de la aplicación.
func (o *RuleOracle) IsAllowed(_ context.Context, _ string, uri, method string, a authn.Authentication) (bool, error) {
	for _, r := range o.rules {
		if r.matches(uri, method) {
			return r.satisfiedBy(a), nil
		}
	}
	return true, nil
}
