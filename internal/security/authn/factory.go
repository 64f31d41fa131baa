package authn

// AuthorityMapper resuelve la authority asociada a un provider.
// Implementado por registry.Registry.
type AuthorityMapper interface {
	Authority(providerID string) Authority
}

// Factory deriva autenticaciones nuevas a partir de una existente más uno o
// más providers adicionales, sin mutar la original.
type Factory struct {
	mapper AuthorityMapper
}

// NewFactory construye una Factory sobre el mapper dado.
func NewFactory(mapper AuthorityMapper) *Factory {
	return &Factory{mapper: mapper}
}

// WithProvider retorna una Authentication nueva cuyo conjunto de authorities
// es el original más la authority del provider. Idempotente: si la authority
// ya está presente el resultado es equivalente al input.
func (f *Factory) WithProvider(a Authentication, providerID string) Authentication {
	return a.With(f.mapper.Authority(providerID))
}

// WithProviders equivale a aplicar WithProvider por cada ID. Semántica de
// conjunto: el orden de los IDs no afecta el resultado.
func (f *Factory) WithProviders(a Authentication, providerIDs []string) Authentication {
	authorities := make([]Authority, 0, len(providerIDs))
	for _, id := range providerIDs {
		authorities = append(authorities, f.mapper.Authority(id))
	}
	return a.With(authorities...)
}
