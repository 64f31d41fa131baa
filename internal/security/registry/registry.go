// Package registry expone el universo de identity providers configurados y la
// authority que representa cada vínculo. El universo es fijo por deployment.
package registry

import (
	"sort"
	"strings"

	"github.com/socialsignin/socialguard/internal/security/authn"
)

// Registry conoce los provider IDs registrados y sus authorities.
type Registry struct {
	ids []string // ordenados lexicográficamente
}

// New construye un Registry a partir de los provider IDs configurados.
// IDs vacíos y duplicados se descartan; los IDs se normalizan a lowercase.
func New(providerIDs []string) *Registry {
	seen := make(map[string]struct{}, len(providerIDs))
	ids := make([]string, 0, len(providerIDs))
	for _, id := range providerIDs {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Registry{ids: ids}
}

// ProviderIDs retorna los IDs registrados, ordenados. La slice es una copia.
func (r *Registry) ProviderIDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Known indica si el provider está registrado.
func (r *Registry) Known(providerID string) bool {
	providerID = strings.ToLower(strings.TrimSpace(providerID))
	i := sort.SearchStrings(r.ids, providerID)
	return i < len(r.ids) && r.ids[i] == providerID
}

// Authority retorna la authority que denota el vínculo con el provider.
func (r *Registry) Authority(providerID string) authn.Authority {
	return authn.ProviderAuthority(providerID)
}

// Unconnected retorna los providers registrados cuya authority NO está
// presente en la autenticación dada. Se recalcula por request: el estado de
// autenticación puede cambiar entre requests, nunca se cachea.
func (r *Registry) Unconnected(a authn.Authentication) []string {
	out := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		if !a.Has(r.Authority(id)) {
			out = append(out, id)
		}
	}
	return out
}
