// Package authn define el valor Authentication y sus authorities.
//
// Authentication es un value type inmutable: toda "modificación" produce una
// copia nueva, de modo que la autenticación viva de la sesión nunca comparte
// estado con las autenticaciones hipotéticas que construye el resolver.
package authn

import (
	"sort"
	"strings"
)

// Authority es un token opaco y comparable que representa una capability
// otorgada (ej: "vinculado con el provider X").
type Authority string

const providerAuthorityPrefix = "ROLE_USER_"

// ProviderAuthority retorna la authority que denota "este principal tiene
// vinculado el provider providerID". Estable por provider: la igualdad
// importa para los checks de membresía del policy oracle.
func ProviderAuthority(providerID string) Authority {
	return Authority(providerAuthorityPrefix + strings.ToUpper(strings.TrimSpace(providerID)))
}

// Authentication representa un principal y su conjunto de authorities.
// El zero value es una autenticación anónima sin authorities.
type Authentication struct {
	principal   string
	authorities map[Authority]struct{}
}

// New construye una Authentication para el principal dado.
func New(principal string, authorities ...Authority) Authentication {
	set := make(map[Authority]struct{}, len(authorities))
	for _, a := range authorities {
		set[a] = struct{}{}
	}
	return Authentication{principal: principal, authorities: set}
}

// Anonymous retorna una autenticación sin principal ni authorities.
func Anonymous() Authentication {
	return Authentication{}
}

// Principal retorna el identificador del principal ("" si es anónimo).
func (a Authentication) Principal() string { return a.principal }

// Authenticated indica si hay un principal asociado.
func (a Authentication) Authenticated() bool { return a.principal != "" }

// Has indica si la authority está presente.
func (a Authentication) Has(authority Authority) bool {
	_, ok := a.authorities[authority]
	return ok
}

// Authorities retorna una copia ordenada del conjunto de authorities.
func (a Authentication) Authorities() []Authority {
	out := make([]Authority, 0, len(a.authorities))
	for auth := range a.authorities {
		out = append(out, auth)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// With retorna una copia con las authorities adicionales otorgadas.
// El receptor no se modifica; ambos valores quedan utilizables.
func (a Authentication) With(authorities ...Authority) Authentication {
	set := make(map[Authority]struct{}, len(a.authorities)+len(authorities))
	for auth := range a.authorities {
		set[auth] = struct{}{}
	}
	for _, auth := range authorities {
		set[auth] = struct{}{}
	}
	return Authentication{principal: a.principal, authorities: set}
}
