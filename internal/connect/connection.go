// Package connect maneja las conexiones externas pendientes: la asociación
// efímera, scoped a la sesión de sign-up, entre una cuenta de un identity
// provider y el intento de registro en curso. La maquinaria OAuth que produce
// estas conexiones es externa; acá solo se guardan, leen y finalizan.
package connect

import "time"

// Connection representa una identidad externa pendiente de vincular.
type Connection struct {
	Provider       string    `json:"provider"`
	ProviderUserID string    `json:"provider_user_id"`
	Username       string    `json:"username,omitempty"` // username sugerido por el provider
	DisplayName    string    `json:"display_name,omitempty"`
	AccessTokenEnc string    `json:"access_token_enc,omitempty"` // sellado con secretbox
	CreatedAt      time.Time `json:"created_at"`
}
