// Package signup contiene los DTOs del flujo de sign-up.
package signup

import signupsvc "github.com/socialsignin/socialguard/internal/signup"

// FormResponse es el estado inicial del formulario de sign-up.
type FormResponse struct {
	// Username sugerido a partir de la conexión pendiente (puede ser vacío).
	Username string `json:"username"`
	// Provider de la conexión pendiente (vacío si no hay conexión).
	Provider string `json:"provider,omitempty"`
}

// SubmitRequest es el cuerpo del POST /signup.
type SubmitRequest struct {
	Username string `json:"username"`
}

// SubmitResponse es la respuesta del POST /signup.
// Con Errors no vacío el caller redibuja el formulario; con RedirectTo no
// vacío el sign-up completó y hay sesión nueva.
type SubmitResponse struct {
	Username   string                 `json:"username,omitempty"`
	RedirectTo string                 `json:"redirect_to,omitempty"`
	Errors     []signupsvc.FieldError `json:"errors,omitempty"`
}
