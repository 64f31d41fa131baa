// Package signup implementa la coordinación de un intento de sign-up:
// validar el username elegido, chequear disponibilidad contra el account
// store, y vincular la conexión externa pendiente a la cuenta nueva.
package signup

import (
	"context"
	"fmt"
	"strings"

	"github.com/socialsignin/socialguard/internal/connect"
	"github.com/socialsignin/socialguard/internal/domain/repository"
	"github.com/socialsignin/socialguard/internal/metrics"
	"github.com/socialsignin/socialguard/internal/observability/logger"
	"github.com/socialsignin/socialguard/internal/validation"
)

// FieldError es un error de validación/disponibilidad a nivel de campo.
// Se reporta al caller como dato, nunca cruza el transporte como error Go.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result es el desenlace de un intento de sign-up.
// Completed() == true implica Account y Connection no nil y Errors vacío.
type Result struct {
	Account    *repository.Account
	Connection *repository.LinkedConnection
	Errors     []FieldError
}

// Completed indica si el intento terminó en cuenta creada.
func (r *Result) Completed() bool { return r.Account != nil }

// Coordinator orquesta el sign-up de una conexión externa pendiente.
type Coordinator struct {
	accounts repository.AccountRepository
	sessions *connect.Sessions
}

// NewCoordinator construye el coordinator.
func NewCoordinator(accounts repository.AccountRepository, sessions *connect.Sessions) *Coordinator {
	return &Coordinator{accounts: accounts, sessions: sessions}
}

// SuggestedUsername propone un username inicial para el formulario a partir
// de la conexión pendiente (vacío si no hay sugerencia utilizable).
func (c *Coordinator) SuggestedUsername(ctx context.Context, sessionID string) (string, error) {
	return c.sessions.SuggestedUsername(ctx, sessionID, c.accounts)
}

// Pending devuelve la conexión externa pendiente de la sesión, si existe.
func (c *Coordinator) Pending(ctx context.Context, sessionID string) (*connect.Connection, error) {
	return c.sessions.Pending(ctx, sessionID)
}

// SignUp ejecuta la máquina de estados del intento:
// Validate → Check availability → Commit → Completed.
//
// Errores de campo (username vacío/ inválido/ tomado) vuelven en
// Result.Errors. Errores de store distintos de "not found" y la ausencia de
// conexión pendiente se propagan como error (fatales para este intento).
// Un ErrConflict en el commit es un "tomado" descubierto tarde (carrera con
// otro sign-up) y se reporta igual que un tomado en el check.
func (c *Coordinator) SignUp(ctx context.Context, sessionID, username string) (*Result, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Coordinator.SignUp"))

	// Validate
	username = strings.TrimSpace(username)
	if username == "" {
		metrics.SignupsTotal.WithLabelValues("rejected").Inc()
		return &Result{Errors: []FieldError{{Field: "username", Message: "Please choose a username"}}}, nil
	}
	username = strings.ToLower(username)
	if !validation.ValidUsername(username) {
		metrics.SignupsTotal.WithLabelValues("rejected").Inc()
		return &Result{Errors: []FieldError{{
			Field:   "username",
			Message: "Usernames may only contain lowercase letters, digits, '.', '-' and '_'",
		}}}, nil
	}

	// La conexión pendiente debe existir: sin ella no hay nada que vincular.
	pending, err := c.sessions.Pending(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Check availability
	_, err = c.accounts.FindByUsername(ctx, username)
	switch {
	case err == nil:
		metrics.SignupsTotal.WithLabelValues("rejected").Inc()
		return &Result{Errors: []FieldError{taken(username)}}, nil
	case repository.IsNotFound(err):
		// disponible
	default:
		// Store inaccesible: fatal, no se enmascara como "tomado".
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("username availability check: %w", err)
	}

	// Commit
	acc, conn, err := c.accounts.CreateLinked(ctx, repository.CreateLinkedInput{
		Username:       username,
		Provider:       pending.Provider,
		ProviderUserID: pending.ProviderUserID,
		DisplayName:    pending.DisplayName,
		AccessTokenEnc: pending.AccessTokenEnc,
	})
	if err != nil {
		if repository.IsConflict(err) {
			// Otro intento ganó la carrera entre el check y el commit.
			metrics.SignupsTotal.WithLabelValues("rejected").Inc()
			return &Result{Errors: []FieldError{taken(username)}}, nil
		}
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create account: %w", err)
	}

	c.sessions.Complete(ctx, sessionID)
	metrics.SignupsTotal.WithLabelValues("completed").Inc()
	log.Info("sign-up completed",
		logger.Username(acc.Username), logger.Provider(conn.Provider))

	return &Result{Account: acc, Connection: conn}, nil
}

func taken(username string) FieldError {
	return FieldError{
		Field:   "username",
		Message: fmt.Sprintf("Sorry, the username '%s' is not available", username),
	}
}
