// Package signup expone el formulario de sign-up y su submit.
package signup

import (
	"encoding/json"
	"errors"
	"net/http"

	dto "github.com/socialsignin/socialguard/internal/http/dto/signup"
	httperrors "github.com/socialsignin/socialguard/internal/http/errors"
	mw "github.com/socialsignin/socialguard/internal/http/middlewares"
	"github.com/socialsignin/socialguard/internal/observability/logger"
	"github.com/socialsignin/socialguard/internal/domain/repository"
	"github.com/socialsignin/socialguard/internal/security/authn"
	"github.com/socialsignin/socialguard/internal/session"
	signupsvc "github.com/socialsignin/socialguard/internal/signup"
)

// postSignInRedirect es el destino tras un sign-up exitoso.
const postSignInRedirect = "/authenticate"

// Controller maneja GET/POST /signup.
type Controller struct {
	coordinator *signupsvc.Coordinator
	factory     *authn.Factory
	issuer      *session.Issuer
}

// NewController construye el controller de sign-up.
func NewController(coordinator *signupsvc.Coordinator, factory *authn.Factory, issuer *session.Issuer) *Controller {
	return &Controller{coordinator: coordinator, factory: factory, issuer: issuer}
}

// Form maneja GET /signup: estado inicial del formulario, con username
// sugerido desde la conexión pendiente si hay una utilizable.
func (c *Controller) Form(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Signup.Form"))

	sessionID := mw.SignupSessionFrom(ctx)
	pending, err := c.coordinator.Pending(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNoPendingConnection) {
			// Sin conexión pendiente el formulario arranca vacío.
			writeJSON(w, http.StatusOK, dto.FormResponse{})
			return
		}
		log.Error("pending connection lookup failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	suggested, err := c.coordinator.SuggestedUsername(ctx, sessionID)
	if err != nil {
		log.Error("suggested username lookup failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	writeJSON(w, http.StatusOK, dto.FormResponse{Username: suggested, Provider: pending.Provider})
}

// Submit maneja POST /signup: valida el username elegido, vincula la conexión
// pendiente y establece la sesión del usuario nuevo.
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Signup.Submit"))

	var req dto.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	sessionID := mw.SignupSessionFrom(ctx)
	result, err := c.coordinator.SignUp(ctx, sessionID, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNoPendingConnection) {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("no pending provider connection for this session"))
			return
		}
		log.Error("sign-up failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	if !result.Completed() {
		// Errores de campo: el caller redibuja el formulario.
		writeJSON(w, http.StatusUnprocessableEntity, dto.SubmitResponse{
			Username: req.Username,
			Errors:   result.Errors,
		})
		return
	}

	// Sign-in: sesión nueva con la authority del provider recién vinculado.
	auth := c.factory.WithProvider(authn.New(result.Account.Username), result.Connection.Provider)
	token, err := c.issuer.Issue(auth)
	if err != nil {
		log.Error("session issue failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	c.issuer.WriteCookie(w, token)

	writeJSON(w, http.StatusOK, dto.SubmitResponse{
		Username:   result.Account.Username,
		RedirectTo: postSignInRedirect,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
