package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/socialsignin/socialguard/internal/cache"
	"github.com/socialsignin/socialguard/internal/domain/repository"
	"github.com/socialsignin/socialguard/internal/security/secretbox"
	"github.com/socialsignin/socialguard/internal/validation"
)

const pendingKeyPrefix = "connect:pending:"

// Sessions almacena conexiones pendientes en el cache, con TTL. Una conexión
// pendiente vive lo que dura el intento de sign-up y se consume al finalizar.
type Sessions struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewSessions construye el store de conexiones pendientes.
func NewSessions(c cache.Cache, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Sessions{cache: c, ttl: ttl}
}

// Put registra la conexión pendiente para la sesión. Si accessToken no es
// vacío se sella con secretbox antes de tocar el cache.
func (s *Sessions) Put(_ context.Context, sessionID string, conn Connection, accessToken string) error {
	if accessToken != "" {
		sealed, err := secretbox.Seal(accessToken)
		if err != nil {
			return fmt.Errorf("seal access token: %w", err)
		}
		conn.AccessTokenEnc = sealed
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(conn)
	if err != nil {
		return err
	}
	s.cache.Set(pendingKeyPrefix+sessionID, b, s.ttl)
	return nil
}

// Pending retorna la conexión pendiente de la sesión.
// Retorna ErrNoPendingConnection si no hay (o expiró).
func (s *Sessions) Pending(_ context.Context, sessionID string) (*Connection, error) {
	b, ok := s.cache.Get(pendingKeyPrefix + sessionID)
	if !ok {
		return nil, repository.ErrNoPendingConnection
	}
	var conn Connection
	if err := json.Unmarshal(b, &conn); err != nil {
		return nil, fmt.Errorf("decode pending connection: %w", err)
	}
	return &conn, nil
}

// Complete consume la conexión pendiente (post sign-up exitoso).
func (s *Sessions) Complete(_ context.Context, sessionID string) {
	s.cache.Delete(pendingKeyPrefix + sessionID)
}

// SuggestedUsername propone un username para el formulario de sign-up a
// partir de la conexión pendiente. Vacío si no hay conexión, si el username
// del provider no es válido localmente, o si ya está tomado. Errores de store
// distintos de "not found" se propagan.
func (s *Sessions) SuggestedUsername(ctx context.Context, sessionID string, accounts repository.AccountRepository) (string, error) {
	conn, err := s.Pending(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) || err == repository.ErrNoPendingConnection {
			return "", nil
		}
		return "", err
	}

	candidate := strings.ToLower(strings.TrimSpace(conn.Username))
	if !validation.ValidUsername(candidate) {
		return "", nil
	}

	_, err = accounts.FindByUsername(ctx, candidate)
	switch {
	case repository.IsNotFound(err):
		return candidate, nil
	case err != nil:
		return "", err
	default:
		// Tomado: no se sugiere.
		return "", nil
	}
}
