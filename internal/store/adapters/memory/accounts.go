// Package memory implementa los repositorios de dominio en memoria.
// Pensado para desarrollo y tests; el check-and-insert corre bajo lock para
// dar la misma garantía de unicidad que el constraint de Postgres.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/socialsignin/socialguard/internal/domain/repository"
)

type Store struct {
	mu          sync.Mutex
	byUsername  map[string]*repository.Account
	byID        map[string]*repository.Account
	connections map[string][]repository.LinkedConnection // accountID -> conns
}

func New() *Store {
	return &Store{
		byUsername:  make(map[string]*repository.Account),
		byID:        make(map[string]*repository.Account),
		connections: make(map[string][]repository.LinkedConnection),
	}
}

func (s *Store) FindByUsername(_ context.Context, username string) (*repository.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (s *Store) GetByID(_ context.Context, id string) (*repository.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (s *Store) CreateLinked(_ context.Context, input repository.CreateLinkedInput) (*repository.Account, *repository.LinkedConnection, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" || input.Provider == "" {
		return nil, nil, repository.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// check-and-insert atómico bajo el lock
	if _, taken := s.byUsername[username]; taken {
		return nil, nil, repository.ErrConflict
	}

	now := time.Now().UTC()
	acc := &repository.Account{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
	}
	conn := repository.LinkedConnection{
		ID:             uuid.NewString(),
		AccountID:      acc.ID,
		Provider:       input.Provider,
		ProviderUserID: input.ProviderUserID,
		DisplayName:    input.DisplayName,
		AccessTokenEnc: input.AccessTokenEnc,
		CreatedAt:      now,
	}

	s.byUsername[username] = acc
	s.byID[acc.ID] = acc
	s.connections[acc.ID] = append(s.connections[acc.ID], conn)

	accCopy := *acc
	connCopy := conn
	return &accCopy, &connCopy, nil
}

func (s *Store) ConnectionsByAccount(_ context.Context, accountID string) ([]repository.LinkedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := s.connections[accountID]
	out := make([]repository.LinkedConnection, len(conns))
	copy(out, conns)
	return out, nil
}
