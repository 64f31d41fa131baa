// Package pg implementa los repositorios de dominio sobre PostgreSQL (pgx).
package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socialsignin/socialguard/internal/domain/repository"
)

const uniqueViolation = "23505"

type Store struct{ pool *pgxpool.Pool }

// New construye el adapter sobre un pool existente.
func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Open abre un pool contra el DSN dado y verifica conectividad.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

func (s *Store) Close() { s.pool.Close() }

// Ping verifica la conectividad del pool.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) FindByUsername(ctx context.Context, username string) (*repository.Account, error) {
	const query = `
		SELECT id, username, created_at
		FROM account WHERE username = $1
	`
	var acc repository.Account
	err := s.pool.QueryRow(ctx, query, strings.ToLower(username)).Scan(
		&acc.ID, &acc.Username, &acc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	const query = `
		SELECT id, username, created_at
		FROM account WHERE id = $1
	`
	var acc repository.Account
	err := s.pool.QueryRow(ctx, query, id).Scan(&acc.ID, &acc.Username, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// CreateLinked inserta cuenta + conexión en una transacción. El UNIQUE sobre
// account.username resuelve la carrera check-then-create: un duplicado tardío
// llega como unique_violation y se mapea a ErrConflict.
func (s *Store) CreateLinked(ctx context.Context, input repository.CreateLinkedInput) (*repository.Account, *repository.LinkedConnection, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" || input.Provider == "" {
		return nil, nil, repository.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	acc := repository.Account{ID: uuid.NewString(), Username: username}
	const insertAccount = `
		INSERT INTO account (id, username, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`
	if err := tx.QueryRow(ctx, insertAccount, acc.ID, acc.Username).Scan(&acc.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, nil, repository.ErrConflict
		}
		return nil, nil, err
	}

	conn := repository.LinkedConnection{
		ID:             uuid.NewString(),
		AccountID:      acc.ID,
		Provider:       input.Provider,
		ProviderUserID: input.ProviderUserID,
		DisplayName:    input.DisplayName,
		AccessTokenEnc: input.AccessTokenEnc,
	}
	const insertConnection = `
		INSERT INTO account_connection
			(id, account_id, provider, provider_user_id, display_name, access_token_enc, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	if err := tx.QueryRow(ctx, insertConnection,
		conn.ID, conn.AccountID, conn.Provider, conn.ProviderUserID,
		conn.DisplayName, conn.AccessTokenEnc,
	).Scan(&conn.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, nil, repository.ErrConflict
		}
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &acc, &conn, nil
}

func (s *Store) ConnectionsByAccount(ctx context.Context, accountID string) ([]repository.LinkedConnection, error) {
	const query = `
		SELECT id, account_id, provider, provider_user_id, display_name, access_token_enc, created_at
		FROM account_connection WHERE account_id = $1
		ORDER BY created_at
	`
	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.LinkedConnection
	for rows.Next() {
		var c repository.LinkedConnection
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Provider, &c.ProviderUserID,
			&c.DisplayName, &c.AccessTokenEnc, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
