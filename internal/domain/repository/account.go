package repository

import (
	"context"
	"time"
)

// Account representa una cuenta local creada vía sign-up.
type Account struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// LinkedConnection representa la identidad externa vinculada a una cuenta.
type LinkedConnection struct {
	ID             string
	AccountID      string
	Provider       string // "github", "twitter", etc.
	ProviderUserID string // ID del usuario en el provider
	DisplayName    string
	AccessTokenEnc string // access token sellado con secretbox, puede ser vacío
	CreatedAt      time.Time
}

// CreateLinkedInput contiene los datos para crear una cuenta vinculada
// a una conexión externa pendiente.
type CreateLinkedInput struct {
	Username       string
	Provider       string
	ProviderUserID string
	DisplayName    string
	AccessTokenEnc string
}

// AccountRepository define operaciones sobre cuentas locales.
//
// La secuencia check-then-create del sign-up es una carrera read-then-write:
// CreateLinked debe ser atómico respecto a la unicidad del username (constraint
// en la BD o check-and-insert bajo lock) y retornar ErrConflict ante duplicado.
type AccountRepository interface {
	// FindByUsername busca una cuenta por username.
	// Retorna ErrNotFound si no existe.
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// GetByID busca una cuenta por ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Account, error)

	// CreateLinked crea una cuenta nueva junto con su conexión externa, en una
	// sola operación atómica. Retorna ErrConflict si el username ya existe.
	CreateLinked(ctx context.Context, input CreateLinkedInput) (*Account, *LinkedConnection, error)

	// ConnectionsByAccount lista las conexiones externas de una cuenta.
	ConnectionsByAccount(ctx context.Context, accountID string) ([]LinkedConnection, error)
}
