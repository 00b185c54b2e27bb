package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/healthchecker/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Ports implemented by the memory and Postgres adapters.
type ServiceStore interface {
	// List returns every service ordered by name.
	List(ctx context.Context) ([]domain.Service, error)
	Get(ctx context.Context, id domain.ServiceID) (domain.Service, error)
	Create(ctx context.Context, s *domain.Service) error
	Update(ctx context.Context, id domain.ServiceID, p domain.ServicePatch) (domain.Service, error)
	Delete(ctx context.Context, id domain.ServiceID) error
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	// CreateUser returns ErrConflict when the username is taken.
	CreateUser(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
