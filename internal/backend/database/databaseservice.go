package database

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by write operations that target a resource id which does not exist.
var ErrNotFound = errors.New("resource not found")

type DatabaseService interface {
	CreateDatabase() (*sqlx.DB, error)
	DoesDatabaseExist() bool
	Close() error

	// CreateResource inserts a new row and returns the id assigned by the database.
	// ID, CreatedAt and UpdatedAt of the given resource are expected to be set by the caller
	// except for ID which is always assigned by the database.
	CreateResource(ctx context.Context, resource *Resource) (int64, error)
	// GetAllResources returns every row in primary key order.
	GetAllResources(ctx context.Context) ([]*Resource, error)
	// GetResourceByID returns nil and no error when no row matches.
	GetResourceByID(ctx context.Context, id int64) (*Resource, error)
	UpdateResource(ctx context.Context, resource *Resource) error
	DeleteResource(ctx context.Context, id int64) error
	CountResources(ctx context.Context) (int, error)
}
