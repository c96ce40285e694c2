package database

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS resources (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	type VARCHAR(255) NOT NULL,
	description TEXT,
	images VARCHAR(255),
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
)`

type PostgresDatabase struct {
	sqlStore
	connectionString string
}

// NewPostgresDatabase opens a connection pool; no connection is made until the first query.
func NewPostgresDatabase(connectionString string) (DatabaseService, error) {
	db, err := sqlx.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}

	return &PostgresDatabase{
		sqlStore:         newSQLStore(db, sq.Dollar, postgresSchema),
		connectionString: connectionString,
	}, nil
}
