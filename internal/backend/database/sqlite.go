package database

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

// AUTOINCREMENT keeps SQLite from handing out the id of a deleted row again.
const sqliteSchema = `CREATE TABLE IF NOT EXISTS resources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	description TEXT,
	images TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

type SQLiteDatabase struct {
	sqlStore
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sqlx.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" opens its own empty database, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		sqlStore:         newSQLStore(db, sq.Question, sqliteSchema),
		connectionString: connectionString,
	}, nil
}
