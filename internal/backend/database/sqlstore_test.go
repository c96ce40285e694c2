package database

import (
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
)

func TestSQLStore_PlaceholderFormats(t *testing.T) {
	resource := &Resource{ID: 3, Name: "n", Type: "t", CreatedAt: time.Unix(0, 1), UpdatedAt: time.Unix(0, 2)}

	tests := []struct {
		name        string
		placeholder sq.PlaceholderFormat
		wantInsert  string
		wantUpdate  string
	}{
		{
			name:        "sqlite",
			placeholder: sq.Question,
			wantInsert:  "VALUES (?,?,?,?,?,?) RETURNING id",
			wantUpdate:  "WHERE id = ?",
		},
		{
			name:        "postgres",
			placeholder: sq.Dollar,
			wantInsert:  "VALUES ($1,$2,$3,$4,$5,$6) RETURNING id",
			wantUpdate:  "WHERE id = $6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newSQLStore(nil, tt.placeholder, "")

			insert, args, err := store.insertQuery(resource)
			if err != nil {
				t.Fatalf("insertQuery error: %v", err)
			}
			if !strings.HasSuffix(insert, tt.wantInsert) {
				t.Errorf("insert query %q does not end with %q", insert, tt.wantInsert)
			}
			if len(args) != 6 {
				t.Errorf("expected 6 insert args, got %d", len(args))
			}

			update, args, err := store.updateQuery(resource)
			if err != nil {
				t.Fatalf("updateQuery error: %v", err)
			}
			if !strings.HasSuffix(update, tt.wantUpdate) {
				t.Errorf("update query %q does not end with %q", update, tt.wantUpdate)
			}
			if args[len(args)-1] != int64(3) {
				t.Errorf("expected last update arg to be the id, got %v", args[len(args)-1])
			}
		})
	}
}

func TestNewDatabase_UnsupportedType(t *testing.T) {
	if _, err := NewDatabase("mysql", "dsn"); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestNewDatabase_SQLite(t *testing.T) {
	ds, err := NewDatabase(TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	if !ds.DoesDatabaseExist() {
		t.Fatal("expected database to exist")
	}
}
