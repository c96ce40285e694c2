package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const resourcesTable = "resources"

var resourceColumns = []string{"id", "name", "type", "description", "images", "created_at", "updated_at"}

// sqlStore holds the query logic shared by the SQL backed database services.
// Dialect differences are limited to the schema and the placeholder format.
type sqlStore struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	schema  string
}

func newSQLStore(db *sqlx.DB, placeholder sq.PlaceholderFormat, schema string) sqlStore {
	return sqlStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		schema:  schema,
	}
}

func (s *sqlStore) CreateDatabase() (*sqlx.DB, error) {
	if _, err := s.db.Exec(s.schema); err != nil {
		return nil, err
	}
	return s.db, nil
}

func (s *sqlStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *sqlStore) DoesDatabaseExist() bool {
	return s.db.Ping() == nil
}

func (s *sqlStore) insertQuery(resource *Resource) (string, []any, error) {
	return s.builder.Insert(resourcesTable).
		Columns("name", "type", "description", "images", "created_at", "updated_at").
		Values(
			resource.Name,
			resource.Type,
			resource.Description,
			resource.Images,
			resource.CreatedAt.UnixNano(),
			resource.UpdatedAt.UnixNano(),
		).
		Suffix("RETURNING id").
		ToSql()
}

func (s *sqlStore) updateQuery(resource *Resource) (string, []any, error) {
	return s.builder.Update(resourcesTable).
		Set("name", resource.Name).
		Set("type", resource.Type).
		Set("description", resource.Description).
		Set("images", resource.Images).
		Set("updated_at", resource.UpdatedAt.UnixNano()).
		Where(sq.Eq{"id": resource.ID}).
		ToSql()
}

func (s *sqlStore) CreateResource(ctx context.Context, resource *Resource) (int64, error) {
	query, args, err := s.insertQuery(resource)
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}

	var id int64
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *sqlStore) GetAllResources(ctx context.Context) ([]*Resource, error) {
	query, args, err := s.builder.Select(resourceColumns...).
		From(resourcesTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var rows []resourceRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	resources := make([]*Resource, 0, len(rows))
	for i := range rows {
		resources = append(resources, rows[i].toResource())
	}
	return resources, nil
}

func (s *sqlStore) GetResourceByID(ctx context.Context, id int64) (*Resource, error) {
	query, args, err := s.builder.Select(resourceColumns...).
		From(resourcesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var row resourceRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toResource(), nil
}

func (s *sqlStore) UpdateResource(ctx context.Context, resource *Resource) error {
	query, args, err := s.updateQuery(resource)
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *sqlStore) DeleteResource(ctx context.Context, id int64) error {
	query, args, err := s.builder.Delete(resourcesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *sqlStore) CountResources(ctx context.Context) (int, error) {
	query, args, err := s.builder.Select("COUNT(*)").From(resourcesTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
