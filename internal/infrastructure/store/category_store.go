package store

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// SQLCategoryStore implements CategoryStore on PostgreSQL or MySQL
type SQLCategoryStore struct {
	db *sqlx.DB
}

func NewSQLCategoryStore(db *sqlx.DB) *SQLCategoryStore {
	return &SQLCategoryStore{db: db}
}

func (s *SQLCategoryStore) Insert(ctx context.Context, name, description string) (int64, error) {
	desc := sql.NullString{String: description, Valid: description != ""}
	id, err := insertReturningID(ctx, s.db, `INSERT INTO categories (name, description) VALUES (?, ?)`, name, desc)
	if err != nil {
		return 0, errors.Wrap(err, "insert category")
	}
	return id, nil
}

func (s *SQLCategoryStore) FindByName(ctx context.Context, name string) (*CategoryRecord, error) {
	var c CategoryRecord
	err := s.db.GetContext(ctx, &c, s.db.Rebind(`
		SELECT id, name, description, created_at, updated_at FROM categories WHERE name = ?
	`), name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get category")
	}
	return &c, nil
}

func (s *SQLCategoryStore) List(ctx context.Context) ([]CategoryRecord, error) {
	categories := []CategoryRecord{}
	err := s.db.SelectContext(ctx, &categories, `
		SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}
