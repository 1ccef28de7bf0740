package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const productColumns = `id, sku, name, description, price, stock_level, category_id, created_at, updated_at`

var assignableProductColumns = map[string]bool{
	ColumnSKU:         true,
	ColumnName:        true,
	ColumnDescription: true,
	ColumnPrice:       true,
	ColumnStockLevel:  true,
	ColumnCategoryID:  true,
}

// SQLProductStore implements ProductStore on PostgreSQL or MySQL
type SQLProductStore struct {
	db *sqlx.DB
}

// NewSQLProductStore creates a product store backed by db
func NewSQLProductStore(db *sqlx.DB) *SQLProductStore {
	return &SQLProductStore{db: db}
}

func (s *SQLProductStore) Insert(ctx context.Context, p NewProductRecord) (int64, error) {
	query := `INSERT INTO products (sku, name, description, price, stock_level, category_id)
		VALUES (?, ?, ?, ?, ?, ?)`
	args := []any{p.SKU, p.Name, p.Description, p.Price, p.StockLevel, p.CategoryID}

	id, err := insertReturningID(ctx, s.db, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, errors.Wrap(err, "insert product")
	}
	return id, nil
}

func (s *SQLProductStore) FindByID(ctx context.Context, id int64) (*ProductRecord, error) {
	return s.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
}

func (s *SQLProductStore) FindBySKU(ctx context.Context, sku string) (*ProductRecord, error) {
	return s.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = ?`, sku)
}

func (s *SQLProductStore) findOne(ctx context.Context, query string, args ...any) (*ProductRecord, error) {
	var p ProductRecord
	err := s.db.GetContext(ctx, &p, s.db.Rebind(query), args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get product")
	}
	return &p, nil
}

// List runs the count and the page query on one connection
func (s *SQLProductStore) List(ctx context.Context, limit, offset int) ([]ProductRecord, int, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "acquire connection")
	}
	defer conn.Close()

	var total int
	if err := conn.GetContext(ctx, &total, `SELECT COUNT(*) FROM products`); err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	products := make([]ProductRecord, 0, limit)
	query := s.db.Rebind(`SELECT ` + productColumns + ` FROM products
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := conn.SelectContext(ctx, &products, query, limit, offset); err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	return products, total, nil
}

// Update applies the assignments and reports whether a row matched
func (s *SQLProductStore) Update(ctx context.Context, id int64, assignments []Assignment) (bool, error) {
	if len(assignments) == 0 {
		return false, nil
	}

	sets := make([]string, 0, len(assignments)+1)
	args := make([]any, 0, len(assignments)+1)
	for _, a := range assignments {
		if !assignableProductColumns[a.Column] {
			return false, errors.Errorf("column %q cannot be updated", a.Column)
		}
		sets = append(sets, a.Column+" = ?")
		args = append(args, a.Value)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := s.db.Rebind(`UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicate
		}
		return false, errors.Wrap(err, "update product")
	}
	return affected(res)
}

func (s *SQLProductStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return false, errors.Wrap(err, "delete product")
	}
	return affected(res)
}

// DecrementStock is a single conditional write so concurrent callers cannot overdraw stock
func (s *SQLProductStore) DecrementStock(ctx context.Context, id int64, quantity int) (bool, error) {
	query := s.db.Rebind(`UPDATE products
		SET stock_level = stock_level - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_level >= ?`)
	res, err := s.db.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return false, errors.Wrap(err, "decrement stock")
	}
	return affected(res)
}

// insertReturningID hides the RETURNING / LastInsertId difference between dialects
func insertReturningID(ctx context.Context, db *sqlx.DB, query string, args ...any) (int64, error) {
	if db.DriverName() == DriverPostgres {
		var id int64
		err := db.QueryRowxContext(ctx, db.Rebind(query+` RETURNING id`), args...).Scan(&id)
		return id, err
	}

	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}
