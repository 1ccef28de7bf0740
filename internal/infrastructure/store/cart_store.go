package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const cartItemSelect = `SELECT
		ci.id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		p.sku, p.name, p.description, p.price, p.stock_level, p.category_id,
		p.created_at AS product_created_at, p.updated_at AS product_updated_at
	FROM cart_items ci
	JOIN products p ON ci.product_id = p.id`

// cartItemRow is the flat shape of cartItemSelect
type cartItemRow struct {
	ID               int64           `db:"id"`
	ProductID        int64           `db:"product_id"`
	Quantity         int             `db:"quantity"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
	SKU              string          `db:"sku"`
	Name             string          `db:"name"`
	Description      string          `db:"description"`
	Price            decimal.Decimal `db:"price"`
	StockLevel       int             `db:"stock_level"`
	CategoryID       sql.NullInt64   `db:"category_id"`
	ProductCreatedAt time.Time       `db:"product_created_at"`
	ProductUpdatedAt time.Time       `db:"product_updated_at"`
}

func (r cartItemRow) record() CartItemRecord {
	return CartItemRecord{
		ID:        r.ID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Product: ProductRecord{
			ID:          r.ProductID,
			SKU:         r.SKU,
			Name:        r.Name,
			Description: r.Description,
			Price:       r.Price,
			StockLevel:  r.StockLevel,
			CategoryID:  r.CategoryID,
			CreatedAt:   r.ProductCreatedAt,
			UpdatedAt:   r.ProductUpdatedAt,
		},
	}
}

// SQLCartStore implements CartStore on PostgreSQL or MySQL
type SQLCartStore struct {
	db *sqlx.DB
}

// NewSQLCartStore creates a cart store backed by db
func NewSQLCartStore(db *sqlx.DB) *SQLCartStore {
	return &SQLCartStore{db: db}
}

// UpsertItem relies on the unique product_id constraint so the merge is one conditional write
func (s *SQLCartStore) UpsertItem(ctx context.Context, productID int64, quantity int) (int64, error) {
	if s.db.DriverName() == DriverPostgres {
		var id int64
		err := s.db.QueryRowxContext(ctx, `
			INSERT INTO cart_items (product_id, quantity) VALUES ($1, $2)
			ON CONFLICT (product_id) DO UPDATE SET
				quantity = cart_items.quantity + EXCLUDED.quantity,
				updated_at = CURRENT_TIMESTAMP
			RETURNING id
		`, productID, quantity).Scan(&id)
		if err != nil {
			return 0, errors.Wrap(err, "upsert cart item")
		}
		return id, nil
	}

	// LAST_INSERT_ID(id) makes LastInsertId report the existing row on the update branch
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (product_id, quantity) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE
			id = LAST_INSERT_ID(id),
			quantity = quantity + VALUES(quantity),
			updated_at = CURRENT_TIMESTAMP
	`, productID, quantity)
	if err != nil {
		return 0, errors.Wrap(err, "upsert cart item")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "upsert cart item")
	}
	return id, nil
}

func (s *SQLCartStore) FindItem(ctx context.Context, itemID int64) (*CartItemRecord, error) {
	var row cartItemRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(cartItemSelect+` WHERE ci.id = ?`), itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get cart item")
	}
	rec := row.record()
	return &rec, nil
}

func (s *SQLCartStore) ListItems(ctx context.Context) ([]CartItemRecord, error) {
	var rows []cartItemRow
	err := s.db.SelectContext(ctx, &rows, cartItemSelect+` ORDER BY ci.created_at DESC, ci.id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}

	items := make([]CartItemRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.record())
	}
	return items, nil
}

func (s *SQLCartStore) SetQuantity(ctx context.Context, itemID int64, quantity int) (bool, error) {
	query := s.db.Rebind(`UPDATE cart_items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, quantity, itemID)
	if err != nil {
		return false, errors.Wrap(err, "update cart item")
	}
	return affected(res)
}

func (s *SQLCartStore) DeleteItem(ctx context.Context, itemID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM cart_items WHERE id = ?`), itemID)
	if err != nil {
		return false, errors.Wrap(err, "delete cart item")
	}
	return affected(res)
}

func (s *SQLCartStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cart_items`)
	if err != nil {
		return 0, errors.Wrap(err, "clear cart")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "clear cart")
	}
	return n, nil
}
