package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/campus-market-backend/internal/database"
	"github.com/wichananm65/campus-market-backend/internal/product"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	lockProductQuery = `
		SELECT seller_id, status
		FROM products
		WHERE id = $1
		FOR UPDATE
	`
	insertOrderQuery = `
		INSERT INTO orders (product_id, buyer_id, seller_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	markProductSoldQuery = `UPDATE products SET status = $1 WHERE id = $2`

	listOrdersByBuyerQuery = `
		SELECT id, product_id, buyer_id, seller_id, status, created_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY id
	`
	listOrdersBySellerQuery = `
		SELECT id, product_id, buyer_id, seller_id, status, created_at
		FROM orders
		WHERE seller_id = $1
		ORDER BY id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Purchase locks the product row, checks ownership and availability, inserts
// the order and marks the product sold in one transaction.
func (r *PostgresRepository) Purchase(ctx context.Context, ord Order) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var (
		sellerID int64
		status   string
	)
	if err := tx.QueryRowContext(ctx, lockProductQuery, ord.ProductID).Scan(&sellerID, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrProductNotFound
		}
		return Order{}, err
	}
	if sellerID != ord.SellerID {
		return Order{}, ErrSellerMismatch
	}
	if status != product.StatusAvailable {
		return Order{}, ErrProductUnavailable
	}

	err = tx.QueryRowContext(ctx,
		insertOrderQuery,
		ord.ProductID,
		ord.BuyerID,
		ord.SellerID,
		ord.Status,
		ord.CreatedAt,
	).Scan(&ord.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return Order{}, ErrBuyerNotFound
		}
		return Order{}, err
	}

	if _, err := tx.ExecContext(ctx, markProductSoldQuery, product.StatusSold, ord.ProductID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]Order, error) {
	return r.query(ctx, listOrdersByBuyerQuery, buyerID)
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID int64) ([]Order, error) {
	return r.query(ctx, listOrdersBySellerQuery, sellerID)
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var ord Order
		if err := rows.Scan(&ord.ID, &ord.ProductID, &ord.BuyerID, &ord.SellerID, &ord.Status, &ord.CreatedAt); err != nil {
			return nil, err
		}
		ord.CreatedAt = ord.CreatedAt.UTC()
		orders = append(orders, ord)
	}
	return orders, rows.Err()
}
