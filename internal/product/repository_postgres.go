package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wichananm65/campus-market-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, seller_id, name, description, category, price, image_url, status, created_at`

const (
	listProductsBySellerQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE seller_id = $1
		ORDER BY id
	`
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	insertProductQuery = `
		INSERT INTO products (seller_id, name, description, category, price, image_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List builds the WHERE clause from the non-empty filters. Search is a
// case-insensitive substring match on name or description.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Search != "" {
		p := arg(filter.Search)
		conds = append(conds, fmt.Sprintf(
			"(position(lower(%[1]s) in lower(name)) > 0 OR position(lower(%[1]s) in lower(description)) > 0)", p))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}

	q := "SELECT " + productColumns + " FROM products"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id"
	if filter.Limit > 0 {
		q += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		q += " OFFSET " + arg(filter.Offset)
	}

	return r.query(ctx, q, args...)
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID int64) ([]Product, error) {
	return r.query(ctx, listProductsBySellerQuery, sellerID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		insertProductQuery,
		p.SellerID,
		p.Name,
		p.Description,
		p.Category,
		p.Price,
		p.ImageURL,
		p.Status,
		p.CreatedAt,
	).Scan(&id)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err):
			return Product{}, ErrSellerNotFound
		case database.IsCheckViolation(err):
			return Product{}, ErrConstraint
		}
		return Product{}, err
	}

	p.ID = id
	return p, nil
}

// Update writes only the columns present in u.
func (r *PostgresRepository) Update(ctx context.Context, id int64, u Update) (Product, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Category != nil {
		set("category", *u.Category)
	}
	if u.Price != nil {
		set("price", *u.Price)
	}
	if u.ImageURL != nil {
		set("image_url", *u.ImageURL)
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, q, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Product{}, ErrNotFound
	case database.IsCheckViolation(err):
		return Product{}, ErrConstraint
	}
	return p, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrHasOrders
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	if err := scanner.Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.ImageURL,
		&p.Status,
		&p.CreatedAt,
	); err != nil {
		return Product{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
