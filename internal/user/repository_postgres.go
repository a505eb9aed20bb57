package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/campus-market-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIDQuery = `
		SELECT id, email, password, name, college, phone, created_at
		FROM users
		WHERE id = $1
	`
	getUserByEmailQuery = `
		SELECT id, email, password, name, college, phone, created_at
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (email, password, name, college, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailQuery, email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	var phone sql.NullString
	if user.Phone != nil {
		phone = sql.NullString{String: *user.Phone, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		insertUserQuery,
		user.Email,
		user.Password,
		user.Name,
		user.College,
		phone,
		user.CreatedAt,
	).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}

	user.ID = id
	return user, nil
}

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var phone sql.NullString

	if err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.Name,
		&user.College,
		&phone,
		&user.CreatedAt,
	); err != nil {
		return User{}, err
	}

	if phone.Valid {
		user.Phone = &phone.String
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
