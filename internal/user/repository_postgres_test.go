package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userColumns = []string{"id", "email", "password", "name", "college", "phone", "created_at"}

func TestPostgresCreate_UniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@uni.edu", "hash", "A", "Uni", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), User{Email: "a@uni.edu", Password: "hash", Name: "A", College: "Uni"})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_ReturnsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	phone := "555"
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@uni.edu", "hash", "A", "Uni", "555", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	u, err := repo.Create(context.Background(), User{Email: "a@uni.edu", Password: "hash", Name: "A", College: "Uni", Phone: &phone})
	if err != nil || u.ID != 9 {
		t.Fatalf("unexpected result %+v %v", u, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM users").WithArgs("a@uni.edu").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(3, "a@uni.edu", "hash", "A", "Uni", nil, created))
	mock.ExpectQuery("FROM users").WithArgs("none@uni.edu").
		WillReturnRows(sqlmock.NewRows(userColumns))

	u, err := repo.GetByEmail(context.Background(), "a@uni.edu")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if u.ID != 3 || u.Phone != nil || !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := repo.GetByEmail(context.Background(), "none@uni.edu"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
