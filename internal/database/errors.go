package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// sqlState extracts the SQLSTATE code from either supported driver.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return err != nil && sqlState(err) == uniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return err != nil && sqlState(err) == foreignKeyViolation
}

func IsCheckViolation(err error) bool {
	return err != nil && sqlState(err) == checkViolation
}
