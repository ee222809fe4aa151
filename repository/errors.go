package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches
	ErrNotFound = errors.New("record not found")
	// ErrSlugTaken is returned when a unique slug constraint rejects a write
	ErrSlugTaken = errors.New("slug already exists")
	// ErrEmailTaken is returned when a user email is already registered
	ErrEmailTaken = errors.New("email already exists")
)

const uniqueViolation = "23505"

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error, constraintHint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraintHint == "" || strings.Contains(pgErr.ConstraintName, constraintHint)
}

// escapeLike escapes LIKE wildcards so s matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
