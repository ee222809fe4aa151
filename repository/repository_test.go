package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"12/2023/ND-CP": "12/2023/ND-CP",
		"50%":           `50\%`,
		"a_b":           `a\_b`,
		`c:\path`:       `c:\\path`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapNoRows(t *testing.T) {
	if err := mapNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	other := errors.New("boom")
	if err := mapNoRows(other); err != other {
		t.Fatalf("unexpected mapping of %v", err)
	}
	if err := mapNoRows(nil); err != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	slugErr := &pgconn.PgError{Code: "23505", ConstraintName: "legal_documents_slug_key"}
	if !isUniqueViolation(fmt.Errorf("insert: %w", slugErr), "slug") {
		t.Fatalf("expected slug violation")
	}
	if isUniqueViolation(slugErr, "email") {
		t.Fatalf("constraint hint should be respected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(nil, "") {
		t.Fatalf("nil is not a violation")
	}
}
