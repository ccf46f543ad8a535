package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("db error: %w", unique)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsIntegrityViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, true},
		{"check", &pgconn.PgError{Code: "23514"}, true},
		{"foreign key wrapped", fmt.Errorf("x: %w", &pgconn.PgError{Code: "23503"}), true},
		{"not null", &pgconn.PgError{Code: "23502"}, true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIntegrityViolation(tt.err))
		})
	}
}

func TestIsDataException(t *testing.T) {
	tooLong := &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(100)"}

	assert.True(t, IsDataException(tooLong))
	assert.True(t, IsDataException(fmt.Errorf("db error: %w", &pgconn.PgError{Code: "22003"})))
	assert.False(t, IsDataException(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsDataException(errors.New("22001")))
	assert.False(t, IsIntegrityViolation(tooLong))
}

func TestErrorMessage(t *testing.T) {
	err := fmt.Errorf("db error: %w", &pgconn.PgError{Code: "22003", Message: "numeric field overflow"})
	assert.Equal(t, "numeric field overflow", ErrorMessage(err))
	assert.Empty(t, ErrorMessage(errors.New("boom")))
}

func TestConstraintName(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23514", ConstraintName: "perfumes_stock_check"})
	assert.Equal(t, "perfumes_stock_check", ConstraintName(err))
	assert.Empty(t, ConstraintName(errors.New("boom")))
}
