package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, def, want int
	}{
		{0, 50, 50},
		{-3, 50, 50},
		{1, 50, 1},
		{120, 50, 120},
		{500, 50, 500},
		{501, 50, 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.limit, tt.def), "limit=%d", tt.limit)
	}
}

func TestNilIfEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, nilIfEmpty(""))
	got := nilIfEmpty("office@ambit.edu")
	if assert.NotNil(t, got) {
		assert.Equal(t, "office@ambit.edu", derefStr(got))
	}
	assert.Empty(t, derefStr(nil))
}
