package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	slugErr := &pgconn.PgError{Code: "23505", ConstraintName: "collectives_slug_key"}

	assert.True(t, IsUniqueViolation(slugErr, ""))
	assert.True(t, IsUniqueViolation(slugErr, "collectives_slug_key"))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", slugErr), "collectives_slug_key"))
	assert.False(t, IsUniqueViolation(slugErr, "users_email_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS collectives")
	assert.Contains(t, schema, "collectives_slug_key")
	assert.Contains(t, schema, "users_email_key")
	assert.Contains(t, schema, "outbox")
}
