package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codearena/internal/db"
)

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	names, err := db.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	var count int
	require.NoError(t, database.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, len(names), count)

	var table string
	err = database.QueryRowContext(context.Background(),
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'session_submissions'`).Scan(&table)
	require.NoError(t, err)
	assert.Equal(t, "session_submissions", table)
}
