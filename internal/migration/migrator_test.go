package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/database"
)

func TestMigrator_UpDownOnSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mig, err := NewMigrator(db, "sqlite", zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, mig.Up(ctx))

	version, err := mig.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	for _, table := range []string{"categories", "products", "orders", "order_items"} {
		var count int
		err := db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(ctx, &count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}

	// Re-running is a no-op.
	require.NoError(t, mig.Up(ctx))

	require.NoError(t, mig.Down(ctx, 0, true))
	version, err = mig.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestGooseDialect(t *testing.T) {
	tests := []struct {
		driver  string
		dialect string
		dir     string
		wantErr bool
	}{
		{"postgres", "postgres", "sql/postgres", false},
		{"pg", "postgres", "sql/postgres", false},
		{"mysql", "mysql", "sql/mysql", false},
		{"sqlite", "sqlite3", "sql/sqlite", false},
		{"oracle", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dialect, dir, err := gooseDialect(tt.driver)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, dialect)
			assert.Equal(t, tt.dir, dir)
		})
	}
}
