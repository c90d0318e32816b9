// Package dbtest opens migrated in-memory SQLite databases for repository tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/database"
	"github.com/Additional-Code/luxe/internal/migration"
)

var seq atomic.Int64

// New returns a fresh, fully migrated database closed at test cleanup.
func New(t testing.TB) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mig, err := migration.NewMigrator(db, "sqlite", zap.NewNop())
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := mig.Up(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Connections wraps db as both writer and reader.
func Connections(db *bun.DB) *database.Connections {
	return &database.Connections{Writer: db, Reader: db}
}
