package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-planner/internal/persistence"
	"github.com/example/room-planner/internal/persistence/sqlite"
	"github.com/example/room-planner/internal/persistence/sqlstore"
)

// SQLiteHarness is a migrated SQLite store in a temporary directory.
type SQLiteHarness struct {
	Store *sqlstore.Store
}

// NewSQLiteHarness opens and migrates a fresh database; it is closed when the test ends.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	store, err := sqlite.Open(ctx, sqlite.DefaultConfig(filepath.Join(tb.TempDir(), "planner.db")))
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })

	if _, err := sqlite.Migrate(ctx, store, nil); err != nil {
		tb.Fatalf("failed to migrate sqlite store: %v", err)
	}
	return &SQLiteHarness{Store: store}
}

// Seed writes a room with its slots and returns them.
func (h *SQLiteHarness) Seed(tb testing.TB, room persistence.Room, windows ...[2]string) []persistence.Slot {
	tb.Helper()
	ctx := context.Background()
	if err := h.Store.CreateRoom(ctx, room); err != nil {
		tb.Fatalf("CreateRoom failed: %v", err)
	}
	slots := make([]persistence.Slot, 0, len(windows))
	for _, w := range windows {
		slot := NewSlot(room.ID, w[0], w[1])
		if err := h.Store.CreateSlot(ctx, slot); err != nil {
			tb.Fatalf("CreateSlot failed: %v", err)
		}
		slots = append(slots, slot)
	}
	return slots
}

// SeedUser writes a user and returns it.
func (h *SQLiteHarness) SeedUser(tb testing.TB, opts ...UserOption) persistence.User {
	tb.Helper()
	user := NewUser(opts...)
	if err := h.Store.CreateUser(context.Background(), user); err != nil {
		tb.Fatalf("CreateUser failed: %v", err)
	}
	return user
}
