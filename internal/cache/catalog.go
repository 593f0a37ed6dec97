package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/example/room-planner/internal/scheduler"
)

// Catalog caches a scheduler.Catalog. Misses are not cached and backend
// failures fall through to the wrapped catalog.
type Catalog struct {
	next    scheduler.Catalog
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
}

var _ scheduler.Catalog = (*Catalog)(nil)

// NewCatalog wraps next.
func NewCatalog(next scheduler.Catalog, backend Backend, ttl time.Duration, logger *slog.Logger) *Catalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{next: next, backend: backend, ttl: ttl, logger: logger.With("component", "catalog_cache")}
}

func roomKey(roomID string) string  { return "room:" + roomID }
func slotsKey(roomID string) string { return "room:" + roomID + ":slots" }
func slotKey(slotID string) string  { return "slot:" + slotID }

// FindRoom implements scheduler.Catalog.
func (c *Catalog) FindRoom(ctx context.Context, roomID string) (scheduler.Room, bool, error) {
	var room scheduler.Room
	if c.load(ctx, roomKey(roomID), &room) {
		return room, true, nil
	}
	room, ok, err := c.next.FindRoom(ctx, roomID)
	if err == nil && ok {
		c.store(ctx, roomKey(roomID), room)
	}
	return room, ok, err
}

// ListSlots implements scheduler.Catalog.
func (c *Catalog) ListSlots(ctx context.Context, roomID string) ([]scheduler.Slot, error) {
	var slots []scheduler.Slot
	if c.load(ctx, slotsKey(roomID), &slots) {
		return slots, nil
	}
	slots, err := c.next.ListSlots(ctx, roomID)
	if err == nil {
		c.store(ctx, slotsKey(roomID), slots)
	}
	return slots, err
}

// FindSlot implements scheduler.Catalog.
func (c *Catalog) FindSlot(ctx context.Context, slotID string) (scheduler.Slot, bool, error) {
	var slot scheduler.Slot
	if c.load(ctx, slotKey(slotID), &slot) {
		return slot, true, nil
	}
	slot, ok, err := c.next.FindSlot(ctx, slotID)
	if err == nil && ok {
		c.store(ctx, slotKey(slotID), slot)
	}
	return slot, ok, err
}

// InvalidateRoom drops the cached room and its slot list.
func (c *Catalog) InvalidateRoom(ctx context.Context, roomID string) {
	if err := c.backend.Delete(ctx, roomKey(roomID), slotsKey(roomID)); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "room_id", roomID, "error", err)
	}
}

func (c *Catalog) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WarnContext(ctx, "cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Catalog) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.backend.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
