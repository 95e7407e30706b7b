package cache

import (
	"context"
	"testing"

	"bizup-dashboard/internal/loader"
	"bizup-dashboard/internal/logger"
)

var (
	_ loader.SnapshotStore = (*MemoryStore)(nil)
	_ loader.SnapshotStore = (*RedisStore)(nil)
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := s.LoadSnapshot(ctx, "menu"); ok || err != nil {
		t.Fatalf("Expected miss, got ok=%v err=%v", ok, err)
	}

	payload := []byte(`{"data":[1,2]}`)
	if err := s.SaveSnapshot(ctx, "menu", payload); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}
	payload[0] = 'x'

	got, ok, err := s.LoadSnapshot(ctx, "menu")
	if err != nil || !ok {
		t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != `{"data":[1,2]}` {
		t.Errorf("Expected stored copy to be unaffected by caller writes, got %s", got)
	}
}

func TestNewRedisStore_RequiresAddr(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "", logger.Nop()); err == nil {
		t.Error("Expected error for empty address")
	}
}
