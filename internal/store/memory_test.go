package store

import (
	"context"
	"testing"

	"github.com/teambeat/standupbot/internal/models"
)

func TestMemoryRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[GroupRecord]()

	record := GroupRecord{
		ID:       "channel-1",
		TenantID: "guild-1",
		Type:     "standupGroup",
		Users:    []models.User{{ID: "u1", Name: "Alice"}},
	}
	if err := m.Set(ctx, record); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, found, err := m.Get(ctx, "channel-1", "guild-1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.ConversationName != record.ConversationName || len(got.Users) != 1 {
		t.Fatalf("got %+v, want stored record", got)
	}

	if err := m.Delete(ctx, "channel-1", "guild-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := m.Get(ctx, "channel-1", "guild-1"); found {
		t.Fatal("record should be gone after delete")
	}
}

func TestMemoryMissingRecord(t *testing.T) {
	m := NewMemory[GroupRecord]()
	_, found, err := m.Get(context.Background(), "nope", "guild-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected found=false for a missing record")
	}
}

func TestMemoryRejectsMissingTenant(t *testing.T) {
	m := NewMemory[GroupRecord]()
	if err := m.Set(context.Background(), GroupRecord{ID: "channel-1"}); err != ErrTenantRequired {
		t.Fatalf("set without tenant: err = %v, want ErrTenantRequired", err)
	}
}

func TestMemoryTenantIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[GroupRecord]()

	m.Set(ctx, GroupRecord{ID: "channel-1", TenantID: "guild-a"})
	m.Set(ctx, GroupRecord{ID: "channel-2", TenantID: "guild-a"})
	m.Set(ctx, GroupRecord{ID: "channel-1", TenantID: "guild-b"})

	a, err := m.QueryByTenant(ctx, "guild-a")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(a) != 2 {
		t.Fatalf("guild-a has %d records, want 2", len(a))
	}

	got, found, _ := m.Get(ctx, "channel-1", "guild-b")
	if !found || got.TenantID != "guild-b" {
		t.Fatalf("tenant b lookup returned %+v found=%v", got, found)
	}
}
