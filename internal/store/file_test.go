package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/teambeat/standupbot/internal/models"
)

func TestFileRoundtrip(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile[GroupRecord](t.TempDir(), "standup_groups")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	record := GroupRecord{
		ID:               "channel-1",
		TenantID:         "guild-1",
		Type:             "standupGroup",
		ConversationName: "engineering",
		Users:            []models.User{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}},
		SaveHistory:      true,
	}
	if err := f.Set(ctx, record); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, found, err := f.Get(ctx, "channel-1", "guild-1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.ConversationName != "engineering" || len(got.Users) != 2 || !got.SaveHistory {
		t.Fatalf("got %+v, want stored record", got)
	}
}

func TestFileMissingRecord(t *testing.T) {
	f, err := NewFile[GroupRecord](t.TempDir(), "standup_groups")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	_, found, err := f.Get(context.Background(), "nope", "guild-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected found=false for a missing record")
	}
}

func TestFileDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile[GroupRecord](t.TempDir(), "standup_groups")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	f.Set(ctx, GroupRecord{ID: "channel-1", TenantID: "guild-1"})
	if err := f.Delete(ctx, "channel-1", "guild-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.Delete(ctx, "channel-1", "guild-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestFileQueryByTenant(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	f, err := NewFile[GroupRecord](base, "standup_groups")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	f.Set(ctx, GroupRecord{ID: "channel-1", TenantID: "guild-a"})
	f.Set(ctx, GroupRecord{ID: "channel-2", TenantID: "guild-a"})
	f.Set(ctx, GroupRecord{ID: "channel-3", TenantID: "guild-b"})

	results, err := f.QueryByTenant(ctx, "guild-a")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("guild-a has %d records, want 2", len(results))
	}

	// Files live under the container directory, one per composite key.
	entries, err := os.ReadDir(filepath.Join(base, "standup_groups"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("found %d files, want 3", len(entries))
	}
}
