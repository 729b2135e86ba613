package services

import (
	"context"
	"testing"

	"github.com/teambeat/standupbot/internal/models"
)

func TestRegisterTracksMembership(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)
	ctx := context.Background()

	settings, err := stack.settings.Get(ctx, alice.ID, "guild-1")
	if err != nil || settings == nil {
		t.Fatalf("creator settings: %v err=%v", settings, err)
	}
	if settings.DefaultStandupGroup != "channel-1" {
		t.Fatalf("creator default = %q", settings.DefaultStandupGroup)
	}

	stack.coordinator.AddUsers(ctx, "channel-1", []models.User{bob}, "guild-1")
	settings, _ = stack.settings.Get(ctx, bob.ID, "guild-1")
	if settings == nil || len(settings.StandupGroups) != 1 {
		t.Fatalf("added user settings = %+v", settings)
	}

	stack.coordinator.RemoveUsers(ctx, "channel-1", []string{bob.ID}, "guild-1")
	settings, _ = stack.settings.Get(ctx, bob.ID, "guild-1")
	if len(settings.StandupGroups) != 0 {
		t.Fatalf("removed user still tracks %v", settings.StandupGroups)
	}
}

func TestStandupsForUser(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)
	ctx := context.Background()

	result := stack.coordinator.GetStandupsForUser(ctx, alice.ID, "guild-1")
	if result.IsError() {
		t.Fatalf("standups for user: %s", result.Message)
	}
	if len(result.Data) != 1 {
		t.Fatalf("got %d refs, want 1", len(result.Data))
	}
	if !result.Data[0].IsDefault {
		t.Fatal("a sole group must be reported as the default")
	}
	if result.Data[0].ConversationName != "engineering" {
		t.Fatalf("ref name = %q", result.Data[0].ConversationName)
	}
}

func TestWorkItemsAgainstDefaultGroup(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)
	ctx := context.Background()

	if result := stack.coordinator.AddWorkItem(ctx, alice.ID, "guild-1", "reviewed the release"); result.IsError() {
		t.Fatalf("add work item: %s", result.Message)
	}

	// Work items land in completed work; the pending list reads planned work,
	// which fills in when the user submits a response.
	stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act")
	stack.coordinator.SubmitResponse(ctx, "channel-1",
		models.StandupResponse{UserID: alice.ID, CompletedWork: "done", PlannedWork: "ship feature\nwrite docs"}, "guild-1", nil)

	items := stack.coordinator.GetWorkItems(ctx, alice.ID, "guild-1")
	if items.IsError() {
		t.Fatalf("get work items: %s", items.Message)
	}
	if len(items.Data) != 2 {
		t.Fatalf("got %d work items, want the planned lines", len(items.Data))
	}

	if result := stack.coordinator.ClearWorkItems(ctx, alice.ID, "guild-1"); result.IsError() {
		t.Fatalf("clear work items: %s", result.Message)
	}
	items = stack.coordinator.GetWorkItems(ctx, alice.ID, "guild-1")
	if len(items.Data) != 0 {
		t.Fatalf("work items remain after clear: %v", items.Data)
	}
}

func TestWorkItemsWithoutAnyGroup(t *testing.T) {
	stack := newTestStack(nil)
	result := stack.coordinator.AddWorkItem(context.Background(), "stranger", "guild-1", "something")
	if !result.IsError() {
		t.Fatal("work item without group membership must fail")
	}
}

func TestPersonalHistory(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, true)
	ctx := context.Background()

	stack.coordinator.AddUsers(ctx, "channel-1", []models.User{bob}, "guild-1")
	stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act")
	stack.coordinator.SubmitResponse(ctx, "channel-1",
		models.StandupResponse{UserID: alice.ID, CompletedWork: "a", PlannedWork: "b"}, "guild-1", nil)
	stack.coordinator.SubmitResponse(ctx, "channel-1",
		models.StandupResponse{UserID: bob.ID, CompletedWork: "c", PlannedWork: "d"}, "guild-1", nil)
	stack.coordinator.CloseStandup(ctx, "channel-1", "guild-1", false)

	result := stack.coordinator.PersonalHistory(ctx, alice.ID, "guild-1")
	if result.IsError() {
		t.Fatalf("personal history: %s", result.Message)
	}
	if len(result.Data) != 1 {
		t.Fatalf("got %d entries, want 1", len(result.Data))
	}
	if len(result.Data[0].Responses) != 1 {
		t.Fatalf("entry has %d responses, want only Alice's", len(result.Data[0].Responses))
	}
	if result.Data[0].Responses[0].UserName != "Alice" {
		t.Fatalf("response attributed to %q", result.Data[0].Responses[0].UserName)
	}
}
