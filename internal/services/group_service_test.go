package services

import (
	"context"
	"testing"

	"github.com/teambeat/standupbot/internal/models"
	"github.com/teambeat/standupbot/internal/notes"
	"github.com/teambeat/standupbot/internal/store"
)

type stubRemarks struct {
	remark string
	err    error
}

func (s stubRemarks) ClosingRemark(ctx context.Context, instructions string) (string, error) {
	return s.remark, s.err
}

type captureSink struct {
	summaries []models.StandupSummary
}

func (c *captureSink) AppendSummary(ctx context.Context, summary models.StandupSummary) error {
	c.summaries = append(c.summaries, summary)
	return nil
}

func (c *captureSink) Info() models.NotesInfo {
	return models.NotesInfo{Type: "channel", TargetID: "notes-channel"}
}

type testStack struct {
	coordinator *StandupCoordinator
	persistent  *PersistentStandupService
	settings    *UserSettingsService
	sink        *captureSink
}

func newTestStack(remarks RemarkGenerator) *testStack {
	persistent := NewPersistentStandupService(store.NewMemory[store.GroupRecord](), store.NewMemory[store.HistoryRecord]())
	manager := NewStandupGroupManager(persistent)
	sink := &captureSink{}
	groups := NewStandupGroupService(persistent, manager, remarks, func(models.NotesInfo) notes.Sink { return sink })
	settings := NewUserSettingsService(store.NewMemory[store.UserSettingsRecord]())
	users := NewUserStandupService(settings, groups)
	return &testStack{
		coordinator: NewStandupCoordinator(groups, users, settings),
		persistent:  persistent,
		settings:    settings,
		sink:        sink,
	}
}

var (
	alice = models.User{ID: "u1", Name: "Alice"}
	bob   = models.User{ID: "u2", Name: "Bob"}
)

func register(t *testing.T, stack *testStack, saveHistory bool) {
	t.Helper()
	result := stack.coordinator.RegisterGroup(context.Background(), "channel-1", "engineering", alice, "guild-1", saveHistory, models.NotesInfo{Type: "none"})
	if result.IsError() {
		t.Fatalf("register: %s", result.Message)
	}
}

func TestRegisterGroupTwice(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)

	result := stack.coordinator.RegisterGroup(context.Background(), "channel-1", "engineering", alice, "guild-1", false, models.NotesInfo{Type: "none"})
	if !result.IsError() {
		t.Fatal("second register for the same conversation must fail")
	}
}

func TestOperationsWithoutGroup(t *testing.T) {
	stack := newTestStack(nil)
	ctx := context.Background()

	if result := stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act"); !result.IsError() {
		t.Fatal("start without a group must fail")
	}
	if result := stack.coordinator.GetGroupDetails(ctx, "channel-1", "guild-1"); !result.IsError() {
		t.Fatal("details without a group must fail")
	}
	if result := stack.coordinator.AddParkingLotItem(ctx, "channel-1", "guild-1", "u1", "x"); !result.IsError() {
		t.Fatal("parking lot without a group must fail")
	}
}

func TestSubmitValidation(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)
	ctx := context.Background()
	stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act")

	result := stack.coordinator.SubmitResponse(ctx, "channel-1", models.StandupResponse{UserID: "u1", CompletedWork: "done"}, "guild-1", nil)
	if !result.IsError() {
		t.Fatal("a response without planned work must be rejected")
	}
}

func TestSubmitRequiresActiveStandup(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)

	result := stack.coordinator.SubmitResponse(context.Background(), "channel-1",
		models.StandupResponse{UserID: "u1", CompletedWork: "done", PlannedWork: "next"}, "guild-1", nil)
	if !result.IsError() {
		t.Fatal("submitting while idle must fail")
	}
}

func TestStandupFlow(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, true)
	ctx := context.Background()

	if result := stack.coordinator.AddUsers(ctx, "channel-1", []models.User{bob}, "guild-1"); result.IsError() {
		t.Fatalf("add users: %s", result.Message)
	}

	if result := stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act-1"); result.IsError() {
		t.Fatalf("start: %s", result.Message)
	}
	if result := stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act-2"); !result.IsError() {
		t.Fatal("starting twice must fail")
	}

	submit := func(userID, completed, planned string) models.Result[string] {
		return stack.coordinator.SubmitResponse(ctx, "channel-1",
			models.StandupResponse{UserID: userID, CompletedWork: completed, PlannedWork: planned}, "guild-1", nil)
	}
	if result := submit("u1", "wrote tests", "refactor"); result.IsError() {
		t.Fatalf("submit u1: %s", result.Message)
	}
	if result := submit("u2", "fixed bug", "deploy"); result.IsError() {
		t.Fatalf("submit u2: %s", result.Message)
	}
	if result := submit("u1", "wrote tests and docs", "refactor"); result.IsError() {
		t.Fatalf("resubmit u1: %s", result.Message)
	}

	closeResult := stack.coordinator.CloseStandup(ctx, "channel-1", "guild-1", false)
	if closeResult.IsError() {
		t.Fatalf("close: %s", closeResult.Message)
	}
	if len(closeResult.Data.Summary) != 2 {
		t.Fatalf("summary has %d rows, want one per user", len(closeResult.Data.Summary))
	}
	for _, row := range closeResult.Data.Summary {
		if row.UserName == "Alice" && row.CompletedWork != "wrote tests and docs" {
			t.Fatalf("Alice's row kept the stale response %q", row.CompletedWork)
		}
	}

	history := stack.coordinator.GroupHistory(ctx, "channel-1", "guild-1")
	if history.IsError() {
		t.Fatalf("history: %s", history.Message)
	}
	if len(history.Data) != 1 {
		t.Fatalf("history has %d entries, want 1", len(history.Data))
	}
	if history.Data[0].GroupName != "engineering" {
		t.Fatalf("history group name = %q", history.Data[0].GroupName)
	}
}

func TestCloseWithoutResponses(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)
	ctx := context.Background()
	stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act")

	result := stack.coordinator.CloseStandup(ctx, "channel-1", "guild-1", false)
	if !result.IsError() {
		t.Fatal("closing with zero responses must fail")
	}
}

func TestCloseAttachesRemark(t *testing.T) {
	stack := newTestStack(stubRemarks{remark: "Great pace this week!"})
	register(t, stack, false)
	ctx := context.Background()

	stack.coordinator.SetCustomInstructions(ctx, "channel-1", "guild-1", "end with encouragement")
	stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act")
	stack.coordinator.SubmitResponse(ctx, "channel-1",
		models.StandupResponse{UserID: "u1", CompletedWork: "done", PlannedWork: "next"}, "guild-1", nil)

	result := stack.coordinator.CloseStandup(ctx, "channel-1", "guild-1", false)
	if result.IsError() {
		t.Fatalf("close: %s", result.Message)
	}
	if result.Data.Remark != "Great pace this week!" {
		t.Fatalf("remark = %q", result.Data.Remark)
	}
}

func TestParkingLot(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)
	ctx := context.Background()

	stack.coordinator.AddParkingLotItem(ctx, "channel-1", "guild-1", "u1", "first topic")
	stack.coordinator.AddParkingLotItem(ctx, "channel-1", "guild-1", "u1", "second topic")

	items := stack.coordinator.GetParkingLotItems(ctx, "channel-1", "guild-1")
	if items.IsError() {
		t.Fatalf("get items: %s", items.Message)
	}
	if len(items.Data) != 2 {
		t.Fatalf("got %d items, want the merged text split per line", len(items.Data))
	}
	if items.Data[0].UserName != "Alice" {
		t.Fatalf("item attributed to %q, want Alice", items.Data[0].UserName)
	}

	stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act")
	if result := stack.coordinator.ClearParkingLot(ctx, "channel-1", "guild-1"); !result.IsError() {
		t.Fatal("clearing during an active standup must fail")
	}
	stack.coordinator.CloseStandup(ctx, "channel-1", "guild-1", true)

	if result := stack.coordinator.ClearParkingLot(ctx, "channel-1", "guild-1"); result.IsError() {
		t.Fatalf("clear: %s", result.Message)
	}
	items = stack.coordinator.GetParkingLotItems(ctx, "channel-1", "guild-1")
	if len(items.Data) != 0 {
		t.Fatalf("parking lot still has %d items after clear", len(items.Data))
	}
}

func TestGroupStateSurvivesReload(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)
	ctx := context.Background()

	stack.coordinator.SetSaveHistory(ctx, "channel-1", "guild-1", true)
	stack.coordinator.SetCustomInstructions(ctx, "channel-1", "guild-1", "be brief")
	stack.coordinator.SetNotesTarget(ctx, "channel-1", "guild-1", models.NotesInfo{Type: "channel", TargetID: "notes-1"})
	stack.coordinator.AddUsers(ctx, "channel-1", []models.User{bob}, "guild-1")

	group, err := stack.persistent.LoadGroup(ctx, "channel-1", "guild-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if group == nil {
		t.Fatal("group not found after save")
	}
	if !group.SaveHistory() {
		t.Fatal("save-history flag was lost")
	}
	if group.CustomInstructions() != "be brief" {
		t.Fatalf("instructions = %q", group.CustomInstructions())
	}
	if group.Notes().TargetID != "notes-1" {
		t.Fatalf("notes target = %+v", group.Notes())
	}
	if len(group.Users()) != 2 {
		t.Fatalf("membership = %d users, want 2", len(group.Users()))
	}
}

func TestPersistToNotes(t *testing.T) {
	stack := newTestStack(nil)
	register(t, stack, false)
	ctx := context.Background()

	if result := stack.coordinator.PersistToNotes(ctx, "channel-1", "guild-1"); !result.IsError() {
		t.Fatal("persisting with no responses must fail")
	}

	stack.coordinator.StartStandup(ctx, "channel-1", "guild-1", "act")
	stack.coordinator.SubmitResponse(ctx, "channel-1",
		models.StandupResponse{UserID: "u1", CompletedWork: "done", PlannedWork: "next"}, "guild-1", nil)

	if result := stack.coordinator.PersistToNotes(ctx, "channel-1", "guild-1"); result.IsError() {
		t.Fatalf("persist: %s", result.Message)
	}
	if len(stack.sink.summaries) != 1 {
		t.Fatalf("sink received %d summaries, want 1", len(stack.sink.summaries))
	}
}
