package services

import (
	"context"
	"testing"

	"github.com/teambeat/standupbot/internal/store"
)

func newSettingsService() *UserSettingsService {
	return NewUserSettingsService(store.NewMemory[store.UserSettingsRecord]())
}

func TestSoleGroupBecomesDefault(t *testing.T) {
	svc := newSettingsService()
	ctx := context.Background()

	if err := svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	settings, err := svc.Get(ctx, "u1", "guild-1")
	if err != nil || settings == nil {
		t.Fatalf("get: settings=%v err=%v", settings, err)
	}
	if settings.DefaultStandupGroup != "channel-1" {
		t.Fatalf("default = %q, want the sole group", settings.DefaultStandupGroup)
	}
}

func TestSecondGroupKeepsDefault(t *testing.T) {
	svc := newSettingsService()
	ctx := context.Background()

	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-1")
	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-2")

	settings, _ := svc.Get(ctx, "u1", "guild-1")
	if settings.DefaultStandupGroup != "channel-1" {
		t.Fatalf("default = %q, joining a second group must not change it", settings.DefaultStandupGroup)
	}
	if len(settings.StandupGroups) != 2 {
		t.Fatalf("memberships = %v", settings.StandupGroups)
	}
}

func TestAddGroupIsIdempotent(t *testing.T) {
	svc := newSettingsService()
	ctx := context.Background()

	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-1")
	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-1")

	settings, _ := svc.Get(ctx, "u1", "guild-1")
	if len(settings.StandupGroups) != 1 {
		t.Fatalf("memberships = %v, want one entry", settings.StandupGroups)
	}
}

func TestRemoveDefaultFallsBackToRemaining(t *testing.T) {
	svc := newSettingsService()
	ctx := context.Background()

	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-1")
	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-2")
	if err := svc.RemoveStandupGroup(ctx, "u1", "guild-1", "channel-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	settings, _ := svc.Get(ctx, "u1", "guild-1")
	if settings.DefaultStandupGroup != "channel-2" {
		t.Fatalf("default = %q, want fallback to the sole remaining group", settings.DefaultStandupGroup)
	}
}

func TestRemoveDefaultWithSeveralLeftClearsIt(t *testing.T) {
	svc := newSettingsService()
	ctx := context.Background()

	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-1")
	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-2")
	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-3")
	svc.RemoveStandupGroup(ctx, "u1", "guild-1", "channel-1")

	settings, _ := svc.Get(ctx, "u1", "guild-1")
	if settings.DefaultStandupGroup != "" {
		t.Fatalf("default = %q, want empty when several groups remain", settings.DefaultStandupGroup)
	}
}

func TestSetDefaultRequiresMembership(t *testing.T) {
	svc := newSettingsService()
	ctx := context.Background()

	svc.AddStandupGroup(ctx, "u1", "guild-1", "channel-1")
	if err := svc.SetDefaultStandup(ctx, "u1", "guild-1", "channel-9"); err != ErrNotAMember {
		t.Fatalf("set default to a foreign group: err = %v, want ErrNotAMember", err)
	}
}

func TestSetDefaultEnrollsNewUser(t *testing.T) {
	svc := newSettingsService()
	ctx := context.Background()

	if err := svc.SetDefaultStandup(ctx, "u1", "guild-1", "channel-1"); err != nil {
		t.Fatalf("set default with no settings: %v", err)
	}

	settings, _ := svc.Get(ctx, "u1", "guild-1")
	if settings == nil || settings.DefaultStandupGroup != "channel-1" {
		t.Fatalf("settings = %+v, want enrollment with default", settings)
	}
	if len(settings.StandupGroups) != 1 {
		t.Fatalf("memberships = %v", settings.StandupGroups)
	}
}
