package services

import (
	"context"

	"github.com/teambeat/standupbot/internal/models"
)

// StandupGroupManager is the durability boundary around StandupGroup: every
// logical operation loads a fresh group, applies a mutation, and saves it
// back. Callers that mutate a group outside Mutate lose their changes.
type StandupGroupManager struct {
	persistent *PersistentStandupService
}

func NewStandupGroupManager(persistent *PersistentStandupService) *StandupGroupManager {
	return &StandupGroupManager{persistent: persistent}
}

// Load fetches the group for a conversation, or nil if none is registered.
func (m *StandupGroupManager) Load(ctx context.Context, conversationID, tenantID string) (*models.StandupGroup, error) {
	return m.persistent.LoadGroup(ctx, conversationID, tenantID)
}

// Mutate runs fn against a freshly loaded group and persists the result.
// Returns (nil, nil) when no group is registered. The group is saved even if
// fn returns an error-free no-op; the cycle is not atomic across callers.
func (m *StandupGroupManager) Mutate(ctx context.Context, conversationID, tenantID string, fn func(*models.StandupGroup) error) (*models.StandupGroup, error) {
	group, err := m.persistent.LoadGroup(ctx, conversationID, tenantID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, nil
	}
	if err := fn(group); err != nil {
		return nil, err
	}
	if err := m.persistent.SaveGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Create registers a brand-new group with the creator as its first member
// and saves the initial record.
func (m *StandupGroupManager) Create(ctx context.Context, conversationID, conversationName string, creator models.User, tenantID string, saveHistory bool, notesInfo models.NotesInfo) (*models.StandupGroup, error) {
	group := models.NewStandupGroup(conversationID, tenantID, m.persistent)
	group.SetConversationName(conversationName)
	group.AddUser(creator)
	group.SetSaveHistory(saveHistory)
	group.SetNotes(notesInfo)

	if err := m.persistent.SaveGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}
