package services

import (
	"context"

	"github.com/teambeat/standupbot/internal/models"
	"github.com/teambeat/standupbot/internal/store"
)

// PersistentStandupService translates between in-memory StandupGroup
// instances and their flat storage records, and owns the append-only
// history log per group. It implements models.HistoryStore.
type PersistentStandupService struct {
	groups  store.Storage[store.GroupRecord]
	history store.Storage[store.HistoryRecord]
}

func NewPersistentStandupService(groups store.Storage[store.GroupRecord], history store.Storage[store.HistoryRecord]) *PersistentStandupService {
	return &PersistentStandupService{groups: groups, history: history}
}

// LoadGroup reconstructs a group from its stored record, defaulting missing
// fields. Returns (nil, nil) when no group is registered for the conversation.
func (p *PersistentStandupService) LoadGroup(ctx context.Context, conversationID, tenantID string) (*models.StandupGroup, error) {
	record, found, err := p.groups.Get(ctx, conversationID, tenantID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return p.restore(conversationID, record), nil
}

func (p *PersistentStandupService) restore(conversationID string, record store.GroupRecord) *models.StandupGroup {
	return models.RestoreStandupGroup(conversationID, record.TenantID, models.GroupState{
		ConversationName:   record.ConversationName,
		Users:              record.Users,
		ActiveResponses:    record.ActiveResponses,
		StartedAt:          record.StartedAt,
		ActivityID:         record.ActiveStandupActivityID,
		SaveHistory:        record.SaveHistory,
		CustomInstructions: record.CustomInstructions,
		Notes:              record.Notes,
	}, p)
}

// SaveGroup flattens the group's state and upserts its record. Last write
// wins; the load-mutate-save cycle carries no concurrency token.
func (p *PersistentStandupService) SaveGroup(ctx context.Context, group *models.StandupGroup) error {
	state := group.State()
	record := store.GroupRecord{
		ID:                      group.ConversationID(),
		TenantID:                group.TenantID(),
		Type:                    "group",
		ConversationName:        state.ConversationName,
		Users:                   state.Users,
		StartedAt:               state.StartedAt,
		ActiveResponses:         state.ActiveResponses,
		ActiveStandupActivityID: state.ActivityID,
		Notes:                   state.Notes,
		SaveHistory:             state.SaveHistory,
		CustomInstructions:      state.CustomInstructions,
	}
	return p.groups.Set(ctx, record)
}

// History returns the ordered summaries recorded for a group, oldest first.
func (p *PersistentStandupService) History(ctx context.Context, conversationID, tenantID string) ([]models.StandupSummary, error) {
	record, found, err := p.history.Get(ctx, conversationID, tenantID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return record.Summaries, nil
}

// AppendHistory adds one summary to a group's history log.
func (p *PersistentStandupService) AppendHistory(ctx context.Context, conversationID, tenantID string, summary models.StandupSummary) error {
	record, found, err := p.history.Get(ctx, conversationID, tenantID)
	if err != nil {
		return err
	}
	if !found {
		record = store.HistoryRecord{
			ID:       conversationID,
			TenantID: tenantID,
			Type:     "history",
		}
	}
	record.Summaries = append(record.Summaries, summary)
	return p.history.Set(ctx, record)
}

// AllGroups loads every group registered under a tenant.
func (p *PersistentStandupService) AllGroups(ctx context.Context, tenantID string) ([]*models.StandupGroup, error) {
	records, err := p.groups.QueryByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	groups := make([]*models.StandupGroup, 0, len(records))
	for _, record := range records {
		groups = append(groups, p.restore(record.ID, record))
	}
	return groups, nil
}

// GroupsForMember loads the groups a user belongs to, using the backend's
// member index when available.
func (p *PersistentStandupService) GroupsForMember(ctx context.Context, tenantID, userID string) ([]*models.StandupGroup, error) {
	if querier, ok := p.groups.(store.MemberQuerier[store.GroupRecord]); ok {
		records, err := querier.QueryByMember(ctx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		groups := make([]*models.StandupGroup, 0, len(records))
		for _, record := range records {
			groups = append(groups, p.restore(record.ID, record))
		}
		return groups, nil
	}

	all, err := p.AllGroups(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var groups []*models.StandupGroup
	for _, group := range all {
		if group.HasUser(userID) {
			groups = append(groups, group)
		}
	}
	return groups, nil
}
