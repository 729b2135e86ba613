package services

import (
	"context"
	"errors"
	"time"

	"github.com/teambeat/standupbot/internal/models"
	"github.com/teambeat/standupbot/internal/store"
)

// ErrNotAMember is returned when a user tries to default to a group they
// don't belong to.
var ErrNotAMember = errors.New("you are not a member of this standup group")

// UserSettingsService owns the per-user settings records: which groups a
// user belongs to and which one is their default.
type UserSettingsService struct {
	storage store.Storage[store.UserSettingsRecord]
	now     func() time.Time
}

func NewUserSettingsService(storage store.Storage[store.UserSettingsRecord]) *UserSettingsService {
	return &UserSettingsService{storage: storage, now: time.Now}
}

func settingsKey(userID string) string {
	return "user_" + userID
}

// Get returns the user's settings, or nil if none exist yet.
func (s *UserSettingsService) Get(ctx context.Context, userID, tenantID string) (*models.UserSettings, error) {
	record, found, err := s.storage.Get(ctx, settingsKey(userID), tenantID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &models.UserSettings{
		UserID:              record.UserID,
		TenantID:            record.TenantID,
		StandupGroups:       record.StandupGroups,
		DefaultStandupGroup: record.DefaultStandupGroup,
		LastUpdated:         record.LastUpdated,
	}, nil
}

// Update upserts the user's settings record, stamping LastUpdated.
func (s *UserSettingsService) Update(ctx context.Context, settings models.UserSettings) error {
	return s.storage.Set(ctx, store.UserSettingsRecord{
		ID:                  settingsKey(settings.UserID),
		TenantID:            settings.TenantID,
		Type:                "userSettings",
		UserID:              settings.UserID,
		StandupGroups:       settings.StandupGroups,
		DefaultStandupGroup: settings.DefaultStandupGroup,
		LastUpdated:         s.now(),
	})
}

// AddStandupGroup records group membership for the user. The group becomes
// the default automatically when it is the user's only one.
func (s *UserSettingsService) AddStandupGroup(ctx context.Context, userID, tenantID, groupID string) error {
	settings, err := s.Get(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if settings == nil {
		settings = &models.UserSettings{UserID: userID, TenantID: tenantID}
	}

	for _, id := range settings.StandupGroups {
		if id == groupID {
			return nil
		}
	}
	settings.StandupGroups = append(settings.StandupGroups, groupID)
	if len(settings.StandupGroups) == 1 {
		settings.DefaultStandupGroup = groupID
	}
	return s.Update(ctx, *settings)
}

// RemoveStandupGroup drops a membership. If the removed group was the
// default, the default falls back to the sole remaining group, if any.
func (s *UserSettingsService) RemoveStandupGroup(ctx context.Context, userID, tenantID, groupID string) error {
	settings, err := s.Get(ctx, userID, tenantID)
	if err != nil || settings == nil {
		return err
	}

	kept := settings.StandupGroups[:0]
	for _, id := range settings.StandupGroups {
		if id != groupID {
			kept = append(kept, id)
		}
	}
	settings.StandupGroups = kept

	if settings.DefaultStandupGroup == groupID {
		if len(settings.StandupGroups) == 1 {
			settings.DefaultStandupGroup = settings.StandupGroups[0]
		} else {
			settings.DefaultStandupGroup = ""
		}
	}
	return s.Update(ctx, *settings)
}

// SetDefaultStandup marks a group as the user's default. Users with no
// settings yet are enrolled in the group instead.
func (s *UserSettingsService) SetDefaultStandup(ctx context.Context, userID, tenantID, groupID string) error {
	settings, err := s.Get(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if settings == nil {
		return s.AddStandupGroup(ctx, userID, tenantID, groupID)
	}

	member := false
	for _, id := range settings.StandupGroups {
		if id == groupID {
			member = true
			break
		}
	}
	if !member {
		return ErrNotAMember
	}

	settings.DefaultStandupGroup = groupID
	return s.Update(ctx, *settings)
}
