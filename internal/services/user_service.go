package services

import (
	"context"
	"sort"

	"github.com/teambeat/standupbot/internal/models"
)

// UserStandupRef points at one group a user belongs to.
type UserStandupRef struct {
	ConversationID   string
	ConversationName string
	IsDefault        bool
}

// UserStandupService answers per-user questions: which standups a user is
// in, their default group, and their personal history across groups.
type UserStandupService struct {
	settings *UserSettingsService
	groups   *StandupGroupService
}

func NewUserStandupService(settings *UserSettingsService, groups *StandupGroupService) *UserStandupService {
	return &UserStandupService{settings: settings, groups: groups}
}

func (s *UserStandupService) GetUserSettings(ctx context.Context, userID, tenantID string) models.Result[*models.UserSettings] {
	settings, err := s.settings.Get(ctx, userID, tenantID)
	if err != nil {
		return models.Fail[*models.UserSettings]("Failed to get user settings: " + err.Error())
	}
	return models.Ok(settings, "User settings retrieved successfully")
}

func (s *UserStandupService) SetDefaultStandup(ctx context.Context, userID, tenantID, groupID string) models.Result[string] {
	if err := s.settings.SetDefaultStandup(ctx, userID, tenantID, groupID); err != nil {
		return models.Fail[string](err.Error())
	}
	msg := "Default standup set successfully"
	return models.Ok(msg, msg)
}

// GetStandupsForUser lists the groups whose membership includes the user.
// A sole group is always reported as the default.
func (s *UserStandupService) GetStandupsForUser(ctx context.Context, userID, tenantID string) models.Result[[]UserStandupRef] {
	groups, err := s.groups.GroupsForMember(ctx, tenantID, userID)
	if err != nil {
		return models.Fail[[]UserStandupRef]("Failed to get user standups: " + err.Error())
	}

	settings, err := s.settings.Get(ctx, userID, tenantID)
	if err != nil {
		return models.Fail[[]UserStandupRef]("Failed to get user settings: " + err.Error())
	}
	defaultGroup := ""
	if settings != nil {
		defaultGroup = settings.DefaultStandupGroup
	}

	refs := make([]UserStandupRef, 0, len(groups))
	for _, group := range groups {
		refs = append(refs, UserStandupRef{
			ConversationID:   group.ConversationID(),
			ConversationName: group.ConversationName(),
			IsDefault:        group.ConversationID() == defaultGroup,
		})
	}
	if len(refs) == 1 {
		refs[0].IsDefault = true
	}

	return models.Ok(refs, "User standups retrieved successfully")
}

// GetPersonalHistory collects the user's own responses from every group's
// history under the tenant, newest first.
func (s *UserStandupService) GetPersonalHistory(ctx context.Context, userID, tenantID string) models.Result[[]HistoryView] {
	groups, err := s.groups.AllGroups(ctx, tenantID)
	if err != nil {
		return models.Fail[[]HistoryView]("Failed to get personal history: " + err.Error())
	}

	var views []HistoryView
	for _, group := range groups {
		histories, err := s.groups.HistoryForGroup(ctx, group)
		if err != nil {
			return models.Fail[[]HistoryView]("Failed to get personal history: " + err.Error())
		}
		for _, h := range histories {
			var mine []models.StandupResponse
			for _, r := range h.Responses {
				if r.UserID == userID {
					mine = append(mine, r)
				}
			}
			if len(mine) == 0 {
				continue
			}
			views = append(views, HistoryView{
				Date:      h.Date,
				GroupName: group.ConversationName(),
				Responses: summarize(mine, h.Participants),
			})
		}
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].Date.After(views[j].Date)
	})

	return models.Ok(views, "History retrieved successfully")
}
