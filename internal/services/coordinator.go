package services

import (
	"context"
	"log"
	"strings"

	"github.com/teambeat/standupbot/internal/models"
)

// StandupCoordinator is the unified entry point the dispatch layers talk to.
// It delegates to the group and user services and keeps per-user settings in
// step with membership changes. It is constructed once at startup and
// injected wherever needed; there is no process-global instance.
type StandupCoordinator struct {
	groups   *StandupGroupService
	users    *UserStandupService
	settings *UserSettingsService
}

func NewStandupCoordinator(groups *StandupGroupService, users *UserStandupService, settings *UserSettingsService) *StandupCoordinator {
	return &StandupCoordinator{groups: groups, users: users, settings: settings}
}

// === group operations ===

func (c *StandupCoordinator) RegisterGroup(ctx context.Context, conversationID, conversationName string, creator models.User, tenantID string, saveHistory bool, notesInfo models.NotesInfo) models.Result[string] {
	result := c.groups.RegisterGroup(ctx, conversationID, conversationName, creator, tenantID, saveHistory, notesInfo)
	if !result.IsError() {
		c.trackMembership(ctx, creator.ID, tenantID, conversationID, true)
	}
	return result
}

func (c *StandupCoordinator) AddUsers(ctx context.Context, conversationID string, users []models.User, tenantID string) models.Result[string] {
	result := c.groups.AddUsers(ctx, conversationID, users, tenantID)
	if !result.IsError() {
		for _, user := range users {
			c.trackMembership(ctx, user.ID, tenantID, conversationID, true)
		}
	}
	return result
}

func (c *StandupCoordinator) RemoveUsers(ctx context.Context, conversationID string, userIDs []string, tenantID string) models.Result[string] {
	result := c.groups.RemoveUsers(ctx, conversationID, userIDs, tenantID)
	if !result.IsError() {
		for _, userID := range userIDs {
			c.trackMembership(ctx, userID, tenantID, conversationID, false)
		}
	}
	return result
}

// trackMembership keeps user settings in step with group membership. A
// settings write failure is logged, not surfaced: membership already changed.
func (c *StandupCoordinator) trackMembership(ctx context.Context, userID, tenantID, conversationID string, joined bool) {
	var err error
	if joined {
		err = c.settings.AddStandupGroup(ctx, userID, tenantID, conversationID)
	} else {
		err = c.settings.RemoveStandupGroup(ctx, userID, tenantID, conversationID)
	}
	if err != nil {
		log.Printf("updating settings for user %s: %v", userID, err)
	}
}

func (c *StandupCoordinator) ValidateGroup(ctx context.Context, conversationID, tenantID string) (*models.StandupGroup, error) {
	return c.groups.ValidateGroup(ctx, conversationID, tenantID)
}

func (c *StandupCoordinator) StartStandup(ctx context.Context, conversationID, tenantID, activityID string) models.Result[StartStandupData] {
	return c.groups.StartStandup(ctx, conversationID, tenantID, activityID)
}

func (c *StandupCoordinator) SubmitResponse(ctx context.Context, conversationID string, response models.StandupResponse, tenantID string, update ProgressUpdate) models.Result[string] {
	return c.groups.SubmitResponse(ctx, conversationID, response, tenantID, update)
}

func (c *StandupCoordinator) CloseStandup(ctx context.Context, conversationID, tenantID string, toBeRestarted bool) models.Result[CloseStandupData] {
	return c.groups.CloseStandup(ctx, conversationID, tenantID, toBeRestarted)
}

func (c *StandupCoordinator) GetParkingLotItems(ctx context.Context, conversationID, tenantID string) models.Result[[]ParkingLotItem] {
	return c.groups.GetParkingLotItems(ctx, conversationID, tenantID)
}

func (c *StandupCoordinator) AddParkingLotItem(ctx context.Context, conversationID, tenantID, userID, item string) models.Result[string] {
	return c.groups.AddParkingLotItem(ctx, conversationID, tenantID, userID, item)
}

func (c *StandupCoordinator) ClearParkingLot(ctx context.Context, conversationID, tenantID string) models.Result[string] {
	return c.groups.ClearParkingLot(ctx, conversationID, tenantID)
}

func (c *StandupCoordinator) GetGroupDetails(ctx context.Context, conversationID, tenantID string) models.Result[GroupDetails] {
	return c.groups.GetGroupDetails(ctx, conversationID, tenantID)
}

func (c *StandupCoordinator) SetSaveHistory(ctx context.Context, conversationID, tenantID string, enable bool) models.Result[string] {
	return c.groups.SetSaveHistory(ctx, conversationID, tenantID, enable)
}

func (c *StandupCoordinator) GetSaveHistory(ctx context.Context, conversationID, tenantID string) models.Result[bool] {
	return c.groups.GetSaveHistory(ctx, conversationID, tenantID)
}

func (c *StandupCoordinator) SetCustomInstructions(ctx context.Context, conversationID, tenantID, instructions string) models.Result[string] {
	return c.groups.SetCustomInstructions(ctx, conversationID, tenantID, instructions)
}

func (c *StandupCoordinator) SetNotesTarget(ctx context.Context, conversationID, tenantID string, info models.NotesInfo) models.Result[string] {
	return c.groups.SetNotesTarget(ctx, conversationID, tenantID, info)
}

func (c *StandupCoordinator) PersistToNotes(ctx context.Context, conversationID, tenantID string) models.Result[string] {
	return c.groups.PersistToNotes(ctx, conversationID, tenantID)
}

func (c *StandupCoordinator) GroupHistory(ctx context.Context, conversationID, tenantID string) models.Result[[]HistoryView] {
	return c.groups.GroupHistory(ctx, conversationID, tenantID)
}

// === user operations ===

func (c *StandupCoordinator) GetUserSettings(ctx context.Context, userID, tenantID string) models.Result[*models.UserSettings] {
	return c.users.GetUserSettings(ctx, userID, tenantID)
}

func (c *StandupCoordinator) SetDefaultStandup(ctx context.Context, userID, tenantID, groupID string) models.Result[string] {
	return c.users.SetDefaultStandup(ctx, userID, tenantID, groupID)
}

func (c *StandupCoordinator) GetStandupsForUser(ctx context.Context, userID, tenantID string) models.Result[[]UserStandupRef] {
	return c.users.GetStandupsForUser(ctx, userID, tenantID)
}

func (c *StandupCoordinator) PersonalHistory(ctx context.Context, userID, tenantID string) models.Result[[]HistoryView] {
	return c.users.GetPersonalHistory(ctx, userID, tenantID)
}

// HistoricalStandups resolves a history request by conversation kind: group
// conversations get the group's log, personal chats get the user's own
// responses across every group.
func (c *StandupCoordinator) HistoricalStandups(ctx context.Context, conversationID, userID, tenantID string, isGroupConversation bool) models.Result[[]HistoryView] {
	if isGroupConversation {
		return c.GroupHistory(ctx, conversationID, tenantID)
	}
	return c.PersonalHistory(ctx, userID, tenantID)
}

// === work items against the user's default group ===

// defaultGroupFor resolves the user's default group, with the guidance
// messages users see when they have none or several.
func (c *StandupCoordinator) defaultGroupFor(ctx context.Context, userID, tenantID string) (string, string) {
	result := c.users.GetStandupsForUser(ctx, userID, tenantID)
	if result.IsError() {
		return "", result.Message
	}
	for _, ref := range result.Data {
		if ref.IsDefault {
			return ref.ConversationID, ""
		}
	}
	if len(result.Data) == 0 {
		return "", "You are not a member of any standup groups yet. Join a standup group first."
	}
	return "", "You belong to multiple standup groups. Use 'set default standup' to choose your default group."
}

// AddWorkItem records a completed-work line in the user's default group.
func (c *StandupCoordinator) AddWorkItem(ctx context.Context, userID, tenantID, workItem string) models.Result[string] {
	groupID, failure := c.defaultGroupFor(ctx, userID, tenantID)
	if failure != "" {
		return models.Fail[string](failure)
	}

	group, err := c.groups.manager.Mutate(ctx, groupID, tenantID, func(g *models.StandupGroup) error {
		if !g.HasUser(userID) {
			return ErrNotAMember
		}
		g.AddWorkItem(userID, workItem)
		return nil
	})
	if err == ErrNotAMember {
		return models.Fail[string]("You are not a member of your standup group.")
	}
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string]("Your standup group no longer exists or you don't have access to it.")
	}

	msg := "Work item added to your standup group (" + groupID + ")"
	return models.Ok(msg, msg)
}

// GetWorkItems lists the user's pending planned-work lines from their
// default group.
func (c *StandupCoordinator) GetWorkItems(ctx context.Context, userID, tenantID string) models.Result[[]string] {
	groupID, failure := c.defaultGroupFor(ctx, userID, tenantID)
	if failure != "" {
		return models.Fail[[]string](failure)
	}

	group, err := c.groups.ValidateGroup(ctx, groupID, tenantID)
	if err != nil {
		return models.Fail[[]string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[[]string]("Your default standup group no longer exists.")
	}

	var items []string
	for _, r := range group.ActiveResponses() {
		if r.UserID != userID || r.PlannedWork == "" {
			continue
		}
		for _, line := range strings.Split(r.PlannedWork, "\n") {
			if strings.TrimSpace(line) != "" {
				items = append(items, line)
			}
		}
	}
	return models.Ok(items, "Work items retrieved successfully")
}

// ClearWorkItems wipes the user's planned work in their default group.
func (c *StandupCoordinator) ClearWorkItems(ctx context.Context, userID, tenantID string) models.Result[string] {
	groupID, failure := c.defaultGroupFor(ctx, userID, tenantID)
	if failure != "" {
		return models.Fail[string](failure)
	}

	group, err := c.groups.manager.Mutate(ctx, groupID, tenantID, func(g *models.StandupGroup) error {
		g.ClearPlannedWork(userID)
		return nil
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string]("Your default standup group no longer exists.")
	}

	msg := "Work items cleared from your standup group (" + groupID + ")"
	return models.Ok(msg, msg)
}
