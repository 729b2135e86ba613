package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/teambeat/standupbot/internal/models"
	"github.com/teambeat/standupbot/internal/services"
)

// messageActions adapts one incoming message into the Actions surface the
// LLM dispatcher calls. Tool outputs are plain text fed back to the model;
// flows with their own channel side effects (start, close) run those side
// effects and report what happened.
type messageActions struct {
	h   *BotHandler
	ctx context.Context
	s   *discordgo.Session
	cc  commandContext
}

func (a *messageActions) Register() (string, error) {
	creator := models.User{ID: a.cc.UserID, Name: a.cc.UserName}
	result := a.h.Coordinator.RegisterGroup(a.ctx, a.cc.ConversationID, a.cc.ConversationName, creator, a.cc.TenantID, false, models.NotesInfo{Type: "none"})
	return result.Message, nil
}

func (a *messageActions) AddUsers() (string, error) {
	return a.h.executeAddUsers(a.ctx, a.cc), nil
}

func (a *messageActions) RemoveUsers() (string, error) {
	return a.h.executeRemoveUsers(a.ctx, a.cc), nil
}

func (a *messageActions) GroupDetails() (string, error) {
	return a.h.executeGroupDetails(a.ctx, a.cc), nil
}

func (a *messageActions) StartStandup(restart bool) (string, error) {
	if err := a.h.executeStartStandup(a.ctx, a.s, a.cc, restart); err != nil {
		return "", err
	}
	return "The standup flow has been started in the channel.", nil
}

func (a *messageActions) CloseStandup() (string, error) {
	if err := a.h.executeCloseStandup(a.ctx, a.s, a.cc); err != nil {
		return "", err
	}
	return "The standup has been closed; any summary was posted to the channel.", nil
}

func (a *messageActions) ToggleHistory(enable bool) (string, error) {
	result := a.h.Coordinator.SetSaveHistory(a.ctx, a.cc.ConversationID, a.cc.TenantID, enable)
	return result.Message, nil
}

func (a *messageActions) CheckHistory() (string, error) {
	result := a.h.Coordinator.GetSaveHistory(a.ctx, a.cc.ConversationID, a.cc.TenantID)
	if result.IsError() {
		return result.Message, nil
	}
	state := "disabled"
	if result.Data {
		state = "enabled"
	}
	return "History saving is currently " + state + ". You can change this with \"enable history\" or \"disable history\".", nil
}

func (a *messageActions) ViewHistory() (string, error) {
	isGroup := a.cc.TenantID != "personal"
	result := a.h.Coordinator.HistoricalStandups(a.ctx, a.cc.ConversationID, a.cc.UserID, a.cc.TenantID, isGroup)
	if result.IsError() {
		return result.Message, nil
	}
	return renderHistory(result.Data), nil
}

func (a *messageActions) ViewPersonalHistory() (string, error) {
	result := a.h.Coordinator.PersonalHistory(a.ctx, a.cc.UserID, a.cc.TenantID)
	if result.IsError() {
		return result.Message, nil
	}
	return renderHistory(result.Data), nil
}

func renderHistory(views []services.HistoryView) string {
	if len(views) == 0 {
		return "No standup history recorded yet."
	}

	var lines []string
	for _, h := range views {
		header := h.Date.Format("Mon, Jan 2 2006")
		if h.GroupName != "" {
			header += " (" + h.GroupName + ")"
		}
		lines = append(lines, header+":")
		for _, r := range h.Responses {
			lines = append(lines, fmt.Sprintf("  %s did: %s; planned: %s", r.UserName, r.CompletedWork, r.PlannedWork))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *messageActions) AddParkingLot(item string) (string, error) {
	result := a.h.Coordinator.AddParkingLotItem(a.ctx, a.cc.ConversationID, a.cc.TenantID, a.cc.UserID, item)
	return result.Message, nil
}

func (a *messageActions) ViewParkingLot() (string, error) {
	result := a.h.Coordinator.GetParkingLotItems(a.ctx, a.cc.ConversationID, a.cc.TenantID)
	if result.IsError() {
		return result.Message, nil
	}
	if len(result.Data) == 0 {
		return "Nothing parked right now.", nil
	}

	var lines []string
	for _, item := range result.Data {
		if item.UserName != "" {
			lines = append(lines, fmt.Sprintf("- %s (%s)", item.Item, item.UserName))
		} else {
			lines = append(lines, "- "+item.Item)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (a *messageActions) ClearParkingLot() (string, error) {
	result := a.h.Coordinator.ClearParkingLot(a.ctx, a.cc.ConversationID, a.cc.TenantID)
	return result.Message, nil
}

func (a *messageActions) SetCustomInstructions(instructions string) (string, error) {
	result := a.h.Coordinator.SetCustomInstructions(a.ctx, a.cc.ConversationID, a.cc.TenantID, instructions)
	return result.Message, nil
}

func (a *messageActions) MySettings() (string, error) {
	result := a.h.Coordinator.GetUserSettings(a.ctx, a.cc.UserID, a.cc.TenantID)
	if result.IsError() {
		return result.Message, nil
	}
	settings := result.Data
	if settings == nil {
		return "You don't have any standup settings yet. Join a standup group to get started.", nil
	}

	defaultGroup := settings.DefaultStandupGroup
	if defaultGroup == "" {
		defaultGroup = "None set"
	}
	return fmt.Sprintf("**Your Standup Settings**\n**Groups:** %d\n**Default Standup:** %s\n**Last Updated:** %s",
		len(settings.StandupGroups), defaultGroup, settings.LastUpdated.Format("Jan 2, 2006 3:04 PM")), nil
}

// SetDefaultStandup accepts either a conversation id or a group name; names
// are resolved against the user's own memberships.
func (a *messageActions) SetDefaultStandup(groupIDOrName string) (string, error) {
	groupID := groupIDOrName
	refs := a.h.Coordinator.GetStandupsForUser(a.ctx, a.cc.UserID, a.cc.TenantID)
	if !refs.IsError() {
		for _, ref := range refs.Data {
			if strings.EqualFold(ref.ConversationName, groupIDOrName) {
				groupID = ref.ConversationID
				break
			}
		}
	}

	result := a.h.Coordinator.SetDefaultStandup(a.ctx, a.cc.UserID, a.cc.TenantID, groupID)
	return result.Message, nil
}

func (a *messageActions) ListStandups() (string, error) {
	result := a.h.Coordinator.GetStandupsForUser(a.ctx, a.cc.UserID, a.cc.TenantID)
	if result.IsError() {
		return result.Message, nil
	}
	if len(result.Data) == 0 {
		return "You're not participating in any standups yet.", nil
	}

	lines := []string{"**Your Standups:**"}
	for _, ref := range result.Data {
		line := "- "
		if ref.ConversationName != "" {
			line += ref.ConversationName + " "
		}
		line += ref.ConversationID
		if ref.IsDefault {
			line += " (default)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func (a *messageActions) AddWork(item string) (string, error) {
	result := a.h.Coordinator.AddWorkItem(a.ctx, a.cc.UserID, a.cc.TenantID, item)
	return result.Message, nil
}

func (a *messageActions) ViewWork() (string, error) {
	result := a.h.Coordinator.GetWorkItems(a.ctx, a.cc.UserID, a.cc.TenantID)
	if result.IsError() {
		return result.Message, nil
	}
	if len(result.Data) == 0 {
		return "No work items recorded yet today.", nil
	}

	var lines []string
	for _, item := range result.Data {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n"), nil
}

func (a *messageActions) ClearWork() (string, error) {
	result := a.h.Coordinator.ClearWorkItems(a.ctx, a.cc.UserID, a.cc.TenantID)
	return result.Message, nil
}
