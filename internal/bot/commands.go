package bot

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/teambeat/standupbot/internal/models"
	"github.com/teambeat/standupbot/internal/services"
)

var channelMention = regexp.MustCompile(`<#(\d+)>`)

func (h *BotHandler) executeRegister(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cc commandContext, text string) error {
	saveHistory := strings.Contains(text, "--history")

	notesInfo := models.NotesInfo{Type: "none"}
	if match := channelMention.FindStringSubmatch(m.Content); len(match) > 1 {
		notesInfo = models.NotesInfo{Type: "channel", TargetID: match[1]}
	}

	creator := models.User{ID: cc.UserID, Name: cc.UserName}
	result := h.Coordinator.RegisterGroup(ctx, cc.ConversationID, cc.ConversationName, creator, cc.TenantID, saveHistory, notesInfo)
	return h.sendText(s, cc, result.Message)
}

func (h *BotHandler) executeAddUsers(ctx context.Context, cc commandContext) string {
	if len(cc.Mentions) == 0 {
		return "Please @mention the users you want to add."
	}
	result := h.Coordinator.AddUsers(ctx, cc.ConversationID, cc.Mentions, cc.TenantID)
	return result.Message
}

func (h *BotHandler) executeRemoveUsers(ctx context.Context, cc commandContext) string {
	if len(cc.Mentions) == 0 {
		return "Please @mention the users you want to remove."
	}
	userIDs := make([]string, 0, len(cc.Mentions))
	for _, u := range cc.Mentions {
		userIDs = append(userIDs, u.ID)
	}
	result := h.Coordinator.RemoveUsers(ctx, cc.ConversationID, userIDs, cc.TenantID)
	return result.Message
}

func (h *BotHandler) executeGroupDetails(ctx context.Context, cc commandContext) string {
	result := h.Coordinator.GetGroupDetails(ctx, cc.ConversationID, cc.TenantID)
	if result.IsError() {
		return result.Message
	}
	return formatGroupDetails(result.Data)
}

// executeStartStandup posts the progress message first so its ID can anchor
// in-place updates as responses arrive.
func (h *BotHandler) executeStartStandup(ctx context.Context, s *discordgo.Session, cc commandContext, restart bool) error {
	if restart {
		closeResult := h.Coordinator.CloseStandup(ctx, cc.ConversationID, cc.TenantID, true)
		if closeResult.IsError() {
			return h.sendText(s, cc, closeResult.Message)
		}
	}

	startMsg, err := s.ChannelMessageSend(cc.ConversationID, "Starting standup...")
	if err != nil {
		return err
	}

	result := h.Coordinator.StartStandup(ctx, cc.ConversationID, cc.TenantID, startMsg.ID)
	if result.IsError() {
		return h.sendText(s, cc, result.Message)
	}

	embed := progressEmbed(nil, result.Data.PreviousParkingLot)
	_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: cc.ConversationID,
		ID:      startMsg.ID,
		Content: new(string),
		Embeds:  &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

// executeSubmit parses "!submit completed | planned [| parking lot]".
func (h *BotHandler) executeSubmit(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cc commandContext) error {
	body := strings.TrimSpace(m.Content[len("!submit"):])
	parts := strings.Split(body, "|")

	response := models.StandupResponse{
		UserID:    cc.UserID,
		Timestamp: time.Now(),
	}
	if len(parts) > 0 {
		response.CompletedWork = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		response.PlannedWork = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		response.ParkingLot = strings.TrimSpace(parts[2])
	}

	if response.CompletedWork == "" || response.PlannedWork == "" {
		return h.sendText(s, cc, "Usage: `!submit what you did | what you plan to do | optional parking lot item`")
	}

	result := h.Coordinator.SubmitResponse(ctx, cc.ConversationID, response, cc.TenantID, h.progressUpdater(s, cc.ConversationID))
	return h.sendText(s, cc, result.Message)
}

// progressUpdater edits the active standup message in place with the roster
// of users who have responded plus carried-over parking-lot items.
func (h *BotHandler) progressUpdater(s *discordgo.Session, channelID string) services.ProgressUpdate {
	return func(activityID string, completedUsers []string, previousParkingLot []string) error {
		embed := progressEmbed(completedUsers, previousParkingLot)
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel: channelID,
			ID:      activityID,
			Content: new(string),
			Embeds:  &[]*discordgo.MessageEmbed{embed},
		})
		return err
	}
}

func (h *BotHandler) executeCloseStandup(ctx context.Context, s *discordgo.Session, cc commandContext) error {
	result := h.Coordinator.CloseStandup(ctx, cc.ConversationID, cc.TenantID, false)
	if result.IsError() {
		return h.sendText(s, cc, result.Message)
	}

	if err := h.sendText(s, cc, result.Data.Message); err != nil {
		return err
	}
	if len(result.Data.Summary) > 0 {
		if _, err := s.ChannelMessageSendEmbed(cc.ConversationID, closedSummaryEmbed(result.Data.Summary)); err != nil {
			return err
		}
	}
	if result.Data.Remark != "" {
		return h.sendText(s, cc, result.Data.Remark)
	}
	return nil
}

func (h *BotHandler) executeHistory(ctx context.Context, s *discordgo.Session, cc commandContext, text string) error {
	switch {
	case text == "!history" || strings.Contains(text, "view"):
		result := h.Coordinator.HistoricalStandups(ctx, cc.ConversationID, cc.UserID, cc.TenantID, cc.TenantID != "personal")
		if result.IsError() {
			return h.sendText(s, cc, result.Message)
		}
		if len(result.Data) == 0 {
			return h.sendText(s, cc, "No standup history recorded yet.")
		}
		_, err := s.ChannelMessageSendEmbed(cc.ConversationID, historyEmbed(result.Data))
		return err

	case strings.Contains(text, "on"):
		result := h.Coordinator.SetSaveHistory(ctx, cc.ConversationID, cc.TenantID, true)
		return h.sendText(s, cc, result.Message)

	case strings.Contains(text, "off"):
		result := h.Coordinator.SetSaveHistory(ctx, cc.ConversationID, cc.TenantID, false)
		return h.sendText(s, cc, result.Message)

	default:
		result := h.Coordinator.GetSaveHistory(ctx, cc.ConversationID, cc.TenantID)
		if result.IsError() {
			return h.sendText(s, cc, result.Message)
		}
		state := "disabled"
		if result.Data {
			state = "enabled"
		}
		return h.sendText(s, cc, "History saving is currently "+state+". Use \"!history on\" or \"!history off\" to change.")
	}
}

func (h *BotHandler) executeParkingLot(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cc commandContext) error {
	item := strings.TrimSpace(m.Content[len("!parkinglot"):])

	if item == "" {
		result := h.Coordinator.GetParkingLotItems(ctx, cc.ConversationID, cc.TenantID)
		if result.IsError() {
			return h.sendText(s, cc, result.Message)
		}
		_, err := s.ChannelMessageSendEmbed(cc.ConversationID, parkingLotEmbed(result.Data))
		return err
	}

	result := h.Coordinator.AddParkingLotItem(ctx, cc.ConversationID, cc.TenantID, cc.UserID, item)
	return h.sendText(s, cc, result.Message)
}

// executeNotes handles "!notes #channel" (set the sink), "!notes off", and
// "!notes save" (publish pending responses now).
func (h *BotHandler) executeNotes(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cc commandContext, text string) error {
	if match := channelMention.FindStringSubmatch(m.Content); len(match) > 1 {
		result := h.Coordinator.SetNotesTarget(ctx, cc.ConversationID, cc.TenantID, models.NotesInfo{
			Type:     "channel",
			TargetID: match[1],
		})
		return h.sendText(s, cc, result.Message)
	}

	switch {
	case strings.Contains(text, "off"):
		result := h.Coordinator.SetNotesTarget(ctx, cc.ConversationID, cc.TenantID, models.NotesInfo{Type: "none"})
		return h.sendText(s, cc, result.Message)
	case strings.Contains(text, "save"):
		result := h.Coordinator.PersistToNotes(ctx, cc.ConversationID, cc.TenantID)
		return h.sendText(s, cc, result.Message)
	default:
		return h.sendText(s, cc, "Usage: `!notes #channel` to set the notes channel, `!notes save` to publish now, `!notes off` to disable.")
	}
}
