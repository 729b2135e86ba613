package bot

import (
	"context"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/teambeat/standupbot/internal/models"
	"github.com/teambeat/standupbot/internal/nlp"
	"github.com/teambeat/standupbot/internal/services"
)

// Dispatcher is the free-text fallback: anything that isn't a !command goes
// through the LLM tool loop. Nil when no LLM is configured.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, actions nlp.Actions) (string, error)
}

type BotHandler struct {
	Session     *discordgo.Session
	Coordinator *services.StandupCoordinator
	Dispatcher  Dispatcher
}

func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentDirectMessages | discordgo.IntentsMessageContent
	return dg, nil
}

// commandContext carries everything a command needs from one incoming
// message. One Discord channel is one conversation; the guild is the tenant.
type commandContext struct {
	ConversationID   string
	ConversationName string
	TenantID         string
	UserID           string
	UserName         string
	Mentions         []models.User
}

func (h *BotHandler) contextFor(s *discordgo.Session, m *discordgo.MessageCreate) commandContext {
	tenantID := m.GuildID
	if tenantID == "" {
		tenantID = "personal"
	}

	var mentions []models.User
	for _, u := range m.Mentions {
		if u.Bot {
			continue
		}
		mentions = append(mentions, models.User{ID: u.ID, Name: u.Username})
	}

	name := ""
	if channel, err := s.State.Channel(m.ChannelID); err == nil {
		name = channel.Name
	}

	return commandContext{
		ConversationID:   m.ChannelID,
		ConversationName: name,
		TenantID:         tenantID,
		UserID:           m.Author.ID,
		UserName:         m.Author.Username,
		Mentions:         mentions,
	}
}

// OnMessageCreate is the top-level message handler. Commands prefixed with
// "!" and a few fixed phrases are routed directly; everything else falls
// through to the LLM dispatcher. Unexpected failures become a generic
// apology rather than silence.
func (h *BotHandler) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || strings.TrimSpace(m.Content) == "" {
		return
	}

	ctx := context.Background()
	cc := h.contextFor(s, m)
	text := strings.ToLower(strings.TrimSpace(m.Content))

	if err := h.route(ctx, s, m, cc, text); err != nil {
		log.Printf("handling message in %s: %v", cc.ConversationID, err)
		s.ChannelMessageSend(m.ChannelID, "😔 Sorry, something went wrong. Please try again.")
	}
}

func (h *BotHandler) route(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cc commandContext, text string) error {
	switch {
	case strings.HasPrefix(text, "!register"):
		return h.executeRegister(ctx, s, m, cc, text)

	case strings.HasPrefix(text, "!add"):
		return h.sendText(s, cc, h.executeAddUsers(ctx, cc))

	case strings.HasPrefix(text, "!remove"):
		return h.sendText(s, cc, h.executeRemoveUsers(ctx, cc))

	case strings.HasPrefix(text, "!history"):
		return h.executeHistory(ctx, s, cc, text)

	case strings.HasPrefix(text, "!parkinglot"):
		return h.executeParkingLot(ctx, s, m, cc)

	case strings.HasPrefix(text, "!submit"):
		return h.executeSubmit(ctx, s, m, cc)

	case strings.HasPrefix(text, "!notes"):
		return h.executeNotes(ctx, s, m, cc, text)

	case strings.HasPrefix(text, "!instructions"):
		instructions := strings.TrimSpace(m.Content[len("!instructions"):])
		result := h.Coordinator.SetCustomInstructions(ctx, cc.ConversationID, cc.TenantID, instructions)
		return h.sendText(s, cc, result.Message)

	case strings.Contains(text, "group details"):
		return h.sendText(s, cc, h.executeGroupDetails(ctx, cc))

	case strings.Contains(text, "restart standup"):
		return h.executeStartStandup(ctx, s, cc, true)

	case strings.Contains(text, "start standup"):
		return h.executeStartStandup(ctx, s, cc, false)

	case strings.Contains(text, "close standup"):
		return h.executeCloseStandup(ctx, s, cc)

	case strings.HasPrefix(text, "!"):
		return h.sendText(s, cc, "Unknown command. Try !register, !add, !remove, !history, !parkinglot, !submit, or just tell me what you want to do.")

	default:
		return h.dispatchFreeText(ctx, s, m, cc)
	}
}

func (h *BotHandler) dispatchFreeText(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cc commandContext) error {
	if h.Dispatcher == nil {
		return nil
	}

	reply, err := h.Dispatcher.Dispatch(ctx, m.Content, &messageActions{h: h, ctx: ctx, s: s, cc: cc})
	if err != nil {
		log.Printf("nlp dispatch: %v", err)
		return h.sendText(s, cc, "I couldn't understand that command. Try using ! prefix for direct commands.")
	}
	if reply != "" {
		return h.sendText(s, cc, reply)
	}
	return nil
}

func (h *BotHandler) sendText(s *discordgo.Session, cc commandContext, content string) error {
	if content == "" {
		return nil
	}
	_, err := s.ChannelMessageSend(cc.ConversationID, content)
	return err
}
