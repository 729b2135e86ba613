package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/teambeat/standupbot/internal/models"
)

const (
	retryAttempts = 3
	retryDelay    = time.Second
)

// ChannelSink posts standup summaries as embeds to a Discord channel.
// Sends are retried with linear backoff since channel posts are the one
// external write we can't afford to drop silently.
type ChannelSink struct {
	Session   *discordgo.Session
	ChannelID string
}

func (c *ChannelSink) AppendSummary(ctx context.Context, summary models.StandupSummary) error {
	embed := summaryEmbed(summary)

	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		_, lastErr = c.Session.ChannelMessageSendEmbed(c.ChannelID, embed)
		if lastErr == nil {
			return nil
		}
		if attempt < retryAttempts {
			select {
			case <-time.After(retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("posting summary after %d attempts: %w", retryAttempts, lastErr)
}

func (c *ChannelSink) Info() models.NotesInfo {
	return models.NotesInfo{Type: "channel", TargetID: c.ChannelID}
}

func summaryEmbed(summary models.StandupSummary) *discordgo.MessageEmbed {
	names := make(map[string]string, len(summary.Participants))
	for _, u := range summary.Participants {
		names[u.ID] = u.Name
	}

	var fields []*discordgo.MessageEmbedField
	for _, r := range summary.Responses {
		name := names[r.UserID]
		if name == "" {
			name = "Unknown"
		}
		value := ""
		if r.CompletedWork != "" {
			value += "**Done:** " + r.CompletedWork + "\n"
		}
		if r.PlannedWork != "" {
			value += "**Next:** " + r.PlannedWork + "\n"
		}
		if r.ParkingLot != "" {
			value += "**Parking lot:** " + r.ParkingLot
		}
		if value == "" {
			continue
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: value,
		})
	}

	return &discordgo.MessageEmbed{
		Title:     "📋 Standup Summary",
		Color:     0x5865F2,
		Fields:    fields,
		Timestamp: summary.Date.Format(time.RFC3339),
	}
}

// SinkFor resolves a group's notes config into a concrete sink.
func SinkFor(session *discordgo.Session, info models.NotesInfo) Sink {
	if info.Type == "channel" && info.TargetID != "" {
		return &ChannelSink{Session: session, ChannelID: info.TargetID}
	}
	return NoSink{}
}
