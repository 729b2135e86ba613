package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/teambeat/standupbot/internal/services"
)

const embedColor = 0x5865F2

// progressEmbed is the in-place card shown while a standup runs: who has
// responded so far plus parking-lot carry-over from the previous cycle.
func progressEmbed(completedUsers []string, previousParkingLot []string) *discordgo.MessageEmbed {
	responded := "*No responses yet. Use `!submit` to add yours.*"
	if len(completedUsers) > 0 {
		responded = "✅ " + strings.Join(completedUsers, "\n✅ ")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🚀 Standup in progress",
		Description: responded,
		Color:       embedColor,
	}

	if len(previousParkingLot) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🅿️ Parking lot from last time",
			Value: "• " + strings.Join(previousParkingLot, "\n• "),
		})
	}
	return embed
}

func closedSummaryEmbed(summaries []services.UserSummary) *discordgo.MessageEmbed {
	var fields []*discordgo.MessageEmbedField
	for _, s := range summaries {
		var parts []string
		if s.CompletedWork != "" {
			parts = append(parts, "**Done:** "+s.CompletedWork)
		}
		if s.PlannedWork != "" {
			parts = append(parts, "**Next:** "+s.PlannedWork)
		}
		if s.ParkingLot != "" {
			parts = append(parts, "**Parking lot:** "+s.ParkingLot)
		}
		if len(parts) == 0 {
			continue
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  s.UserName,
			Value: strings.Join(parts, "\n"),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "📋 Standup Summary",
		Color:  embedColor,
		Fields: fields,
	}
}

func parkingLotEmbed(items []services.ParkingLotItem) *discordgo.MessageEmbed {
	if len(items) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "🅿️ Parking Lot",
			Description: "Nothing parked right now.",
			Color:       embedColor,
		}
	}

	var lines []string
	for _, item := range items {
		if item.UserName != "" {
			lines = append(lines, fmt.Sprintf("• %s (*%s*)", item.Item, item.UserName))
		} else {
			lines = append(lines, "• "+item.Item)
		}
	}
	return &discordgo.MessageEmbed{
		Title:       "🅿️ Parking Lot",
		Description: strings.Join(lines, "\n"),
		Color:       embedColor,
	}
}

// historyEmbed renders the most recent standups, newest last, capped so the
// embed stays under Discord's field limit.
func historyEmbed(histories []services.HistoryView) *discordgo.MessageEmbed {
	const maxEntries = 10
	if len(histories) > maxEntries {
		histories = histories[len(histories)-maxEntries:]
	}

	var fields []*discordgo.MessageEmbedField
	for _, h := range histories {
		var lines []string
		for _, r := range h.Responses {
			line := "**" + r.UserName + "**"
			if r.CompletedWork != "" {
				line += " did: " + r.CompletedWork
			}
			if r.PlannedWork != "" {
				line += "; planned: " + r.PlannedWork
			}
			lines = append(lines, line)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  h.Date.Format("Mon, Jan 2 2006"),
			Value: strings.Join(lines, "\n"),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "📚 Standup History",
		Color:  embedColor,
		Fields: fields,
	}
}

func formatGroupDetails(details services.GroupDetails) string {
	names := make([]string, 0, len(details.Members))
	for _, m := range details.Members {
		names = append(names, m.Name)
	}

	status := "No active standup"
	if details.StartedAt != nil {
		status = "Active standup in progress"
	}
	history := "disabled"
	if details.SaveHistory {
		history = "enabled"
	}

	return fmt.Sprintf(`📊 **Standup Group Details**
Members (%d): %s
Status: %s
History: %s
Notes: %s`, len(details.Members), strings.Join(names, ", "), status, history, details.StorageType)
}
