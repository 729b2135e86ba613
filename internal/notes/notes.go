// Package notes publishes closed standup summaries to an external sink,
// configured per group. The sink is orthogonal to record persistence: it is
// where a group's write-up lands (a channel, nothing), not where state lives.
package notes

import (
	"context"

	"github.com/teambeat/standupbot/internal/models"
)

type Sink interface {
	AppendSummary(ctx context.Context, summary models.StandupSummary) error
	Info() models.NotesInfo
}

// NoSink is the default: appends succeed and go nowhere.
type NoSink struct{}

func (NoSink) AppendSummary(context.Context, models.StandupSummary) error {
	return nil
}

func (NoSink) Info() models.NotesInfo {
	return models.NotesInfo{Type: "none"}
}
