package store

import (
	"context"
	"errors"
	"time"

	"github.com/teambeat/standupbot/internal/models"
)

// ErrTenantRequired is returned by Set when a record is missing its
// partition key.
var ErrTenantRequired = errors.New("tenantId is required")

// Item is anything that can live in a Storage: a record keyed by
// (id, tenantID). The tenant is the partition boundary in every backend.
type Item interface {
	ItemID() string
	ItemTenant() string
}

// Storage is the key/value contract shared by all backends. Get returns
// found=false (and the zero value) when no record exists.
type Storage[T Item] interface {
	Get(ctx context.Context, id, tenantID string) (T, bool, error)
	Set(ctx context.Context, value T) error
	Delete(ctx context.Context, id, tenantID string) error
	QueryByTenant(ctx context.Context, tenantID string) ([]T, error)
}

// MemberQuerier is an optional fast path some backends offer for looking up
// group records by member. Callers fall back to QueryByTenant plus filtering
// when the backend doesn't implement it.
type MemberQuerier[T Item] interface {
	QueryByMember(ctx context.Context, tenantID, userID string) ([]T, error)
}

// memberLister is implemented by records that carry a membership roster,
// letting backends index them for member-scoped queries.
type memberLister interface {
	Members() []string
}

// GroupRecord is the flat storage shape of a standup group.
type GroupRecord struct {
	ID                      string                   `json:"id"`
	TenantID                string                   `json:"tenantId"`
	Type                    string                   `json:"type"`
	ConversationName        string                   `json:"conversationName,omitempty"`
	Users                   []models.User            `json:"users"`
	StartedAt               *time.Time               `json:"startedAt"`
	ActiveResponses         []models.StandupResponse `json:"activeResponses"`
	ActiveStandupActivityID string                   `json:"activeStandupActivityId,omitempty"`
	Notes                   models.NotesInfo         `json:"storage"`
	SaveHistory             bool                     `json:"saveHistory"`
	CustomInstructions      string                   `json:"customInstructions,omitempty"`
}

func (r GroupRecord) ItemID() string     { return r.ID }
func (r GroupRecord) ItemTenant() string { return r.TenantID }
func (r GroupRecord) ItemType() string   { return r.Type }

func (r GroupRecord) Members() []string {
	ids := make([]string, 0, len(r.Users))
	for _, u := range r.Users {
		ids = append(ids, u.ID)
	}
	return ids
}

// HistoryRecord holds the append-only list of closed standup summaries for
// one group.
type HistoryRecord struct {
	ID        string                  `json:"id"`
	TenantID  string                  `json:"tenantId"`
	Type      string                  `json:"type"`
	Summaries []models.StandupSummary `json:"summaries"`
}

func (r HistoryRecord) ItemID() string     { return r.ID }
func (r HistoryRecord) ItemTenant() string { return r.TenantID }
func (r HistoryRecord) ItemType() string   { return r.Type }

// UserSettingsRecord is the stored shape of per-user settings. Its ID is
// derived from the user ID, not the conversation.
type UserSettingsRecord struct {
	ID                  string    `json:"id"`
	TenantID            string    `json:"tenantId"`
	Type                string    `json:"type"`
	UserID              string    `json:"userId"`
	StandupGroups       []string  `json:"standupGroups"`
	DefaultStandupGroup string    `json:"defaultStandupGroup,omitempty"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

func (r UserSettingsRecord) ItemID() string     { return r.ID }
func (r UserSettingsRecord) ItemTenant() string { return r.TenantID }
func (r UserSettingsRecord) ItemType() string   { return r.Type }
