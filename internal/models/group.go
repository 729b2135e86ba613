package models

import (
	"context"
	"errors"
	"time"
)

// HistoryStore is the slice of the persistence layer a group needs: reading
// and appending its own history log. Implemented by services.PersistentStandupService.
type HistoryStore interface {
	History(ctx context.Context, conversationID, tenantID string) ([]StandupSummary, error)
	AppendHistory(ctx context.Context, conversationID, tenantID string, summary StandupSummary) error
}

// ErrStandupActive is returned by ClearParkingLot while a standup is in progress.
var ErrStandupActive = errors.New("a standup is in progress")

// StandupGroup is the aggregate root for one conversation. It is a two-state
// machine: Idle (startedAt nil) and Active (startedAt set). Groups are
// reloaded from storage on every access; mutations only persist when saved
// back through the group manager.
type StandupGroup struct {
	conversationID   string
	tenantID         string
	conversationName string

	users             []User
	activeResponses   []StandupResponse
	startedAt         *time.Time
	activityID        string
	saveHistory       bool
	customInstruction string
	notes             NotesInfo

	history HistoryStore
	now     func() time.Time
}

// NewStandupGroup creates an empty idle group for a conversation.
func NewStandupGroup(conversationID, tenantID string, history HistoryStore) *StandupGroup {
	return &StandupGroup{
		conversationID: conversationID,
		tenantID:       tenantID,
		notes:          NotesInfo{Type: "none"},
		history:        history,
		now:            time.Now,
	}
}

// GroupState is the full mutable state of a group, used by the persistence
// layer to restore a group from a stored record.
type GroupState struct {
	ConversationName   string
	Users              []User
	ActiveResponses    []StandupResponse
	StartedAt          *time.Time
	ActivityID         string
	SaveHistory        bool
	CustomInstructions string
	Notes              NotesInfo
}

// RestoreStandupGroup reconstructs a group from stored state.
func RestoreStandupGroup(conversationID, tenantID string, state GroupState, history HistoryStore) *StandupGroup {
	g := NewStandupGroup(conversationID, tenantID, history)
	g.conversationName = state.ConversationName
	g.users = state.Users
	g.activeResponses = state.ActiveResponses
	g.startedAt = state.StartedAt
	g.activityID = state.ActivityID
	g.saveHistory = state.SaveHistory
	g.customInstruction = state.CustomInstructions
	if state.Notes.Type != "" {
		g.notes = state.Notes
	}
	return g
}

// State snapshots the group's mutable fields for persistence.
func (g *StandupGroup) State() GroupState {
	return GroupState{
		ConversationName:   g.conversationName,
		Users:              append([]User(nil), g.users...),
		ActiveResponses:    append([]StandupResponse(nil), g.activeResponses...),
		StartedAt:          g.startedAt,
		ActivityID:         g.activityID,
		SaveHistory:        g.saveHistory,
		CustomInstructions: g.customInstruction,
		Notes:              g.notes,
	}
}

func (g *StandupGroup) ConversationID() string   { return g.conversationID }
func (g *StandupGroup) TenantID() string         { return g.tenantID }
func (g *StandupGroup) ConversationName() string { return g.conversationName }

func (g *StandupGroup) SetConversationName(name string) { g.conversationName = name }

// AddUser appends a user to the membership. Returns false if the user is
// already a member.
func (g *StandupGroup) AddUser(user User) bool {
	for _, u := range g.users {
		if u.ID == user.ID {
			return false
		}
	}
	g.users = append(g.users, user)
	return true
}

// RemoveUser drops a user from the membership. The user's active responses,
// if any, are left in place.
func (g *StandupGroup) RemoveUser(userID string) bool {
	for i, u := range g.users {
		if u.ID == userID {
			g.users = append(g.users[:i], g.users[i+1:]...)
			return true
		}
	}
	return false
}

func (g *StandupGroup) Users() []User {
	return append([]User(nil), g.users...)
}

func (g *StandupGroup) HasUser(userID string) bool {
	for _, u := range g.users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// Active reports whether a standup cycle is in progress.
func (g *StandupGroup) Active() bool { return g.startedAt != nil }

func (g *StandupGroup) StartedAt() *time.Time { return g.startedAt }

func (g *StandupGroup) ActiveResponses() []StandupResponse {
	return append([]StandupResponse(nil), g.activeResponses...)
}

func (g *StandupGroup) ActivityID() string      { return g.activityID }
func (g *StandupGroup) SetActivityID(id string) { g.activityID = id }

func (g *StandupGroup) SaveHistory() bool         { return g.saveHistory }
func (g *StandupGroup) SetSaveHistory(value bool) { g.saveHistory = value }

func (g *StandupGroup) CustomInstructions() string      { return g.customInstruction }
func (g *StandupGroup) SetCustomInstructions(in string) { g.customInstruction = in }

func (g *StandupGroup) Notes() NotesInfo         { return g.notes }
func (g *StandupGroup) SetNotes(notes NotesInfo) { g.notes = notes }

// StartStandup transitions Idle -> Active. Returns started=false without
// mutating anything if a standup is already in progress. When history saving
// is enabled, the previous cycle's parking-lot items are returned so they can
// be surfaced as carry-over.
func (g *StandupGroup) StartStandup(ctx context.Context, activityID string) (previousParkingLot []string, started bool, err error) {
	if g.startedAt != nil {
		return nil, false, nil
	}

	if g.saveHistory && g.history != nil {
		summaries, err := g.history.History(ctx, g.conversationID, g.tenantID)
		if err != nil {
			return nil, false, err
		}
		if len(summaries) > 0 {
			previousParkingLot = summaries[len(summaries)-1].ParkingLot
		}
	}

	now := g.now()
	g.startedAt = &now
	g.activityID = activityID
	return previousParkingLot, true, nil
}

// AddResponse records a user's answers for the active cycle, replacing any
// earlier response from the same user. Returns false when no standup is active.
func (g *StandupGroup) AddResponse(response StandupResponse) bool {
	if g.startedAt == nil {
		return false
	}
	for i, r := range g.activeResponses {
		if r.UserID == response.UserID {
			g.activeResponses = append(g.activeResponses[:i], g.activeResponses[i+1:]...)
			break
		}
	}
	g.activeResponses = append(g.activeResponses, response)
	return true
}

// AddParkingLotItem records a deferred-discussion topic. Valid in any state.
// An empty userID files the item anonymously. Repeated additions for the same
// user merge with newline separators rather than creating new entries.
func (g *StandupGroup) AddParkingLotItem(userID, item string) bool {
	for i := range g.activeResponses {
		if g.activeResponses[i].UserID == userID {
			if g.activeResponses[i].ParkingLot != "" {
				g.activeResponses[i].ParkingLot += "\n" + item
			} else {
				g.activeResponses[i].ParkingLot = item
			}
			return true
		}
	}
	g.activeResponses = append(g.activeResponses, StandupResponse{
		UserID:     userID,
		ParkingLot: item,
		Timestamp:  g.now(),
	})
	return true
}

// AddWorkItem appends a completed-work line for a user, merging with any
// existing response the same way parking-lot items do.
func (g *StandupGroup) AddWorkItem(userID, item string) bool {
	for i := range g.activeResponses {
		if g.activeResponses[i].UserID == userID {
			if g.activeResponses[i].CompletedWork != "" {
				g.activeResponses[i].CompletedWork += "\n" + item
			} else {
				g.activeResponses[i].CompletedWork = item
			}
			return true
		}
	}
	g.activeResponses = append(g.activeResponses, StandupResponse{
		UserID:        userID,
		CompletedWork: item,
		Timestamp:     g.now(),
	})
	return true
}

// ClearPlannedWork wipes a user's planned-work text regardless of state.
func (g *StandupGroup) ClearPlannedWork(userID string) bool {
	for i := range g.activeResponses {
		if g.activeResponses[i].UserID == userID && g.activeResponses[i].PlannedWork != "" {
			g.activeResponses[i].PlannedWork = ""
			return true
		}
	}
	return false
}

// ClearParkingLot wipes and returns all pending responses. Parking-lot
// entries are stored as responses while idle, so this is how carry-over
// topics get discarded. Refused while a standup is active.
func (g *StandupGroup) ClearParkingLot() ([]StandupResponse, error) {
	if g.startedAt != nil {
		return nil, ErrStandupActive
	}
	cleared := g.activeResponses
	g.activeResponses = nil
	return cleared, nil
}

// CloseStandup transitions Active -> Idle and returns the responses collected
// during the cycle. With toBeRestarted the responses are intentionally kept so
// a following StartStandup resumes with prior answers present; otherwise they
// are cleared and, when history saving is on, a summary is appended to the
// history log. Closing an idle group is a no-op returning an empty slice.
func (g *StandupGroup) CloseStandup(ctx context.Context, toBeRestarted bool) ([]StandupResponse, error) {
	if g.startedAt == nil {
		return nil, nil
	}
	g.startedAt = nil
	responses := append([]StandupResponse(nil), g.activeResponses...)

	if g.saveHistory && !toBeRestarted && g.history != nil {
		summary := g.BuildSummary(responses)
		if err := g.history.AppendHistory(ctx, g.conversationID, g.tenantID, summary); err != nil {
			return nil, err
		}
	}

	if !toBeRestarted {
		g.activeResponses = nil
	}
	g.activityID = ""
	return responses, nil
}

// BuildSummary assembles a history record from a set of responses and the
// current membership snapshot.
func (g *StandupGroup) BuildSummary(responses []StandupResponse) StandupSummary {
	var parkingLot []string
	for _, r := range responses {
		if r.ParkingLot != "" {
			parkingLot = append(parkingLot, r.ParkingLot)
		}
	}
	return StandupSummary{
		Date:         g.now(),
		Participants: append([]User(nil), g.users...),
		Responses:    responses,
		ParkingLot:   parkingLot,
	}
}
