package models

import "time"

// User identifies a standup participant. Users have no lifecycle of their
// own; they are embedded by value in group membership and responses.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StandupResponse is one user's answer for the in-progress standup cycle.
// A group holds at most one response per user while a standup is active;
// resubmitting replaces the earlier entry. ParkingLot is the exception:
// repeated additions are joined with newlines instead of replaced.
type StandupResponse struct {
	UserID        string    `json:"userId"`
	CompletedWork string    `json:"completedWork"`
	PlannedWork   string    `json:"plannedWork"`
	ParkingLot    string    `json:"parkingLot,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// StandupSummary is an immutable record of one closed standup cycle,
// appended to a group's history log.
type StandupSummary struct {
	Date         time.Time         `json:"date"`
	Participants []User            `json:"participants"`
	Responses    []StandupResponse `json:"responses"`
	ParkingLot   []string          `json:"parkingLot,omitempty"`
}

// NotesInfo describes the external notes sink a group publishes closed
// standups to. Type "none" means no sink; "channel" targets a chat channel.
type NotesInfo struct {
	Type     string `json:"type"`
	TargetID string `json:"targetId,omitempty"`
}

// UserSettings is an independent per-user record tracking group membership
// and the user's default standup group.
type UserSettings struct {
	UserID              string    `json:"userId"`
	TenantID            string    `json:"tenantId"`
	StandupGroups       []string  `json:"standupGroups"`
	DefaultStandupGroup string    `json:"defaultStandupGroup,omitempty"`
	LastUpdated         time.Time `json:"lastUpdated"`
}
