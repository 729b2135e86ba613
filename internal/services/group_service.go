package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/teambeat/standupbot/internal/models"
	"github.com/teambeat/standupbot/internal/notes"
)

const msgNoGroup = "No standup group registered. Use !register to create one."

// RemarkGenerator produces an optional closing remark from a group's custom
// post-close instructions. Implemented by the nlp package; may be nil.
type RemarkGenerator interface {
	ClosingRemark(ctx context.Context, instructions string) (string, error)
}

// ProgressUpdate is invoked after a response lands so the outward-facing
// standup message can be refreshed in place. It is a notification side
// effect, not a data-model mutation.
type ProgressUpdate func(activityID string, completedUsers []string, previousParkingLot []string) error

// SinkResolver turns a group's notes config into a concrete sink.
type SinkResolver func(models.NotesInfo) notes.Sink

type StartStandupData struct {
	Message            string
	PreviousParkingLot []string
}

type ParkingLotItem struct {
	Item     string
	UserName string
}

// UserSummary is one user's row in a human-readable standup summary.
type UserSummary struct {
	UserName      string
	CompletedWork string
	PlannedWork   string
	ParkingLot    string
}

type CloseStandupData struct {
	Message string
	Summary []UserSummary
	Remark  string
}

type GroupDetails struct {
	Members          []models.User
	ConversationName string
	StartedAt        *time.Time
	StorageType      string
	SaveHistory      bool
}

type HistoryView struct {
	Date      time.Time
	GroupName string
	Responses []UserSummary
}

// StandupGroupService is the orchestration layer: one operation per
// user-facing command, each returning a tagged Result instead of an error.
type StandupGroupService struct {
	persistent *PersistentStandupService
	manager    *StandupGroupManager
	remarks    RemarkGenerator
	sinks      SinkResolver
}

func NewStandupGroupService(persistent *PersistentStandupService, manager *StandupGroupManager, remarks RemarkGenerator, sinks SinkResolver) *StandupGroupService {
	if sinks == nil {
		sinks = func(models.NotesInfo) notes.Sink { return notes.NoSink{} }
	}
	return &StandupGroupService{
		persistent: persistent,
		manager:    manager,
		remarks:    remarks,
		sinks:      sinks,
	}
}

// ValidateGroup loads the group for a conversation, or nil if none exists.
func (s *StandupGroupService) ValidateGroup(ctx context.Context, conversationID, tenantID string) (*models.StandupGroup, error) {
	return s.manager.Load(ctx, conversationID, tenantID)
}

// RegisterGroup creates a group for the conversation with the creator as its
// first member. Fails when one is already registered.
func (s *StandupGroupService) RegisterGroup(ctx context.Context, conversationID, conversationName string, creator models.User, tenantID string, saveHistory bool, notesInfo models.NotesInfo) models.Result[string] {
	existing, err := s.ValidateGroup(ctx, conversationID, tenantID)
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if existing != nil {
		return models.Fail[string]("A standup group is already registered for this conversation.")
	}

	if _, err := s.manager.Create(ctx, conversationID, conversationName, creator, tenantID, saveHistory, notesInfo); err != nil {
		return models.Fail[string](storageFailure(err))
	}

	msg := "Standup group registered successfully!"
	return models.Ok(msg, msg)
}

func (s *StandupGroupService) AddUsers(ctx context.Context, conversationID string, users []models.User, tenantID string) models.Result[string] {
	if len(users) == 0 {
		return models.Fail[string]("Please @mention the users you want to add.")
	}

	var added []string
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		for _, user := range users {
			if g.AddUser(user) {
				added = append(added, user.Name)
			}
		}
		return nil
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}

	if len(added) == 0 {
		return models.Fail[string]("No new users were added (they might already be in the group).")
	}
	msg := "Added users: " + strings.Join(added, ", ")
	return models.Ok(msg, msg)
}

func (s *StandupGroupService) RemoveUsers(ctx context.Context, conversationID string, userIDs []string, tenantID string) models.Result[string] {
	if len(userIDs) == 0 {
		return models.Fail[string]("Please @mention the users you want to remove.")
	}

	var removed []string
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		users := g.Users()
		for _, userID := range userIDs {
			if g.RemoveUser(userID) {
				for _, u := range users {
					if u.ID == userID {
						removed = append(removed, u.Name)
						break
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}

	if len(removed) == 0 {
		return models.Fail[string]("No users were removed (they might not be in the group).")
	}
	msg := "Removed users: " + strings.Join(removed, ", ")
	return models.Ok(msg, msg)
}

// StartStandup begins a cycle. Requires at least one member and no cycle in
// progress. The previous cycle's parking lot is surfaced as carry-over.
func (s *StandupGroupService) StartStandup(ctx context.Context, conversationID, tenantID, activityID string) models.Result[StartStandupData] {
	var data StartStandupData
	var alreadyActive, noMembers bool

	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		if g.Active() {
			alreadyActive = true
			return nil
		}
		if len(g.Users()) == 0 {
			noMembers = true
			return nil
		}
		previous, _, err := g.StartStandup(ctx, activityID)
		if err != nil {
			return err
		}
		data.PreviousParkingLot = previous
		return nil
	})
	if err != nil {
		return models.Fail[StartStandupData](storageFailure(err))
	}
	if group == nil {
		return models.Fail[StartStandupData](msgNoGroup)
	}
	if alreadyActive {
		return models.Fail[StartStandupData]("A standup is already in progress.")
	}
	if noMembers {
		return models.Fail[StartStandupData]("No users in the standup group. Add users with !add @user")
	}

	data.Message = "Starting standup..."
	return models.Ok(data, data.Message)
}

// SubmitResponse records a user's answers and refreshes the outward progress
// display via update.
func (s *StandupGroupService) SubmitResponse(ctx context.Context, conversationID string, response models.StandupResponse, tenantID string, update ProgressUpdate) models.Result[string] {
	if response.CompletedWork == "" || response.PlannedWork == "" {
		return models.Fail[string]("Please provide both completed and planned work updates.")
	}

	var recorded bool
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		recorded = g.AddResponse(response)
		return nil
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}
	if !recorded {
		return models.Fail[string]("Could not record response. Make sure a standup is active.")
	}

	if update != nil && group.ActivityID() != "" {
		s.notifyProgress(ctx, group, update)
	}

	msg := "Your standup response has been recorded."
	return models.Ok(msg, msg)
}

func (s *StandupGroupService) notifyProgress(ctx context.Context, group *models.StandupGroup, update ProgressUpdate) {
	users := group.Users()
	startedAt := group.StartedAt()

	var completedUsers []string
	for _, r := range group.ActiveResponses() {
		if startedAt != nil && r.Timestamp.Before(*startedAt) {
			continue // parked item carried over from before this cycle
		}
		if r.CompletedWork == "" && r.PlannedWork == "" {
			continue
		}
		name := "Unknown"
		for _, u := range users {
			if u.ID == r.UserID {
				name = u.Name
				break
			}
		}
		completedUsers = append(completedUsers, name)
	}

	var previousParkingLot []string
	history, err := s.persistent.History(ctx, group.ConversationID(), group.TenantID())
	if err != nil {
		log.Printf("loading history for progress update: %v", err)
	} else if len(history) > 0 {
		previousParkingLot = history[len(history)-1].ParkingLot
	}

	if err := update(group.ActivityID(), completedUsers, previousParkingLot); err != nil {
		log.Printf("updating standup progress display: %v", err)
	}
}

// CloseStandup ends the cycle and builds the human-readable summary. With
// toBeRestarted the responses survive for the next StartStandup and no
// summary is produced. When the group carries custom post-close
// instructions, an LLM remark is attached unless the model has nothing to say.
func (s *StandupGroupService) CloseStandup(ctx context.Context, conversationID, tenantID string, toBeRestarted bool) models.Result[CloseStandupData] {
	var responses []models.StandupResponse
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		var err error
		responses, err = g.CloseStandup(ctx, toBeRestarted)
		return err
	})
	if err != nil {
		return models.Fail[CloseStandupData](storageFailure(err))
	}
	if group == nil {
		return models.Fail[CloseStandupData](msgNoGroup)
	}

	if toBeRestarted {
		msg := "Standup closed successfully without sending summary"
		return models.Ok(CloseStandupData{Message: msg}, msg)
	}
	if len(responses) == 0 {
		return models.Fail[CloseStandupData]("No responses were recorded for this standup.")
	}

	data := CloseStandupData{
		Message: "Standup closed and saved successfully.",
		Summary: summarize(responses, group.Users()),
	}

	if instructions := group.CustomInstructions(); instructions != "" && s.remarks != nil {
		remark, err := s.remarks.ClosingRemark(ctx, instructions)
		if err != nil {
			log.Printf("generating closing remark: %v", err)
		} else {
			data.Remark = remark
		}
	}

	return models.Ok(data, data.Message)
}

func summarize(responses []models.StandupResponse, users []models.User) []UserSummary {
	summaries := make([]UserSummary, 0, len(responses))
	for _, r := range responses {
		name := "Unknown"
		for _, u := range users {
			if u.ID == r.UserID {
				name = u.Name
				break
			}
		}
		summaries = append(summaries, UserSummary{
			UserName:      name,
			CompletedWork: r.CompletedWork,
			PlannedWork:   r.PlannedWork,
			ParkingLot:    r.ParkingLot,
		})
	}
	return summaries
}

// GetParkingLotItems lists pending parking-lot topics, one entry per line of
// each response's parking-lot text.
func (s *StandupGroupService) GetParkingLotItems(ctx context.Context, conversationID, tenantID string) models.Result[[]ParkingLotItem] {
	group, err := s.ValidateGroup(ctx, conversationID, tenantID)
	if err != nil {
		return models.Fail[[]ParkingLotItem](storageFailure(err))
	}
	if group == nil {
		return models.Fail[[]ParkingLotItem](msgNoGroup)
	}

	users := group.Users()
	var items []ParkingLotItem
	for _, r := range group.ActiveResponses() {
		if r.ParkingLot == "" {
			continue
		}
		userName := ""
		for _, u := range users {
			if u.ID == r.UserID {
				userName = u.Name
				break
			}
		}
		for _, line := range strings.Split(r.ParkingLot, "\n") {
			items = append(items, ParkingLotItem{Item: line, UserName: userName})
		}
	}

	return models.Ok(items, "Parking lot items retrieved successfully")
}

// AddParkingLotItem files a deferred topic for the next standup.
func (s *StandupGroupService) AddParkingLotItem(ctx context.Context, conversationID, tenantID, userID, item string) models.Result[string] {
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		g.AddParkingLotItem(userID, item)
		return nil
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}
	msg := "Your parking lot item has been saved for the next standup."
	return models.Ok(msg, msg)
}

// ClearParkingLot drains pending topics. Refused while a standup is active.
func (s *StandupGroupService) ClearParkingLot(ctx context.Context, conversationID, tenantID string) models.Result[string] {
	var cleared []models.StandupResponse
	var activeErr bool
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		var err error
		cleared, err = g.ClearParkingLot()
		if err == models.ErrStandupActive {
			activeErr = true
			return nil
		}
		return err
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}
	if activeErr {
		return models.Fail[string]("There is an active standup in progress. Cannot clear parking lot right now")
	}
	msg := fmt.Sprintf("Parking lot cleared (removed %d items)", len(cleared))
	return models.Ok(msg, msg)
}

func (s *StandupGroupService) GetGroupDetails(ctx context.Context, conversationID, tenantID string) models.Result[GroupDetails] {
	group, err := s.ValidateGroup(ctx, conversationID, tenantID)
	if err != nil {
		return models.Fail[GroupDetails](storageFailure(err))
	}
	if group == nil {
		return models.Fail[GroupDetails](msgNoGroup)
	}

	details := GroupDetails{
		Members:          group.Users(),
		ConversationName: group.ConversationName(),
		StartedAt:        group.StartedAt(),
		StorageType:      group.Notes().Type,
		SaveHistory:      group.SaveHistory(),
	}
	return models.Ok(details, "Group details retrieved successfully")
}

// SetSaveHistory flips whether closed standups are recorded to history.
func (s *StandupGroupService) SetSaveHistory(ctx context.Context, conversationID, tenantID string, enable bool) models.Result[string] {
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		g.SetSaveHistory(enable)
		return nil
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}
	state := "disabled"
	if enable {
		state = "enabled"
	}
	msg := "History saving has been " + state + "."
	return models.Ok(msg, msg)
}

func (s *StandupGroupService) GetSaveHistory(ctx context.Context, conversationID, tenantID string) models.Result[bool] {
	group, err := s.ValidateGroup(ctx, conversationID, tenantID)
	if err != nil {
		return models.Fail[bool](storageFailure(err))
	}
	if group == nil {
		return models.Fail[bool](msgNoGroup)
	}
	return models.Ok(group.SaveHistory(), "History setting retrieved")
}

// SetCustomInstructions stores the group's post-close instruction string.
func (s *StandupGroupService) SetCustomInstructions(ctx context.Context, conversationID, tenantID, instructions string) models.Result[string] {
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		g.SetCustomInstructions(instructions)
		return nil
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}
	msg := "Custom closing instructions saved."
	return models.Ok(msg, msg)
}

// SetNotesTarget points the group's notes sink at a channel, or disables it.
func (s *StandupGroupService) SetNotesTarget(ctx context.Context, conversationID, tenantID string, info models.NotesInfo) models.Result[string] {
	group, err := s.manager.Mutate(ctx, conversationID, tenantID, func(g *models.StandupGroup) error {
		g.SetNotes(info)
		return nil
	})
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}
	msg := "Notes destination updated."
	return models.Ok(msg, msg)
}

// PersistToNotes publishes the current pending responses to the group's
// notes sink without closing the standup.
func (s *StandupGroupService) PersistToNotes(ctx context.Context, conversationID, tenantID string) models.Result[string] {
	group, err := s.ValidateGroup(ctx, conversationID, tenantID)
	if err != nil {
		return models.Fail[string](storageFailure(err))
	}
	if group == nil {
		return models.Fail[string](msgNoGroup)
	}

	responses := group.ActiveResponses()
	if len(responses) == 0 {
		return models.Fail[string]("No active responses to persist")
	}

	sink := s.sinks(group.Notes())
	if err := sink.AppendSummary(ctx, group.BuildSummary(responses)); err != nil {
		return models.Fail[string]("Could not save the summary to notes: " + err.Error())
	}
	msg := "Standup summary saved to notes."
	return models.Ok(msg, msg)
}

// GroupHistory returns a group's recorded standups, oldest first.
func (s *StandupGroupService) GroupHistory(ctx context.Context, conversationID, tenantID string) models.Result[[]HistoryView] {
	group, err := s.ValidateGroup(ctx, conversationID, tenantID)
	if err != nil {
		return models.Fail[[]HistoryView](storageFailure(err))
	}
	if group == nil {
		return models.Fail[[]HistoryView]("No standup group found for this conversation.")
	}

	histories, err := s.persistent.History(ctx, conversationID, tenantID)
	if err != nil {
		return models.Fail[[]HistoryView](storageFailure(err))
	}

	views := make([]HistoryView, 0, len(histories))
	for _, h := range histories {
		views = append(views, HistoryView{
			Date:      h.Date,
			GroupName: group.ConversationName(),
			Responses: summarize(h.Responses, h.Participants),
		})
	}
	return models.Ok(views, "History retrieved successfully")
}

// AllGroups exposes every group under a tenant for the user service.
func (s *StandupGroupService) AllGroups(ctx context.Context, tenantID string) ([]*models.StandupGroup, error) {
	return s.persistent.AllGroups(ctx, tenantID)
}

// GroupsForMember exposes the member-scoped lookup for the user service.
func (s *StandupGroupService) GroupsForMember(ctx context.Context, tenantID, userID string) ([]*models.StandupGroup, error) {
	return s.persistent.GroupsForMember(ctx, tenantID, userID)
}

// HistoryForGroup exposes a group's raw history for the user service.
func (s *StandupGroupService) HistoryForGroup(ctx context.Context, group *models.StandupGroup) ([]models.StandupSummary, error) {
	return s.persistent.History(ctx, group.ConversationID(), group.TenantID())
}

func storageFailure(err error) string {
	return "Something went wrong talking to storage: " + err.Error()
}
