package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/teambeat/standupbot/internal/services"
)

type historyEntryDTO struct {
	Date      time.Time     `json:"date"`
	GroupName string        `json:"groupName,omitempty"`
	Responses []responseDTO `json:"responses"`
}

type responseDTO struct {
	UserName      string `json:"userName"`
	CompletedWork string `json:"completedWork"`
	PlannedWork   string `json:"plannedWork"`
	ParkingLot    string `json:"parkingLot,omitempty"`
}

type groupDTO struct {
	ConversationName string     `json:"conversationName"`
	Members          []string   `json:"members"`
	Active           bool       `json:"active"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	SaveHistory      bool       `json:"saveHistory"`
}

// HandleGetHistory returns standup history. With a conversationId query
// param it returns that group's history; without one it returns the
// caller's personal history across all of their groups.
func (s *Server) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.Context().Value(UserIDKey).(string)
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		tenantID = "personal"
	}

	var result []services.HistoryView
	if conversationID := r.URL.Query().Get("conversationId"); conversationID != "" {
		res := s.Coordinator.GroupHistory(r.Context(), conversationID, tenantID)
		if res.IsError() {
			http.Error(w, res.Message, http.StatusNotFound)
			return
		}
		result = res.Data
	} else {
		res := s.Coordinator.PersonalHistory(r.Context(), userID, tenantID)
		if res.IsError() {
			http.Error(w, res.Message, http.StatusNotFound)
			return
		}
		result = res.Data
	}

	response := make([]historyEntryDTO, 0, len(result))
	for _, entry := range result {
		dto := historyEntryDTO{Date: entry.Date, GroupName: entry.GroupName}
		for _, resp := range entry.Responses {
			dto.Responses = append(dto.Responses, responseDTO{
				UserName:      resp.UserName,
				CompletedWork: resp.CompletedWork,
				PlannedWork:   resp.PlannedWork,
				ParkingLot:    resp.ParkingLot,
			})
		}
		response = append(response, dto)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *Server) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		http.Error(w, "Missing conversationId", http.StatusBadRequest)
		return
	}
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		tenantID = "personal"
	}

	res := s.Coordinator.GetGroupDetails(r.Context(), conversationID, tenantID)
	if res.IsError() {
		http.Error(w, res.Message, http.StatusNotFound)
		return
	}

	dto := groupDTO{
		ConversationName: res.Data.ConversationName,
		Active:           res.Data.StartedAt != nil,
		StartedAt:        res.Data.StartedAt,
		SaveHistory:      res.Data.SaveHistory,
	}
	for _, member := range res.Data.Members {
		dto.Members = append(dto.Members, member.Name)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto)
}
