package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"trade-journal/app"
	"trade-journal/database"
)

type adminUserRow struct {
	database.User
	TradeCount int64 `json:"trade_count"`
}

// handleAdminUsers lists all accounts with their journal volume
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	rows := make([]adminUserRow, 0, len(list))
	for _, u := range list {
		count, err := s.trades.CountForUser(u.ID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		rows = append(rows, adminUserRow{User: u, TradeCount: count})
	}
	respondJSON(w, http.StatusOK, rows)
}

// handleAdminPerformance returns per-user aggregates across all traders
func (s *Server) handleAdminPerformance(w http.ResponseWriter, r *http.Request) {
	performances, err := s.adminSvc.UserPerformances()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, performances)
}

// handleAdminRankings returns traders ordered by win rate
func (s *Server) handleAdminRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := s.adminSvc.Rankings()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rankings)
}

type sopTypeRequest struct {
	Name      string `json:"name"`
	IsActive  *bool  `json:"is_active,omitempty"`
	SortOrder int    `json:"sort_order"`
}

func (s *Server) handleCreateSopType(w http.ResponseWriter, r *http.Request) {
	var req sopTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	sopType := &database.SopType{Name: req.Name, IsActive: true, SortOrder: req.SortOrder}
	if req.IsActive != nil {
		sopType.IsActive = *req.IsActive
	}
	if err := s.sopTypes.Insert(sopType); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sopType)
}

func (s *Server) handleUpdateSopType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid sop type id", nil)
		return
	}
	sopType, err := s.sopTypes.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var req sopTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		sopType.Name = name
	}
	if req.IsActive != nil {
		sopType.IsActive = *req.IsActive
	}
	sopType.SortOrder = req.SortOrder

	if err := s.sopTypes.Update(sopType); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sopType)
}

// handleDeleteSopType removes a SOP type unless trades still reference it
func (s *Server) handleDeleteSopType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid sop type id", nil)
		return
	}

	refs, err := s.trades.CountBySopType(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if refs > 0 {
		respondWithError(w, http.StatusConflict, "sop type is referenced by existing trades; deactivate it instead", nil)
		return
	}

	if err := s.sopTypes.Delete(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type inviteCodeRequest struct {
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (s *Server) handleCreateInviteCode(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req inviteCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.MaxUses <= 0 {
		req.MaxUses = 1
	}

	code, err := s.users.CreateInviteCode(claims.UserID, req.MaxUses, req.ExpiresAt)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, code)
}

func (s *Server) handleListInviteCodes(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.ListInviteCodes()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeactivateInviteCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid invite code id", nil)
		return
	}

	if err := s.users.DeactivateInviteCode(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// handleTriggerCalendarSync runs the calendar import immediately
func (s *Server) handleTriggerCalendarSync(w http.ResponseWriter, r *http.Request) {
	count, err := s.calendarSync.Run(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "calendar sync failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "events": count})
}

// handleCalendarLogs lists recent sync runs, newest first
func (s *Server) handleCalendarLogs(w http.ResponseWriter, r *http.Request) {
	list, err := s.cronLogs.ListLogs(app.CalendarSyncJobName, getIntParam(r, "limit", 0))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
