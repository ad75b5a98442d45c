package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal/app"
	"trade-journal/database"
	"trade-journal/database/targets"
)

type targetRequest struct {
	TargetType    string           `json:"target_type"`
	TargetWinRate *float64         `json:"target_win_rate,omitempty"`
	TargetSopRate *float64         `json:"target_sop_rate,omitempty"`
	TargetProfit  *decimal.Decimal `json:"target_profit_usd,omitempty"`
	StartDate     string           `json:"start_date"`
	EndDate       string           `json:"end_date"`
}

func (req *targetRequest) validate() (start, end time.Time, err error) {
	switch req.TargetType {
	case database.TargetWeekly, database.TargetMonthly, database.TargetYearly:
	default:
		return start, end, database.NewValidationErrorWithValue("target_type", "must be WEEKLY, MONTHLY or YEARLY", req.TargetType)
	}
	if req.TargetWinRate == nil && req.TargetSopRate == nil && req.TargetProfit == nil {
		return start, end, database.NewValidationError("target", "at least one metric is required")
	}
	if req.TargetWinRate != nil && (*req.TargetWinRate <= 0 || *req.TargetWinRate > 100) {
		return start, end, database.NewValidationError("target_win_rate", "must be in (0, 100]")
	}
	if req.TargetSopRate != nil && (*req.TargetSopRate <= 0 || *req.TargetSopRate > 100) {
		return start, end, database.NewValidationError("target_sop_rate", "must be in (0, 100]")
	}
	if start, err = time.Parse("2006-01-02", req.StartDate); err != nil {
		return start, end, database.NewValidationError("start_date", "must be YYYY-MM-DD")
	}
	if end, err = time.Parse("2006-01-02", req.EndDate); err != nil {
		return start, end, database.NewValidationError("end_date", "must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return start, end, database.NewValidationError("end_date", "must not be before start_date")
	}
	return start.UTC(), end.UTC(), nil
}

// handleCreateTarget creates a performance target for the caller
func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	start, end, err := req.validate()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	target := &database.UserTarget{
		UserID:        claims.UserID,
		TargetType:    req.TargetType,
		TargetWinRate: req.TargetWinRate,
		TargetSopRate: req.TargetSopRate,
		TargetProfit:  req.TargetProfit,
		StartDate:     start,
		EndDate:       end,
		IsActive:      true,
	}
	if err := s.targets.Insert(target); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, target)
}

// handleListTargets lists the caller's targets with optional filters
func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	filter := targets.ListFilter{
		TargetType: r.URL.Query().Get("type"),
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
	}
	list, err := s.targets.List(claims.UserID, filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTarget(w http.ResponseWriter, r *http.Request) {
	target, err := s.ownedTarget(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, target)
}

func (s *Server) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	target, err := s.ownedTarget(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	start, end, err := req.validate()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	target.TargetType = req.TargetType
	target.TargetWinRate = req.TargetWinRate
	target.TargetSopRate = req.TargetSopRate
	target.TargetProfit = req.TargetProfit
	target.StartDate = start
	target.EndDate = end

	if err := s.targets.Update(target); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, target)
}

func (s *Server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	target, err := s.ownedTarget(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := s.targets.Delete(target.ID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// progressWindow returns the summary-query bounds for a target. Both bounds
// are day-granular and the List query is end-inclusive, so EndDate itself is
// the last day that counts toward the target.
func progressWindow(target *database.UserTarget) (time.Time, time.Time) {
	return target.StartDate, target.EndDate
}

// handleTargetProgress scores a target against the summaries in its window
func (s *Server) handleTargetProgress(w http.ResponseWriter, r *http.Request) {
	target, err := s.ownedTarget(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	start, end := progressWindow(target)
	windowSummaries, err := s.summaries.List(target.UserID, start, end)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	progress := app.ComputeTargetProgress(target, windowSummaries, time.Now().UTC())
	respondJSON(w, http.StatusOK, progress)
}

// handleCompleteTarget marks a target achieved as of now
func (s *Server) handleCompleteTarget(w http.ResponseWriter, r *http.Request) {
	target, err := s.ownedTarget(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := s.targets.MarkCompleted(target.ID, time.Now().UTC()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// ownedTarget loads the {id} target and enforces ownership. Other users'
// targets read as absent rather than forbidden.
func (s *Server) ownedTarget(r *http.Request) (*database.UserTarget, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, database.NewValidationError("id", "must be an integer")
	}
	target, err := s.targets.Get(id)
	if err != nil {
		return nil, err
	}
	claims := claimsFrom(r)
	if target.UserID != claims.UserID && !claims.IsAdmin {
		return nil, database.NewNotFoundErrorWithID("target", id)
	}
	return target, nil
}
