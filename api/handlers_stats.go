package api

import (
	"net/http"
	"time"

	"trade-journal/app"
)

// handleUserStats returns the dashboard snapshot for the caller
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	stats, err := s.statsSvc.UserStats(claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// handleStreaks returns just the streak block, computed fresh
func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	dailies, err := s.summaries.List(claims.UserID, time.Time{}, time.Time{})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	allTrades, err := s.trades.ListForUser(claims.UserID, time.Time{}, time.Time{})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days": app.ComputeDayStreaks(dailies),
		"sop":  app.ComputeSopStreak(allTrades),
	})
}

// handleDailySummaries lists daily summaries in an optional date range
func (s *Server) handleDailySummaries(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	list, err := s.summaries.List(claims.UserID, getDateParam(r, "start"), getDateParam(r, "end"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleWeeklySummaries rolls the dailies up to ISO weeks
func (s *Server) handleWeeklySummaries(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	list, err := s.summaries.ListWeekly(claims.UserID, getDateParam(r, "start"), getDateParam(r, "end"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleMonthlySummaries rolls the dailies up to calendar months
func (s *Server) handleMonthlySummaries(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	list, err := s.summaries.ListMonthly(claims.UserID, getDateParam(r, "start"), getDateParam(r, "end"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleListSopTypes lists SOP types; active_only=false includes retired ones
func (s *Server) handleListSopTypes(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") != "false"

	list, err := s.sopTypes.List(activeOnly)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleListCalendarEvents lists upcoming economic calendar events
func (s *Server) handleListCalendarEvents(w http.ResponseWriter, r *http.Request) {
	start := getDateParam(r, "start")
	end := getDateParam(r, "end")
	if start.IsZero() && end.IsZero() {
		// Default to a week ahead
		start = time.Now().UTC()
		end = start.AddDate(0, 0, 7)
	}

	list, err := s.cronLogs.ListEvents(start, end, getIntParam(r, "limit", 0))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
