package api

import (
	"net/http"

	"trade-journal/database"
)

// handleBadgeCatalog lists every badge in the catalog
func (s *Server) handleBadgeCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.badgeRepo.ListCatalog()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, catalog)
}

// handleMyBadges lists the caller's earned badges, newest first
func (s *Server) handleMyBadges(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	earned, err := s.badgeRepo.ListForUser(claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, earned)
}

// handleBadgeProgress reports per-badge completion for the caller
func (s *Server) handleBadgeProgress(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	progress, err := s.badgeEval.Progress(claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// handleRecalculateBadges runs a manual evaluation sweep for the caller
func (s *Server) handleRecalculateBadges(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	awarded, err := s.badgeEval.Evaluate(claims.UserID, database.TriggerManual)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if awarded == nil {
		awarded = []database.Badge{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"awarded": awarded})
}
