package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"trade-journal/database"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	InviteCode  string `json:"invite_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *database.User `json:"user"`
}

// handleRegister creates an account gated on a valid invite code
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondWithError(w, http.StatusBadRequest, "a valid email is required", nil)
		return
	}
	if req.InviteCode == "" {
		respondWithError(w, http.StatusBadRequest, "invite code is required", nil)
		return
	}

	invite, err := s.users.GetInviteCode(strings.TrimSpace(req.InviteCode))
	if err != nil {
		if database.IsNotFound(err) {
			respondWithError(w, http.StatusForbidden, "invalid invite code", nil)
			return
		}
		respondDomainError(w, err)
		return
	}
	if invite.ExpiresAt != nil && invite.ExpiresAt.Before(time.Now().UTC()) {
		respondWithError(w, http.StatusForbidden, "invite code has expired", nil)
		return
	}

	hash, err := s.authMgr.HashPassword(req.Password)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	user := &database.User{
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		InviteCodeID: &invite.ID,
	}
	if err := createInvitedUser(s.users, invite.ID, user); err != nil {
		var conflict *database.ConflictError
		if errors.As(err, &conflict) && conflict.Resource == "invite code" {
			respondWithError(w, http.StatusForbidden, "invite code is no longer valid", nil)
			return
		}
		respondDomainError(w, err)
		return
	}

	token, expiresAt, err := s.authMgr.IssueToken(user.ID, user.IsAdmin)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// invitedUserStore is the slice of the users repository that invite-gated
// signup needs, narrowed so the consume/release pairing stays testable.
type invitedUserStore interface {
	ConsumeInviteCode(id int64) error
	ReleaseInviteCode(id int64) error
	Insert(user *database.User) error
}

// createInvitedUser spends one invite use and inserts the account. The
// consume runs first so two concurrent signups cannot push a code past
// max_uses; a failed insert hands the use back.
func createInvitedUser(store invitedUserStore, inviteID int64, user *database.User) error {
	if err := store.ConsumeInviteCode(inviteID); err != nil {
		return err
	}
	if err := store.Insert(user); err != nil {
		if relErr := store.ReleaseInviteCode(inviteID); relErr != nil {
			log.Printf("⚠️ Failed to release invite code %d use: %v", inviteID, relErr)
		}
		return err
	}
	return nil
}

// handleLogin exchanges credentials for a session token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if database.IsNotFound(err) {
			respondWithError(w, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		respondDomainError(w, err)
		return
	}
	if !s.authMgr.CheckPassword(user.PasswordHash, req.Password) {
		respondWithError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	// Login still succeeds if the timestamp write fails; it is informational
	if err := s.users.TouchLastLogin(user.ID, time.Now().UTC()); err != nil {
		log.Printf("⚠️ Failed to record login for user %d: %v", user.ID, err)
	}

	token, expiresAt, err := s.authMgr.IssueToken(user.ID, user.IsAdmin)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// handleMe returns the authenticated user's profile
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	user, err := s.users.Get(claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleHealth reports service liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
