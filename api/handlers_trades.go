package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"trade-journal/app"
	"trade-journal/database"
)

type tradeResponse struct {
	Trade   *database.Trade  `json:"trade"`
	Awarded []database.Badge `json:"awarded_badges,omitempty"`
}

// handleCreateTrade records a journal entry and returns any badges it earned
func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var input app.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	trade, awarded, err := s.tradeSvc.Create(claims.UserID, &input)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tradeResponse{Trade: trade, Awarded: awarded})
}

// handleListTrades lists the caller's trades. Supports day=YYYY-MM-DD, a
// start/end range, or limit (newest first, with optional result and
// sop_type_id filters); with no parameters it returns the full history.
func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	if limit := getIntParam(r, "limit", 0); limit > 0 {
		var sopTypeID *int64
		if raw := r.URL.Query().Get("sop_type_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "invalid sop_type_id", nil)
				return
			}
			sopTypeID = &id
		}
		list, err := s.trades.ListRecent(claims.UserID, limit, r.URL.Query().Get("result"), sopTypeID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
		return
	}

	if day := getDateParam(r, "day"); !day.IsZero() {
		list, err := s.tradeSvc.ListForDay(claims.UserID, day)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
		return
	}

	start := getDateParam(r, "start")
	end := getDateParam(r, "end")
	if !end.IsZero() {
		end = end.Add(24 * time.Hour) // include the whole end day
	}
	list, err := s.tradeSvc.ListRange(claims.UserID, start, end)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trade id", nil)
		return
	}

	trade, err := s.tradeSvc.Get(claims.UserID, id, claims.IsAdmin)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trade id", nil)
		return
	}

	var input app.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	trade, err := s.tradeSvc.Update(claims.UserID, id, &input, claims.IsAdmin)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trade id", nil)
		return
	}

	if err := s.tradeSvc.Delete(claims.UserID, id, claims.IsAdmin); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleImportTrades bulk-loads trades from an uploaded CSV file
func (s *Server) handleImportTrades(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "csv file upload required (field \"file\")", err)
		return
	}
	defer file.Close()

	result, err := s.tradeSvc.ImportCSV(claims.UserID, file)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
