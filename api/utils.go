package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"trade-journal/auth"
	"trade-journal/database"
)

type contextKey string

const claimsKey contextKey = "claims"

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// respondWithError logs the error and sends a JSON error response
// Use this to avoid exposing internal errors while still logging them
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		log.Printf("API Error [%d]: %s - %v", code, message, err)
	} else {
		log.Printf("API Error [%d]: %s", code, message)
	}
	respondJSON(w, code, map[string]string{"error": message})
}

// respondDomainError maps typed storage and validation errors onto HTTP
// status codes; anything unrecognized is a 500 with the detail kept in logs
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case database.IsValidation(err):
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
	case database.IsNotFound(err):
		respondWithError(w, http.StatusNotFound, err.Error(), nil)
	case database.IsConflict(err):
		respondWithError(w, http.StatusConflict, err.Error(), nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error", err)
	}
}

// getIntParam retrieves an integer query parameter with default value
func getIntParam(r *http.Request, key string, defaultVal int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// pathID parses the {id} path segment
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// getDateParam parses a YYYY-MM-DD query parameter as a UTC midnight; a
// missing or malformed value yields the zero time
func getDateParam(r *http.Request, key string) time.Time {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", valStr)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
