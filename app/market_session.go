package app

import (
	"time"

	"trade-journal/database"
)

// ClassifySession maps a trade timestamp to its market session. Pure and
// total: every UTC hour belongs to exactly one session, so there is no error
// path. The label is computed once at write time and stored on the trade.
func ClassifySession(t time.Time) string {
	switch h := t.UTC().Hour(); {
	case h < database.AsiaEndHour:
		return database.SessionAsia
	case h < database.AsiaEuropeOverlapEndHour:
		return database.SessionAsiaEuropeOverlap
	case h < database.EuropeEndHour:
		return database.SessionEurope
	case h < database.EuropeUSOverlapEndHour:
		return database.SessionEuropeUSOverlap
	case h < database.USEndHour:
		return database.SessionUS
	default:
		return database.SessionAsia
	}
}

// AllSessions lists every session label once, in band order starting at
// midnight UTC.
func AllSessions() []string {
	return []string{
		database.SessionAsia,
		database.SessionAsiaEuropeOverlap,
		database.SessionEurope,
		database.SessionEuropeUSOverlap,
		database.SessionUS,
	}
}
