package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal/database"
)

// TradeInput is the validated payload for creating or updating a trade.
type TradeInput struct {
	Timestamp     time.Time       `json:"timestamp"`
	Result        string          `json:"result"`
	SopFollowed   bool            `json:"sop_followed"`
	SopTypeID     *int64          `json:"sop_type_id,omitempty"`
	ProfitLossUsd decimal.Decimal `json:"profit_loss_usd"`
	Symbol        string          `json:"symbol,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// TradeService owns the journal write path. Every mutation runs the same
// pipeline: validate, classify the market session, persist, recompute the
// affected daily summaries, drop the stats cache, then best-effort badge
// evaluation and a realtime broadcast. Summary recomputation failures are
// fatal to the request; badge and broadcast failures are logged only.
type TradeService struct {
	trades    TradeStore
	summaries *SummaryService
	badges    *BadgeEvaluator
	stats     *StatsService
	events    EventPublisher
}

// NewTradeService creates a new trade service
func NewTradeService(trades TradeStore, summaries *SummaryService, badges *BadgeEvaluator, stats *StatsService, events EventPublisher) *TradeService {
	return &TradeService{
		trades:    trades,
		summaries: summaries,
		badges:    badges,
		stats:     stats,
		events:    events,
	}
}

// ValidateTradeInput checks a trade payload before it reaches storage.
func ValidateTradeInput(input *TradeInput, now time.Time) error {
	if input.Result != database.ResultWin && input.Result != database.ResultLoss {
		return database.NewValidationErrorWithValue("result", "must be WIN or LOSS", input.Result)
	}
	if input.Timestamp.IsZero() {
		return database.NewValidationError("timestamp", "is required")
	}
	if input.Timestamp.After(now) {
		return database.NewValidationError("timestamp", "cannot be in the future")
	}
	if input.ProfitLossUsd.IsZero() {
		return database.NewValidationError("profit_loss_usd", "cannot be zero")
	}
	if input.Result == database.ResultWin && input.ProfitLossUsd.IsNegative() {
		return database.NewValidationError("profit_loss_usd", "must be positive for a WIN")
	}
	if input.Result == database.ResultLoss && input.ProfitLossUsd.IsPositive() {
		return database.NewValidationError("profit_loss_usd", "must be negative for a LOSS")
	}
	return nil
}

// Create validates and persists a trade, then runs the post-write pipeline.
// Returns the stored trade and any badges this write earned.
func (s *TradeService) Create(userID int64, input *TradeInput) (*database.Trade, []database.Badge, error) {
	if err := ValidateTradeInput(input, time.Now().UTC()); err != nil {
		return nil, nil, err
	}

	trade := &database.Trade{
		UserID:        userID,
		Timestamp:     input.Timestamp.UTC(),
		Result:        input.Result,
		SopFollowed:   input.SopFollowed,
		SopTypeID:     input.SopTypeID,
		ProfitLossUsd: input.ProfitLossUsd,
		Symbol:        strings.ToUpper(strings.TrimSpace(input.Symbol)),
		Session:       ClassifySession(input.Timestamp),
		Notes:         input.Notes,
	}
	if err := s.trades.Insert(trade); err != nil {
		return nil, nil, fmt.Errorf("failed to insert trade: %w", err)
	}

	if _, err := s.summaries.Recompute(userID, trade.Timestamp); err != nil {
		return nil, nil, err
	}

	awarded := s.afterWrite(userID, database.TriggerTradeInsert)
	s.publish("trade.created", trade)
	return trade, awarded, nil
}

// Update replaces the mutable fields of an owned trade. Moving a trade to
// another day recomputes both the old and the new summary row.
func (s *TradeService) Update(userID int64, tradeID int64, input *TradeInput, isAdmin bool) (*database.Trade, error) {
	if err := ValidateTradeInput(input, time.Now().UTC()); err != nil {
		return nil, err
	}

	trade, err := s.ownedTrade(userID, tradeID, isAdmin)
	if err != nil {
		return nil, err
	}
	oldDay := trade.Timestamp

	trade.Timestamp = input.Timestamp.UTC()
	trade.Result = input.Result
	trade.SopFollowed = input.SopFollowed
	trade.SopTypeID = input.SopTypeID
	trade.ProfitLossUsd = input.ProfitLossUsd
	trade.Symbol = strings.ToUpper(strings.TrimSpace(input.Symbol))
	trade.Session = ClassifySession(input.Timestamp)
	trade.Notes = input.Notes

	if err := s.trades.Update(trade); err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	if err := s.summaries.RecomputeDays(trade.UserID, []time.Time{oldDay, trade.Timestamp}); err != nil {
		return nil, err
	}

	s.afterWrite(trade.UserID, database.TriggerManual)
	s.publish("trade.updated", trade)
	return trade, nil
}

// Delete removes an owned trade and recomputes its day. The summary row
// stays behind, zeroed, when this was the day's last trade.
func (s *TradeService) Delete(userID int64, tradeID int64, isAdmin bool) error {
	trade, err := s.ownedTrade(userID, tradeID, isAdmin)
	if err != nil {
		return err
	}

	if err := s.trades.Delete(trade.ID); err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	if _, err := s.summaries.Recompute(trade.UserID, trade.Timestamp); err != nil {
		return err
	}

	s.afterWrite(trade.UserID, database.TriggerManual)
	s.publish("trade.deleted", map[string]int64{"id": trade.ID, "user_id": trade.UserID})
	return nil
}

// Get returns a trade the caller is allowed to see.
func (s *TradeService) Get(userID int64, tradeID int64, isAdmin bool) (*database.Trade, error) {
	return s.ownedTrade(userID, tradeID, isAdmin)
}

// ListForDay returns the caller's trades on one UTC day.
func (s *TradeService) ListForDay(userID int64, day time.Time) ([]database.Trade, error) {
	return s.trades.ListForUserAndDay(userID, day)
}

// ListRange returns the caller's trades across a time range; zero bounds
// leave the range open on that side.
func (s *TradeService) ListRange(userID int64, start, end time.Time) ([]database.Trade, error) {
	return s.trades.ListForUser(userID, start, end)
}

// ImportResult summarizes a CSV bulk import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
	Awarded  []string `json:"awarded,omitempty"`
}

// ImportCSV bulk-loads trades from a CSV stream with the header
// timestamp,result,sop_followed,sop_type_id,profit_loss_usd,symbol,notes.
// Bad rows are skipped and reported; each affected day is recomputed once
// after the batch insert.
func (s *TradeService) ImportCSV(userID int64, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, database.NewValidationError("csv", "missing header row")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"timestamp", "result", "profit_loss_usd"} {
		if _, ok := col[required]; !ok {
			return nil, database.NewValidationError("csv", fmt.Sprintf("missing required column %q", required))
		}
	}

	result := &ImportResult{}
	now := time.Now().UTC()
	var batch []*database.Trade
	var days []time.Time

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		input, err := parseCSVTrade(record, col)
		if err == nil {
			err = ValidateTradeInput(input, now)
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		batch = append(batch, &database.Trade{
			UserID:        userID,
			Timestamp:     input.Timestamp.UTC(),
			Result:        input.Result,
			SopFollowed:   input.SopFollowed,
			SopTypeID:     input.SopTypeID,
			ProfitLossUsd: input.ProfitLossUsd,
			Symbol:        strings.ToUpper(strings.TrimSpace(input.Symbol)),
			Session:       ClassifySession(input.Timestamp),
			Notes:         input.Notes,
		})
		days = append(days, input.Timestamp.UTC())
	}

	if len(batch) == 0 {
		return result, nil
	}

	if err := s.trades.BatchInsert(batch); err != nil {
		return nil, fmt.Errorf("failed to import trades: %w", err)
	}
	result.Imported = len(batch)

	if err := s.summaries.RecomputeDays(userID, days); err != nil {
		return nil, err
	}

	awarded := s.afterWrite(userID, database.TriggerTradeInsert)
	for _, b := range awarded {
		result.Awarded = append(result.Awarded, b.Slug)
	}
	s.publish("trades.imported", map[string]interface{}{"user_id": userID, "count": result.Imported})
	return result, nil
}

func parseCSVTrade(record []string, col map[string]int) (*TradeInput, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ts, err := time.Parse(time.RFC3339, field("timestamp"))
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %v", err)
	}
	pl, err := decimal.NewFromString(field("profit_loss_usd"))
	if err != nil {
		return nil, fmt.Errorf("invalid profit_loss_usd: %v", err)
	}

	input := &TradeInput{
		Timestamp:     ts,
		Result:        strings.ToUpper(field("result")),
		ProfitLossUsd: pl,
		Symbol:        field("symbol"),
		Notes:         field("notes"),
	}
	if v := field("sop_followed"); v != "" {
		followed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid sop_followed: %v", err)
		}
		input.SopFollowed = followed
	}
	if v := field("sop_type_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sop_type_id: %v", err)
		}
		input.SopTypeID = &id
	}
	return input, nil
}

// afterWrite runs the best-effort tail of the pipeline: cache invalidation
// and badge evaluation. Their failures never fail the triggering write.
func (s *TradeService) afterWrite(userID int64, triggerSource string) []database.Badge {
	if s.stats != nil {
		s.stats.Invalidate(userID)
	}
	if s.badges == nil {
		return nil
	}
	awarded, err := s.badges.Evaluate(userID, triggerSource)
	if err != nil {
		log.Printf("⚠️ Badge evaluation failed for user %d: %v", userID, err)
		return nil
	}
	for _, badge := range awarded {
		s.publish("badge.awarded", map[string]interface{}{"user_id": userID, "badge": badge})
	}
	return awarded
}

func (s *TradeService) publish(event string, payload interface{}) {
	if s.events != nil {
		s.events.Broadcast(event, payload)
	}
}

func (s *TradeService) ownedTrade(userID int64, tradeID int64, isAdmin bool) (*database.Trade, error) {
	trade, err := s.trades.Get(tradeID)
	if err != nil {
		return nil, err
	}
	if trade.UserID != userID && !isAdmin {
		// Hide other users' trades entirely rather than admitting they exist.
		return nil, database.NewNotFoundErrorWithID("trade", tradeID)
	}
	return trade, nil
}
