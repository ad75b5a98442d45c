package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"trade-journal/database"
)

// CalendarSyncJobName identifies calendar sync runs in cron_logs.
const CalendarSyncJobName = "economic_calendar_sync"

// CalendarStore is the persistence contract for the calendar sync job.
type CalendarStore interface {
	InsertLog(logRow *database.CronLog) error
	UpsertEvents(events []*database.EconomicEvent) (int, error)
}

// calendarEvent is the wire shape of one event from the upstream feed.
type calendarEvent struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Country  string    `json:"country"`
	Currency string    `json:"currency"`
	Impact   string    `json:"impact"`
	Date     time.Time `json:"date"`
	Actual   string    `json:"actual"`
	Forecast string    `json:"forecast"`
	Previous string    `json:"previous"`
}

// CalendarSync imports upcoming economic calendar events from an upstream
// JSON feed. Every run, manual or scheduled, writes a cron_logs audit row
// with its outcome, duration and item count. Events upsert on external_id
// so repeated runs refresh rather than duplicate.
type CalendarSync struct {
	store    CalendarStore
	client   *http.Client
	endpoint string
	cron     *cron.Cron
}

// NewCalendarSync creates a new calendar sync job
func NewCalendarSync(store CalendarStore, endpoint string) *CalendarSync {
	return &CalendarSync{
		store:    store,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Run executes one sync and records the audit row. The audit row is written
// on failure too; an audit write failure is logged but does not mask the
// sync result.
func (c *CalendarSync) Run(ctx context.Context) (int, error) {
	started := time.Now().UTC()
	log.Println("🔄 Starting economic calendar sync...")

	count, runErr := c.sync(ctx)

	logRow := &database.CronLog{
		JobName:        CalendarSyncJobName,
		Status:         database.CronStatusSuccess,
		StartedAt:      started,
		DurationMs:     time.Since(started).Milliseconds(),
		ItemsProcessed: count,
	}
	if runErr != nil {
		logRow.Status = database.CronStatusFailed
		logRow.ErrorDetail = runErr.Error()
	}
	if err := c.store.InsertLog(logRow); err != nil {
		log.Printf("⚠️ Failed to record calendar sync audit row: %v", err)
	}

	if runErr != nil {
		log.Printf("❌ Calendar sync failed: %v", runErr)
		return 0, runErr
	}
	log.Printf("✅ Calendar sync complete: %d events in %dms", count, logRow.DurationMs)
	return count, nil
}

func (c *CalendarSync) sync(ctx context.Context) (int, error) {
	if c.endpoint == "" {
		return 0, fmt.Errorf("calendar endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build calendar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calendar fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("calendar feed returned status %d", resp.StatusCode)
	}

	var feed []calendarEvent
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return 0, fmt.Errorf("failed to decode calendar feed: %w", err)
	}

	events := make([]*database.EconomicEvent, 0, len(feed))
	for _, e := range feed {
		if e.ID == "" || e.Title == "" || e.Date.IsZero() {
			continue
		}
		events = append(events, &database.EconomicEvent{
			ExternalID: e.ID,
			Title:      e.Title,
			Country:    e.Country,
			Currency:   e.Currency,
			Impact:     e.Impact,
			EventTime:  e.Date.UTC(),
			Actual:     e.Actual,
			Forecast:   e.Forecast,
			Previous:   e.Previous,
		})
	}

	return c.store.UpsertEvents(events)
}

// StartSchedule begins running the sync on the given cron expression.
// An empty expression leaves the job manual-only.
func (c *CalendarSync) StartSchedule(expr string) error {
	if expr == "" {
		log.Println("ℹ️ Calendar sync schedule not configured, manual trigger only")
		return nil
	}

	c.cron = cron.New()
	_, err := c.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := c.Run(ctx); err != nil {
			log.Printf("⚠️ Scheduled calendar sync failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid calendar sync schedule %q: %w", expr, err)
	}

	c.cron.Start()
	log.Printf("⏰ Calendar sync scheduled: %s", expr)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (c *CalendarSync) Stop() {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
}
