package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"trade-journal/auth"
	"trade-journal/cache"
	"trade-journal/config"
	"trade-journal/database"
	"trade-journal/database/badges"
	"trade-journal/database/cronlogs"
	"trade-journal/database/soptypes"
	"trade-journal/database/summaries"
	"trade-journal/database/targets"
	"trade-journal/database/trades"
	"trade-journal/database/users"
	"trade-journal/realtime"
)

// ServerStarter is implemented by api.Server; declared here so the wiring
// package does not import api (api already imports app).
type ServerStarter interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// App represents the main application
type App struct {
	config  *config.Config
	authMgr *auth.Manager

	db     *database.Database
	redis  *cache.RedisClient
	broker *realtime.Broker

	Users     *users.Repository
	Trades    *trades.Repository
	Summaries *summaries.Repository
	Badges    *badges.Repository
	Targets   *targets.Repository
	SopTypes  *soptypes.Repository
	CronLogs  *cronlogs.Repository

	TradeSvc     *TradeService
	StatsSvc     *StatsService
	AdminSvc     *AdminStatsService
	BadgeEval    *BadgeEvaluator
	SummarySvc   *SummaryService
	CalendarSync *CalendarSync

	server ServerStarter
}

// New creates a new application instance
func New(cfg *config.Config) (*App, error) {
	authMgr, err := auth.NewManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMins)*time.Minute,
		cfg.Auth.BcryptCost,
	)
	if err != nil {
		return nil, fmt.Errorf("auth setup failed: %w", err)
	}

	return &App{config: cfg, authMgr: authMgr}, nil
}

// AuthManager exposes the token manager for server wiring
func (a *App) AuthManager() *auth.Manager { return a.authMgr }

// Broker exposes the realtime broker for server wiring
func (a *App) Broker() *realtime.Broker { return a.broker }

// SetServer injects the HTTP server before Start
func (a *App) SetServer(server ServerStarter) { a.server = server }

// Init connects storage and builds the repositories and services. Split from
// Start so the HTTP server can be wired in between.
func (a *App) Init() error {
	// 1. Database Connection
	fmt.Println("🗄️  Connecting to database...")

	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	// 2. Schema + seed data
	journalRepo := database.NewJournalRepository(a.db)
	if err := journalRepo.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 3. Redis Connection
	if a.config.RedisEnabled {
		fmt.Println("🧠 Connecting to Redis...")
		redisClient := cache.NewRedisClient(
			a.config.RedisHost,
			a.config.RedisPort,
			a.config.RedisPassword,
		)
		if redisClient == nil {
			fmt.Println("⚠️  Redis connection failed. Caching disabled.")
		} else {
			a.redis = redisClient
		}
	} else {
		fmt.Println("ℹ️  Redis disabled by configuration")
	}

	// 4. Repositories
	a.Users = users.NewRepository(a.db)
	a.Trades = trades.NewRepository(a.db)
	a.Summaries = summaries.NewRepository(a.db)
	a.Badges = badges.NewRepository(a.db)
	a.Targets = targets.NewRepository(a.db)
	a.SopTypes = soptypes.NewRepository(a.db)
	a.CronLogs = cronlogs.NewRepository(a.db)

	// 5. Realtime broker
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	// 6. Services
	statsCache := cache.NewStatsCache(a.redis, database.StatsCacheTTL)
	a.SummarySvc = NewSummaryService(a.Trades, a.Summaries)
	a.BadgeEval = NewBadgeEvaluator(a.Badges, a.Trades, a.Summaries)
	a.StatsSvc = NewStatsService(a.Trades, a.Summaries, statsCache)
	a.AdminSvc = NewAdminStatsService(a.Users, a.Trades, a.Summaries)
	a.TradeSvc = NewTradeService(a.Trades, a.SummarySvc, a.BadgeEval, a.StatsSvc, a.broker)
	a.CalendarSync = NewCalendarSync(a.CronLogs, a.config.Calendar.Endpoint)

	return nil
}

// Start runs the HTTP server and the calendar schedule until an interrupt,
// then shuts everything down with a timeout.
func (a *App) Start() error {
	if a.server == nil {
		return fmt.Errorf("no HTTP server wired; call SetServer before Start")
	}

	if err := a.CalendarSync.StartSchedule(a.config.Calendar.Schedule); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.Start(a.config.ListenAddr); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt or server failure
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		a.shutdown()
		return fmt.Errorf("API server failed: %w", err)
	case <-interrupt:
		fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")
	}

	a.shutdown()
	return nil
}

// shutdown stops the server, the schedule and the storage connections with
// a timeout so a hung dependency cannot block exit forever
func (a *App) shutdown() {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownComplete := make(chan struct{})
	go func() {
		fmt.Println("📡 Stopping API server...")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down API server: %v", err)
		}

		fmt.Println("⏰ Stopping calendar schedule...")
		a.CalendarSync.Stop()

		if a.redis != nil {
			fmt.Println("🧠 Closing Redis connection...")
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing Redis: %v", err)
			}
		}

		if a.db != nil {
			fmt.Println("🗄️  Closing database connection...")
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown complete")
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timed out, forcing exit")
	}
}
