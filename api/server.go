package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"trade-journal/app"
	"trade-journal/auth"
	"trade-journal/database/badges"
	"trade-journal/database/cronlogs"
	"trade-journal/database/soptypes"
	"trade-journal/database/summaries"
	"trade-journal/database/targets"
	"trade-journal/database/trades"
	"trade-journal/database/users"
	"trade-journal/realtime"
)

// Server handles HTTP API requests
type Server struct {
	authMgr *auth.Manager
	broker  *realtime.Broker

	users     *users.Repository
	trades    *trades.Repository
	summaries *summaries.Repository
	badgeRepo *badges.Repository
	targets   *targets.Repository
	sopTypes  *soptypes.Repository
	cronLogs  *cronlogs.Repository

	tradeSvc     *app.TradeService
	statsSvc     *app.StatsService
	adminSvc     *app.AdminStatsService
	badgeEval    *app.BadgeEvaluator
	calendarSync *app.CalendarSync

	httpServer *http.Server
}

// Deps bundles everything the server routes need
type Deps struct {
	AuthMgr *auth.Manager
	Broker  *realtime.Broker

	Users     *users.Repository
	Trades    *trades.Repository
	Summaries *summaries.Repository
	Badges    *badges.Repository
	Targets   *targets.Repository
	SopTypes  *soptypes.Repository
	CronLogs  *cronlogs.Repository

	TradeSvc     *app.TradeService
	StatsSvc     *app.StatsService
	AdminSvc     *app.AdminStatsService
	BadgeEval    *app.BadgeEvaluator
	CalendarSync *app.CalendarSync
}

// NewServer creates a new API server instance
func NewServer(deps Deps) *Server {
	return &Server{
		authMgr:      deps.AuthMgr,
		broker:       deps.Broker,
		users:        deps.Users,
		trades:       deps.Trades,
		summaries:    deps.Summaries,
		badgeRepo:    deps.Badges,
		targets:      deps.Targets,
		sopTypes:     deps.SopTypes,
		cronLogs:     deps.CronLogs,
		tradeSvc:     deps.TradeSvc,
		statsSvc:     deps.StatsSvc,
		adminSvc:     deps.AdminSvc,
		badgeEval:    deps.BadgeEval,
		calendarSync: deps.CalendarSync,
	}
}

// Start starts the HTTP server on the specified address
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Authenticated routes
	mux.Handle("GET /api/auth/me", s.authMiddleware(http.HandlerFunc(s.handleMe)))
	if s.broker != nil {
		mux.Handle("GET /api/events", s.authMiddleware(s.broker))
	}

	// Trades
	mux.Handle("POST /api/trades", s.authMiddleware(http.HandlerFunc(s.handleCreateTrade)))
	mux.Handle("GET /api/trades", s.authMiddleware(http.HandlerFunc(s.handleListTrades)))
	mux.Handle("GET /api/trades/{id}", s.authMiddleware(http.HandlerFunc(s.handleGetTrade)))
	mux.Handle("PUT /api/trades/{id}", s.authMiddleware(http.HandlerFunc(s.handleUpdateTrade)))
	mux.Handle("DELETE /api/trades/{id}", s.authMiddleware(http.HandlerFunc(s.handleDeleteTrade)))
	mux.Handle("POST /api/trades/import", s.authMiddleware(http.HandlerFunc(s.handleImportTrades)))

	// Stats and summaries
	mux.Handle("GET /api/stats", s.authMiddleware(http.HandlerFunc(s.handleUserStats)))
	mux.Handle("GET /api/stats/streaks", s.authMiddleware(http.HandlerFunc(s.handleStreaks)))
	mux.Handle("GET /api/summaries/daily", s.authMiddleware(http.HandlerFunc(s.handleDailySummaries)))
	mux.Handle("GET /api/summaries/weekly", s.authMiddleware(http.HandlerFunc(s.handleWeeklySummaries)))
	mux.Handle("GET /api/summaries/monthly", s.authMiddleware(http.HandlerFunc(s.handleMonthlySummaries)))

	// Badges
	mux.Handle("GET /api/badges", s.authMiddleware(http.HandlerFunc(s.handleBadgeCatalog)))
	mux.Handle("GET /api/badges/mine", s.authMiddleware(http.HandlerFunc(s.handleMyBadges)))
	mux.Handle("GET /api/badges/progress", s.authMiddleware(http.HandlerFunc(s.handleBadgeProgress)))
	mux.Handle("POST /api/badges/recalculate", s.authMiddleware(http.HandlerFunc(s.handleRecalculateBadges)))

	// Targets
	mux.Handle("POST /api/targets", s.authMiddleware(http.HandlerFunc(s.handleCreateTarget)))
	mux.Handle("GET /api/targets", s.authMiddleware(http.HandlerFunc(s.handleListTargets)))
	mux.Handle("GET /api/targets/{id}", s.authMiddleware(http.HandlerFunc(s.handleGetTarget)))
	mux.Handle("PUT /api/targets/{id}", s.authMiddleware(http.HandlerFunc(s.handleUpdateTarget)))
	mux.Handle("DELETE /api/targets/{id}", s.authMiddleware(http.HandlerFunc(s.handleDeleteTarget)))
	mux.Handle("GET /api/targets/{id}/progress", s.authMiddleware(http.HandlerFunc(s.handleTargetProgress)))
	mux.Handle("POST /api/targets/{id}/complete", s.authMiddleware(http.HandlerFunc(s.handleCompleteTarget)))

	// SOP types (read for everyone, writes admin-only)
	mux.Handle("GET /api/sop-types", s.authMiddleware(http.HandlerFunc(s.handleListSopTypes)))

	// Economic calendar
	mux.Handle("GET /api/calendar/events", s.authMiddleware(http.HandlerFunc(s.handleListCalendarEvents)))

	// Admin routes
	mux.Handle("GET /api/admin/users", s.adminMiddleware(http.HandlerFunc(s.handleAdminUsers)))
	mux.Handle("GET /api/admin/performance", s.adminMiddleware(http.HandlerFunc(s.handleAdminPerformance)))
	mux.Handle("GET /api/admin/rankings", s.adminMiddleware(http.HandlerFunc(s.handleAdminRankings)))
	mux.Handle("POST /api/admin/sop-types", s.adminMiddleware(http.HandlerFunc(s.handleCreateSopType)))
	mux.Handle("PUT /api/admin/sop-types/{id}", s.adminMiddleware(http.HandlerFunc(s.handleUpdateSopType)))
	mux.Handle("DELETE /api/admin/sop-types/{id}", s.adminMiddleware(http.HandlerFunc(s.handleDeleteSopType)))
	mux.Handle("POST /api/admin/invite-codes", s.adminMiddleware(http.HandlerFunc(s.handleCreateInviteCode)))
	mux.Handle("GET /api/admin/invite-codes", s.adminMiddleware(http.HandlerFunc(s.handleListInviteCodes)))
	mux.Handle("DELETE /api/admin/invite-codes/{id}", s.adminMiddleware(http.HandlerFunc(s.handleDeactivateInviteCode)))
	mux.Handle("POST /api/admin/calendar/sync", s.adminMiddleware(http.HandlerFunc(s.handleTriggerCalendarSync)))
	mux.Handle("GET /api/admin/calendar/logs", s.adminMiddleware(http.HandlerFunc(s.handleCalendarLogs)))

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 API Server starting on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.verifyRequest(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "invalid or missing token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.verifyRequest(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "invalid or missing token", nil)
			return
		}
		if !claims.IsAdmin {
			respondWithError(w, http.StatusForbidden, "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (s *Server) verifyRequest(r *http.Request) (*auth.Claims, bool) {
	var token string
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	} else {
		// Websocket clients cannot set headers from the browser
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, false
	}
	claims, err := s.authMgr.VerifyToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
