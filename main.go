package main

import (
	"log"

	"trade-journal/api"
	"trade-journal/app"
	"trade-journal/config"
)

func main() {
	// Load config from .env file
	cfg := config.LoadFromEnv()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := application.Init(); err != nil {
		log.Fatal(err)
	}

	application.SetServer(api.NewServer(api.Deps{
		AuthMgr:      application.AuthManager(),
		Broker:       application.Broker(),
		Users:        application.Users,
		Trades:       application.Trades,
		Summaries:    application.Summaries,
		Badges:       application.Badges,
		Targets:      application.Targets,
		SopTypes:     application.SopTypes,
		CronLogs:     application.CronLogs,
		TradeSvc:     application.TradeSvc,
		StatsSvc:     application.StatsSvc,
		AdminSvc:     application.AdminSvc,
		BadgeEval:    application.BadgeEval,
		CalendarSync: application.CalendarSync,
	}))

	if err := application.Start(); err != nil {
		log.Fatal(err)
	}
}
