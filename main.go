package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-cafe/remotehq/internal/config"
	"github.com/golang-cafe/remotehq/internal/database"
	"github.com/golang-cafe/remotehq/internal/fetchlog"
	"github.com/golang-cafe/remotehq/internal/handler"
	"github.com/golang-cafe/remotehq/internal/harvester"
	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/logger"
	"github.com/golang-cafe/remotehq/internal/logsink"
	"github.com/golang-cafe/remotehq/internal/server"
	"github.com/golang-cafe/remotehq/internal/settings"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := logger.New("dev", nil)
		bootLog.Fatal().Err(err).Msg("unable to load config")
	}
	sink := logsink.New(cfg.LogBufferSize)
	log := logger.New(cfg.Env, sink)

	conn, err := database.GetDbConn(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to postgres")
	}
	defer database.CloseDbConn(conn)
	if err := database.EnsureSchema(conn); err != nil {
		log.Fatal().Err(err).Msg("unable to prepare database schema")
	}

	jobRepo := job.NewRepository(conn)
	fetchLogRepo := fetchlog.NewRepository(conn)
	settingsRepo := settings.NewRepository(conn)

	h, err := harvester.Build(cfg, jobRepo, fetchLogRepo, settingsRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to build harvester")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := harvester.NewScheduler(h, cfg.FetchSchedule, cfg.FetchOnStartup, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("unable to start scheduler")
	}
	defer scheduler.Stop()

	svr := server.NewServer(cfg, conn, mux.NewRouter(), sessions.NewCookieStore(cfg.SessionKey), log)

	svr.RegisterRoute("/api/jobs", handler.ListJobsHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/fetch", handler.FetchJobsHandler(svr, h), []string{"POST"})
	svr.RegisterRoute("/api/jobs/fetch/status", handler.FetchStatusHandler(svr, h), []string{"GET"})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}/status", handler.UpdateJobStatusHandler(svr, jobRepo), []string{"PATCH"})
	svr.RegisterRoute("/api/companies", handler.CompaniesHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/stats", handler.StatsHandler(svr, jobRepo, fetchLogRepo), []string{"GET"})
	svr.RegisterRoute("/api/settings", handler.GetSettingsHandler(svr, settingsRepo), []string{"GET"})
	svr.RegisterRoute("/api/settings", handler.UpdateSettingsHandler(svr, settingsRepo), []string{"PATCH"})
	svr.RegisterRoute("/api/logs", handler.LogsHandler(svr, sink), []string{"GET"})
	svr.RegisterRoute("/feed.rss", handler.ServeRSSFeed(svr, jobRepo), []string{"GET"})

	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("server starting")
	if err := svr.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
