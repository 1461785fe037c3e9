package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/golang-cafe/remotehq/internal/config"
	"github.com/golang-cafe/remotehq/internal/database"
	"github.com/golang-cafe/remotehq/internal/fetchlog"
	"github.com/golang-cafe/remotehq/internal/harvester"
	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/logger"
	"github.com/golang-cafe/remotehq/internal/settings"
)

type settingsGetSaver interface {
	GetSettings() (settings.Settings, error)
	UpdateSettings(userID string, u settings.Update) (settings.Settings, error)
}

// Set by connect, or directly by tests.
var (
	conn          *sql.DB
	fetcher       harvester.Fetcher
	settingsStore settingsGetSaver
)

var rootCmd = &cobra.Command{
	Use:          "harvest",
	Short:        "Run fetch passes and manage harvesting settings",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return connect()
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if conn != nil {
			database.CloseDbConn(conn)
			conn = nil
		}
	},
}

// connect opens the database and builds whatever the tests have not
// already injected.
func connect() error {
	if fetcher != nil && settingsStore != nil {
		return nil
	}
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env, nil)
	conn, err = database.GetDbConn(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := database.EnsureSchema(conn); err != nil {
		return err
	}
	settingsRepo := settings.NewRepository(conn)
	if settingsStore == nil {
		settingsStore = settingsRepo
	}
	if fetcher == nil {
		h, err := harvester.Build(cfg, job.NewRepository(conn), fetchlog.NewRepository(conn), settingsRepo, log)
		if err != nil {
			return err
		}
		fetcher = h
	}
	return nil
}
