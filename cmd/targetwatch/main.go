package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"targetwatch/config"
	"targetwatch/internal/logging"
	"targetwatch/internal/metrics"
	"targetwatch/internal/panelstate"
	"targetwatch/internal/remote"
	"targetwatch/internal/report"
	"targetwatch/internal/tui"
	"targetwatch/pkg/db"
	"targetwatch/pkg/migration"
	"targetwatch/version"
)

var (
	configDir   string
	dbPath      string
	logLevel    string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:     "targetwatch",
	Short:   "Terminal dashboard for monitored targets",
	Version: version.String(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configDir != "" {
			config.SetConfigDir(configDir)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logPath, err := config.GetLogPath()
		if err != nil {
			return err
		}
		logFile, err := logging.SetupFile(logPath, logLevel)
		if err != nil {
			return err
		}
		defer logFile.Close()

		configPath, err := config.EnsureConfigExists()
		if err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		dashboard, err := config.LoadDashboard(configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		database, store, history, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		client, err := remote.NewClient(dashboard.Server.BaseURL, dashboard.Timeout())
		if err != nil {
			return err
		}

		startMetrics(ctx)

		return tui.Start(ctx, tui.Deps{
			Dashboard: dashboard,
			Store:     store,
			History:   history,
			Remote:    client,
		}, configPath)
	},
}

// openStore opens and migrates the preferences database.
func openStore(ctx context.Context) (*sql.DB, *panelstate.SQLiteStore, *report.History, error) {
	path := dbPath
	if path == "" {
		var err error
		if path, err = config.GetDatabasePath(); err != nil {
			return nil, nil, nil, err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := migration.NewRunner(database).Run(ctx); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, panelstate.NewSQLiteStore(database), report.NewHistory(database), nil
}

func startMetrics(ctx context.Context) {
	if metricsAddr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(ctx, metricsAddr); err != nil {
			fmt.Fprintf(os.Stderr, "metrics listener: %v\n", err)
		}
	}()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.config/targetwatch)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "panel state database (default <config-dir>/targetwatch.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	rootCmd.AddCommand(initCmd, pauseCmd, reportCmd, panelCmd, dbCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
