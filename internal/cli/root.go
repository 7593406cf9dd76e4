// Package cli implements spiderctl, the operator tool for the spider backend.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siege-spider/spider-backend/internal/config"
	"github.com/siege-spider/spider-backend/pkg/database"
	"github.com/siege-spider/spider-backend/pkg/logger"
)

var (
	databaseURL string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "spiderctl",
	Short: "Spider backend operator tool",
	Long:  "Inspect ingested matches, run co-play analysis and manage the spider backend database.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logLevel)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db", "", "database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(signatureCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportGraphCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(setClientVersionCmd)
}

// loadConfig --db 가 있으면 DATABASE_URL 보다 우선한다
func loadConfig() (*config.Config, error) {
	if databaseURL != "" {
		if err := os.Setenv("DATABASE_URL", databaseURL); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.Connect(cfg.DatabaseURL, database.Options{
		MaxOpenConns:     2,
		MaxIdleConns:     1,
		ConnMaxLifetime:  time.Hour,
		StatementTimeout: cfg.DBStatementTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
