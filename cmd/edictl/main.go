// Command edictl runs operator tasks against the back office database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/infrastructure/config"
	"github.com/edi/backend/internal/infrastructure/logger"
	"github.com/edi/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "edictl",
	Short:         "Operator commands for the EDI back office",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(notifyPartnersCmd, verifyAcceptanceCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env holds what every command needs
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *persistence.Database
	scope txscope.TransactionScope
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Warn("Error closing database", zap.Error(err))
	}
	_ = e.log.Sync()
}

func setup(_ context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.GormLevel))))
	if err != nil {
		return nil, err
	}
	scope := persistence.NewGormTransactionScope(db.DB)
	scope.SetLogger(log)
	return &env{cfg: cfg, log: log, db: db, scope: scope}, nil
}
