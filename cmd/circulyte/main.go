// Command circulyte runs offline admin tasks against a configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"circulyte-backend/internal/config"
	"circulyte-backend/internal/logging"
	"circulyte-backend/internal/server"
	"circulyte-backend/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath  string
	storeDriver string
	verbose     bool
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "circulyte",
	Short: "Offline tools for the Circulyte admin backend",
	Long: `Offline tools for the Circulyte admin backend.

Subcommands:
  codes generate  - Write a spreadsheet of fresh tracking codes
  batches list    - Page through received batches
  trace           - Print the provenance chain of a fiber pack
  seed            - Load a demo dataset`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CIRCULYTE_CONFIG"), "YAML config file")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Override STORE_DRIVER (postgres, mongo, memory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(codesCmd, batchesCmd, traceCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig does not call Validate; no JWT secret is needed offline.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  store.Store
}

// openEnv loads config, builds a logger and connects the store. The returned
// func releases all three.
func openEnv(ctx context.Context) (*env, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	st, err := server.OpenStore(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warn("store close", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return &env{cfg: cfg, logger: logger, store: st}, closeFn, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
