package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/vault/internal/app"
	"github.com/MrSnakeDoc/vault/internal/config"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/sources/seed"
	"github.com/MrSnakeDoc/vault/internal/utils"
	"github.com/MrSnakeDoc/vault/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("❌ vault: %v", err)
	}
}

var (
	rootCmd = &cobra.Command{
		Use:           "vault",
		Short:         "Personal collection manager for books, movies and other items",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	importCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Import items from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	exportCmd = &cobra.Command{
		Use:   "export <file>",
		Short: "Export every item to a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	// Flags
	dataDir  string
	logLevel string
	ifEmpty  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Badger directory. Falls back to VAULT_DATA_DIR")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error. Falls back to VAULT_LOG_LEVEL")
	importCmd.Flags().BoolVar(&ifEmpty, "if-empty", false, "Skip the import when the collection already holds items")
	rootCmd.AddCommand(serveCmd, importCmd, exportCmd)
}

// setup loads the environment config and applies command-line overrides.
// config.Load panics on invalid settings; surface that as an error.
func setup() (cfg *config.Config, log logger.Logger, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	cfg = config.Load()
	if dataDir != "" {
		cfg.DataDir = dataDir
		cfg.InMemory = false
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}

func runImport(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store seed.Store, log logger.Logger) error {
		var (
			n   int
			err error
		)
		if ifEmpty {
			n, err = seed.ImportIfEmpty(ctx, store, args[0], log)
		} else {
			n, err = seed.Import(ctx, store, args[0], log)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d items from %s\n", n, args[0])
		return nil
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store seed.Store, log logger.Logger) error {
		n, err := seed.Export(ctx, store, args[0], log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d items to %s\n", n, args[0])
		return nil
	})
}

// withStore opens the store directly, without the server, for one-shot commands.
func withStore(cmd *cobra.Command, fn func(context.Context, seed.Store, logger.Logger) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer utils.CloseLogged(store, log, "store")

	return fn(ctx, store, log)
}
