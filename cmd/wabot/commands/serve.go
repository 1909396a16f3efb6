package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ntandomods/wabot/pkg/wabot/bot"
	"github.com/ntandomods/wabot/pkg/wabot/config"
	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// newServeCmd creates the `wabot serve` command that starts the daemon.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bot daemon",
		Long: `Connect to WhatsApp and process chat commands until interrupted.
On first run a QR code is printed for pairing.

Examples:
  wabot serve
  wabot serve --config ./config.yaml`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── Load config ──
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// ── Configure logger ──
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(handler)

	if cfg.OwnerJID == "" {
		logger.Warn("no owner configured, owner commands are disabled",
			"hint", "set OWNER_NUMBER, e.g. 263718456744@s.whatsapp.net")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Build transport ──
	wa, err := transport.NewWhatsApp(ctx, cfg.AuthDir, logger)
	if err != nil {
		return fmt.Errorf("initializing transport: %w", err)
	}

	// ── Build and start bot ──
	b, err := bot.New(cfg, wa, wa, logger)
	if err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		// The only fatal connection failure is the very first one.
		return fmt.Errorf("failed to start: %w", err)
	}

	logger.Info("wabot running. Press Ctrl+C to stop.", "port", cfg.Port)

	// ── Wait for shutdown ──
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")
	b.Stop()

	return nil
}
