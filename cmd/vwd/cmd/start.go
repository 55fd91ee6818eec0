package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"

	"github.com/leocagli/Human-vs-bots/internal/app"
	"github.com/leocagli/Human-vs-bots/internal/config"
	"github.com/leocagli/Human-vs-bots/internal/store"
)

func newStartCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application",
		Long: `Open the node database under <home>/data and serve the Vault Wars
application to CometBFT until interrupted.

Every flag can also be set with a VW_ environment variable
(for example VW_RELAYER) or in <home>/config.toml.`,
		Args: cobra.NoArgs,
		RunE: runStart,
	}
	config.AddFlags(c.Flags())
	return c
}

func runStart(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := store.Open(string(cfg.DBBackend), cfg.DataDir())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	a, err := app.New(db, logger, app.Options{
		Relayer:     cfg.Relayer,
		ProofPolicy: cfg.ProofPolicy,
	})
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	srv, err := server.NewServer(cfg.Addr, cfg.Transport, a)
	if err != nil {
		return fmt.Errorf("create abci server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("abci server start: %w", err)
	}
	defer func() { _ = srv.Stop() }()

	logger.Info("abci server listening", "addr", cfg.Addr, "transport", cfg.Transport, "home", cfg.Home)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-cmd.Context().Done():
	}
	return nil
}
