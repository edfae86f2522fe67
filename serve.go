package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-intelligence/internal/api"
	"github.com/insightdelivered/statement-intelligence/internal/detector"
	"github.com/insightdelivered/statement-intelligence/internal/logger"
	"github.com/insightdelivered/statement-intelligence/internal/scheduler"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (default $LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.ListenAddr = addrFlag
	}

	log := logger.New()
	rs, err := loadRules(cfg)
	if err != nil {
		return err
	}
	det, err := detector.New(cfg.Detection)
	if err != nil {
		return err
	}
	st, err := openStore(cfg.FingerprintDB)
	if err != nil {
		return err
	}
	defer st.Close()

	sched := scheduler.New(det, log, scheduler.Options{ParseTimeout: cfg.ParseTimeout, Store: st})
	app := api.NewApp(&api.Handler{
		Scheduler: sched,
		Rules:     rs,
		OwnerID:   cfg.OwnerID,
		Version:   version,
		Log:       log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Int("rules", rs.Len()).Msg("listening")
		errc <- app.Listen(cfg.ListenAddr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return sched.Shutdown(shutdownCtx)
}
