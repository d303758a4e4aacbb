package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/app"
	"github.com/stoik/phishcatch/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event API and the notification cleanup worker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Error("Failed to close application", logger.Err(err))
			}
		}()

		srv := &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           a.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		var wg conc.WaitGroup
		wg.Go(func() { a.RunCleanup(ctx) })

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		log.Info("PhishCatch listening", slog.String("addr", cfg.Server.ListenAddr))

		select {
		case <-ctx.Done():
			log.Info("Shutting down")
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				stop()
				wg.Wait()
				return fmt.Errorf("server error: %w", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP shutdown failed", logger.Err(err))
		}

		wg.Wait()
		return nil
	},
}
