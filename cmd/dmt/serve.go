package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/dmt/internal/auth"
	"github.com/verte-zerg/dmt/internal/generator"
	"github.com/verte-zerg/dmt/internal/httpapi"
	"github.com/verte-zerg/dmt/internal/observability"
	"github.com/verte-zerg/dmt/internal/practice"
	"github.com/verte-zerg/dmt/internal/scheduler"
	"github.com/verte-zerg/dmt/internal/speech"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr  string
	serveDebug bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8000)")
	cmd.Flags().BoolVar(&serveDebug, "debug", false, "enable debug logging")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	settings, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyStringFlag(cmd, "addr", &settings.Addr, serveAddr)

	level := slog.LevelInfo
	if serveDebug {
		level = slog.LevelDebug
	}
	observability.SetOutput(os.Stdout, level)
	logger := observability.Logger()
	if settings.InsecureSecret() {
		logger.Warn("SECRET_KEY is not set; tokens are signed with the insecure development key")
	}

	st, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	tokens, err := auth.NewIssuer(settings.SigningKey(), settings.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	svc := practice.NewService(st, generator.New(), logger.With("component", "practice"), practice.Options{
		DefaultDuration: settings.DefaultDuration,
		StaleAfter:      settings.StaleAfter,
	})

	sweeper, err := scheduler.New(svc, settings.SweepInterval, logger.With("component", "scheduler"))
	if err != nil {
		return err
	}
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	proxy := speech.NewProxy(speech.Config{
		URL:           settings.DeepgramURL,
		APIKey:        settings.DeepgramAPIKey,
		Model:         settings.SpeechModel,
		Language:      settings.SpeechLanguage,
		AllowedOrigin: settings.CORSOrigin,
	}, logger.With("component", "speech"))
	if !proxy.HasAPIKey() {
		logger.Warn("DEEPGRAM_API_KEY is not set; speech transcription is disabled")
	}

	srv := &http.Server{
		Addr: settings.Addr,
		Handler: httpapi.NewServer(httpapi.Deps{
			Store:      st,
			Practice:   svc,
			Tokens:     tokens,
			Speech:     proxy,
			CORSOrigin: settings.CORSOrigin,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", settings.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "open_sessions", svc.OpenCount())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
