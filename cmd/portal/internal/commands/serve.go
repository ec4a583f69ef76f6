package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/clientportal/internal/server"
	"github.com/wolfeidau/clientportal/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen          string        `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"PORTAL_LISTEN"`
	Cert            string        `help:"path to TLS cert file" default:"" env:"PORTAL_TLS_CERT"`
	Key             string        `help:"path to TLS key file" default:"" env:"PORTAL_TLS_KEY"`
	ShutdownTimeout time.Duration `help:"time allowed for in-flight requests on shutdown" default:"15s" env:"PORTAL_SHUTDOWN_TIMEOUT"`

	// Browser access
	CORSOrigins    []string `name:"cors-origins" help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"PORTAL_CORS_ORIGINS"`
	TrustedOrigins []string `help:"origins exempt from cross-origin protection" env:"PORTAL_TRUSTED_ORIGINS"`

	// Telemetry
	Tracing     bool    `help:"enable tracing and metrics export" default:"false" env:"PORTAL_TRACING"`
	SampleRatio float64 `help:"trace sample ratio" default:"1" env:"PORTAL_TRACE_SAMPLE_RATIO"`

	Store  StoreFlags  `embed:""`
	Auth   AuthFlags   `embed:"" prefix:"auth-"`
	Notify NotifyFlags `embed:"" prefix:"notify-"`
}

func (c *ServeCmd) Run(globals *Globals) error {
	log, err := globals.setupLogger()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting portal")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName: "clientportal",
			Version:     globals.Version,
			SampleRatio: c.SampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without export")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	verifier, err := c.Auth.verifier()
	if err != nil {
		return err
	}

	notifier, closeNotifier, err := c.Notify.notifier(ctx)
	if err != nil {
		return err
	}
	defer closeNotifier()

	stores, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer stores.close()

	srv := server.New(stores.Stores, verifier, notifier, stores.pinger, server.Config{
		CORSOrigins:    c.CORSOrigins,
		TrustedOrigins: c.TrustedOrigins,
		Tracing:        c.Tracing,
	})

	handler, err := srv.Handler(log)
	if err != nil {
		return fmt.Errorf("failed to build handler: %w", err)
	}

	httpServer := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Str("auth_mode", c.Auth.Mode).Bool("tls", c.Cert != "").Msg("Starting HTTP server")
		if c.Cert != "" && c.Key != "" {
			errCh <- httpServer.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", c.ShutdownTimeout).Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	return nil
}
