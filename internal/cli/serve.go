package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"launcherd/internal/config"
	"launcherd/internal/httpapi"
	"launcherd/internal/launcher"
)

const shutdownTimeout = 5 * time.Second

// loadConfig resolves the daemon configuration: file, then .env, then
// LAUNCHERD_* variables, then defaults.
func loadConfig(cfg *Config) (config.Config, error) {
	var c config.Config
	if cfg.ConfigPath != "" {
		loaded, err := config.Load(cfg.ConfigPath)
		if err != nil {
			return c, err
		}
		c = loaded
	}
	if cfg.EnvFile != "" {
		if err := config.LoadDotEnv(cfg.EnvFile); err != nil {
			return c, err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return c, err
	}
	if cfg.LogLevel != "" {
		c.LogLevel = cfg.LogLevel
	}
	if err := c.ApplyDefaults(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// serve runs the daemon until ctx is done.
func serve(ctx context.Context, cfg *Config) error {
	c, err := loadConfig(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := newLogger(os.Stderr, c.LogLevel, c.LogFormat)
	if err := os.MkdirAll(c.ComponentsDir, 0o755); err != nil {
		return err
	}

	svc, err := launcher.New(launcher.Options{
		Config:   c,
		Log:      log,
		Registry: prometheus.DefaultRegisterer,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return err
	}
	return runServer(ctx, svc, ln, c, log)
}

// runServer serves the API on ln next to the launcher service. It returns
// when ctx is done or either side fails.
func runServer(ctx context.Context, svc *launcher.Service, ln net.Listener, c config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetMaxBodyBytes(c.MaxBodyBytes)
	httpapi.SetCORSOptions(c.CORS.Enabled, c.CORS.AllowedOrigins, c.CORS.AllowedMethods, c.CORS.AllowedHeaders)
	httpapi.SetBaseContext(ctx)

	runErr := make(chan error, 1)
	go func() { runErr <- svc.Run(ctx) }()

	// Submit only needs the buffer, so startup checks do not wait for Run.
	for _, n := range svc.Bootstrap(ctx) {
		log.Debug().Str("job_id", n).Msg("bootstrap job queued")
	}

	srv := &http.Server{
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("event", "listen").Str("addr", ln.Addr().String()).Msg("launcherd listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-runErr:
		runErr = nil
		if err != nil {
			log.Error().Err(err).Msg("launcher stopped")
		}
	case err = <-srvErr:
		if err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}
	cancel()

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if serr := srv.Shutdown(sctx); serr != nil {
		log.Warn().Err(serr).Msg("graceful shutdown error")
	}
	if runErr != nil {
		if rerr := <-runErr; err == nil {
			err = rerr
		}
	}
	log.Info().Str("event", "shutdown").Msg("launcherd stopped")
	return err
}
