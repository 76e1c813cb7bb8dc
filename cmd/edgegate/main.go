package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/gateway"
	"edgegate/gateway/internal/httputil"
	"edgegate/gateway/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// System uptime tracking
var startTime = time.Now()

func main() {
	// CLI flag support for config path
	configFlag := flag.String("config", "", "path to config file (overrides EDGEGATE_CONFIG env var)")
	flag.Parse()

	// Determine config path: CLI flag > env var > default
	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath = os.Getenv("EDGEGATE_CONFIG")
	}
	if cfgPath == "" {
		cfgPath = "./config.yaml"
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			// Can't use log yet, it's not configured
			cfgPath = "./config.example.yaml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Logging.Level == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		// JSON logging for production
	}

	// Startup configuration summary
	log.Info().Msg("=== EdgeGate Configuration Summary ===")
	log.Info().
		Str("config_path", cfgPath).
		Str("log_level", cfg.Logging.Level).
		Str("listen", cfg.Server.Listen).
		Str("origin", cfg.Origin.URL).
		Msg("server configuration")
	log.Info().
		Int("basic_auth_hosts", len(cfg.BasicAuth.Hosts)).
		Str("admin_prefix", cfg.Admin.Prefix).
		Int("admin_allowlist", len(cfg.Admin.Allow)).
		Str("geo_country", cfg.Geo.Country).
		Msg("access control")
	log.Info().
		Str("protected_prefix", cfg.OAuth.ProtectedPrefix).
		Str("callback_path", cfg.OAuth.CallbackPath).
		Bool("refresh_enabled", cfg.Session.RefreshEnabled).
		Msg("session configuration")
	log.Info().
		Str("asset_prefix", cfg.Assets.Prefix).
		Str("automation_path", cfg.Automation.Path).
		Int("bypass_prefixes", len(cfg.Bypass.Prefixes)).
		Msg("routing")
	log.Info().Msg("EdgeGate starting...")

	gw, err := gateway.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build gateway")
	}

	metrics.MustRegister()
	metrics.BuildInfo.Set(1)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		})
	})
	mux.Handle("/", gw)

	handler := httputil.RequestIDMiddleware(log.Logger)(mux)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
	}

	go func() {
		log.Info().Str("listen", cfg.Server.Listen).Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
