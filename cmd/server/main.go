package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"

	rag_http "sheetqa/internal/adapter/rag_http"
	"sheetqa/internal/di"
	"sheetqa/internal/infra/config"
	"sheetqa/internal/infra/logger"
	"sheetqa/internal/infra/otel"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}

	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize OTel and Logger
	ctx := context.Background()
	shutdownOTel, err := otel.InitProvider(ctx, otel.Config{
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: getVersion(),
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTel.Endpoint,
		Enabled:        cfg.OTel.Enabled,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		slog.Error("failed to init otel", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		EnableOTel:  cfg.OTel.Enabled,
		ServiceName: cfg.OTel.ServiceName,
	})
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid_config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. Load documents and wire components. Nothing is served until this succeeds.
	app, err := di.NewApplicationComponents(ctx, cfg, log)
	if err != nil {
		log.Error("startup_failed", slog.String("error", err.Error()))
		_ = shutdownOTel(ctx)
		os.Exit(1)
	}
	defer app.Close()

	// 4. Initialize Echo
	doc, err := rag_http.LoadOpenAPI(ctx)
	if err != nil {
		log.Error("failed to load openapi spec", slog.String("error", err.Error()))
		os.Exit(1)
	}
	e := rag_http.NewRouter(app.Handler, doc, rag_http.RouterConfig{
		ServiceName: cfg.OTel.ServiceName,
		Logger:      log,
	})

	// 5. Start Server
	addr := ":" + cfg.Server.Port
	go func() {
		log.Info("server_starting", slog.String("addr", addr), slog.Bool("h2c", cfg.Server.H2C))
		var err error
		if cfg.Server.H2C {
			err = e.StartH2CServer(addr, &http2.Server{})
		} else {
			err = e.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("server_stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_failed", slog.String("error", err.Error()))
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error("otel_shutdown_failed", slog.String("error", err.Error()))
	}
}

func getVersion() string {
	if v := os.Getenv("SERVICE_VERSION"); v != "" {
		return v
	}
	return "dev"
}
