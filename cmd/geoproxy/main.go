package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/txomin/geoapi"
	httpadapter "github.com/txomin/geoapi/internal/adapters/http"
	"github.com/txomin/geoapi/internal/pkg/config"
	"github.com/txomin/geoapi/internal/pkg/logging"
	"github.com/txomin/geoapi/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geoproxy")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("geoproxy", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Upstream client
	opts := []geoapi.Option{
		geoapi.WithBaseURL(cfg.API.BaseURL),
		geoapi.WithQPS(cfg.API.QPS),
		geoapi.WithWorkers(cfg.API.Workers),
		geoapi.WithRetryBudget(time.Duration(cfg.API.RetryBudgetSeconds) * time.Second),
		geoapi.WithLimiterWait(time.Duration(cfg.API.LimiterWaitSeconds) * time.Second),
	}
	switch {
	case cfg.API.ClientID != "" && cfg.API.Secret != "":
		opts = append(opts, geoapi.WithClientIDAndSecret(cfg.API.ClientID, cfg.API.Secret))
	case cfg.API.Key != "":
		opts = append(opts, geoapi.WithAPIKey(cfg.API.Key))
	default:
		log.Fatal("either api.key or api.client_id+api.secret must be configured")
	}

	client, err := geoapi.NewClient(opts...)
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	defer client.Close()

	deps := &httpadapter.Dependencies{Client: client}

	app := fiber.New(fiber.Config{
		AppName:      "geoproxy",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	httpadapter.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("geoproxy listening", "addr", addr)
		if err := app.Listen(addr); err != nil {
			slog.Error("server stopped", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		slog.Info("shutting down", "signal", s.String())
	case <-ctx.Done():
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("shutdown", "error", err)
	}
}
