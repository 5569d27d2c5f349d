package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/traceops/backend/internal/alertrules"
	"github.com/traceops/backend/internal/auth"
	"github.com/traceops/backend/internal/config"
	"github.com/traceops/backend/internal/db"
	"github.com/traceops/backend/internal/events"
	apphttp "github.com/traceops/backend/internal/http"
	"github.com/traceops/backend/internal/http/handlers"
	"github.com/traceops/backend/internal/metrics"
	"github.com/traceops/backend/internal/render"
	"github.com/traceops/backend/internal/repositories"
	"github.com/traceops/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, db.Migrations(), log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	apiKeyRepo := repositories.NewAPIKeyRepo(pool)
	eventRepo := repositories.NewEventRepo(pool)
	alertRepo := repositories.NewAlertRepo(pool)
	summaryRepo := repositories.NewSummaryRepo(pool)
	reportRepo := repositories.NewReportRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	tokens := auth.TokenIssuer{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, Expiration: cfg.JWTExpiration}

	// Services
	webhook := services.NewWebhookClient(cfg.EventWebhookURL, cfg.WebhookTimeout, log)
	ingestService := services.NewIngestService(eventRepo, alertrules.NewEngine(log), webhook, publisher, m, log)
	eventService := services.NewEventService(eventRepo)
	alertService := services.NewAlertService(alertRepo, eventRepo, publisher, m, log)
	reportService := services.NewReportService(summaryRepo, reportRepo, tenantRepo, eventRepo, render.NewPDFRenderer(), m, log)
	tenantService := services.NewTenantService(tenantRepo, apiKeyRepo, log)
	authService := services.NewAuthService(userRepo, tenantRepo, apiKeyRepo, tokens, log)

	// Handlers
	h := apphttp.Handlers{
		Auth:   handlers.NewAuthHandler(authService, log),
		Dev:    handlers.NewDevHandler(tenantService, log),
		Event:  handlers.NewEventHandler(ingestService, eventService, log),
		Alert:  handlers.NewAlertHandler(alertService, log),
		Report: handlers.NewReportHandler(reportService, log),
		Meta:   handlers.NewMetaHandler(),
		WS:     handlers.NewWSHub(tokens, subscriber, log),
	}

	if err := h.WS.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to alert stream", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		BodyLimit:   8 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, tokens, authService, m, reg, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
