package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/traceops/backend/internal/auth"
	"github.com/traceops/backend/internal/config"
	"github.com/traceops/backend/internal/http/handlers"
	"github.com/traceops/backend/internal/metrics"
	"github.com/traceops/backend/internal/middleware"
	"github.com/traceops/backend/internal/rbac"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Dev    *handlers.DevHandler
	Event  *handlers.EventHandler
	Alert  *handlers.AlertHandler
	Report *handlers.ReportHandler
	Meta   *handlers.MetaHandler
	WS     *handlers.WSHub
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	tokens auth.TokenIssuer,
	apiKeys middleware.APIKeyAuthenticator,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-API-Key",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))
	app.Use(middleware.MetricsMiddleware(m))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/login", h.Auth.Login)

	// Meta (public, no auth required)
	api.Get("/meta/severities", h.Meta.GetSeverities)
	api.Get("/meta/alert-types", h.Meta.GetAlertTypes)
	api.Get("/meta/roles", h.Meta.GetRoles)

	// Bootstrap, hidden unless allowed
	bootstrap := bootstrapOnly(cfg)
	api.Post("/auth/register", bootstrap, h.Auth.Register)
	api.Post("/dev/tenants", bootstrap, h.Dev.CreateTenant)
	api.Get("/dev/tenants", bootstrap, h.Dev.ListTenants)
	api.Post("/dev/apikeys", bootstrap, h.Dev.CreateAPIKey)

	// Machine callers (X-API-Key), rate limited per tenant.
	apiKey := middleware.APIKeyMiddleware(apiKeys, log)
	ingestLimit := middleware.RateLimitMiddleware(rdb, cfg.IngestRateLimit, cfg.IngestRateWindow, log)
	api.Post("/events", apiKey, ingestLimit, h.Event.Ingest)
	api.Post("/events/batch", apiKey, ingestLimit, h.Event.IngestBatch)
	api.Post("/automation/alerts", apiKey, ingestLimit, h.Alert.Create)

	// Humans (JWT). Attached per route so unknown paths still 404.
	jwt := middleware.JWTMiddleware(tokens, log)
	can := func(perm string) fiber.Handler { return middleware.RequirePermission(perm) }

	api.Get("/me", jwt, h.Auth.GetMe)

	// Events
	api.Get("/events", jwt, can(rbac.PermReadEvents), h.Event.List)
	api.Get("/events/:id", jwt, can(rbac.PermReadEvents), h.Event.Get)

	// Alerts
	api.Get("/alerts", jwt, can(rbac.PermReadAlerts), h.Alert.List)
	api.Get("/alerts/:id", jwt, can(rbac.PermReadAlerts), h.Alert.Get)
	api.Post("/alerts", jwt, can(rbac.PermManageAlerts), h.Alert.Create)
	api.Post("/alerts/:id/resolve", jwt, can(rbac.PermManageAlerts), h.Alert.Resolve)

	// Reports
	api.Get("/reports/summary", jwt, can(rbac.PermReadReports), h.Report.Summary)
	api.Get("/reports/events.csv", jwt, can(rbac.PermReadEvents), h.Report.ExportEventsCSV)
	api.Post("/reports/audit-pack", jwt, can(rbac.PermGenerateReport), h.Report.CreateAuditPack)
	api.Get("/reports/runs", jwt, can(rbac.PermReadReports), h.Report.ListRuns)
	api.Get("/reports/runs/:id/download", jwt, can(rbac.PermReadReports), h.Report.DownloadRun)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(h.WS.HandleWS))
}

// bootstrapOnly answers 404 unless bootstrap endpoints are enabled.
func bootstrapOnly(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.BootstrapAllowed() {
			return fiber.ErrNotFound
		}
		return c.Next()
	}
}
