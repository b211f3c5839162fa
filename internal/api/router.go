package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentryvision/review-service/internal/api/handler"
	"github.com/sentryvision/review-service/internal/api/middleware"
	"github.com/sentryvision/review-service/internal/auth"
	"github.com/sentryvision/review-service/internal/domain"
	"github.com/sentryvision/review-service/internal/metrics"
	"github.com/sentryvision/review-service/internal/repository"
	"github.com/sentryvision/review-service/internal/service"
	"github.com/sentryvision/review-service/internal/ws"
)

type Dependencies struct {
	DB       *pgxpool.Pool
	Verifier auth.TokenVerifier

	HeartbeatInterval time.Duration
	WriteTimeout      time.Duration
	AuthTimeout       time.Duration
}

type Router struct {
	app           *fiber.App
	logger        *slog.Logger
	deps          *Dependencies
	registry      *ws.Registry
	notifier      *ws.Notifier
	gauge         *metrics.ConnectionGauge
	cancelMonitor context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Review Service",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check endpoints (no auth required)
	var pool *pgxpool.Pool
	if r.deps != nil {
		pool = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pool)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	// WebSocket core: registry, sender, notifier, liveness monitor
	r.gauge = metrics.NewConnectionGauge()
	r.registry = ws.NewRegistry(r.logger, r.gauge)
	sender := ws.NewSender(r.registry, r.logger, r.deps.WriteTimeout)
	r.notifier = ws.NewNotifier(sender)

	monitor := ws.NewMonitor(r.registry, r.logger, r.deps.HeartbeatInterval)
	monitorCtx, cancel := context.WithCancel(context.Background())
	r.cancelMonitor = cancel
	go monitor.Run(monitorCtx)

	// WebSocket endpoint: the token travels as a query parameter because
	// browsers cannot set headers on websocket upgrades
	r.app.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(ws.HandlerDeps{
		Registry:    r.registry,
		Sender:      sender,
		Verifier:    r.deps.Verifier,
		Logger:      r.logger,
		AuthTimeout: r.deps.AuthTimeout,
	}))

	// Repositories and services
	detectionRepo := repository.NewDetectionRepository(r.deps.DB)
	reviewRepo := repository.NewReviewRepository(r.deps.DB)
	reviewService := service.NewReviewService(reviewRepo, detectionRepo, r.notifier, r.logger)

	reviewHandler := handler.NewReviewHandler(reviewService, r.logger)
	detectionHandler := handler.NewDetectionHandler(reviewService, r.logger)
	connectionsHandler := handler.NewConnectionsHandler(r.registry, r.gauge)

	// Authenticated REST surface
	v1 := r.app.Group("/v1")
	v1.Use(middleware.Auth(r.deps.Verifier))

	reviewerOrAdmin := middleware.RequireRole(domain.RoleReviewer, domain.RoleAdmin)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	v1.Get("/reviews/pending", reviewHandler.ListPending)
	v1.Get("/reviews", reviewHandler.List)
	v1.Post("/reviews", reviewerOrAdmin, reviewHandler.Create)
	v1.Post("/reviews/assign/:detection_id", reviewerOrAdmin, reviewHandler.Assign)
	v1.Get("/reviews/:id", reviewHandler.Get)
	v1.Put("/reviews/:id", reviewHandler.Update)
	v1.Delete("/reviews/:id", adminOnly, reviewHandler.Delete)

	v1.Get("/detections", detectionHandler.List)
	v1.Get("/detections/:id", detectionHandler.Get)

	v1.Get("/stats/reviews", reviewHandler.Stats)
	v1.Get("/stats/workload/:reviewer_id", reviewHandler.Workload)

	v1.Get("/ws/connected", connectionsHandler.List)
}

// Notifier exposes the notification surface to collaborators that create
// detections or alerts out-of-band (e.g. a queue consumer).
func (r *Router) Notifier() *ws.Notifier {
	return r.notifier
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop the liveness monitor
	if r.cancelMonitor != nil {
		r.cancelMonitor()
	}

	return r.app.Shutdown()
}
