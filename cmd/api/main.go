package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalogapi/docs"
	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/database/migration"
	handlers "catalogapi/internal/http/handler"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/logging"
	"catalogapi/internal/otel"
	"catalogapi/internal/query"
	"catalogapi/internal/repository/postgres"
	"catalogapi/internal/service"
	"catalogapi/internal/storage"
	"catalogapi/internal/token"
)

const shutdownTimeout = 30 * time.Second

// @title Catalog API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logging.New(os.Stdout, cfg.Location())
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		fatal(log, "failed to initialize tracing", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		fatal(log, "failed to connect to database", err)
	}

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		fatal(log, "failed to migrate database", err)
	}

	revocations, closeRevocations, err := newRevocations(ctx, cfg, db)
	if err != nil {
		fatal(log, "failed to initialize revocation store", err)
	}

	issuer, err := token.NewIssuer(token.Config{
		SigningKey: []byte(cfg.Auth.SigningKey),
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, revocations)
	if err != nil {
		fatal(log, "failed to initialize token issuer", err)
	}

	// Cover uploads stay disabled without an object store endpoint.
	var covers storage.Storage
	if cfg.MinIO.Enabled() {
		covers, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			fatal(log, "failed to initialize object storage", err)
		}
	}

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency)
	svc := handlers.Services{
		Auth:       service.NewAuthService(postgres.NewAccountPostgres(db), hasher, issuer, log),
		Regions:    service.NewRegionService(postgres.NewRegionPostgres(db), query.Defaults(cfg.Pagination.Region)),
		Patrons:    service.NewPatronService(postgres.NewPatronPostgres(db), query.Defaults(cfg.Pagination.Patron)),
		Publishers: service.NewPublisherService(postgres.NewPublisherPostgres(db), query.Defaults(cfg.Pagination.Publisher)),
		Books:      service.NewBookService(postgres.NewBookPostgres(db), covers, query.Defaults(cfg.Pagination.Book), log),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(log, "failed to register metrics", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(metrics.Handler())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))

	handlers.RegisterRoutes(app, db, svc)

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("server_started", slog.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			fatal(log, "failed to start server", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			err := app.ShutdownWithContext(ctx)
			closeRevocations()
			_ = db.Close()
			return err
		},
		"tracing": func(ctx context.Context) error {
			return shutdownTracing(ctx)
		},
	})

	code := <-wait
	log.Info("server_stopped", slog.Int("exit_code", code))
	os.Exit(code)
}

// newRevocations builds the revocation set selected by REVOCATION_BACKEND.
// The returned func releases whatever connection the backend holds.
func newRevocations(ctx context.Context, cfg *config.AppConfig, db *sql.DB) (token.RevocationStore, func(), error) {
	switch cfg.Auth.RevocationBackend {
	case "redis":
		rdb, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return token.NewRedisRevocations(rdb), func() { _ = rdb.Close() }, nil
	case "postgres":
		return postgres.NewRevocationPostgres(db), func() {}, nil
	case "memory":
		return token.NewMemoryRevocations(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown revocation backend %q", cfg.Auth.RevocationBackend)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
