package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schoolapi/internal/auth"
	"schoolapi/internal/config"
	"schoolapi/internal/database"
	"schoolapi/internal/database/migration"
	handlers "schoolapi/internal/http/handler"
	"schoolapi/internal/http/middleware"
	"schoolapi/internal/mail"
	"schoolapi/internal/otel"
	"schoolapi/internal/rbac"
	"schoolapi/internal/repository/postgres"
	"schoolapi/internal/service"
	"schoolapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc := time.Local
	ctx := context.Background()

	// Tracing is optional; a missing collector degrades to a noop provider.
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Apply schema migrations and seed the default roles, permission catalog
	// and role settings.
	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	userRepo := postgres.NewUserPostgres(db)
	roleRepo := postgres.NewRolePostgres(db)
	matrixRepo := postgres.NewMatrixPostgres(db)
	settingRepo := postgres.NewSettingPostgres(db)
	permRepo := postgres.NewPermissionPostgres(db)
	courseRepo := postgres.NewCoursePostgres(db)
	profileRepo := postgres.NewStudentProfilePostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)

	seeder := rbac.NewSeeder(roleRepo, permRepo, matrixRepo, settingRepo)
	if _, err := seeder.EnsureSeeded(ctx); err != nil {
		log.Fatalf("failed to seed defaults: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	mailer, err := mail.NewSMTP(cfg.SMTP)
	if err != nil {
		log.Fatalf("failed to initialize mailer: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpireMinutes)
	if err != nil {
		log.Fatalf("failed to initialize token issuer: %v", err)
	}

	svcs := handlers.Services{
		Auth:     service.NewAuthService(userRepo, settingRepo, tokens, mailer),
		Users:    service.NewUserService(userRepo, matrixRepo, permRepo, objStore, auditRepo),
		Rbac:     service.NewRbacService(roleRepo, matrixRepo, settingRepo, permRepo, auditRepo),
		Courses:  service.NewCourseService(courseRepo, permRepo, auditRepo),
		Profiles: service.NewStudentProfileService(profileRepo, permRepo, auditRepo),
		Admin:    service.NewAdminService(userRepo, courseRepo, profileRepo, auditRepo, settingRepo),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())

	registry := prometheus.NewRegistry()
	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, svcs)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
