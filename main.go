package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/auth"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/config"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/database"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/handlers"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/llm"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/logging"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/mcp"
	mcpauth "github.com/vowsuite-inc/vowsuite-reports/pkg/mcp/auth"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/mcp/tools"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/middleware"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/prompts"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/services"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/sqlsafety"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Int("report_max_rows", cfg.Report.MaxRows))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
		if err != nil {
			logger.Fatal("Failed to open migration connection", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		_ = sqlDB.Close()
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger.Named("auth"))
	authMiddleware := auth.NewMiddleware(authService, logger.Named("auth"))
	mcpAuthMiddleware := mcpauth.NewMiddleware(authService, logger.Named("mcp-auth"))

	generator, err := llm.NewGeneratorFromConfig(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to create SQL generator", zap.Error(err))
	}
	if generator != nil {
		logger.Info("SQL generator configured",
			zap.String("provider", generator.Provider()),
			zap.String("model", generator.Model()))
	}

	catalog, err := prompts.LoadCatalog()
	if err != nil {
		logger.Fatal("Failed to load schema catalog", zap.Error(err))
	}
	validator := sqlsafety.NewValidator(catalog.TableNames())
	systemPrompt := prompts.ReportSQLSystemPrompt(catalog, cfg.Report.MaxRows)

	executor := services.NewPostgresExecutor(db.Pool, logger)
	reportService := services.NewReportService(
		generator,
		validator,
		executor,
		systemPrompt,
		cfg.Report.MaxRows,
		time.Duration(cfg.Report.QueryTimeoutSeconds)*time.Second,
		logger,
	)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger.Named("health"))
	healthHandler.RegisterRoutes(mux)

	reportsHandler := handlers.NewReportsHandler(reportService, logger.Named("reports"))
	reportsHandler.RegisterRoutes(mux, authMiddleware)

	mcpServer := mcp.NewServer("vowsuite-reports", cfg.Version, logger.Named("mcp"))
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	tools.RegisterReportTools(mcpServer.MCP(), &tools.ReportToolDeps{
		ReportService: reportService,
		Catalog:       catalog,
		Logger:        logger.Named("mcp-tools"),
	})
	mcpHTTP := mcpServer.NewStreamableHTTPServer()
	mux.Handle("/api/weddings/{wid}/mcp", mcpAuthMiddleware.RequireAuth("wid")(mcpHTTP))

	handler := middleware.RequestLogger(logger.Named("http"))(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting vowsuite-reports",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
