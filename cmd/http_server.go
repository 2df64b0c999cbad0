package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/scolaris/school-management/internal"
	"github.com/scolaris/school-management/internal/audit"
	auditRepo "github.com/scolaris/school-management/internal/audit/gormdb"
	"github.com/scolaris/school-management/internal/auth"
	"github.com/scolaris/school-management/internal/backup"
	"github.com/scolaris/school-management/internal/reportgen"
	"github.com/scolaris/school-management/internal/schoolconfig"
	schoolRepo "github.com/scolaris/school-management/internal/schoolconfig/gormdb"
	"github.com/scolaris/school-management/internal/store"
	"github.com/scolaris/school-management/internal/sysuser"
	userRepo "github.com/scolaris/school-management/internal/sysuser/gormdb"
	"github.com/scolaris/school-management/internal/transport/rest"
	"github.com/scolaris/school-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to access database handle: %v\n", err)
		os.Exit(1)
	}

	origins := splitOrigins(deps.Config.Server.AllowedOrigins)
	rest.RegisterAllRoutes(deps.Router, sqlDB, deps.Config.Database.Driver, deps.Handlers, origins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := store.Open(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// The embedded SQLite store migrates itself; Postgres uses goose.
	if config.Database.Driver != "postgres" {
		if err := store.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate store: %w", err)
		}
	}

	recorder := audit.NewRecorder(auditRepo.NewAuditRepository(db), lg)

	schools := schoolRepo.NewSchoolRepository(db)
	users := userRepo.NewUserRepository(db)

	schoolService := schoolconfig.NewService(schools, recorder, lg)
	userService := sysuser.NewService(users, recorder, lg)
	authService := auth.NewService(users, auth.NewJWTTokenGenerator(config.Security), config.Security, lg)
	backupEngine := backup.NewEngine(db, recorder, lg)
	reportClient := reportgen.NewClient(reportgen.Config{
		APIURL:         config.TextGen.APIURL,
		APIKey:         config.TextGen.APIKey,
		Model:          config.TextGen.Model,
		RequestTimeout: config.TextGen.RequestTimeout,
	}, lg)

	handlers := rest.Handlers{
		Auth:    auth.NewHandler(authService),
		School:  schoolconfig.NewHandler(schoolService),
		User:    sysuser.NewHandler(userService),
		Backup:  backup.NewHandler(backupEngine),
		Report:  reportgen.NewHandler(reportClient),
		Audit:   audit.NewHandler(recorder),
		Checker: schoolService,
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Router:   chi.NewRouter(),
		Handlers: handlers,
	}, nil
}

func splitOrigins(raw string) []string {
	if raw == "" || raw == "*" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
