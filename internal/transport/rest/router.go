package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/scolaris/school-management/internal/audit"
	"github.com/scolaris/school-management/internal/auth"
	"github.com/scolaris/school-management/internal/backup"
	"github.com/scolaris/school-management/internal/reportgen"
	"github.com/scolaris/school-management/internal/schoolconfig"
	"github.com/scolaris/school-management/internal/sysuser"
	"github.com/scolaris/school-management/internal/transport/middleware"
	"github.com/scolaris/school-management/internal/transport/swagger"
)

// Handlers bundles every HTTP handler the console exposes.
type Handlers struct {
	Auth    *auth.Handler
	School  *schoolconfig.Handler
	User    *sysuser.Handler
	Backup  *backup.Handler
	Report  *reportgen.Handler
	Audit   *audit.Handler
	Checker middleware.PermissionChecker
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, driver string, h Handlers, allowedOrigins []string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, driver)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.School != nil {
				pr.Get("/schools/active", h.School.GetActiveSchool)
				pr.Get("/permissions/catalog", h.School.GetPermissionCatalog)
				pr.Get("/permissions/defaults", h.School.GetPermissionDefaults)
				pr.Get("/subjects/defaults", h.School.GetSubjectDefaults)
				pr.Post("/permissions/toggle", h.School.TogglePermission)

				// Configuration writes need the settings permission.
				pr.Group(func(sr chi.Router) {
					sr.Use(middleware.RequirePermissions(h.Checker, "settings.write"))
					sr.Get("/schools", h.School.ListSchools)
					sr.Post("/schools", h.School.SaveSchool)
					sr.Put("/schools/{id}/permissions", h.School.SavePermissionsAndSubjects)
					sr.Post("/schools/{id}/subjects", h.School.AddSubject)
					sr.Post("/schools/{id}/pin", h.School.ChangePin)
				})
			}

			if h.User != nil {
				pr.Group(func(ur chi.Router) {
					ur.Use(middleware.RequirePermissions(h.Checker, "settings.write"))
					ur.Get("/users", h.User.ListUsers)
					ur.Post("/users", h.User.SaveUser)
					ur.Delete("/users/{id}", h.User.DeleteUser)
				})
			}

			if h.Backup != nil {
				pr.Group(func(br chi.Router) {
					br.Use(middleware.RequirePermissions(h.Checker, "settings.write"))
					br.Get("/backup", h.Backup.CreateBackup)
					br.Post("/backup/restore", h.Backup.RestoreBackup)
					br.Post("/backup/factory-reset", h.Backup.FactoryReset)
				})
			}

			if h.Audit != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(h.Checker, "settings.read"))
					ar.Get("/audit", h.Audit.ListEntries)
				})
			}

			if h.Report != nil {
				pr.Group(func(rr chi.Router) {
					rr.Use(middleware.RequirePermissions(h.Checker, "reports.write", "grades.write"))
					rr.Post("/reports/student", h.Report.GenerateStudentReport)
					rr.Post("/reports/class-analysis", h.Report.AnalyzeClass)
				})
			}
		})
	})
}
