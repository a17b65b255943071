package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/handler/http/middleware"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
	"github.com/granjalink/farm-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
	// UploadsDir is served under /uploads when set.
	UploadsDir string
	// Ready backs /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

type Handlers struct {
	Auth        AuthHandler
	Admin       AdminHandler
	Profile     ProfileHandler
	Pig         PigHandler
	Expense     ExpenseHandler
	Vaccination VaccinationHandler
	Dashboard   DashboardHandler
	View        http.Handler
}

// NewRouter wires the API under /api/v1 and the guarded frontend views on every other path.
func NewRouter(cfg RouterConfig, jwtService jwt.Service, profiles middleware.ProfileGetter, routeGuard func(http.Handler) http.Handler, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))
	r.Get("/readyz", readiness(cfg.Ready))

	authRequired := middleware.AuthRequired(jwtService)

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Get("/login/oauth/google", h.Auth.LoginWithGoogle)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authRequired)
				r.Get("/me", h.Auth.Me)
				r.Get("/events", h.Auth.Events)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(authRequired)

			r.Route("/admin/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(profiles))
				r.Get("/", h.Admin.ListUsers)
				r.Post("/", h.Admin.CreateUser)
				r.Post("/password", h.Admin.ResetPassword)
				r.Put("/{id}/role", h.Admin.UpdateRole)
				r.Delete("/{id}", h.Admin.DeleteUser)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.Profile.Get)
				r.Put("/", h.Profile.Update)
				r.Post("/avatar", h.Profile.UploadAvatar)
			})

			r.Route("/pigs", func(r chi.Router) {
				r.Get("/", h.Pig.List)
				r.Get("/{id}", h.Pig.Get)

				// Admin or employee
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEditor(profiles))
					r.Post("/", h.Pig.Create)
					r.Post("/batch", h.Pig.CreateBatch)
					r.Put("/{id}", h.Pig.Update)
					r.Delete("/{id}", h.Pig.Delete)
					r.Post("/{id}/sell", h.Pig.Sell)
					r.Post("/{id}/death", h.Pig.RegisterDeath)
					r.Post("/{id}/weights", h.Pig.AddWeightRecord)
				})
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", h.Expense.List)
				r.Get("/{id}", h.Expense.Get)
				r.With(middleware.RequirePermission(profiles, profile.PermissionFinanceView)).Get("/summary", h.Expense.Summary)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(profiles, profile.PermissionFinanceEdit))
					r.Post("/", h.Expense.Create)
					r.Put("/{id}", h.Expense.Update)
					r.Delete("/{id}", h.Expense.Delete)
				})
			})

			r.Route("/vaccinations", func(r chi.Router) {
				r.Get("/", h.Vaccination.List)
				r.Get("/due", h.Vaccination.Due)
				r.Get("/schedules", h.Vaccination.ListSchedules)
				r.Get("/{id}", h.Vaccination.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEditor(profiles))
					r.Post("/", h.Vaccination.Create)
					r.Post("/schedules", h.Vaccination.CreateSchedule)
					r.Put("/{id}", h.Vaccination.Update)
					r.Delete("/{id}", h.Vaccination.Delete)
					r.Post("/{id}/reminder-sent", h.Vaccination.MarkReminderSent)
				})
			})

			r.With(middleware.RequirePermission(profiles, profile.PermissionFinanceView)).Get("/dashboard", h.Dashboard.Get)
			r.With(middleware.RequirePermission(profiles, profile.PermissionReportsView)).Get("/reports", h.Dashboard.Report)
		})
	})

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	// Google redirects here, outside the API prefix.
	r.Get("/auth/callback", h.Auth.OAuthCallbackGoogle)

	if h.View != nil {
		if routeGuard == nil {
			routeGuard = func(next http.Handler) http.Handler { return next }
		}
		r.With(routeGuard).Handle("/*", h.View)
	}

	return r
}

func readiness(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.Warn("Readiness check failed", "error", err)
				response.ServiceUnavailable(w, "Service not ready")
				return
			}
		}
		response.Success(w, map[string]string{"status": "ready"})
	}
}
