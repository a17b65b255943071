package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/granjalink/farm-backend-go/internal/config"
	"github.com/granjalink/farm-backend-go/internal/fixtures"
	appHTTP "github.com/granjalink/farm-backend-go/internal/handler/http"
	"github.com/granjalink/farm-backend-go/internal/handler/http/middleware"
	"github.com/granjalink/farm-backend-go/internal/pkg/cron"
	"github.com/granjalink/farm-backend-go/internal/pkg/database"
	"github.com/granjalink/farm-backend-go/internal/pkg/email"
	"github.com/granjalink/farm-backend-go/internal/pkg/jwt"
	"github.com/granjalink/farm-backend-go/internal/pkg/oauth"
	"github.com/granjalink/farm-backend-go/internal/pkg/sse"
	"github.com/granjalink/farm-backend-go/internal/pkg/storage"
	"github.com/granjalink/farm-backend-go/internal/repository/postgresql"
	adminService "github.com/granjalink/farm-backend-go/internal/service/admin"
	serviceAuth "github.com/granjalink/farm-backend-go/internal/service/auth"
	dashboardService "github.com/granjalink/farm-backend-go/internal/service/dashboard"
	expenseService "github.com/granjalink/farm-backend-go/internal/service/expense"
	pigService "github.com/granjalink/farm-backend-go/internal/service/pig"
	profileService "github.com/granjalink/farm-backend-go/internal/service/profile"
	vaccinationService "github.com/granjalink/farm-backend-go/internal/service/vaccination"
)

const (
	appName    = "granja-api"
	appVersion = "v1.0.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", appName),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := database.DefaultPoolOptions()
	if cfg.Database.MaxConns > 0 {
		poolOpts.MaxConns = int32(cfg.Database.MaxConns)
	}
	if cfg.Database.ConnectAttempts > 0 {
		poolOpts.ConnectAttempts = cfg.Database.ConnectAttempts
	}
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), poolOpts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	profileRepo := postgresql.NewProfileRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	passwordResetRepo := postgresql.NewPasswordResetRepository(db)
	pigRepo := postgresql.NewPigRepository(db)
	weightRepo := postgresql.NewWeightRecordRepository(db)
	expenseRepo := postgresql.NewExpenseRepository(db)
	vaccinationRepo := postgresql.NewVaccinationRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, jwt.CookieConfig{
		MaxAge: cfg.Session.CookieMaxAge,
		Secure: cfg.Session.SecureCookies,
	})
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google)
	} else {
		slog.Warn("Google login disabled: CLIENT_ID, CLIENT_SECRET or REDIRECT_URL missing")
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email: %w", err)
	}

	hub := sse.NewHub()

	files, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	authService := serviceAuth.NewAuthService(tx, userRepo, profileRepo, JWTService, refreshTokenRepo, passwordResetRepo, emailService, hub, cfg.App.FrontendURL)
	adminSvc := adminService.NewAdminService(tx, userRepo, profileRepo, refreshTokenRepo, hub)
	profileSvc := profileService.NewProfileService(profileRepo, files)
	pigSvc := pigService.NewPigService(tx, pigRepo, weightRepo)
	expenseSvc := expenseService.NewExpenseService(expenseRepo, pigRepo)
	vaccinationSvc := vaccinationService.NewVaccinationService(vaccinationRepo, scheduleRepo, pigRepo, userRepo, emailService)
	dashboardSvc := dashboardService.NewDashboardService(pigRepo, expenseRepo, vaccinationRepo)

	if _, err := fixtures.SeedVaccinationSchedules(ctx, scheduleRepo); err != nil {
		slog.Warn("Default vaccination schedules not seeded", "error", err)
	}

	scheduler := cron.NewScheduler()
	cron.NewFarmJobs(vaccinationSvc, authService, cfg.Cron.ReminderInterval, cfg.Cron.CleanupInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	routeGuard := middleware.RouteGuard(middleware.RouteGuardConfig{
		Lookup:            middleware.SessionLookup(JWTService, authService),
		Rotate:            middleware.SessionRotation(JWTService, authService),
		InactivityTimeout: cfg.Session.InactivityTimeout,
		SecureCookies:     cfg.Session.SecureCookies,
	})

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        appName,
		Version:        appVersion,
		Env:            cfg.App.Env,
		AllowedOrigins: []string{cfg.App.FrontendURL},
		LogLevel:       cfg.SlogLevel(),
		UploadsDir:     files.Dir(),
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, 2*time.Second)
		},
	}, JWTService, profileSvc, routeGuard, appHTTP.Handlers{
		Auth:        appHTTP.NewAuthHandler(JWTService, authService, googleService, hub, cfg.Session.SecureCookies),
		Admin:       appHTTP.NewAdminHandler(adminSvc),
		Profile:     appHTTP.NewProfileHandler(profileSvc),
		Pig:         appHTTP.NewPigHandler(pigSvc),
		Expense:     appHTTP.NewExpenseHandler(expenseSvc),
		Vaccination: appHTTP.NewVaccinationHandler(vaccinationSvc),
		Dashboard:   appHTTP.NewDashboardHandler(dashboardSvc),
		View:        appHTTP.NewViewHandler(cfg.App.FrontendDir),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server", "sse_dropped_events", hub.Dropped())
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Graceful shutdown incomplete, closing remaining connections", "error", err)
		return server.Close()
	}
	return nil
}
