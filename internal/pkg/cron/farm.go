package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
)

// FarmJobs contains the periodic maintenance of the farm backend
type FarmJobs struct {
	vaccinationService vaccination.VaccinationService
	authService        auth.AuthService
	reminderInterval   time.Duration
	cleanupInterval    time.Duration
}

func NewFarmJobs(vaccinationService vaccination.VaccinationService, authService auth.AuthService, reminderInterval, cleanupInterval time.Duration) *FarmJobs {
	return &FarmJobs{
		vaccinationService: vaccinationService,
		authService:        authService,
		reminderInterval:   reminderInterval,
		cleanupInterval:    cleanupInterval,
	}
}

// RegisterJobs registers all farm cron jobs
func (j *FarmJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("send_vaccination_reminders", j.reminderInterval, j.SendVaccinationReminders)
	scheduler.AddJob("cleanup_expired_refresh_tokens", j.cleanupInterval, j.CleanupExpiredRefreshTokens)
}

// SendVaccinationReminders emails the owner of every dose inside its schedule's reminder window
func (j *FarmJobs) SendVaccinationReminders(ctx context.Context) error {
	sent, err := j.vaccinationService.SendDueReminders(ctx)
	if err != nil {
		return err
	}
	if sent > 0 {
		slog.Info("Cron: vaccination reminders sent", "count", sent)
	}
	return nil
}

// CleanupExpiredRefreshTokens deletes refresh tokens that can no longer be exchanged
func (j *FarmJobs) CleanupExpiredRefreshTokens(ctx context.Context) error {
	deleted, err := j.authService.CleanupExpiredTokens(ctx)
	if err != nil {
		return err
	}
	slog.Debug("Cron: expired refresh tokens deleted", "count", deleted)
	return nil
}
