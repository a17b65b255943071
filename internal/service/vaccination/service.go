package vaccination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/domain/user"
	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/pkg/email"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

type VaccinationServiceImpl struct {
	vaccinations vaccination.VaccinationRepository
	schedules    vaccination.ScheduleRepository
	pigs         pig.PigRepository
	users        user.UserRepository
	mailer       email.EmailService
	now          func() time.Time
}

func NewVaccinationService(
	vaccinationRepository vaccination.VaccinationRepository,
	scheduleRepository vaccination.ScheduleRepository,
	pigRepository pig.PigRepository,
	userRepository user.UserRepository,
	mailer email.EmailService,
) vaccination.VaccinationService {
	return &VaccinationServiceImpl{
		vaccinations: vaccinationRepository,
		schedules:    scheduleRepository,
		pigs:         pigRepository,
		users:        userRepository,
		mailer:       mailer,
		now:          time.Now,
	}
}

func (s *VaccinationServiceImpl) List(ctx context.Context, filter vaccination.ListFilter) ([]vaccination.Vaccination, error) {
	vaccinations, err := s.vaccinations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaccinations: %w", err)
	}
	return vaccinations, nil
}

func (s *VaccinationServiceImpl) Get(ctx context.Context, id string) (vaccination.Vaccination, error) {
	return s.vaccinations.GetByID(ctx, id)
}

func (s *VaccinationServiceImpl) Create(ctx context.Context, userID string, req vaccination.CreateVaccinationRequest) (vaccination.Vaccination, error) {
	applied, _ := validator.IsValidDate(req.ApplicationDate)
	dose := req.DoseNumber
	if dose == 0 {
		dose = 1
	}

	return s.vaccinations.Create(ctx, vaccination.Vaccination{
		PigID:           req.PigID,
		VaccineName:     req.VaccineName,
		ApplicationDate: applied,
		NextDoseDate:    validator.ParseOptionalDate(req.NextDoseDate),
		DoseNumber:      dose,
		AdministeredBy:  req.AdministeredBy,
		Notes:           req.Notes,
		CreatedBy:       userID,
	})
}

// Update implements vaccination.VaccinationService. Moving the next dose re-arms its reminder.
func (s *VaccinationServiceImpl) Update(ctx context.Context, id string, req vaccination.UpdateVaccinationRequest) (vaccination.Vaccination, error) {
	current, err := s.vaccinations.GetByID(ctx, id)
	if err != nil {
		return vaccination.Vaccination{}, err
	}

	if req.VaccineName != nil {
		current.VaccineName = *req.VaccineName
	}
	if d := validator.ParseOptionalDate(req.ApplicationDate); d != nil {
		current.ApplicationDate = *d
	}
	if req.PigID != nil {
		current.PigID = req.PigID
	}
	if d := validator.ParseOptionalDate(req.NextDoseDate); d != nil {
		if current.NextDoseDate == nil || !current.NextDoseDate.Equal(*d) {
			current.ReminderSent = false
		}
		current.NextDoseDate = d
	}
	if req.DoseNumber != nil {
		current.DoseNumber = *req.DoseNumber
	}
	if req.AdministeredBy != nil {
		current.AdministeredBy = *req.AdministeredBy
	}
	if req.Notes != nil {
		current.Notes = req.Notes
	}

	return s.vaccinations.Update(ctx, current)
}

func (s *VaccinationServiceImpl) Delete(ctx context.Context, id string) error {
	return s.vaccinations.Delete(ctx, id)
}

func (s *VaccinationServiceImpl) MarkReminderSent(ctx context.Context, id string) error {
	return s.vaccinations.MarkReminderSent(ctx, id)
}

// Due implements vaccination.VaccinationService.
func (s *VaccinationServiceImpl) Due(ctx context.Context) (vaccination.Due, error) {
	vaccinations, err := s.vaccinations.List(ctx, vaccination.ListFilter{})
	if err != nil {
		return vaccination.Due{}, fmt.Errorf("failed to list vaccinations: %w", err)
	}
	return vaccination.Classify(vaccinations, s.now()), nil
}

// ListSchedules implements vaccination.VaccinationService. Only active schedules, ordered by vaccine name.
func (s *VaccinationServiceImpl) ListSchedules(ctx context.Context) ([]vaccination.Schedule, error) {
	schedules, err := s.schedules.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

func (s *VaccinationServiceImpl) CreateSchedule(ctx context.Context, req vaccination.CreateScheduleRequest) (vaccination.Schedule, error) {
	return s.schedules.Create(ctx, vaccination.Schedule{
		VaccineName:        req.VaccineName,
		Description:        req.Description,
		DoseIntervalDays:   req.DoseIntervalDays,
		TotalDoses:         req.TotalDoses,
		ReminderDaysBefore: req.ReminderDaysBefore,
		IsActive:           true,
	})
}

// SendDueReminders implements vaccination.VaccinationService. A dose whose email
// fails stays unflagged and is retried on the next run.
func (s *VaccinationServiceImpl) SendDueReminders(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.vaccinations.ListReminderCandidates(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder candidates: %w", err)
	}

	sent := 0
	for _, v := range candidates {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		if err := s.notify(ctx, v, now); err != nil {
			slog.Error("Failed to send vaccination reminder", "vaccination_id", v.ID, "error", err)
			continue
		}
		if err := s.vaccinations.MarkReminderSent(ctx, v.ID); err != nil {
			if errors.Is(err, vaccination.ErrVaccinationNotFound) {
				continue
			}
			return sent, fmt.Errorf("failed to mark reminder sent: %w", err)
		}
		sent++
	}

	return sent, nil
}

func (s *VaccinationServiceImpl) notify(ctx context.Context, v vaccination.Vaccination, now time.Time) error {
	recipient, err := s.users.GetByID(ctx, v.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to get reminder recipient: %w", err)
	}

	reminder := email.VaccinationReminder{
		VaccineName: v.VaccineName,
		DoseNumber:  v.DoseNumber + 1,
	}
	if days, ok := v.DaysUntilNextDose(now); ok {
		reminder.DaysLeft = days
		reminder.NextDoseDate = v.NextDoseDate.Format(validator.DateLayout)
	}
	if v.PigID != nil {
		if p, err := s.pigs.GetByID(ctx, *v.PigID); err == nil && p.Identifier != nil {
			reminder.PigLabel = *p.Identifier
		}
	}

	return s.mailer.SendVaccinationReminder(ctx, recipient.Email, reminder)
}
