package vaccination

import "context"

type VaccinationService interface {
	List(ctx context.Context, filter ListFilter) ([]Vaccination, error)
	Get(ctx context.Context, id string) (Vaccination, error)
	Create(ctx context.Context, userID string, req CreateVaccinationRequest) (Vaccination, error)
	Update(ctx context.Context, id string, req UpdateVaccinationRequest) (Vaccination, error)
	Delete(ctx context.Context, id string) error
	MarkReminderSent(ctx context.Context, id string) error
	Due(ctx context.Context) (Due, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)
	CreateSchedule(ctx context.Context, req CreateScheduleRequest) (Schedule, error)
	// SendDueReminders flags every dose inside its reminder window and returns how many were flagged.
	SendDueReminders(ctx context.Context) (int, error)
}
