package vaccination

import (
	"context"
	"time"
)

type VaccinationRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Vaccination, error)
	GetByID(ctx context.Context, id string) (Vaccination, error)
	Create(ctx context.Context, v Vaccination) (Vaccination, error)
	Update(ctx context.Context, v Vaccination) (Vaccination, error)
	Delete(ctx context.Context, id string) error
	MarkReminderSent(ctx context.Context, id string) error
	// ListReminderCandidates returns unreminded doses of active schedules whose
	// next dose falls within the schedule's reminder window ending at asOf.
	ListReminderCandidates(ctx context.Context, asOf time.Time) ([]Vaccination, error)
}

type ScheduleRepository interface {
	ListActive(ctx context.Context) ([]Schedule, error)
	GetByID(ctx context.Context, id string) (Schedule, error)
	Create(ctx context.Context, s Schedule) (Schedule, error)
}
