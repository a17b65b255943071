package postgresql

import (
	"context"
	"fmt"

	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const scheduleColumns = `id, vaccine_name, description, dose_interval_days, total_doses,
		reminder_days_before, is_active, created_at`

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) vaccination.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

func scanSchedule(row pgx.Row) (vaccination.Schedule, error) {
	var s vaccination.Schedule
	err := row.Scan(
		&s.ID,
		&s.VaccineName,
		&s.Description,
		&s.DoseIntervalDays,
		&s.TotalDoses,
		&s.ReminderDaysBefore,
		&s.IsActive,
		&s.CreatedAt,
	)
	return s, err
}

// ListActive implements vaccination.ScheduleRepository. Ordered by vaccine name.
func (r *scheduleRepositoryImpl) ListActive(ctx context.Context) ([]vaccination.Schedule, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + scheduleColumns + ` FROM vaccination_schedules WHERE is_active ORDER BY vaccine_name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	schedules := []vaccination.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// GetByID implements vaccination.ScheduleRepository.
func (r *scheduleRepositoryImpl) GetByID(ctx context.Context, id string) (vaccination.Schedule, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + scheduleColumns + ` FROM vaccination_schedules WHERE id = $1`

	s, err := scanSchedule(q.QueryRow(ctx, query, id))
	if err != nil {
		return vaccination.Schedule{}, mapNotFound(err, vaccination.ErrScheduleNotFound)
	}
	return s, nil
}

// Create implements vaccination.ScheduleRepository.
func (r *scheduleRepositoryImpl) Create(ctx context.Context, s vaccination.Schedule) (vaccination.Schedule, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO vaccination_schedules (vaccine_name, description, dose_interval_days, total_doses, reminder_days_before, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + scheduleColumns

	return scanSchedule(q.QueryRow(ctx, query, s.VaccineName, s.Description, s.DoseIntervalDays, s.TotalDoses, s.ReminderDaysBefore))
}
