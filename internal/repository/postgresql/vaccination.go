package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const vaccinationColumns = `v.id, v.pig_id, v.vaccine_name, v.application_date, v.next_dose_date, v.dose_number,
		v.administered_by, v.notes, v.reminder_sent, v.created_by, v.created_at`

type vaccinationRepositoryImpl struct {
	db *database.DB
}

func NewVaccinationRepository(db *database.DB) vaccination.VaccinationRepository {
	return &vaccinationRepositoryImpl{db: db}
}

func scanVaccination(row pgx.Row) (vaccination.Vaccination, error) {
	var v vaccination.Vaccination
	err := row.Scan(
		&v.ID,
		&v.PigID,
		&v.VaccineName,
		&v.ApplicationDate,
		&v.NextDoseDate,
		&v.DoseNumber,
		&v.AdministeredBy,
		&v.Notes,
		&v.ReminderSent,
		&v.CreatedBy,
		&v.CreatedAt,
	)
	return v, err
}

func collectVaccinations(rows pgx.Rows) ([]vaccination.Vaccination, error) {
	defer rows.Close()
	vaccinations := []vaccination.Vaccination{}
	for rows.Next() {
		v, err := scanVaccination(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vaccination: %w", err)
		}
		vaccinations = append(vaccinations, v)
	}
	return vaccinations, rows.Err()
}

// List implements vaccination.VaccinationRepository. Most recent application first.
func (r *vaccinationRepositoryImpl) List(ctx context.Context, filter vaccination.ListFilter) ([]vaccination.Vaccination, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + vaccinationColumns + ` FROM vaccinations v`
	var args []any
	if filter.PigID != nil {
		args = append(args, *filter.PigID)
		query += ` WHERE v.pig_id = $1`
	}
	query += ` ORDER BY v.application_date DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vaccinations: %w", err)
	}
	return collectVaccinations(rows)
}

// GetByID implements vaccination.VaccinationRepository.
func (r *vaccinationRepositoryImpl) GetByID(ctx context.Context, id string) (vaccination.Vaccination, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + vaccinationColumns + ` FROM vaccinations v WHERE v.id = $1`

	v, err := scanVaccination(q.QueryRow(ctx, query, id))
	if err != nil {
		return vaccination.Vaccination{}, mapNotFound(err, vaccination.ErrVaccinationNotFound)
	}
	return v, nil
}

// Create implements vaccination.VaccinationRepository.
func (r *vaccinationRepositoryImpl) Create(ctx context.Context, in vaccination.Vaccination) (vaccination.Vaccination, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO vaccinations AS v (
			pig_id, vaccine_name, application_date, next_dose_date, dose_number,
			administered_by, notes, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + vaccinationColumns

	created, err := scanVaccination(q.QueryRow(ctx, query,
		in.PigID, in.VaccineName, in.ApplicationDate, in.NextDoseDate, in.DoseNumber,
		in.AdministeredBy, in.Notes, in.CreatedBy,
	))
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return vaccination.Vaccination{}, vaccination.ErrPigNotFound
		}
		return vaccination.Vaccination{}, err
	}
	return created, nil
}

// Update implements vaccination.VaccinationRepository.
func (r *vaccinationRepositoryImpl) Update(ctx context.Context, in vaccination.Vaccination) (vaccination.Vaccination, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE vaccinations AS v
		SET pig_id = $1, vaccine_name = $2, application_date = $3, next_dose_date = $4,
			dose_number = $5, administered_by = $6, notes = $7, reminder_sent = $8
		WHERE v.id = $9
		RETURNING ` + vaccinationColumns

	updated, err := scanVaccination(q.QueryRow(ctx, query,
		in.PigID, in.VaccineName, in.ApplicationDate, in.NextDoseDate,
		in.DoseNumber, in.AdministeredBy, in.Notes, in.ReminderSent, in.ID,
	))
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return vaccination.Vaccination{}, vaccination.ErrPigNotFound
		}
		return vaccination.Vaccination{}, mapNotFound(err, vaccination.ErrVaccinationNotFound)
	}
	return updated, nil
}

// Delete implements vaccination.VaccinationRepository.
func (r *vaccinationRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM vaccinations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vaccination.ErrVaccinationNotFound
	}
	return nil
}

// MarkReminderSent implements vaccination.VaccinationRepository.
func (r *vaccinationRepositoryImpl) MarkReminderSent(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE vaccinations SET reminder_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vaccination.ErrVaccinationNotFound
	}
	return nil
}

// ListReminderCandidates implements vaccination.VaccinationRepository.
func (r *vaccinationRepositoryImpl) ListReminderCandidates(ctx context.Context, asOf time.Time) ([]vaccination.Vaccination, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + vaccinationColumns + `
		FROM vaccinations v
		JOIN vaccination_schedules s ON s.vaccine_name = v.vaccine_name AND s.is_active
		WHERE v.reminder_sent = FALSE
			AND v.next_dose_date IS NOT NULL
			AND v.next_dose_date >= $1::date
			AND v.next_dose_date <= $1::date + s.reminder_days_before
		ORDER BY v.next_dose_date ASC
	`

	rows, err := q.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("query reminder candidates: %w", err)
	}
	return collectVaccinations(rows)
}
