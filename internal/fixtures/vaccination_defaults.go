// Package fixtures holds the reference data a new farm starts with.
package fixtures

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
)

// DefaultVaccinationSchedules is a common piglet and fattening plan.
// Farms edit or extend it from the vaccinations screen.
func DefaultVaccinationSchedules() []vaccination.Schedule {
	return []vaccination.Schedule{
		{
			VaccineName:        "Hierro dextrano",
			Description:        "Prevención de anemia ferropénica en lechones (día 3 de vida)",
			DoseIntervalDays:   0,
			TotalDoses:         1,
			ReminderDaysBefore: 1,
			IsActive:           true,
		},
		{
			VaccineName:        "Circovirus porcino tipo 2",
			Description:        "Lechones a partir de las 3 semanas",
			DoseIntervalDays:   0,
			TotalDoses:         1,
			ReminderDaysBefore: 3,
			IsActive:           true,
		},
		{
			VaccineName:        "Mycoplasma hyopneumoniae",
			Description:        "Neumonía enzoótica, primera dosis a las 3 semanas",
			DoseIntervalDays:   21,
			TotalDoses:         2,
			ReminderDaysBefore: 3,
			IsActive:           true,
		},
		{
			VaccineName:        "Peste porcina clásica",
			Description:        "Obligatoria según el programa sanitario oficial",
			DoseIntervalDays:   180,
			TotalDoses:         2,
			ReminderDaysBefore: 7,
			IsActive:           true,
		},
		{
			VaccineName:        "Erisipela porcina",
			Description:        "Cerdos de engorde y reproductores, refuerzo semestral",
			DoseIntervalDays:   180,
			TotalDoses:         2,
			ReminderDaysBefore: 7,
			IsActive:           true,
		},
		{
			VaccineName:        "Parvovirus porcino",
			Description:        "Cerdas de reposición antes de la cubrición",
			DoseIntervalDays:   21,
			TotalDoses:         2,
			ReminderDaysBefore: 5,
			IsActive:           true,
		},
	}
}

// SeedVaccinationSchedules creates the default schedules when no active schedule exists.
// It returns how many were created.
func SeedVaccinationSchedules(ctx context.Context, repo vaccination.ScheduleRepository) (int, error) {
	existing, err := repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list schedules: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, s := range DefaultVaccinationSchedules() {
		if _, err := repo.Create(ctx, s); err != nil {
			return created, fmt.Errorf("seed schedule %q: %w", s.VaccineName, err)
		}
		created++
	}
	slog.Info("Seeded default vaccination schedules", "count", created)
	return created, nil
}
