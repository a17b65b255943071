package vaccination

import (
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

type ListFilter struct {
	PigID *string
}

type CreateVaccinationRequest struct {
	VaccineName     string  `json:"vaccine_name"`
	ApplicationDate string  `json:"application_date"`
	PigID           *string `json:"pig_id"`
	NextDoseDate    *string `json:"next_dose_date"`
	DoseNumber      int     `json:"dose_number"`
	AdministeredBy  string  `json:"administered_by"`
	Notes           *string `json:"notes"`
}

// Validate defaults an omitted dose number to the first dose.
func (r *CreateVaccinationRequest) Validate() error {
	if r.DoseNumber == 0 {
		r.DoseNumber = 1
	}

	var errs validator.ValidationErrors
	errs.Required("vaccine_name", r.VaccineName)
	errs.Date("application_date", r.ApplicationDate)
	errs.OptionalDate("next_dose_date", r.NextDoseDate)
	errs.AtLeast("dose_number", r.DoseNumber, 1)
	errs.Required("administered_by", r.AdministeredBy)
	errs.OptionalUUID("pig_id", r.PigID)
	return errs.Err()
}

// UpdateVaccinationRequest is a partial update; nil fields are left untouched.
type UpdateVaccinationRequest struct {
	VaccineName     *string `json:"vaccine_name"`
	ApplicationDate *string `json:"application_date"`
	PigID           *string `json:"pig_id"`
	NextDoseDate    *string `json:"next_dose_date"`
	DoseNumber      *int    `json:"dose_number"`
	AdministeredBy  *string `json:"administered_by"`
	Notes           *string `json:"notes"`
}

func (r *UpdateVaccinationRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.NotBlank("vaccine_name", r.VaccineName)
	errs.OptionalDate("application_date", r.ApplicationDate)
	errs.OptionalDate("next_dose_date", r.NextDoseDate)
	if r.DoseNumber != nil {
		errs.AtLeast("dose_number", *r.DoseNumber, 1)
	}
	errs.NotBlank("administered_by", r.AdministeredBy)
	errs.OptionalUUID("pig_id", r.PigID)
	return errs.Err()
}

type CreateScheduleRequest struct {
	VaccineName        string `json:"vaccine_name"`
	Description        string `json:"description"`
	DoseIntervalDays   int    `json:"dose_interval_days"`
	TotalDoses         int    `json:"total_doses"`
	ReminderDaysBefore int    `json:"reminder_days_before"`
}

func (r *CreateScheduleRequest) Validate() error {
	if r.TotalDoses == 0 {
		r.TotalDoses = 1
	}

	var errs validator.ValidationErrors
	errs.Required("vaccine_name", r.VaccineName)
	errs.Required("description", r.Description)
	errs.AtLeast("dose_interval_days", r.DoseIntervalDays, 1)
	errs.AtLeast("total_doses", r.TotalDoses, 1)
	if r.ReminderDaysBefore < 0 {
		errs.Add("reminder_days_before", "reminder_days_before cannot be negative")
	}
	return errs.Err()
}
