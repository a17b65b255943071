package vaccination

import "time"

type Vaccination struct {
	ID              string     `json:"id"`
	PigID           *string    `json:"pig_id"`
	VaccineName     string     `json:"vaccine_name"`
	ApplicationDate time.Time  `json:"application_date"`
	NextDoseDate    *time.Time `json:"next_dose_date"`
	DoseNumber      int        `json:"dose_number"`
	AdministeredBy  string     `json:"administered_by"`
	Notes           *string    `json:"notes"`
	ReminderSent    bool       `json:"reminder_sent"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DaysUntilNextDose counts calendar days from today to the next dose. ok is false when no dose is scheduled.
func (v Vaccination) DaysUntilNextDose(today time.Time) (days int, ok bool) {
	if v.NextDoseDate == nil {
		return 0, false
	}
	return daysBetween(today, *v.NextDoseDate), true
}

type Schedule struct {
	ID                 string    `json:"id"`
	VaccineName        string    `json:"vaccine_name"`
	Description        string    `json:"description"`
	DoseIntervalDays   int       `json:"dose_interval_days"`
	TotalDoses         int       `json:"total_doses"`
	ReminderDaysBefore int       `json:"reminder_days_before"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

// Due groups vaccinations by the state of their next dose relative to today.
type Due struct {
	Pending  []Vaccination `json:"pending"`
	Overdue  []Vaccination `json:"overdue"`
	Upcoming []Vaccination `json:"upcoming"`
}

const UpcomingWindowDays = 7

// Classify splits vaccinations into pending (next dose today or later), overdue
// (next dose before today) and upcoming (next dose within the next 7 days).
func Classify(vaccinations []Vaccination, now time.Time) Due {
	due := Due{
		Pending:  []Vaccination{},
		Overdue:  []Vaccination{},
		Upcoming: []Vaccination{},
	}
	for _, v := range vaccinations {
		days, ok := v.DaysUntilNextDose(now)
		if !ok {
			continue
		}
		if days < 0 {
			due.Overdue = append(due.Overdue, v)
			continue
		}
		due.Pending = append(due.Pending, v)
		if days <= UpcomingWindowDays {
			due.Upcoming = append(due.Upcoming, v)
		}
	}
	return due
}

func daysBetween(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
