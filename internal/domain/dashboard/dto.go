package dashboard

import (
	"time"

	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

// ReportRequest bounds a report. Omitted bounds default to the month ending today.
type ReportRequest struct {
	From *string
	To   *string
}

func (r ReportRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.OptionalDate("from", r.From)
	errs.OptionalDate("to", r.To)
	if len(errs) == 0 && r.From != nil && r.To != nil && *r.From > *r.To {
		errs.Add("from", "from must not be after to")
	}
	return errs.Err()
}

// Period resolves the bounds against today. The request must have been validated.
func (r ReportRequest) Period(today time.Time) (from, to time.Time) {
	to = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if d := validator.ParseOptionalDate(r.To); d != nil {
		to = *d
	}
	from = to.AddDate(0, -1, 0)
	if d := validator.ParseOptionalDate(r.From); d != nil {
		from = *d
	}
	return from, to
}
