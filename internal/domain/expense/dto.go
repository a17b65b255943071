package expense

import (
	"time"

	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

const typeMessage = "type must be one of: food, vaccine, medicine, veterinary, transport, facilities, personnel, utilities, other"

type ListFilter struct {
	PigID *string
	Type  *Type
	From  *time.Time
	To    *time.Time
}

type CreateExpenseRequest struct {
	Type          Type    `json:"type"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	PigID         *string `json:"pig_id"`
	InvoiceNumber *string `json:"invoice_number"`
	Supplier      *string `json:"supplier"`
}

func (r *CreateExpenseRequest) Validate() error {
	var errs validator.ValidationErrors
	if !r.Type.Valid() {
		errs.Add("type", typeMessage)
	}
	errs.Required("description", r.Description)
	errs.Positive("amount", r.Amount)
	errs.Date("date", r.Date)
	errs.OptionalUUID("pig_id", r.PigID)
	return errs.Err()
}

// UpdateExpenseRequest is a partial update; nil fields are left untouched.
type UpdateExpenseRequest struct {
	Type          *Type    `json:"type"`
	Description   *string  `json:"description"`
	Amount        *float64 `json:"amount"`
	Date          *string  `json:"date"`
	PigID         *string  `json:"pig_id"`
	InvoiceNumber *string  `json:"invoice_number"`
	Supplier      *string  `json:"supplier"`
}

func (r *UpdateExpenseRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Type != nil && !r.Type.Valid() {
		errs.Add("type", typeMessage)
	}
	errs.NotBlank("description", r.Description)
	errs.OptionalPositive("amount", r.Amount)
	errs.OptionalDate("date", r.Date)
	errs.OptionalUUID("pig_id", r.PigID)
	return errs.Err()
}
