package pig

import (
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

const MaxBatchSize = 100

type ListFilter struct {
	Status *Status
}

type CreatePigRequest struct {
	Identifier     *string  `json:"identifier"`
	PurchaseDate   string   `json:"purchase_date"`
	PurchasePrice  float64  `json:"purchase_price"`
	PurchaseWeight *float64 `json:"purchase_weight"`
	Breed          *string  `json:"breed"`
	Sex            *Sex     `json:"sex"`
	AgeMonths      *int     `json:"age_months"`
	PenLocation    *string  `json:"pen_location"`
	Notes          *string  `json:"notes"`
}

func (r *CreatePigRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Date("purchase_date", r.PurchaseDate)
	errs.Positive("purchase_price", r.PurchasePrice)
	validateAttributes(&errs, r.PurchaseWeight, "purchase_weight", r.Sex, r.AgeMonths)
	return errs.Err()
}

type CreateBatchRequest struct {
	Quantity      int      `json:"quantity"`
	PurchaseDate  string   `json:"purchase_date"`
	TotalPrice    float64  `json:"total_price"`
	AverageWeight *float64 `json:"average_weight"`
	Breed         *string  `json:"breed"`
	Sex           *Sex     `json:"sex"`
	AgeMonths     *int     `json:"age_months"`
	PenLocation   *string  `json:"pen_location"`
	Notes         *string  `json:"notes"`
}

func (r *CreateBatchRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Quantity < 1 || r.Quantity > MaxBatchSize {
		errs.Addf("quantity", "quantity must be between 1 and %d", MaxBatchSize)
	}
	errs.Date("purchase_date", r.PurchaseDate)
	errs.Positive("total_price", r.TotalPrice)
	validateAttributes(&errs, r.AverageWeight, "average_weight", r.Sex, r.AgeMonths)
	return errs.Err()
}

// UpdatePigRequest is a partial update; nil fields are left untouched.
type UpdatePigRequest struct {
	Identifier     *string  `json:"identifier"`
	PurchaseDate   *string  `json:"purchase_date"`
	PurchasePrice  *float64 `json:"purchase_price"`
	PurchaseWeight *float64 `json:"purchase_weight"`
	CurrentWeight  *float64 `json:"current_weight"`
	Breed          *string  `json:"breed"`
	Sex            *Sex     `json:"sex"`
	AgeMonths      *int     `json:"age_months"`
	PenLocation    *string  `json:"pen_location"`
	Notes          *string  `json:"notes"`
}

func (r *UpdatePigRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.OptionalDate("purchase_date", r.PurchaseDate)
	errs.OptionalPositive("purchase_price", r.PurchasePrice)
	errs.OptionalPositive("current_weight", r.CurrentWeight)
	validateAttributes(&errs, r.PurchaseWeight, "purchase_weight", r.Sex, r.AgeMonths)
	return errs.Err()
}

type SellPigRequest struct {
	SaleDate   string   `json:"sale_date"`
	SalePrice  float64  `json:"sale_price"`
	SaleWeight *float64 `json:"sale_weight"`
	ClientID   *string  `json:"client_id"`
	Notes      *string  `json:"notes"`
}

func (r *SellPigRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Date("sale_date", r.SaleDate)
	errs.Positive("sale_price", r.SalePrice)
	errs.OptionalPositive("sale_weight", r.SaleWeight)
	errs.OptionalUUID("client_id", r.ClientID)
	return errs.Err()
}

type RegisterDeathRequest struct {
	DeathDate   string  `json:"death_date"`
	DeathReason string  `json:"death_reason"`
	Notes       *string `json:"notes"`
}

func (r *RegisterDeathRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Date("death_date", r.DeathDate)
	errs.Required("death_reason", r.DeathReason)
	return errs.Err()
}

type CreateWeightRecordRequest struct {
	Weight float64 `json:"weight"`
	Date   string  `json:"date"`
	Notes  *string `json:"notes"`
}

func (r *CreateWeightRecordRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Positive("weight", r.Weight)
	errs.Date("date", r.Date)
	return errs.Err()
}

// validateAttributes checks the optional physical attributes shared by single and batch purchases.
func validateAttributes(errs *validator.ValidationErrors, weight *float64, weightField string, sex *Sex, ageMonths *int) {
	errs.OptionalPositive(weightField, weight)
	if sex != nil && !sex.Valid() {
		errs.Add("sex", "sex must be one of: male, female, unknown")
	}
	if ageMonths != nil && *ageMonths < 0 {
		errs.Add("age_months", "age_months cannot be negative")
	}
}
