package expense

import "time"

type Type string

const (
	TypeFood       Type = "food"
	TypeVaccine    Type = "vaccine"
	TypeMedicine   Type = "medicine"
	TypeVeterinary Type = "veterinary"
	TypeTransport  Type = "transport"
	TypeFacilities Type = "facilities"
	TypePersonnel  Type = "personnel"
	TypeUtilities  Type = "utilities"
	TypeOther      Type = "other"
)

var Types = []Type{
	TypeFood, TypeVaccine, TypeMedicine, TypeVeterinary, TypeTransport,
	TypeFacilities, TypePersonnel, TypeUtilities, TypeOther,
}

func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID            string    `json:"id"`
	PigID         *string   `json:"pig_id"`
	Type          Type      `json:"type"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	InvoiceNumber *string   `json:"invoice_number"`
	Supplier      *string   `json:"supplier"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type MonthlyTotals struct {
	Month    string  `json:"month"`
	Expenses float64 `json:"expenses"`
	Income   float64 `json:"income"`
}

// Summary is the financial overview. Income is the sale price of sold pigs.
type Summary struct {
	TotalExpenses  float64          `json:"total_expenses"`
	TotalIncome    float64          `json:"total_income"`
	Balance        float64          `json:"balance"`
	ExpensesByType map[Type]float64 `json:"expenses_by_type"`
	MonthlyData    []MonthlyTotals  `json:"monthly_data"`
}
