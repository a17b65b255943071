package pig

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusSold     Status = "sold"
	StatusDeceased Status = "deceased"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusSold || s == StatusDeceased
}

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale || s == SexUnknown
}

type Pig struct {
	ID             string     `json:"id"`
	Identifier     *string    `json:"identifier"`
	PurchaseDate   time.Time  `json:"purchase_date"`
	PurchasePrice  float64    `json:"purchase_price"`
	PurchaseWeight *float64   `json:"purchase_weight"`
	CurrentWeight  *float64   `json:"current_weight"`
	Breed          *string    `json:"breed"`
	Sex            *Sex       `json:"sex"`
	AgeMonths      *int       `json:"age_months"`
	PenLocation    *string    `json:"pen_location"`
	Status         Status     `json:"status"`
	SaleDate       *time.Time `json:"sale_date"`
	SalePrice      *float64   `json:"sale_price"`
	SaleWeight     *float64   `json:"sale_weight"`
	DeathDate      *time.Time `json:"death_date"`
	DeathReason    *string    `json:"death_reason"`
	Notes          *string    `json:"notes"`
	ClientID       *string    `json:"client_id"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type WeightRecord struct {
	ID        string    `json:"id"`
	PigID     string    `json:"pig_id"`
	Weight    float64   `json:"weight"`
	Date      time.Time `json:"date"`
	Notes     *string   `json:"notes"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is a pig together with its weight history, oldest first.
type Detail struct {
	Pig           Pig            `json:"pig"`
	WeightRecords []WeightRecord `json:"weight_records"`
}
