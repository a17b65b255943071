package dashboard

import (
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
)

// RecentExitLimit caps the sold and deceased pigs listed on the dashboard.
const RecentExitLimit = 5

// Dashboard is the farm overview: herd counts, what the herd is worth and the
// running financial balance.
type Dashboard struct {
	ActivePigs   int `json:"active_pigs"`
	SoldPigs     int `json:"sold_pigs"`
	DeceasedPigs int `json:"deceased_pigs"`

	// AverageWeight is taken over active pigs with a recorded weight.
	AverageWeight float64 `json:"average_weight"`
	// ActiveInvestment is the purchase price of the pigs still on the farm.
	ActiveInvestment float64 `json:"active_investment"`
	// SoldRevenue is the sale price of every sold pig.
	SoldRevenue float64 `json:"sold_revenue"`

	TotalExpenses float64 `json:"total_expenses"`
	Balance       float64 `json:"balance"`
	// ROI is the balance as a percentage of expenses, 0 without expenses.
	ROI float64 `json:"roi"`

	OverdueVaccinations  int `json:"overdue_vaccinations"`
	UpcomingVaccinations int `json:"upcoming_vaccinations"`

	RecentExits []Exit `json:"recent_exits"`
}

// Exit is a pig that left the farm, by sale or death.
type Exit struct {
	PigID      string     `json:"pig_id"`
	Identifier *string    `json:"identifier"`
	Status     pig.Status `json:"status"`
	Date       time.Time  `json:"date"`
	SalePrice  *float64   `json:"sale_price,omitempty"`
	Reason     *string    `json:"reason,omitempty"`
}

// Report covers one period, both bounds inclusive.
type Report struct {
	From string `json:"from"`
	To   string `json:"to"`

	// ActivePigs is the herd today, not bound to the period.
	ActivePigs    int `json:"active_pigs"`
	PurchasedPigs int `json:"purchased_pigs"`
	SoldPigs      int `json:"sold_pigs"`
	DeceasedPigs  int `json:"deceased_pigs"`
	Vaccinations  int `json:"vaccinations"`

	TotalSales     float64                  `json:"total_sales"`
	TotalExpenses  float64                  `json:"total_expenses"`
	ExpensesByType map[expense.Type]float64 `json:"expenses_by_type"`
	// Profit is sales minus expenses of the period.
	Profit float64 `json:"profit"`

	// PurchaseCost is what the pigs sold in the period cost when bought.
	PurchaseCost float64 `json:"purchase_cost"`
	GrossProfit  float64 `json:"gross_profit"`
	NetProfit    float64 `json:"net_profit"`
	// ROI is the gross profit as a percentage of the purchase cost.
	ROI float64 `json:"roi"`

	Sales []Sale `json:"sales"`
}

// Sale is one pig sold in the report period with its purchase-to-sale margin.
type Sale struct {
	PigID         string    `json:"pig_id"`
	Identifier    *string   `json:"identifier"`
	SaleDate      time.Time `json:"sale_date"`
	PurchasePrice float64   `json:"purchase_price"`
	SalePrice     float64   `json:"sale_price"`
	Margin        float64   `json:"margin"`
}
