package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/dashboard"
	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPigs struct {
	pig.PigRepository
	pigs []pig.Pig
	err  error
}

func (s *stubPigs) List(context.Context, pig.ListFilter) ([]pig.Pig, error) {
	return s.pigs, s.err
}

type stubExpenses struct {
	expense.ExpenseRepository
	expenses []expense.Expense
	filter   expense.ListFilter
}

func (s *stubExpenses) List(_ context.Context, filter expense.ListFilter) ([]expense.Expense, error) {
	s.filter = filter
	return s.expenses, nil
}

type stubVaccinations struct {
	vaccination.VaccinationRepository
	vaccinations []vaccination.Vaccination
}

func (s *stubVaccinations) List(context.Context, vaccination.ListFilter) ([]vaccination.Vaccination, error) {
	return s.vaccinations, nil
}

var today = time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func herd() []pig.Pig {
	return []pig.Pig{
		{ID: "a1", Status: pig.StatusActive, PurchaseDate: day(time.February, 25), PurchasePrice: 100, CurrentWeight: ptr(40.0)},
		{ID: "a2", Status: pig.StatusActive, PurchaseDate: day(time.March, 5), PurchasePrice: 120, CurrentWeight: ptr(60.0)},
		{ID: "a3", Status: pig.StatusActive, PurchaseDate: day(time.March, 6), PurchasePrice: 80},
		{ID: "s1", Identifier: ptr("C-01"), Status: pig.StatusSold, PurchaseDate: day(time.January, 2), PurchasePrice: 90, SaleDate: ptr(day(time.March, 10)), SalePrice: ptr(300.0)},
		{ID: "s2", Identifier: ptr("C-02"), Status: pig.StatusSold, PurchaseDate: day(time.January, 2), PurchasePrice: 95, SaleDate: ptr(day(time.January, 20)), SalePrice: ptr(250.0)},
		{ID: "d1", Status: pig.StatusDeceased, PurchaseDate: day(time.January, 5), PurchasePrice: 70, DeathDate: ptr(day(time.March, 1)), DeathReason: ptr("neumonía")},
	}
}

func newTestService(pigs *stubPigs, expenses *stubExpenses, vaccinations *stubVaccinations) *DashboardServiceImpl {
	svc := NewDashboardService(pigs, expenses, vaccinations).(*DashboardServiceImpl)
	svc.now = func() time.Time { return today }
	return svc
}

func TestDashboardService_GetDashboard(t *testing.T) {
	expenses := &stubExpenses{expenses: []expense.Expense{
		{Type: expense.TypeFood, Amount: 200, Date: day(time.March, 2)},
		{Type: expense.TypeVeterinary, Amount: 50, Date: day(time.February, 2)},
	}}
	vaccinations := &stubVaccinations{vaccinations: []vaccination.Vaccination{
		{ID: "v1", NextDoseDate: ptr(day(time.March, 18))},
		{ID: "v2", NextDoseDate: ptr(day(time.March, 23))},
		{ID: "v3"},
	}}
	svc := newTestService(&stubPigs{pigs: herd()}, expenses, vaccinations)

	d, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, d.ActivePigs)
	assert.Equal(t, 2, d.SoldPigs)
	assert.Equal(t, 1, d.DeceasedPigs)
	assert.InDelta(t, 50.0, d.AverageWeight, 0.001)
	assert.Equal(t, 300.0, d.ActiveInvestment)
	assert.Equal(t, 550.0, d.SoldRevenue)
	assert.Equal(t, 250.0, d.TotalExpenses)
	assert.Equal(t, 300.0, d.Balance)
	assert.InDelta(t, 120.0, d.ROI, 0.001)
	assert.Equal(t, 1, d.OverdueVaccinations)
	assert.Equal(t, 1, d.UpcomingVaccinations)
	assert.Equal(t, expense.ListFilter{}, expenses.filter)

	require.Len(t, d.RecentExits, 3)
	assert.Equal(t, "s1", d.RecentExits[0].PigID)
	assert.Equal(t, "d1", d.RecentExits[1].PigID)
	assert.Equal(t, "neumonía", *d.RecentExits[1].Reason)
	assert.Equal(t, "s2", d.RecentExits[2].PigID)
}

func TestDashboardService_GetDashboard_EmptyFarm(t *testing.T) {
	svc := newTestService(&stubPigs{}, &stubExpenses{}, &stubVaccinations{})

	d, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, d.AverageWeight)
	assert.Zero(t, d.ROI)
	assert.NotNil(t, d.RecentExits)
	assert.Empty(t, d.RecentExits)
}

func TestDashboardService_RecentExitsCapped(t *testing.T) {
	var pigs []pig.Pig
	for i := 1; i <= 8; i++ {
		pigs = append(pigs, pig.Pig{ID: string(rune('a' + i)), Status: pig.StatusSold, SaleDate: ptr(day(time.March, i)), SalePrice: ptr(10.0)})
	}
	svc := newTestService(&stubPigs{pigs: pigs}, &stubExpenses{}, &stubVaccinations{})

	d, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, d.RecentExits, dashboard.RecentExitLimit)
	assert.Equal(t, day(time.March, 8), d.RecentExits[0].Date)
	assert.Equal(t, day(time.March, 4), d.RecentExits[4].Date)
}

func TestDashboardService_GetDashboard_RepositoryError(t *testing.T) {
	svc := newTestService(&stubPigs{err: errors.New("connection reset")}, &stubExpenses{}, &stubVaccinations{})

	_, err := svc.GetDashboard(context.Background())
	assert.ErrorContains(t, err, "failed to list pigs")
}

func TestDashboardService_GetReport(t *testing.T) {
	expenses := &stubExpenses{expenses: []expense.Expense{
		{Type: expense.TypeFood, Amount: 120, Date: day(time.March, 2)},
		{Type: expense.TypeFood, Amount: 30, Date: day(time.March, 9)},
		{Type: expense.TypeTransport, Amount: 20, Date: day(time.March, 10)},
	}}
	vaccinations := &stubVaccinations{vaccinations: []vaccination.Vaccination{
		{ID: "v1", ApplicationDate: day(time.March, 3)},
		{ID: "v2", ApplicationDate: day(time.January, 3)},
	}}
	svc := newTestService(&stubPigs{pigs: herd()}, expenses, vaccinations)

	r, err := svc.GetReport(context.Background(), dashboard.ReportRequest{From: ptr("2025-03-01"), To: ptr("2025-03-10")})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-01", r.From)
	assert.Equal(t, "2025-03-10", r.To)
	require.NotNil(t, expenses.filter.From)
	assert.Equal(t, day(time.March, 1), *expenses.filter.From)
	assert.Equal(t, day(time.March, 10), *expenses.filter.To)

	assert.Equal(t, 3, r.ActivePigs)
	assert.Equal(t, 2, r.PurchasedPigs)
	assert.Equal(t, 1, r.SoldPigs)
	assert.Equal(t, 1, r.DeceasedPigs)
	assert.Equal(t, 1, r.Vaccinations)

	assert.Equal(t, 300.0, r.TotalSales)
	assert.Equal(t, 170.0, r.TotalExpenses)
	assert.Equal(t, 150.0, r.ExpensesByType[expense.TypeFood])
	assert.Equal(t, 130.0, r.Profit)
	assert.Equal(t, 90.0, r.PurchaseCost)
	assert.Equal(t, 210.0, r.GrossProfit)
	assert.Equal(t, 40.0, r.NetProfit)
	assert.InDelta(t, 233.333, r.ROI, 0.001)

	require.Len(t, r.Sales, 1)
	assert.Equal(t, "C-01", *r.Sales[0].Identifier)
	assert.Equal(t, 210.0, r.Sales[0].Margin)
}

func TestDashboardService_GetReport_DefaultsToLastMonth(t *testing.T) {
	expenses := &stubExpenses{}
	svc := newTestService(&stubPigs{pigs: herd()}, expenses, &stubVaccinations{})

	r, err := svc.GetReport(context.Background(), dashboard.ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-20", r.From)
	assert.Equal(t, "2025-03-20", r.To)
	assert.Equal(t, 1, r.SoldPigs)
	assert.Zero(t, r.TotalExpenses)
}

func TestDashboardService_GetReport_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   dashboard.ReportRequest
		field string
	}{
		{"bad from", dashboard.ReportRequest{From: ptr("01/03/2025")}, "from"},
		{"bad to", dashboard.ReportRequest{To: ptr("2025-3-1")}, "to"},
		{"inverted", dashboard.ReportRequest{From: ptr("2025-03-10"), To: ptr("2025-03-01")}, "from"},
		{"from after default to", dashboard.ReportRequest{From: ptr("2025-04-01")}, "from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&stubPigs{}, &stubExpenses{}, &stubVaccinations{})

			_, err := svc.GetReport(context.Background(), tt.req)
			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs.ToMap(), tt.field)
		})
	}
}
