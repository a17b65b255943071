package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpenses struct {
	expense.ExpenseRepository
	stored  map[string]expense.Expense
	listErr error
}

func (s *stubExpenses) List(context.Context, expense.ListFilter) ([]expense.Expense, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]expense.Expense, 0, len(s.stored))
	for _, e := range s.stored {
		out = append(out, e)
	}
	return out, nil
}

func (s *stubExpenses) GetByID(_ context.Context, id string) (expense.Expense, error) {
	e, ok := s.stored[id]
	if !ok {
		return expense.Expense{}, expense.ErrExpenseNotFound
	}
	return e, nil
}

func (s *stubExpenses) Create(_ context.Context, e expense.Expense) (expense.Expense, error) {
	e.ID = "new"
	s.stored[e.ID] = e
	return e, nil
}

func (s *stubExpenses) Update(_ context.Context, e expense.Expense) (expense.Expense, error) {
	s.stored[e.ID] = e
	return e, nil
}

type stubPigs struct {
	pig.PigRepository
	sold []pig.Pig
}

func (s *stubPigs) ListSold(context.Context) ([]pig.Pig, error) { return s.sold, nil }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func price(v float64) *float64 { return &v }

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func TestExpenseService_Summary(t *testing.T) {
	expenses := &stubExpenses{stored: map[string]expense.Expense{
		"e1": {ID: "e1", Type: expense.TypeFood, Amount: 300, Date: day(2024, 6, 3)},
		"e2": {ID: "e2", Type: expense.TypeFood, Amount: 200, Date: day(2024, 2, 10)},
		"e3": {ID: "e3", Type: expense.TypeVaccine, Amount: 50, Date: day(2024, 1, 15)},
		"e4": {ID: "e4", Type: expense.TypeOther, Amount: 25, Date: day(2023, 12, 31)},
	}}
	pigs := &stubPigs{sold: []pig.Pig{
		{ID: "p1", Status: pig.StatusSold, SalePrice: price(1200), SaleDate: dayPtr(2024, 6, 1)},
		{ID: "p2", Status: pig.StatusSold, SalePrice: price(900), SaleDate: dayPtr(2023, 11, 20)},
	}}

	svc := NewExpenseService(expenses, pigs).(*ExpenseServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 575.0, summary.TotalExpenses)
	assert.Equal(t, 2100.0, summary.TotalIncome)
	assert.Equal(t, 1525.0, summary.Balance)
	assert.Equal(t, 500.0, summary.ExpensesByType[expense.TypeFood])
	assert.Equal(t, 50.0, summary.ExpensesByType[expense.TypeVaccine])

	require.Len(t, summary.MonthlyData, 6)
	assert.Equal(t, "2024-01", summary.MonthlyData[0].Month)
	assert.Equal(t, "2024-06", summary.MonthlyData[5].Month)
	assert.Equal(t, 50.0, summary.MonthlyData[0].Expenses)
	assert.Equal(t, 200.0, summary.MonthlyData[1].Expenses)
	assert.Equal(t, 300.0, summary.MonthlyData[5].Expenses)
	assert.Equal(t, 1200.0, summary.MonthlyData[5].Income)
}

func TestExpenseService_SummaryPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewExpenseService(&stubExpenses{listErr: boom}, &stubPigs{})

	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestExpenseService_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := &stubExpenses{stored: map[string]expense.Expense{}}
	svc := NewExpenseService(repo, &stubPigs{})

	created, err := svc.Create(ctx, "u1", expense.CreateExpenseRequest{
		Type:        expense.TypeMedicine,
		Description: "Ivermectina",
		Amount:      75.5,
		Date:        "2024-04-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.CreatedBy)
	assert.Equal(t, day(2024, 4, 2), created.Date)

	amount := 80.0
	updated, err := svc.Update(ctx, created.ID, expense.UpdateExpenseRequest{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 80.0, updated.Amount)
	assert.Equal(t, "Ivermectina", updated.Description)

	_, err = svc.Update(ctx, "missing", expense.UpdateExpenseRequest{Amount: &amount})
	assert.ErrorIs(t, err, expense.ErrExpenseNotFound)
}
