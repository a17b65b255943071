package farmdata

import (
	"context"

	"github.com/granjalink/farm-backend-go/internal/authsync"
	"github.com/granjalink/farm-backend-go/internal/client"
	"github.com/granjalink/farm-backend-go/internal/domain/expense"
)

// Expenses lists expenses, all of them or those of one pig.
type Expenses struct {
	view[[]expense.Expense]
}

func NewExpenses(d Deps, pigID string) *Expenses {
	return &Expenses{view: newView(d, func(ctx context.Context, c *client.DataClient) ([]expense.Expense, error) {
		return c.ListExpenses(ctx, pigID)
	}, true)}
}

func (e *Expenses) Items() []expense.Expense {
	return valueOr(e.Result())
}

func (e *Expenses) Create(ctx context.Context, req expense.CreateExpenseRequest) (expense.Expense, error) {
	return authsync.Mutate(ctx, e.query, func(ctx context.Context, c *client.DataClient) (expense.Expense, error) {
		return c.CreateExpense(ctx, req)
	})
}

func (e *Expenses) Update(ctx context.Context, id string, req expense.UpdateExpenseRequest) (expense.Expense, error) {
	return authsync.Mutate(ctx, e.query, func(ctx context.Context, c *client.DataClient) (expense.Expense, error) {
		return c.UpdateExpense(ctx, id, req)
	})
}

func (e *Expenses) Delete(ctx context.Context, id string) error {
	return authsync.Exec(ctx, e.query, func(ctx context.Context, c *client.DataClient) error {
		return c.DeleteExpense(ctx, id)
	})
}

// Summary is the financial overview: totals, balance, spend by type and the last six months.
type Summary struct {
	view[expense.Summary]
}

func NewSummary(d Deps) *Summary {
	return &Summary{view: newView(d, func(ctx context.Context, c *client.DataClient) (expense.Summary, error) {
		return c.FinancialSummary(ctx)
	}, true)}
}
