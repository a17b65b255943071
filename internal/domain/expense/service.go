package expense

import "context"

type ExpenseService interface {
	List(ctx context.Context, filter ListFilter) ([]Expense, error)
	Get(ctx context.Context, id string) (Expense, error)
	Create(ctx context.Context, userID string, req CreateExpenseRequest) (Expense, error)
	Update(ctx context.Context, id string, req UpdateExpenseRequest) (Expense, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (Summary, error)
}
