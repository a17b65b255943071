package expense

import "context"

type ExpenseRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Expense, error)
	GetByID(ctx context.Context, id string) (Expense, error)
	Create(ctx context.Context, e Expense) (Expense, error)
	Update(ctx context.Context, e Expense) (Expense, error)
	Delete(ctx context.Context, id string) error
}
