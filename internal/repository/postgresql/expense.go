package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const expenseColumns = `id, pig_id, type, description, amount, date, invoice_number, supplier, created_by, created_at`

type expenseRepositoryImpl struct {
	db *database.DB
}

func NewExpenseRepository(db *database.DB) expense.ExpenseRepository {
	return &expenseRepositoryImpl{db: db}
}

func scanExpense(row pgx.Row) (expense.Expense, error) {
	var e expense.Expense
	err := row.Scan(
		&e.ID,
		&e.PigID,
		&e.Type,
		&e.Description,
		&e.Amount,
		&e.Date,
		&e.InvoiceNumber,
		&e.Supplier,
		&e.CreatedBy,
		&e.CreatedAt,
	)
	return e, err
}

// List implements expense.ExpenseRepository. Most recent date first.
func (r *expenseRepositoryImpl) List(ctx context.Context, filter expense.ListFilter) ([]expense.Expense, error) {
	q := GetQuerier(ctx, r.db)

	var where []string
	var args []any
	if filter.PigID != nil {
		args = append(args, *filter.PigID)
		where = append(where, fmt.Sprintf("pig_id = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []expense.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// GetByID implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) GetByID(ctx context.Context, id string) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(q.QueryRow(ctx, query, id))
	if err != nil {
		return expense.Expense{}, mapNotFound(err, expense.ErrExpenseNotFound)
	}
	return e, nil
}

// Create implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) Create(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO expenses (pig_id, type, description, amount, date, invoice_number, supplier, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + expenseColumns

	created, err := scanExpense(q.QueryRow(ctx, query,
		e.PigID, e.Type, e.Description, e.Amount, e.Date, e.InvoiceNumber, e.Supplier, e.CreatedBy,
	))
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return expense.Expense{}, expense.ErrPigNotFound
		}
		return expense.Expense{}, err
	}
	return created, nil
}

// Update implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) Update(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE expenses
		SET pig_id = $1, type = $2, description = $3, amount = $4, date = $5,
			invoice_number = $6, supplier = $7
		WHERE id = $8
		RETURNING ` + expenseColumns

	updated, err := scanExpense(q.QueryRow(ctx, query,
		e.PigID, e.Type, e.Description, e.Amount, e.Date, e.InvoiceNumber, e.Supplier, e.ID,
	))
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return expense.Expense{}, expense.ErrPigNotFound
		}
		return expense.Expense{}, mapNotFound(err, expense.ErrExpenseNotFound)
	}
	return updated, nil
}

// Delete implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrExpenseNotFound
	}
	return nil
}
