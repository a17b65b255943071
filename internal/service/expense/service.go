package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// summaryMonths is how many calendar months, current included, the summary charts.
const summaryMonths = 6

type ExpenseServiceImpl struct {
	expenses expense.ExpenseRepository
	pigs     pig.PigRepository
	now      func() time.Time
}

func NewExpenseService(expenseRepository expense.ExpenseRepository, pigRepository pig.PigRepository) expense.ExpenseService {
	return &ExpenseServiceImpl{
		expenses: expenseRepository,
		pigs:     pigRepository,
		now:      time.Now,
	}
}

func (s *ExpenseServiceImpl) List(ctx context.Context, filter expense.ListFilter) ([]expense.Expense, error) {
	expenses, err := s.expenses.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseServiceImpl) Get(ctx context.Context, id string) (expense.Expense, error) {
	return s.expenses.GetByID(ctx, id)
}

func (s *ExpenseServiceImpl) Create(ctx context.Context, userID string, req expense.CreateExpenseRequest) (expense.Expense, error) {
	date, _ := validator.IsValidDate(req.Date)

	return s.expenses.Create(ctx, expense.Expense{
		PigID:         req.PigID,
		Type:          req.Type,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          date,
		InvoiceNumber: req.InvoiceNumber,
		Supplier:      req.Supplier,
		CreatedBy:     userID,
	})
}

// Update implements expense.ExpenseService. Nil request fields keep their stored value.
func (s *ExpenseServiceImpl) Update(ctx context.Context, id string, req expense.UpdateExpenseRequest) (expense.Expense, error) {
	current, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return expense.Expense{}, err
	}

	if req.Type != nil {
		current.Type = *req.Type
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Amount != nil {
		current.Amount = *req.Amount
	}
	if d := validator.ParseOptionalDate(req.Date); d != nil {
		current.Date = *d
	}
	if req.PigID != nil {
		current.PigID = req.PigID
	}
	if req.InvoiceNumber != nil {
		current.InvoiceNumber = req.InvoiceNumber
	}
	if req.Supplier != nil {
		current.Supplier = req.Supplier
	}

	return s.expenses.Update(ctx, current)
}

func (s *ExpenseServiceImpl) Delete(ctx context.Context, id string) error {
	return s.expenses.Delete(ctx, id)
}

// Summary implements expense.ExpenseService. Income is the sale price of every sold pig.
func (s *ExpenseServiceImpl) Summary(ctx context.Context) (expense.Summary, error) {
	var (
		expenses []expense.Expense
		sold     []pig.Pig
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.List(gctx, expense.ListFilter{})
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sold, err = s.pigs.ListSold(gctx)
		if err != nil {
			return fmt.Errorf("failed to list sold pigs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return expense.Summary{}, err
	}

	return summarize(expenses, sold, s.now()), nil
}

func summarize(expenses []expense.Expense, sold []pig.Pig, now time.Time) expense.Summary {
	summary := expense.Summary{
		ExpensesByType: make(map[expense.Type]float64),
		MonthlyData:    make([]expense.MonthlyTotals, summaryMonths),
	}

	index := make(map[string]int, summaryMonths)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < summaryMonths; i++ {
		key := first.AddDate(0, i-(summaryMonths-1), 0).Format("2006-01")
		summary.MonthlyData[i].Month = key
		index[key] = i
	}

	for _, e := range expenses {
		summary.TotalExpenses += e.Amount
		summary.ExpensesByType[e.Type] += e.Amount
		if i, ok := index[e.Date.Format("2006-01")]; ok {
			summary.MonthlyData[i].Expenses += e.Amount
		}
	}

	for _, p := range sold {
		if p.SalePrice == nil {
			continue
		}
		summary.TotalIncome += *p.SalePrice
		if p.SaleDate == nil {
			continue
		}
		if i, ok := index[p.SaleDate.Format("2006-01")]; ok {
			summary.MonthlyData[i].Income += *p.SalePrice
		}
	}

	summary.Balance = summary.TotalIncome - summary.TotalExpenses
	return summary
}
