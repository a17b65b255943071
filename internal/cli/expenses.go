package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/farmdata"
)

var expenseHeaders = []string{"ID", "DATE", "TYPE", "DESCRIPTION", "AMOUNT", "PIG", "SUPPLIER"}

func expenseRow(e expense.Expense) []string {
	return []string{e.ID, day(e.Date), string(e.Type), e.Description, money(e.Amount), str(e.PigID), str(e.Supplier)}
}

func newExpensesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"gastos"},
		Short:   "List and record expenses",
	}
	cmd.AddCommand(
		newExpensesListCmd(opts),
		newExpensesAddCmd(opts),
		newExpensesSummaryCmd(opts),
	)
	return cmd
}

func newExpensesListCmd(opts *options) *cobra.Command {
	var pigID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			expenses, err := loaded(farmdata.NewExpenses(s.deps(), pigID).Await(cmd.Context()))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(expenses))
			for _, e := range expenses {
				rows = append(rows, expenseRow(e))
			}
			p, _ := opts.printer(cmd)
			return p.print(expenses, expenseHeaders, rows)
		},
	}
	cmd.Flags().StringVar(&pigID, "pig", "", "only expenses of this pig")
	return cmd
}

func newExpensesAddCmd(opts *options) *cobra.Command {
	var (
		req                     expense.CreateExpenseRequest
		kind                    string
		pigID, supplier, invoice string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record an expense",
		Example: `  farmctl expenses add --type food --amount 85.5 --description "Feed 40kg"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Type = expense.Type(kind)
			req.PigID = optional(pigID)
			req.Supplier = optional(supplier)
			req.InvoiceNumber = optional(invoice)
			if err := req.Validate(); err != nil {
				return err
			}

			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			created, err := farmdata.NewExpenses(s.deps(), "").Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			return p.print(created, expenseHeaders, [][]string{expenseRow(created)})
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "type", string(expense.TypeOther), "expense type")
	f.Float64Var(&req.Amount, "amount", 0, "amount")
	f.StringVar(&req.Date, "date", today(), "date (YYYY-MM-DD)")
	f.StringVar(&req.Description, "description", "", "description")
	f.StringVar(&pigID, "pig", "", "pig the expense belongs to")
	f.StringVar(&supplier, "supplier", "", "supplier")
	f.StringVar(&invoice, "invoice", "", "invoice number")
	return cmd
}

func newExpensesSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals, expenses by type and monthly figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := loaded(farmdata.NewSummary(s.deps()).Await(cmd.Context()))
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			if p.format != formatTable {
				return p.print(summary, nil, nil)
			}

			if err := p.print(nil, []string{"EXPENSES", "INCOME", "BALANCE"}, [][]string{
				{money(summary.TotalExpenses), money(summary.TotalIncome), money(summary.Balance)},
			}); err != nil {
				return err
			}

			types := make([]string, 0, len(summary.ExpensesByType))
			for t := range summary.ExpensesByType {
				types = append(types, string(t))
			}
			sort.Strings(types)
			byType := make([][]string, 0, len(types))
			for _, t := range types {
				byType = append(byType, []string{t, money(summary.ExpensesByType[expense.Type(t)])})
			}
			if err := p.print(nil, []string{"TYPE", "TOTAL"}, byType); err != nil {
				return err
			}

			monthly := make([][]string, 0, len(summary.MonthlyData))
			for _, m := range summary.MonthlyData {
				monthly = append(monthly, []string{m.Month, money(m.Expenses), money(m.Income)})
			}
			return p.print(nil, []string{"MONTH", "EXPENSES", "INCOME"}, monthly)
		},
	}
}
