package cli

import (
	"github.com/spf13/cobra"

	"github.com/granjalink/farm-backend-go/internal/domain/dashboard"
	"github.com/granjalink/farm-backend-go/internal/farmdata"
)

func newDashboardCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show herd counts, farm value, balance and the latest exits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := loaded(farmdata.NewDashboard(s.deps()).Await(cmd.Context()))
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			if p.format != formatTable {
				return p.print(d, nil, nil)
			}

			if err := p.print(nil, []string{"ACTIVE", "SOLD", "DECEASED", "AVG WEIGHT", "INVESTMENT", "REVENUE"}, [][]string{{
				itoa(d.ActivePigs), itoa(d.SoldPigs), itoa(d.DeceasedPigs),
				money(d.AverageWeight), money(d.ActiveInvestment), money(d.SoldRevenue),
			}}); err != nil {
				return err
			}
			if err := p.print(nil, []string{"EXPENSES", "BALANCE", "ROI %", "OVERDUE DOSES", "UPCOMING DOSES"}, [][]string{{
				money(d.TotalExpenses), money(d.Balance), money(d.ROI),
				itoa(d.OverdueVaccinations), itoa(d.UpcomingVaccinations),
			}}); err != nil {
				return err
			}

			exits := make([][]string, 0, len(d.RecentExits))
			for _, e := range d.RecentExits {
				exits = append(exits, exitRow(e))
			}
			return p.print(nil, []string{"DATE", "PIG", "STATUS", "SALE PRICE", "REASON"}, exits)
		},
	}
}

func exitRow(e dashboard.Exit) []string {
	label := e.PigID
	if e.Identifier != nil {
		label = *e.Identifier
	}
	return []string{day(e.Date), label, string(e.Status), num(e.SalePrice), str(e.Reason)}
}

func newReportCmd(opts *options) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show sales, expenses and margins for a period",
		Long: `report totals what happened between --from and --to, both inclusive.
Without bounds the period is the month ending today.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := loaded(farmdata.NewReport(s.deps(), from, to).Await(cmd.Context()))
			if err != nil {
				return err
			}
			p, _ := opts.printer(cmd)
			if p.format != formatTable {
				return p.print(r, nil, nil)
			}

			if err := p.print(nil, []string{"FROM", "TO", "PURCHASED", "SOLD", "DECEASED", "VACCINATIONS"}, [][]string{{
				r.From, r.To, itoa(r.PurchasedPigs), itoa(r.SoldPigs), itoa(r.DeceasedPigs), itoa(r.Vaccinations),
			}}); err != nil {
				return err
			}
			if err := p.print(nil, []string{"SALES", "EXPENSES", "PROFIT", "PURCHASE COST", "GROSS", "NET", "ROI %"}, [][]string{{
				money(r.TotalSales), money(r.TotalExpenses), money(r.Profit),
				money(r.PurchaseCost), money(r.GrossProfit), money(r.NetProfit), money(r.ROI),
			}}); err != nil {
				return err
			}

			sales := make([][]string, 0, len(r.Sales))
			for _, sale := range r.Sales {
				label := sale.PigID
				if sale.Identifier != nil {
					label = *sale.Identifier
				}
				sales = append(sales, []string{day(sale.SaleDate), label, money(sale.PurchasePrice), money(sale.SalePrice), money(sale.Margin)})
			}
			return p.print(nil, []string{"SOLD ON", "PIG", "BOUGHT FOR", "SOLD FOR", "MARGIN"}, sales)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	return cmd
}
