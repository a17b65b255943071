package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/dashboard"
	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	pigs         pig.PigRepository
	expenses     expense.ExpenseRepository
	vaccinations vaccination.VaccinationRepository
	now          func() time.Time
}

func NewDashboardService(pigRepository pig.PigRepository, expenseRepository expense.ExpenseRepository, vaccinationRepository vaccination.VaccinationRepository) dashboard.DashboardService {
	return &DashboardServiceImpl{
		pigs:         pigRepository,
		expenses:     expenseRepository,
		vaccinations: vaccinationRepository,
		now:          time.Now,
	}
}

// load runs the three list queries in parallel. Only expenses are filtered in SQL.
func (s *DashboardServiceImpl) load(ctx context.Context, expenseFilter expense.ListFilter) ([]pig.Pig, []expense.Expense, []vaccination.Vaccination, error) {
	var (
		pigs         []pig.Pig
		expenses     []expense.Expense
		vaccinations []vaccination.Vaccination
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		pigs, err = s.pigs.List(gCtx, pig.ListFilter{})
		if err != nil {
			return fmt.Errorf("failed to list pigs: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		expenses, err = s.expenses.List(gCtx, expenseFilter)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		vaccinations, err = s.vaccinations.List(gCtx, vaccination.ListFilter{})
		if err != nil {
			return fmt.Errorf("failed to list vaccinations: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return pigs, expenses, vaccinations, nil
}

// GetDashboard returns the farm overview using parallel goroutines, one query each
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (dashboard.Dashboard, error) {
	pigs, expenses, vaccinations, err := s.load(ctx, expense.ListFilter{})
	if err != nil {
		return dashboard.Dashboard{}, err
	}

	d := overview(pigs, expenses)
	due := vaccination.Classify(vaccinations, s.now())
	d.OverdueVaccinations = len(due.Overdue)
	d.UpcomingVaccinations = len(due.Upcoming)
	return d, nil
}

func overview(pigs []pig.Pig, expenses []expense.Expense) dashboard.Dashboard {
	var (
		d         dashboard.Dashboard
		weighed   int
		weightSum float64
		exits     []dashboard.Exit
	)

	for _, p := range pigs {
		switch p.Status {
		case pig.StatusActive:
			d.ActivePigs++
			d.ActiveInvestment += p.PurchasePrice
			if p.CurrentWeight != nil {
				weighed++
				weightSum += *p.CurrentWeight
			}
		case pig.StatusSold:
			d.SoldPigs++
			if p.SalePrice != nil {
				d.SoldRevenue += *p.SalePrice
			}
			if p.SaleDate != nil {
				exits = append(exits, dashboard.Exit{PigID: p.ID, Identifier: p.Identifier, Status: p.Status, Date: *p.SaleDate, SalePrice: p.SalePrice})
			}
		case pig.StatusDeceased:
			d.DeceasedPigs++
			if p.DeathDate != nil {
				exits = append(exits, dashboard.Exit{PigID: p.ID, Identifier: p.Identifier, Status: p.Status, Date: *p.DeathDate, Reason: p.DeathReason})
			}
		}
	}
	if weighed > 0 {
		d.AverageWeight = weightSum / float64(weighed)
	}

	for _, e := range expenses {
		d.TotalExpenses += e.Amount
	}
	d.Balance = d.SoldRevenue - d.TotalExpenses
	if d.TotalExpenses > 0 {
		d.ROI = d.Balance / d.TotalExpenses * 100
	}

	sort.SliceStable(exits, func(i, j int) bool { return exits[i].Date.After(exits[j].Date) })
	if len(exits) > dashboard.RecentExitLimit {
		exits = exits[:dashboard.RecentExitLimit]
	}
	d.RecentExits = exits
	if d.RecentExits == nil {
		d.RecentExits = []dashboard.Exit{}
	}
	return d
}

// GetReport returns the period report. Sales and deaths count by their own date,
// purchases by purchase date and vaccinations by application date.
func (s *DashboardServiceImpl) GetReport(ctx context.Context, req dashboard.ReportRequest) (dashboard.Report, error) {
	if err := req.Validate(); err != nil {
		return dashboard.Report{}, err
	}
	from, to := req.Period(s.now())
	if from.After(to) {
		var errs validator.ValidationErrors
		errs.Add("from", "from must not be after to")
		return dashboard.Report{}, errs
	}

	pigs, expenses, vaccinations, err := s.load(ctx, expense.ListFilter{From: &from, To: &to})
	if err != nil {
		return dashboard.Report{}, err
	}
	return report(from, to, pigs, expenses, vaccinations), nil
}

func report(from, to time.Time, pigs []pig.Pig, expenses []expense.Expense, vaccinations []vaccination.Vaccination) dashboard.Report {
	r := dashboard.Report{
		From:           from.Format(validator.DateLayout),
		To:             to.Format(validator.DateLayout),
		ExpensesByType: make(map[expense.Type]float64),
		Sales:          []dashboard.Sale{},
	}
	in := func(t time.Time) bool {
		day := t.Format(validator.DateLayout)
		return day >= r.From && day <= r.To
	}

	for _, p := range pigs {
		if p.Status == pig.StatusActive {
			r.ActivePigs++
		}
		if in(p.PurchaseDate) {
			r.PurchasedPigs++
		}
		if p.Status == pig.StatusDeceased && p.DeathDate != nil && in(*p.DeathDate) {
			r.DeceasedPigs++
		}
		if p.Status != pig.StatusSold || p.SaleDate == nil || !in(*p.SaleDate) {
			continue
		}

		r.SoldPigs++
		sale := dashboard.Sale{PigID: p.ID, Identifier: p.Identifier, SaleDate: *p.SaleDate, PurchasePrice: p.PurchasePrice}
		if p.SalePrice != nil {
			sale.SalePrice = *p.SalePrice
		}
		sale.Margin = sale.SalePrice - sale.PurchasePrice
		r.TotalSales += sale.SalePrice
		r.PurchaseCost += sale.PurchasePrice
		r.Sales = append(r.Sales, sale)
	}
	sort.SliceStable(r.Sales, func(i, j int) bool { return r.Sales[i].SaleDate.Before(r.Sales[j].SaleDate) })

	for _, e := range expenses {
		if !in(e.Date) {
			continue
		}
		r.TotalExpenses += e.Amount
		r.ExpensesByType[e.Type] += e.Amount
	}

	for _, v := range vaccinations {
		if in(v.ApplicationDate) {
			r.Vaccinations++
		}
	}

	r.Profit = r.TotalSales - r.TotalExpenses
	r.GrossProfit = r.TotalSales - r.PurchaseCost
	r.NetProfit = r.GrossProfit - r.TotalExpenses
	if r.PurchaseCost > 0 {
		r.ROI = r.GrossProfit / r.PurchaseCost * 100
	}
	return r
}
