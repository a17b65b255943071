package dashboard

import "context"

type DashboardService interface {
	// GetDashboard returns the farm overview
	GetDashboard(ctx context.Context) (Dashboard, error)
	// GetReport returns sales, expenses and margins for a period
	GetReport(ctx context.Context, req ReportRequest) (Report, error)
}
