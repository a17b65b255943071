package farmdata

import (
	"context"

	"github.com/granjalink/farm-backend-go/internal/client"
	"github.com/granjalink/farm-backend-go/internal/domain/dashboard"
)

// Dashboard is the farm overview.
type Dashboard struct {
	view[dashboard.Dashboard]
}

func NewDashboard(d Deps) *Dashboard {
	return &Dashboard{view: newView(d, func(ctx context.Context, c *client.DataClient) (dashboard.Dashboard, error) {
		return c.Dashboard(ctx)
	}, true)}
}

// Report is the period report for from..to, both YYYY-MM-DD. Empty bounds use
// the server default of the month ending today.
type Report struct {
	view[dashboard.Report]
}

func NewReport(d Deps, from, to string) *Report {
	return &Report{view: newView(d, func(ctx context.Context, c *client.DataClient) (dashboard.Report, error) {
		return c.Report(ctx, from, to)
	}, true)}
}
