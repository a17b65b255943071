package http

import (
	"net/http"

	"github.com/granjalink/farm-backend-go/internal/domain/dashboard"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// Get returns the farm overview
	Get(w http.ResponseWriter, r *http.Request)
	// Report returns the period report for ?from= and ?to=
	Report(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// Get handles GET /dashboard
func (h *dashboardHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Report handles GET /reports. Dates are YYYY-MM-DD; both default to the month ending today.
func (h *dashboardHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	req := dashboard.ReportRequest{
		From: optionalQuery(r, "from"),
		To:   optionalQuery(r, "to"),
	}

	result, err := h.dashboardService.GetReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
