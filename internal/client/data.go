package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/granjalink/farm-backend-go/internal/domain/dashboard"
	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
)

// TokenSource supplies the bearer token for data requests.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// DataClient reads and writes farm records. It holds its own connection pool;
// Close releases it so the next handle starts clean.
type DataClient struct {
	transport
	tokens TokenSource
}

func NewDataClient(baseURL string, tokens TokenSource, opts Options) *DataClient {
	opts = opts.withDefaults()
	return &DataClient{
		transport: newTransport(baseURL, opts),
		tokens:    tokens,
	}
}

func (d *DataClient) Close() error {
	d.http.CloseIdleConnections()
	return nil
}

func (d *DataClient) call(ctx context.Context, method, path string, body, out any) error {
	token, err := d.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	return d.do(ctx, method, path, token, body, out)
}

func withQuery(path string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Pigs

func (d *DataClient) ListPigs(ctx context.Context, status pig.Status) ([]pig.Pig, error) {
	var pigs []pig.Pig
	err := d.call(ctx, http.MethodGet, withQuery("/pigs", map[string]string{"status": string(status)}), nil, &pigs)
	return pigs, err
}

func (d *DataClient) GetPig(ctx context.Context, id string) (pig.Detail, error) {
	var detail pig.Detail
	err := d.call(ctx, http.MethodGet, "/pigs/"+url.PathEscape(id), nil, &detail)
	return detail, err
}

func (d *DataClient) CreatePig(ctx context.Context, req pig.CreatePigRequest) (pig.Pig, error) {
	var created pig.Pig
	err := d.call(ctx, http.MethodPost, "/pigs", req, &created)
	return created, err
}

func (d *DataClient) CreatePigBatch(ctx context.Context, req pig.CreateBatchRequest) ([]pig.Pig, error) {
	var created []pig.Pig
	err := d.call(ctx, http.MethodPost, "/pigs/batch", req, &created)
	return created, err
}

func (d *DataClient) UpdatePig(ctx context.Context, id string, req pig.UpdatePigRequest) (pig.Pig, error) {
	var updated pig.Pig
	err := d.call(ctx, http.MethodPut, "/pigs/"+url.PathEscape(id), req, &updated)
	return updated, err
}

func (d *DataClient) SellPig(ctx context.Context, id string, req pig.SellPigRequest) (pig.Pig, error) {
	var sold pig.Pig
	err := d.call(ctx, http.MethodPost, "/pigs/"+url.PathEscape(id)+"/sell", req, &sold)
	return sold, err
}

func (d *DataClient) RegisterPigDeath(ctx context.Context, id string, req pig.RegisterDeathRequest) (pig.Pig, error) {
	var dead pig.Pig
	err := d.call(ctx, http.MethodPost, "/pigs/"+url.PathEscape(id)+"/death", req, &dead)
	return dead, err
}

func (d *DataClient) DeletePig(ctx context.Context, id string) error {
	return d.call(ctx, http.MethodDelete, "/pigs/"+url.PathEscape(id), nil, nil)
}

func (d *DataClient) AddWeightRecord(ctx context.Context, pigID string, req pig.CreateWeightRecordRequest) (pig.WeightRecord, error) {
	var record pig.WeightRecord
	err := d.call(ctx, http.MethodPost, "/pigs/"+url.PathEscape(pigID)+"/weights", req, &record)
	return record, err
}

// Expenses

func (d *DataClient) ListExpenses(ctx context.Context, pigID string) ([]expense.Expense, error) {
	var expenses []expense.Expense
	err := d.call(ctx, http.MethodGet, withQuery("/expenses", map[string]string{"pig_id": pigID}), nil, &expenses)
	return expenses, err
}

func (d *DataClient) CreateExpense(ctx context.Context, req expense.CreateExpenseRequest) (expense.Expense, error) {
	var created expense.Expense
	err := d.call(ctx, http.MethodPost, "/expenses", req, &created)
	return created, err
}

func (d *DataClient) UpdateExpense(ctx context.Context, id string, req expense.UpdateExpenseRequest) (expense.Expense, error) {
	var updated expense.Expense
	err := d.call(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), req, &updated)
	return updated, err
}

func (d *DataClient) DeleteExpense(ctx context.Context, id string) error {
	return d.call(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil)
}

func (d *DataClient) FinancialSummary(ctx context.Context) (expense.Summary, error) {
	var summary expense.Summary
	err := d.call(ctx, http.MethodGet, "/expenses/summary", nil, &summary)
	return summary, err
}

// Vaccinations

func (d *DataClient) ListVaccinations(ctx context.Context, pigID string) ([]vaccination.Vaccination, error) {
	var vaccinations []vaccination.Vaccination
	err := d.call(ctx, http.MethodGet, withQuery("/vaccinations", map[string]string{"pig_id": pigID}), nil, &vaccinations)
	return vaccinations, err
}

func (d *DataClient) CreateVaccination(ctx context.Context, req vaccination.CreateVaccinationRequest) (vaccination.Vaccination, error) {
	var created vaccination.Vaccination
	err := d.call(ctx, http.MethodPost, "/vaccinations", req, &created)
	return created, err
}

func (d *DataClient) UpdateVaccination(ctx context.Context, id string, req vaccination.UpdateVaccinationRequest) (vaccination.Vaccination, error) {
	var updated vaccination.Vaccination
	err := d.call(ctx, http.MethodPut, "/vaccinations/"+url.PathEscape(id), req, &updated)
	return updated, err
}

func (d *DataClient) DeleteVaccination(ctx context.Context, id string) error {
	return d.call(ctx, http.MethodDelete, "/vaccinations/"+url.PathEscape(id), nil, nil)
}

func (d *DataClient) MarkReminderSent(ctx context.Context, id string) error {
	return d.call(ctx, http.MethodPost, "/vaccinations/"+url.PathEscape(id)+"/reminder-sent", nil, nil)
}

func (d *DataClient) DueVaccinations(ctx context.Context) (vaccination.Due, error) {
	var due vaccination.Due
	err := d.call(ctx, http.MethodGet, "/vaccinations/due", nil, &due)
	return due, err
}

func (d *DataClient) VaccinationSchedules(ctx context.Context) ([]vaccination.Schedule, error) {
	var schedules []vaccination.Schedule
	err := d.call(ctx, http.MethodGet, "/vaccinations/schedules", nil, &schedules)
	return schedules, err
}

// Dashboard and reports

func (d *DataClient) Dashboard(ctx context.Context) (dashboard.Dashboard, error) {
	var overview dashboard.Dashboard
	err := d.call(ctx, http.MethodGet, "/dashboard", nil, &overview)
	return overview, err
}

// Report fetches the period report. Empty bounds let the server default them.
func (d *DataClient) Report(ctx context.Context, from, to string) (dashboard.Report, error) {
	var report dashboard.Report
	err := d.call(ctx, http.MethodGet, withQuery("/reports", map[string]string{"from": from, "to": to}), nil, &report)
	return report, err
}
