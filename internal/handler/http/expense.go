package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/handler/http/middleware"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

type ExpenseHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
}

type ExpenseHandlerImpl struct {
	expenseService expense.ExpenseService
}

func NewExpenseHandler(expenseService expense.ExpenseService) ExpenseHandler {
	return &ExpenseHandlerImpl{expenseService: expenseService}
}

func parseExpenseFilter(r *http.Request) (expense.ListFilter, validator.ValidationErrors) {
	var (
		filter expense.ListFilter
		errs   validator.ValidationErrors
	)

	if pigID := optionalQuery(r, "pig_id"); pigID != nil {
		errs.OptionalUUID("pig_id", pigID)
		filter.PigID = pigID
	}
	if t := optionalQuery(r, "type"); t != nil {
		typ := expense.Type(*t)
		if !typ.Valid() {
			errs.Add("type", "type is not a known expense type")
		}
		filter.Type = &typ
	}
	for _, bound := range []struct {
		key    string
		target **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := optionalQuery(r, bound.key)
		if raw == nil {
			continue
		}
		d, ok := validator.IsValidDate(*raw)
		if !ok {
			errs.Add(bound.key, bound.key+" must be in YYYY-MM-DD format")
			continue
		}
		*bound.target = &d
	}

	return filter, errs
}

// List implements ExpenseHandler. Accepts ?pig_id=, ?type=, ?from= and ?to=.
func (h *ExpenseHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseExpenseFilter(r)
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	expenses, err := h.expenseService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, expenses)
}

// Get implements ExpenseHandler.
func (h *ExpenseHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e, err := h.expenseService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, e)
}

// Create implements ExpenseHandler.
func (h *ExpenseHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req expense.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateExpense decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.expenseService.Create(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Expense recorded", created)
}

// Update implements ExpenseHandler.
func (h *ExpenseHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req expense.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateExpense decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.expenseService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Expense updated", updated)
}

// Delete implements ExpenseHandler.
func (h *ExpenseHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.expenseService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Expense deleted", nil)
}

// Summary implements ExpenseHandler.
func (h *ExpenseHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.expenseService.Summary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, summary)
}
