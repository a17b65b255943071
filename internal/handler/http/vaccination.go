package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/handler/http/middleware"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

type VaccinationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	MarkReminderSent(w http.ResponseWriter, r *http.Request)
	Due(w http.ResponseWriter, r *http.Request)
	ListSchedules(w http.ResponseWriter, r *http.Request)
	CreateSchedule(w http.ResponseWriter, r *http.Request)
}

type VaccinationHandlerImpl struct {
	vaccinationService vaccination.VaccinationService
}

func NewVaccinationHandler(vaccinationService vaccination.VaccinationService) VaccinationHandler {
	return &VaccinationHandlerImpl{vaccinationService: vaccinationService}
}

// List implements VaccinationHandler. Accepts ?pig_id=.
func (h *VaccinationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter vaccination.ListFilter
	if pigID := optionalQuery(r, "pig_id"); pigID != nil {
		if !validator.IsValidUUID(*pigID) {
			response.ValidationError(w, map[string]string{"pig_id": "pig_id must be a valid UUID"})
			return
		}
		filter.PigID = pigID
	}

	vaccinations, err := h.vaccinationService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, vaccinations)
}

// Get implements VaccinationHandler.
func (h *VaccinationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.vaccinationService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, v)
}

// Create implements VaccinationHandler.
func (h *VaccinationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req vaccination.CreateVaccinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateVaccination decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.vaccinationService.Create(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Vaccination recorded", created)
}

// Update implements VaccinationHandler.
func (h *VaccinationHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req vaccination.UpdateVaccinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateVaccination decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.vaccinationService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Vaccination updated", updated)
}

// Delete implements VaccinationHandler.
func (h *VaccinationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.vaccinationService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Vaccination deleted", nil)
}

// MarkReminderSent implements VaccinationHandler.
func (h *VaccinationHandlerImpl) MarkReminderSent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.vaccinationService.MarkReminderSent(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Reminder marked as sent", nil)
}

// Due implements VaccinationHandler.
func (h *VaccinationHandlerImpl) Due(w http.ResponseWriter, r *http.Request) {
	due, err := h.vaccinationService.Due(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, due)
}

// ListSchedules implements VaccinationHandler.
func (h *VaccinationHandlerImpl) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.vaccinationService.ListSchedules(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, schedules)
}

// CreateSchedule implements VaccinationHandler.
func (h *VaccinationHandlerImpl) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req vaccination.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateSchedule decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	schedule, err := h.vaccinationService.CreateSchedule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Schedule created", schedule)
}
