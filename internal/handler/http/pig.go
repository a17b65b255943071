package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/handler/http/middleware"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
)

type PigHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	CreateBatch(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Sell(w http.ResponseWriter, r *http.Request)
	RegisterDeath(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	AddWeightRecord(w http.ResponseWriter, r *http.Request)
}

type PigHandlerImpl struct {
	pigService pig.PigService
}

func NewPigHandler(pigService pig.PigService) PigHandler {
	return &PigHandlerImpl{pigService: pigService}
}

// List implements PigHandler. Accepts ?status=active|sold|deceased.
func (h *PigHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter pig.ListFilter
	if s := optionalQuery(r, "status"); s != nil {
		status := pig.Status(*s)
		if !status.Valid() {
			response.ValidationError(w, map[string]string{"status": "status must be one of: active, sold, deceased"})
			return
		}
		filter.Status = &status
	}

	pigs, err := h.pigService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, pigs)
}

// Get implements PigHandler. The detail includes the weight history.
func (h *PigHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	detail, err := h.pigService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, detail)
}

// Create implements PigHandler.
func (h *PigHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req pig.CreatePigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreatePig decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.pigService.Create(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Pig registered", created)
}

// CreateBatch implements PigHandler.
func (h *PigHandlerImpl) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req pig.CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateBatch decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.pigService.CreateBatch(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Batch registered", created)
}

// Update implements PigHandler.
func (h *PigHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req pig.UpdatePigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdatePig decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.pigService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Pig updated", updated)
}

// Sell implements PigHandler.
func (h *PigHandlerImpl) Sell(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req pig.SellPigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SellPig decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	sold, err := h.pigService.Sell(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Pig sold", sold)
}

// RegisterDeath implements PigHandler.
func (h *PigHandlerImpl) RegisterDeath(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req pig.RegisterDeathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RegisterDeath decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	dead, err := h.pigService.RegisterDeath(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Death registered", dead)
}

// Delete implements PigHandler.
func (h *PigHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.pigService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Pig deleted", nil)
}

// AddWeightRecord implements PigHandler.
func (h *PigHandlerImpl) AddWeightRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req pig.CreateWeightRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddWeightRecord decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.pigService.AddWeightRecord(r.Context(), middleware.UserID(r.Context()), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Weight recorded", record)
}
