package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/granjalink/farm-backend-go/internal/domain/user"
	"github.com/granjalink/farm-backend-go/internal/handler/http/middleware"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
)

type AdminHandler interface {
	ListUsers(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	UpdateRole(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type AdminHandlerImpl struct {
	adminService user.AdminService
}

func NewAdminHandler(adminService user.AdminService) AdminHandler {
	return &AdminHandlerImpl{adminService: adminService}
}

// ListUsers implements AdminHandler.
func (h *AdminHandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, users)
}

// CreateUser implements AdminHandler.
func (h *AdminHandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateUser decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	id, err := h.adminService.CreateUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created", map[string]string{"id": id})
}

// UpdateRole implements AdminHandler.
func (h *AdminHandlerImpl) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateRole decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.UpdateRole(r.Context(), id, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Role updated", nil)
}

// DeleteUser implements AdminHandler.
func (h *AdminHandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted", nil)
}

// ResetPassword implements AdminHandler.
func (h *AdminHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req user.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ResetPassword decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.adminService.ResetPassword(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password updated", nil)
}
