package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/handler/http/middleware"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
)

type ProfileHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	UploadAvatar(w http.ResponseWriter, r *http.Request)
}

type ProfileHandlerImpl struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) ProfileHandler {
	return &ProfileHandlerImpl{profileService: profileService}
}

// Get implements ProfileHandler.
func (h *ProfileHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profileService.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, p)
}

// Update implements ProfileHandler.
func (h *ProfileHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req profile.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateProfile decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	p, err := h.profileService.Update(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile updated", p)
}

// UploadAvatar implements ProfileHandler. The image comes in the "avatar" form field.
func (h *ProfileHandlerImpl) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	// form overhead on top of the image itself
	r.Body = http.MaxBytesReader(w, r.Body, profile.MaxAvatarBytes+64<<10)

	file, _, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.HandleError(w, profile.ErrAvatarTooLarge)
			return
		}
		response.BadRequest(w, "avatar file is required", map[string]string{"avatar": "required"})
		return
	}
	defer file.Close()

	p, err := h.profileService.UploadAvatar(r.Context(), middleware.UserID(r.Context()), file)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Avatar updated", p)
}
