package user

import (
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

const minPasswordLength = 6

// AdminUserResponse is a profile joined with its account data for the admin console.
type AdminUserResponse struct {
	profile.Profile
	Email          string     `json:"email"`
	LastSignIn     *time.Time `json:"last_sign_in"`
	EmailConfirmed bool       `json:"email_confirmed"`
}

type CreateUserRequest struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	FullName string       `json:"full_name"`
	Role     profile.Role `json:"role"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) < minPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}

	if !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: admin, employee, viewer",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateRoleRequest struct {
	Role profile.Role `json:"role"`
}

func (r *UpdateRoleRequest) Validate() error {
	if !r.Role.Valid() {
		return validator.ValidationErrors{{
			Field:   "role",
			Message: "role must be one of: admin, employee, viewer",
		}}
	}
	return nil
}

type ResetPasswordRequest struct {
	UserID      string `json:"userId"`
	NewPassword string `json:"newPassword"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "userId",
			Message: "userId is required",
		})
	}

	if validator.IsEmpty(r.NewPassword) {
		errs = append(errs, validator.ValidationError{
			Field:   "newPassword",
			Message: "newPassword is required",
		})
	} else if len(r.NewPassword) < minPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "newPassword",
			Message: "password must be at least 6 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
