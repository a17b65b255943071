package user

import "context"

// AdminService covers user management reserved to admins. Callers must have verified the admin role.
type AdminService interface {
	ListUsers(ctx context.Context) ([]AdminUserResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (string, error)
	UpdateRole(ctx context.Context, userID string, req UpdateRoleRequest) error
	DeleteUser(ctx context.Context, actorID string, userID string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}
