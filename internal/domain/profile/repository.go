package profile

import "context"

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Upsert(ctx context.Context, p Profile) (Profile, error)
	Update(ctx context.Context, id string, req UpdateProfileRequest) (Profile, error)
	UpdateRole(ctx context.Context, id string, role Role) error
}
