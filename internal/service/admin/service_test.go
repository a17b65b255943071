package admin

import (
	"context"
	"testing"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/domain/user"
	"github.com/granjalink/farm-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type memoryStore struct {
	users    map[string]user.User
	profiles map[string]profile.Profile
	revoked  map[string]bool
}

func newMemoryStore() *memoryStore {
	confirmed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &memoryStore{
		users: map[string]user.User{
			"admin-1": {ID: "admin-1", Email: "admin@farm.test", EmailConfirmedAt: &confirmed},
			"emp-1":   {ID: "emp-1", Email: "emp@farm.test"},
		},
		profiles: map[string]profile.Profile{
			"admin-1":  {ID: "admin-1", FullName: "Admin", Role: profile.RoleAdmin},
			"emp-1":    {ID: "emp-1", FullName: "Empleado", Role: profile.RoleEmployee},
			"orphan-1": {ID: "orphan-1", FullName: "Orphan", Role: profile.RoleViewer},
		},
		revoked: map[string]bool{},
	}
}

type userRepo struct{ *memoryStore }

func (r userRepo) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (r userRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r userRepo) List(context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r userRepo) Create(_ context.Context, u user.User) (user.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	u.ID = "new-user"
	r.users[u.ID] = u
	return u, nil
}

func (r userRepo) LinkGoogleAccount(context.Context, string, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (r userRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = &passwordHash
	r.users[userID] = u
	return nil
}

func (r userRepo) TouchLastSignIn(context.Context, string) error { return nil }

func (r userRepo) Delete(_ context.Context, userID string) error {
	if _, ok := r.users[userID]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.users, userID)
	delete(r.profiles, userID)
	return nil
}

type profileRepo struct{ *memoryStore }

func (r profileRepo) GetByID(_ context.Context, id string) (profile.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrProfileNotFound
	}
	return p, nil
}

func (r profileRepo) List(context.Context) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (r profileRepo) Upsert(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.profiles[p.ID] = p
	return p, nil
}

func (r profileRepo) Update(context.Context, string, profile.UpdateProfileRequest) (profile.Profile, error) {
	return profile.Profile{}, nil
}

func (r profileRepo) UpdateRole(_ context.Context, id string, role profile.Role) error {
	p, ok := r.profiles[id]
	if !ok {
		return profile.ErrProfileNotFound
	}
	p.Role = role
	r.profiles[id] = p
	return nil
}

type tokenRepo struct{ *memoryStore }

func (r tokenRepo) Create(context.Context, string, string, int64, auth.SessionTrackingRequest) error {
	return nil
}
func (r tokenRepo) GetByToken(context.Context, string) (auth.RefreshToken, error) {
	return auth.RefreshToken{}, auth.ErrInvalidToken
}
func (r tokenRepo) Revoke(context.Context, string) error { return nil }
func (r tokenRepo) RevokeAllForUser(_ context.Context, userID string) error {
	r.revoked[userID] = true
	return nil
}
func (r tokenRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

type publisher struct{ events []sse.Event }

func (p *publisher) Publish(userID string, event sse.Event) {
	event.UserID = userID
	p.events = append(p.events, event)
}

func newTestAdminService() (*AdminServiceImpl, *memoryStore, *publisher) {
	store := newMemoryStore()
	pub := &publisher{}
	svc := NewAdminService(passthroughTx{}, userRepo{store}, profileRepo{store}, tokenRepo{store}, pub).(*AdminServiceImpl)
	return svc, store, pub
}

func TestAdminService_ListUsers(t *testing.T) {
	svc, _, _ := newTestAdminService()

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	byEmail := map[string]user.AdminUserResponse{}
	for _, u := range users {
		byEmail[u.Email] = u
	}
	admin := byEmail["admin@farm.test"]
	assert.True(t, admin.EmailConfirmed)
	assert.True(t, admin.IsAdmin())
	assert.False(t, byEmail["emp@farm.test"].EmailConfirmed)
}

func TestAdminService_CreateUser(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestAdminService()

	id, err := svc.CreateUser(ctx, user.CreateUserRequest{
		Email:    " Vet@Farm.test ",
		Password: "secret1",
		FullName: "Veterinaria",
		Role:     profile.RoleEmployee,
	})
	require.NoError(t, err)

	created := store.users[id]
	assert.Equal(t, "vet@farm.test", created.Email)
	require.NotNil(t, created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*created.PasswordHash), []byte("secret1")))
	assert.Equal(t, profile.RoleEmployee, store.profiles[id].Role)

	_, err = svc.CreateUser(ctx, user.CreateUserRequest{Email: "emp@farm.test", Password: "secret1", FullName: "Dup", Role: profile.RoleViewer})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestAdminService_UpdateRole(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestAdminService()

	require.NoError(t, svc.UpdateRole(ctx, "emp-1", user.UpdateRoleRequest{Role: profile.RoleViewer}))
	assert.Equal(t, profile.RoleViewer, store.profiles["emp-1"].Role)

	assert.ErrorIs(t, svc.UpdateRole(ctx, "emp-1", user.UpdateRoleRequest{Role: "owner"}), profile.ErrInvalidRole)
	assert.ErrorIs(t, svc.UpdateRole(ctx, "", user.UpdateRoleRequest{Role: profile.RoleViewer}), user.ErrUserIDRequired)
	assert.ErrorIs(t, svc.UpdateRole(ctx, "ghost", user.UpdateRoleRequest{Role: profile.RoleViewer}), profile.ErrProfileNotFound)
}

func TestAdminService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newTestAdminService()

	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin-1", "admin-1"), user.ErrCannotDeleteSelf)

	require.NoError(t, svc.DeleteUser(ctx, "admin-1", "emp-1"))
	assert.NotContains(t, store.users, "emp-1")
	require.Len(t, pub.events, 1)
	assert.Equal(t, "emp-1", pub.events[0].UserID)
	assert.Equal(t, string(auth.EventSignedOut), pub.events[0].Event)

	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin-1", "emp-1"), user.ErrUserNotFound)
}

func TestAdminService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newTestAdminService()

	assert.ErrorIs(t, svc.ResetPassword(ctx, user.ResetPasswordRequest{UserID: "emp-1", NewPassword: "12345"}), user.ErrPasswordTooShort)

	require.NoError(t, svc.ResetPassword(ctx, user.ResetPasswordRequest{UserID: "emp-1", NewPassword: "123456"}))
	assert.True(t, store.revoked["emp-1"])
	assert.Len(t, pub.events, 1)

	assert.ErrorIs(t, svc.ResetPassword(ctx, user.ResetPasswordRequest{UserID: "ghost", NewPassword: "123456"}), user.ErrUserNotFound)
}
