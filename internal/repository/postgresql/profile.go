package postgresql

import (
	"context"
	"fmt"

	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, full_name, role, avatar_url, permissions, created_at, updated_at`

type profileRepositoryImpl struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) profile.ProfileRepository {
	return &profileRepositoryImpl{db: db}
}

func scanProfile(row pgx.Row) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Role,
		&p.AvatarURL,
		&p.Permissions,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// GetByID implements profile.ProfileRepository.
func (r *profileRepositoryImpl) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(q.QueryRow(ctx, query, id))
	if err != nil {
		return profile.Profile{}, mapNotFound(err, profile.ErrProfileNotFound)
	}
	return p, nil
}

// List implements profile.ProfileRepository.
func (r *profileRepositoryImpl) List(ctx context.Context) ([]profile.Profile, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []profile.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Upsert implements profile.ProfileRepository.
func (r *profileRepositoryImpl) Upsert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO profiles (id, full_name, role, avatar_url, permissions)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name, role = EXCLUDED.role, updated_at = NOW()
		RETURNING ` + profileColumns

	return scanProfile(q.QueryRow(ctx, query, p.ID, p.FullName, p.Role, p.AvatarURL, p.Permissions))
}

// Update implements profile.ProfileRepository.
func (r *profileRepositoryImpl) Update(ctx context.Context, id string, req profile.UpdateProfileRequest) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE profiles
		SET full_name = $1, avatar_url = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + profileColumns

	p, err := scanProfile(q.QueryRow(ctx, query, req.FullName, req.AvatarURL, id))
	if err != nil {
		return profile.Profile{}, mapNotFound(err, profile.ErrProfileNotFound)
	}
	return p, nil
}

// UpdateRole implements profile.ProfileRepository.
func (r *profileRepositoryImpl) UpdateRole(ctx context.Context, id string, role profile.Role) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrProfileNotFound
	}
	return nil
}
