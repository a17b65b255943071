package postgresql

import (
	"context"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/pkg/database"
)

type passwordResetRepositoryImpl struct {
	db *database.DB
}

func NewPasswordResetRepository(db *database.DB) auth.PasswordResetRepository {
	return &passwordResetRepositoryImpl{db: db}
}

func (r *passwordResetRepositoryImpl) Create(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO password_resets (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := q.Exec(ctx, query, userID, hashToken(token), expiresAt.UTC())
	return err
}

func (r *passwordResetRepositoryImpl) Consume(ctx context.Context, token string) (string, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE password_resets
		SET used_at = NOW()
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`

	var userID string
	if err := q.QueryRow(ctx, query, hashToken(token)).Scan(&userID); err != nil {
		return "", mapNotFound(err, auth.ErrPasswordResetTokenInvalid)
	}
	return userID, nil
}
