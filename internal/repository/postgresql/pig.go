package postgresql

import (
	"context"
	"fmt"

	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const pigColumns = `id, identifier, purchase_date, purchase_price, purchase_weight, current_weight,
		breed, sex, age_months, pen_location, status, sale_date, sale_price, sale_weight,
		death_date, death_reason, notes, client_id, created_by, created_at, updated_at`

type pigRepositoryImpl struct {
	db *database.DB
}

func NewPigRepository(db *database.DB) pig.PigRepository {
	return &pigRepositoryImpl{db: db}
}

func scanPig(row pgx.Row) (pig.Pig, error) {
	var p pig.Pig
	err := row.Scan(
		&p.ID,
		&p.Identifier,
		&p.PurchaseDate,
		&p.PurchasePrice,
		&p.PurchaseWeight,
		&p.CurrentWeight,
		&p.Breed,
		&p.Sex,
		&p.AgeMonths,
		&p.PenLocation,
		&p.Status,
		&p.SaleDate,
		&p.SalePrice,
		&p.SaleWeight,
		&p.DeathDate,
		&p.DeathReason,
		&p.Notes,
		&p.ClientID,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectPigs(rows pgx.Rows) ([]pig.Pig, error) {
	defer rows.Close()
	pigs := []pig.Pig{}
	for rows.Next() {
		p, err := scanPig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pig: %w", err)
		}
		pigs = append(pigs, p)
	}
	return pigs, rows.Err()
}

// List implements pig.PigRepository. Newest first.
func (r *pigRepositoryImpl) List(ctx context.Context, filter pig.ListFilter) ([]pig.Pig, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + pigColumns + ` FROM pigs`
	var args []any
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` WHERE status = $1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pigs: %w", err)
	}
	return collectPigs(rows)
}

// ListSold implements pig.PigRepository.
func (r *pigRepositoryImpl) ListSold(ctx context.Context) ([]pig.Pig, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + pigColumns + ` FROM pigs WHERE status = 'sold' AND sale_price IS NOT NULL ORDER BY sale_date`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sold pigs: %w", err)
	}
	return collectPigs(rows)
}

// GetByID implements pig.PigRepository.
func (r *pigRepositoryImpl) GetByID(ctx context.Context, id string) (pig.Pig, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + pigColumns + ` FROM pigs WHERE id = $1`

	p, err := scanPig(q.QueryRow(ctx, query, id))
	if err != nil {
		return pig.Pig{}, mapNotFound(err, pig.ErrPigNotFound)
	}
	return p, nil
}

const insertPig = `
	INSERT INTO pigs (
		identifier, purchase_date, purchase_price, purchase_weight, current_weight,
		breed, sex, age_months, pen_location, status, notes, created_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING ` + pigColumns

func insertPigArgs(p pig.Pig) []any {
	return []any{
		p.Identifier,
		p.PurchaseDate,
		p.PurchasePrice,
		p.PurchaseWeight,
		p.CurrentWeight,
		p.Breed,
		p.Sex,
		p.AgeMonths,
		p.PenLocation,
		p.Status,
		p.Notes,
		p.CreatedBy,
	}
}

// Create implements pig.PigRepository.
func (r *pigRepositoryImpl) Create(ctx context.Context, p pig.Pig) (pig.Pig, error) {
	q := GetQuerier(ctx, r.db)

	created, err := scanPig(q.QueryRow(ctx, insertPig, insertPigArgs(p)...))
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return pig.Pig{}, pig.ErrIdentifierConflict
		}
		return pig.Pig{}, err
	}
	return created, nil
}

// CreateMany implements pig.PigRepository. All rows are inserted in one transaction.
func (r *pigRepositoryImpl) CreateMany(ctx context.Context, pigs []pig.Pig) ([]pig.Pig, error) {
	created := make([]pig.Pig, 0, len(pigs))
	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		for _, p := range pigs {
			c, err := r.Create(txCtx, p)
			if err != nil {
				return err
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update implements pig.PigRepository. Every mutable column is written from p.
func (r *pigRepositoryImpl) Update(ctx context.Context, p pig.Pig) (pig.Pig, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE pigs
		SET identifier = $1, purchase_date = $2, purchase_price = $3, purchase_weight = $4,
			current_weight = $5, breed = $6, sex = $7, age_months = $8, pen_location = $9,
			status = $10, sale_date = $11, sale_price = $12, sale_weight = $13,
			death_date = $14, death_reason = $15, notes = $16, client_id = $17, updated_at = NOW()
		WHERE id = $18
		RETURNING ` + pigColumns

	updated, err := scanPig(q.QueryRow(ctx, query,
		p.Identifier,
		p.PurchaseDate,
		p.PurchasePrice,
		p.PurchaseWeight,
		p.CurrentWeight,
		p.Breed,
		p.Sex,
		p.AgeMonths,
		p.PenLocation,
		p.Status,
		p.SaleDate,
		p.SalePrice,
		p.SaleWeight,
		p.DeathDate,
		p.DeathReason,
		p.Notes,
		p.ClientID,
		p.ID,
	))
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return pig.Pig{}, pig.ErrIdentifierConflict
		}
		return pig.Pig{}, mapNotFound(err, pig.ErrPigNotFound)
	}
	return updated, nil
}

// UpdateCurrentWeight implements pig.PigRepository.
func (r *pigRepositoryImpl) UpdateCurrentWeight(ctx context.Context, id string, weight float64) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE pigs SET current_weight = $1, updated_at = NOW() WHERE id = $2`, weight, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pig.ErrPigNotFound
	}
	return nil
}

// Delete implements pig.PigRepository.
func (r *pigRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM pigs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pig.ErrPigNotFound
	}
	return nil
}
