package postgresql

import (
	"context"
	"fmt"

	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/pkg/database"
)

type weightRecordRepositoryImpl struct {
	db *database.DB
}

func NewWeightRecordRepository(db *database.DB) pig.WeightRecordRepository {
	return &weightRecordRepositoryImpl{db: db}
}

// Create implements pig.WeightRecordRepository.
func (r *weightRecordRepositoryImpl) Create(ctx context.Context, record pig.WeightRecord) (pig.WeightRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO weight_records (pig_id, weight, date, notes, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, pig_id, weight, date, notes, created_by, created_at
	`

	var created pig.WeightRecord
	err := q.QueryRow(ctx, query, record.PigID, record.Weight, record.Date, record.Notes, record.CreatedBy).Scan(
		&created.ID,
		&created.PigID,
		&created.Weight,
		&created.Date,
		&created.Notes,
		&created.CreatedBy,
		&created.CreatedAt,
	)
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return pig.WeightRecord{}, pig.ErrPigNotFound
		}
		return pig.WeightRecord{}, err
	}
	return created, nil
}

// ListByPig implements pig.WeightRecordRepository. Oldest first.
func (r *weightRecordRepositoryImpl) ListByPig(ctx context.Context, pigID string) ([]pig.WeightRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, pig_id, weight, date, notes, created_by, created_at
		FROM weight_records
		WHERE pig_id = $1
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, pigID)
	if err != nil {
		return nil, fmt.Errorf("query weight records: %w", err)
	}
	defer rows.Close()

	records := []pig.WeightRecord{}
	for rows.Next() {
		var wr pig.WeightRecord
		if err := rows.Scan(&wr.ID, &wr.PigID, &wr.Weight, &wr.Date, &wr.Notes, &wr.CreatedBy, &wr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan weight record: %w", err)
		}
		records = append(records, wr)
	}
	return records, rows.Err()
}
