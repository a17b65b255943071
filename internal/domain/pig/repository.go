package pig

import "context"

type PigRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Pig, error)
	ListSold(ctx context.Context) ([]Pig, error)
	GetByID(ctx context.Context, id string) (Pig, error)
	Create(ctx context.Context, p Pig) (Pig, error)
	CreateMany(ctx context.Context, pigs []Pig) ([]Pig, error)
	Update(ctx context.Context, p Pig) (Pig, error)
	UpdateCurrentWeight(ctx context.Context, id string, weight float64) error
	Delete(ctx context.Context, id string) error
}

type WeightRecordRepository interface {
	Create(ctx context.Context, record WeightRecord) (WeightRecord, error)
	ListByPig(ctx context.Context, pigID string) ([]WeightRecord, error)
}
