package pig

import "context"

type PigService interface {
	List(ctx context.Context, filter ListFilter) ([]Pig, error)
	Get(ctx context.Context, id string) (Detail, error)
	Create(ctx context.Context, userID string, req CreatePigRequest) (Pig, error)
	CreateBatch(ctx context.Context, userID string, req CreateBatchRequest) ([]Pig, error)
	Update(ctx context.Context, id string, req UpdatePigRequest) (Pig, error)
	Sell(ctx context.Context, id string, req SellPigRequest) (Pig, error)
	RegisterDeath(ctx context.Context, id string, req RegisterDeathRequest) (Pig, error)
	Delete(ctx context.Context, id string) error
	AddWeightRecord(ctx context.Context, userID string, pigID string, req CreateWeightRecordRequest) (WeightRecord, error)
}
