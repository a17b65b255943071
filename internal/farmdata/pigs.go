package farmdata

import (
	"context"

	"github.com/granjalink/farm-backend-go/internal/authsync"
	"github.com/granjalink/farm-backend-go/internal/client"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
)

// Pigs lists pigs, optionally of one status, and records changes to them.
type Pigs struct {
	view[[]pig.Pig]
}

func NewPigs(d Deps, status pig.Status) *Pigs {
	return &Pigs{view: newView(d, func(ctx context.Context, c *client.DataClient) ([]pig.Pig, error) {
		return c.ListPigs(ctx, status)
	}, true)}
}

// Items returns the loaded pigs, empty when nothing is loaded.
func (p *Pigs) Items() []pig.Pig {
	return valueOr(p.Result())
}

func (p *Pigs) Create(ctx context.Context, req pig.CreatePigRequest) (pig.Pig, error) {
	return authsync.Mutate(ctx, p.query, func(ctx context.Context, c *client.DataClient) (pig.Pig, error) {
		return c.CreatePig(ctx, req)
	})
}

func (p *Pigs) CreateBatch(ctx context.Context, req pig.CreateBatchRequest) ([]pig.Pig, error) {
	return authsync.Mutate(ctx, p.query, func(ctx context.Context, c *client.DataClient) ([]pig.Pig, error) {
		return c.CreatePigBatch(ctx, req)
	})
}

func (p *Pigs) Update(ctx context.Context, id string, req pig.UpdatePigRequest) (pig.Pig, error) {
	return authsync.Mutate(ctx, p.query, func(ctx context.Context, c *client.DataClient) (pig.Pig, error) {
		return c.UpdatePig(ctx, id, req)
	})
}

func (p *Pigs) Sell(ctx context.Context, id string, req pig.SellPigRequest) (pig.Pig, error) {
	return authsync.Mutate(ctx, p.query, func(ctx context.Context, c *client.DataClient) (pig.Pig, error) {
		return c.SellPig(ctx, id, req)
	})
}

func (p *Pigs) RegisterDeath(ctx context.Context, id string, req pig.RegisterDeathRequest) (pig.Pig, error) {
	return authsync.Mutate(ctx, p.query, func(ctx context.Context, c *client.DataClient) (pig.Pig, error) {
		return c.RegisterPigDeath(ctx, id, req)
	})
}

func (p *Pigs) Delete(ctx context.Context, id string) error {
	return authsync.Exec(ctx, p.query, func(ctx context.Context, c *client.DataClient) error {
		return c.DeletePig(ctx, id)
	})
}

// PigDetail is one pig with its weight history.
type PigDetail struct {
	view[pig.Detail]
	id string
}

// NewPigDetail returns a hook for pig id. An empty id disables it.
func NewPigDetail(d Deps, id string) *PigDetail {
	return &PigDetail{
		view: newView(d, func(ctx context.Context, c *client.DataClient) (pig.Detail, error) {
			return c.GetPig(ctx, id)
		}, id != ""),
		id: id,
	}
}

func (p *PigDetail) AddWeightRecord(ctx context.Context, req pig.CreateWeightRecordRequest) (pig.WeightRecord, error) {
	return authsync.Mutate(ctx, p.query, func(ctx context.Context, c *client.DataClient) (pig.WeightRecord, error) {
		return c.AddWeightRecord(ctx, p.id, req)
	})
}
