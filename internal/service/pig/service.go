package pig

import (
	"context"
	"fmt"
	"math"

	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
	"github.com/granjalink/farm-backend-go/internal/repository/postgresql"
	"golang.org/x/sync/errgroup"
)

type PigServiceImpl struct {
	tx      postgresql.Transactor
	pigs    pig.PigRepository
	weights pig.WeightRecordRepository
}

func NewPigService(tx postgresql.Transactor, pigRepository pig.PigRepository, weightRepository pig.WeightRecordRepository) pig.PigService {
	return &PigServiceImpl{
		tx:      tx,
		pigs:    pigRepository,
		weights: weightRepository,
	}
}

// List implements pig.PigService. Newest purchases first.
func (s *PigServiceImpl) List(ctx context.Context, filter pig.ListFilter) ([]pig.Pig, error) {
	pigs, err := s.pigs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pigs: %w", err)
	}
	return pigs, nil
}

// Get implements pig.PigService. The pig and its weight history are read concurrently.
func (s *PigServiceImpl) Get(ctx context.Context, id string) (pig.Detail, error) {
	var detail pig.Detail

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.pigs.GetByID(gctx, id)
		if err != nil {
			return err
		}
		detail.Pig = p
		return nil
	})
	g.Go(func() error {
		records, err := s.weights.ListByPig(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to list weight records: %w", err)
		}
		detail.WeightRecords = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return pig.Detail{}, err
	}

	if detail.WeightRecords == nil {
		detail.WeightRecords = []pig.WeightRecord{}
	}
	return detail, nil
}

// Create implements pig.PigService. Current weight starts at the purchase weight.
func (s *PigServiceImpl) Create(ctx context.Context, userID string, req pig.CreatePigRequest) (pig.Pig, error) {
	purchaseDate, _ := validator.IsValidDate(req.PurchaseDate)

	created, err := s.pigs.Create(ctx, pig.Pig{
		Identifier:     req.Identifier,
		PurchaseDate:   purchaseDate,
		PurchasePrice:  req.PurchasePrice,
		PurchaseWeight: req.PurchaseWeight,
		CurrentWeight:  req.PurchaseWeight,
		Breed:          req.Breed,
		Sex:            req.Sex,
		AgeMonths:      req.AgeMonths,
		PenLocation:    req.PenLocation,
		Status:         pig.StatusActive,
		Notes:          req.Notes,
		CreatedBy:      userID,
	})
	if err != nil {
		return pig.Pig{}, err
	}
	return created, nil
}

// CreateBatch implements pig.PigService. The total price is split evenly across the batch.
func (s *PigServiceImpl) CreateBatch(ctx context.Context, userID string, req pig.CreateBatchRequest) ([]pig.Pig, error) {
	if req.Quantity < 1 || req.Quantity > pig.MaxBatchSize {
		return nil, pig.ErrInvalidBatchSize
	}

	purchaseDate, _ := validator.IsValidDate(req.PurchaseDate)
	pricePerPig := splitPrice(req.TotalPrice, req.Quantity)

	batch := make([]pig.Pig, req.Quantity)
	for i := range batch {
		batch[i] = pig.Pig{
			PurchaseDate:   purchaseDate,
			PurchasePrice:  pricePerPig,
			PurchaseWeight: req.AverageWeight,
			CurrentWeight:  req.AverageWeight,
			Breed:          req.Breed,
			Sex:            req.Sex,
			AgeMonths:      req.AgeMonths,
			PenLocation:    req.PenLocation,
			Status:         pig.StatusActive,
			Notes:          req.Notes,
			CreatedBy:      userID,
		}
	}

	created, err := s.pigs.CreateMany(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to create pig batch: %w", err)
	}
	return created, nil
}

// splitPrice divides total across quantity, rounded to cents.
func splitPrice(total float64, quantity int) float64 {
	return math.Round(total/float64(quantity)*100) / 100
}

func (s *PigServiceImpl) Update(ctx context.Context, id string, req pig.UpdatePigRequest) (pig.Pig, error) {
	current, err := s.pigs.GetByID(ctx, id)
	if err != nil {
		return pig.Pig{}, err
	}

	if req.Identifier != nil {
		current.Identifier = req.Identifier
	}
	if d := validator.ParseOptionalDate(req.PurchaseDate); d != nil {
		current.PurchaseDate = *d
	}
	if req.PurchasePrice != nil {
		current.PurchasePrice = *req.PurchasePrice
	}
	if req.PurchaseWeight != nil {
		current.PurchaseWeight = req.PurchaseWeight
	}
	if req.CurrentWeight != nil {
		current.CurrentWeight = req.CurrentWeight
	}
	if req.Breed != nil {
		current.Breed = req.Breed
	}
	if req.Sex != nil {
		current.Sex = req.Sex
	}
	if req.AgeMonths != nil {
		current.AgeMonths = req.AgeMonths
	}
	if req.PenLocation != nil {
		current.PenLocation = req.PenLocation
	}
	if req.Notes != nil {
		current.Notes = req.Notes
	}

	return s.pigs.Update(ctx, current)
}

// Sell implements pig.PigService.
func (s *PigServiceImpl) Sell(ctx context.Context, id string, req pig.SellPigRequest) (pig.Pig, error) {
	current, err := s.pigs.GetByID(ctx, id)
	if err != nil {
		return pig.Pig{}, err
	}

	salePrice := req.SalePrice
	current.Status = pig.StatusSold
	current.SaleDate = validator.ParseOptionalDate(&req.SaleDate)
	current.SalePrice = &salePrice
	current.SaleWeight = req.SaleWeight
	current.ClientID = req.ClientID
	if req.Notes != nil {
		current.Notes = req.Notes
	}

	return s.pigs.Update(ctx, current)
}

// RegisterDeath implements pig.PigService.
func (s *PigServiceImpl) RegisterDeath(ctx context.Context, id string, req pig.RegisterDeathRequest) (pig.Pig, error) {
	current, err := s.pigs.GetByID(ctx, id)
	if err != nil {
		return pig.Pig{}, err
	}

	reason := req.DeathReason
	current.Status = pig.StatusDeceased
	current.DeathDate = validator.ParseOptionalDate(&req.DeathDate)
	current.DeathReason = &reason
	if req.Notes != nil {
		current.Notes = req.Notes
	}

	return s.pigs.Update(ctx, current)
}

func (s *PigServiceImpl) Delete(ctx context.Context, id string) error {
	return s.pigs.Delete(ctx, id)
}

// AddWeightRecord implements pig.PigService. The pig's current weight follows the new record.
func (s *PigServiceImpl) AddWeightRecord(ctx context.Context, userID string, pigID string, req pig.CreateWeightRecordRequest) (pig.WeightRecord, error) {
	date, _ := validator.IsValidDate(req.Date)

	var record pig.WeightRecord
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.pigs.GetByID(txCtx, pigID); err != nil {
			return err
		}

		var err error
		record, err = s.weights.Create(txCtx, pig.WeightRecord{
			PigID:     pigID,
			Weight:    req.Weight,
			Date:      date,
			Notes:     req.Notes,
			CreatedBy: userID,
		})
		if err != nil {
			return fmt.Errorf("failed to create weight record: %w", err)
		}

		return s.pigs.UpdateCurrentWeight(txCtx, pigID, req.Weight)
	})
	if err != nil {
		return pig.WeightRecord{}, err
	}
	return record, nil
}
