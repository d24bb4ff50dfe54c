package service

import (
	"context"

	"famorders/internal/dto"
	"famorders/internal/infra"
	"famorders/internal/model"
	"famorders/internal/repository"
)

// ProductionService answers "how much must be produced" for a delivery date.
type ProductionService interface {
	// Needs lists outstanding demand per product, sorted by product name.
	Needs(ctx context.Context, date string) ([]dto.ProductionNeed, error)
	// Sheet renders Needs as a printable PDF.
	Sheet(ctx context.Context, date string) ([]byte, error)
}

type productionService struct {
	repo     repository.ProductionRepository
	business string
}

func NewProductionService(repo repository.ProductionRepository, businessName string) ProductionService {
	return &productionService{repo: repo, business: businessName}
}

// RoundUpToBatch returns the smallest multiple of batch that is >= qty.
// A batch of one or less leaves qty unchanged.
func RoundUpToBatch(qty, batch int) int {
	if batch <= 1 || qty <= 0 {
		return qty
	}
	return ((qty + batch - 1) / batch) * batch
}

func (s *productionService) Needs(ctx context.Context, date string) ([]dto.ProductionNeed, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.SumOpenItemsByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ProductionNeed, 0, len(rows))
	for _, r := range rows {
		batch := model.NormalizeBatchSize(r.BatchSize)
		qty := int(r.Quantity)
		out = append(out, dto.ProductionNeed{
			ProductID:       r.ProductID.String(),
			SKU:             r.SKU,
			Name:            r.Name,
			Quantity:        qty,
			RoundedQuantity: RoundUpToBatch(qty, batch),
			BatchSize:       batch,
		})
	}
	return out, nil
}

func (s *productionService) Sheet(ctx context.Context, date string) ([]byte, error) {
	needs, err := s.Needs(ctx, date)
	if err != nil {
		return nil, err
	}
	return infra.RenderProductionSheet(s.business, date, needs)
}
