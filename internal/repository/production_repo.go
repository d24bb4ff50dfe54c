package repository

import (
	"context"
	"time"

	"famorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductionRow is the raw per-product sum before batch rounding.
type ProductionRow struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	Quantity  int64
	BatchSize *int
}

type ProductionRepository interface {
	// SumOpenItemsByDate sums item quantities of every non-delivered order dated
	// deliveryDate, grouped by product and ordered by product name.
	SumOpenItemsByDate(ctx context.Context, deliveryDate time.Time) ([]ProductionRow, error)
}

type productionRepo struct{ db *gorm.DB }

func NewProductionRepository(db *gorm.DB) ProductionRepository {
	return &productionRepo{db: db}
}

func (r *productionRepo) SumOpenItemsByDate(ctx context.Context, deliveryDate time.Time) ([]ProductionRow, error) {
	var rows []ProductionRow
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("p.id AS product_id, p.sku AS sku, p.name AS name, SUM(oi.quantity) AS quantity, p.batch_size AS batch_size").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("o.delivery_date = ? AND o.status <> ?", deliveryDate, model.StatusDelivered).
		Group("p.id, p.sku, p.name, p.batch_size").
		Order("p.name ASC").
		Scan(&rows).Error
	return rows, err
}
