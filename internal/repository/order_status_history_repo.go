package repository

import (
	"context"

	"famorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatusHistoryRepository is append-only: there is no update and no
// per-row delete. Rows disappear only through OrderRepository.Delete.
type OrderStatusHistoryRepository interface {
	Append(ctx context.Context, tx *gorm.DB, h *model.OrderStatusHistory) error
	ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
}

type orderStatusHistoryRepo struct{ db *gorm.DB }

func NewOrderStatusHistoryRepository(db *gorm.DB) OrderStatusHistoryRepository {
	return &orderStatusHistoryRepo{db: db}
}

func (r *orderStatusHistoryRepo) Append(ctx context.Context, tx *gorm.DB, h *model.OrderStatusHistory) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(h).Error
}

// ListByOrder returns the trail oldest-first.
func (r *orderStatusHistoryRepo) ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	if tx == nil {
		tx = r.db
	}
	var rows []model.OrderStatusHistory
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at ASC").
		Find(&rows).Error
	return rows, err
}
