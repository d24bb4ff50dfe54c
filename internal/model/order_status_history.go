package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatusHistory records every status written to an order, including the
// initial one. Rows are immutable; they only go away when the order is deleted.
type OrderStatusHistory struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status    OrderStatus `gorm:"type:varchar(20);not null"`
	ChangedAt time.Time   `gorm:"not null;index"`
}

// TableName keeps the singular table name used by the reporting queries.
func (OrderStatusHistory) TableName() string { return "order_status_history" }

func (h *OrderStatusHistory) BeforeCreate(_ *gorm.DB) error {
	assignID(&h.ID)
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now().UTC()
	}
	return nil
}
