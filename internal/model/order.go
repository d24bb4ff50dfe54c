package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus is the fulfilment stage of an order.
// The intended progression is ordered → paid → preparing → delivered, but any
// known status may follow any other.
type OrderStatus string

const (
	StatusOrdered   OrderStatus = "ordered"
	StatusPaid      OrderStatus = "paid"
	StatusPreparing OrderStatus = "preparing"
	StatusDelivered OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOrdered, StatusPaid, StatusPreparing, StatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) String() string { return string(s) }

// Order is a concrete, billable order. Generated orders keep RecurringPlanID and
// DeliveryDate as their idempotency key; monthly payment orders additionally
// carry BillingPeriod ("2006-01").
type Order struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeliveryDate *datatypes.Date `gorm:"index;uniqueIndex:idx_orders_plan_delivery,priority:2"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;default:'ordered';index"`
	// Total = Σ item.Quantity × item.UnitPrice, recomputed on every write.
	Total            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes            *string
	RecurringPlanID  *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_orders_plan_delivery,priority:1;uniqueIndex:idx_orders_plan_billing,priority:1"`
	IsAutoGenerated  bool       `gorm:"not null;default:false"`
	IsMonthlyPayment bool       `gorm:"not null;default:false;uniqueIndex:idx_orders_plan_delivery,priority:3"`
	BillingPeriod    *string    `gorm:"type:varchar(7);uniqueIndex:idx_orders_plan_billing,priority:2"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Customer *Customer            `gorm:"foreignKey:CustomerID"`
	Items    []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History  []OrderStatusHistory `gorm:"foreignKey:OrderID"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem is one line of an order. UnitPrice is frozen at creation and never
// re-derived from the live product.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// LineTotal is Quantity × UnitPrice.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems returns Σ LineTotal over items.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
