package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is catalogue reference data. UnitPrice is the live price: recurring
// plans read it at materialization time, order items snapshot it.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SKU         string    `gorm:"column:sku;uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	UnitPrice   decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	CostPrice   *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Active      bool             `gorm:"not null"`
	// BatchSize is the minimum production run; nil or <=1 means units are made one by one.
	BatchSize *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// NormalizeBatchSize maps a nullable batch size to the value used for rounding.
func NormalizeBatchSize(batch *int) int {
	if batch == nil || *batch <= 1 {
		return 1
	}
	return *batch
}

// Customer owns orders and recurring plans. Contact fields are mutable, the ID is not.
type Customer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"not null"`
	Email          *string
	Phone          *string
	Address        *string
	PickupLocation *string
	IsSubscription bool `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// assignID fills a zero UUID so rows get identical keys on postgres and sqlite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
