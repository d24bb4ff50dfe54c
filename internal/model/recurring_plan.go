package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecurringPlan is a standing weekly subscription: one delivery per DayOfWeek
// (0=Monday … 6=Sunday) between StartDate and EndDate, both inclusive.
// A nil EndDate means the plan is open-ended.
type RecurringPlan struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DayOfWeek    int             `gorm:"not null"`
	StartDate    datatypes.Date  `gorm:"not null"`
	EndDate      *datatypes.Date
	Active       bool `gorm:"not null"`
	PrepaidMonth bool `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Customer *Customer           `gorm:"foreignKey:CustomerID"`
	Items    []RecurringPlanItem `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

func (p *RecurringPlan) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// RecurringPlanItem is one product line repeated on every delivery of the plan.
type RecurringPlanItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlanID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null;default:1"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (i *RecurringPlanItem) BeforeCreate(_ *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
