package repository

import (
	"context"

	"famorders/internal/dto"
	"famorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecurringPlanRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.RecurringPlan) error
	// FindByID preloads items and their products.
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.RecurringPlan, error)
	List(ctx context.Context, filter dto.PlanFilter) ([]model.RecurringPlan, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, p *model.RecurringPlan) error
	ReplaceItems(ctx context.Context, tx *gorm.DB, planID uuid.UUID, items []model.RecurringPlanItem) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type recurringPlanRepo struct{ db *gorm.DB }

func NewRecurringPlanRepository(db *gorm.DB) RecurringPlanRepository {
	return &recurringPlanRepo{db: db}
}

func (r *recurringPlanRepo) DB() *gorm.DB { return r.db }

func (r *recurringPlanRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

func (r *recurringPlanRepo) Create(ctx context.Context, tx *gorm.DB, p *model.RecurringPlan) error {
	return r.conn(ctx, tx).Create(p).Error
}

func (r *recurringPlanRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.RecurringPlan, error) {
	var p model.RecurringPlan
	err := r.conn(ctx, tx).Preload("Items.Product").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *recurringPlanRepo) List(ctx context.Context, filter dto.PlanFilter) ([]model.RecurringPlan, error) {
	q := r.db.WithContext(ctx).Model(&model.RecurringPlan{})
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	var plans []model.RecurringPlan
	err := q.Preload("Items.Product").Order("created_at ASC").Find(&plans).Error
	return plans, err
}

func (r *recurringPlanRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.RecurringPlan{}).
		Where("active = ?", true).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *recurringPlanRepo) UpdateFields(ctx context.Context, tx *gorm.DB, p *model.RecurringPlan) error {
	return r.conn(ctx, tx).Model(&model.RecurringPlan{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"customer_id":   p.CustomerID,
		"day_of_week":   p.DayOfWeek,
		"start_date":    p.StartDate,
		"end_date":      p.EndDate,
		"active":        p.Active,
		"prepaid_month": p.PrepaidMonth,
	}).Error
}

func (r *recurringPlanRepo) ReplaceItems(ctx context.Context, tx *gorm.DB, planID uuid.UUID, items []model.RecurringPlanItem) error {
	db := r.conn(ctx, tx)
	if err := db.Where("plan_id = ?", planID).Delete(&model.RecurringPlanItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].PlanID = planID
	}
	return db.Create(&items).Error
}

func (r *recurringPlanRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := r.conn(ctx, tx)
	if err := db.Where("plan_id = ?", id).Delete(&model.RecurringPlanItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.RecurringPlan{}).Error
}
