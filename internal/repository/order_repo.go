package repository

import (
	"context"
	"time"

	"famorders/internal/dto"
	"famorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository is the data access contract for orders and their items.
// Every method takes the unit of work to run in; a nil tx uses the base connection.
type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, error)
	// UpdateFields writes the scalar columns of o (customer, delivery date, notes, total).
	UpdateFields(ctx context.Context, tx *gorm.DB, o *model.Order) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error
	// ReplaceItems deletes every item of the order and inserts items.
	ReplaceItems(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, items []model.OrderItem) error
	// Delete removes history, then items, then the order.
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// ExistsForPlanDate reports whether any order of the plan is dated deliveryDate.
	ExistsForPlanDate(ctx context.Context, tx *gorm.DB, planID uuid.UUID, deliveryDate time.Time) (bool, error)
	// FindMonthlyPayment returns the plan's payment order for billing period
	// ("2006-01"). Payments without a period match by date within [from, to].
	FindMonthlyPayment(ctx context.Context, tx *gorm.DB, planID uuid.UUID, period string, from, to time.Time) (*model.Order, error)

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return r.conn(ctx, tx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.conn(ctx, tx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var orders []model.Order
	err := q.Preload("Items.Product").
		Order("delivery_date ASC").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) UpdateFields(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return r.conn(ctx, tx).Model(&model.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"customer_id":   o.CustomerID,
		"delivery_date": o.DeliveryDate,
		"notes":         o.Notes,
		"total":         o.Total,
		"updated_at":    time.Now().UTC(),
	}).Error
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error {
	return r.conn(ctx, tx).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *orderRepo) ReplaceItems(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, items []model.OrderItem) error {
	db := r.conn(ctx, tx)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return db.Create(&items).Error
}

func (r *orderRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := r.conn(ctx, tx)
	if err := db.Where("order_id = ?", id).Delete(&model.OrderStatusHistory{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Order{}).Error
}

func (r *orderRepo) ExistsForPlanDate(ctx context.Context, tx *gorm.DB, planID uuid.UUID, deliveryDate time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx, tx).Model(&model.Order{}).
		Where("recurring_plan_id = ? AND delivery_date = ?", planID, deliveryDate).
		Count(&count).Error
	return count > 0, err
}

func (r *orderRepo) FindMonthlyPayment(ctx context.Context, tx *gorm.DB, planID uuid.UUID, period string, from, to time.Time) (*model.Order, error) {
	var o model.Order
	err := r.conn(ctx, tx).
		Preload("Items.Product").
		Where("recurring_plan_id = ? AND is_monthly_payment = ?", planID, true).
		Where("(billing_period = ? OR (billing_period IS NULL AND delivery_date >= ? AND delivery_date <= ?))", period, from, to).
		Order("delivery_date ASC").
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}
