package repository

import (
	"context"

	"famorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerRepository covers what the order core needs from customers:
// existence checks and the contact e-mail for payment notices.
type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	if tx == nil {
		tx = r.db
	}
	var c model.Customer
	if err := tx.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
