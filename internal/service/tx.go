package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"famorders/internal/dto"
	"famorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// runTxRetryDuplicate reruns fn once in a fresh transaction when the first run
// lost a race on a unique index. The rerun observes the winner's rows.
func runTxRetryDuplicate(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := runTx(ctx, db, fn)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = runTx(ctx, db, fn)
	}
	return conflict(err)
}

// conflict translates a unique-index violation into ErrOrderConflict.
func conflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrOrderConflict, err)
	}
	return err
}

// notFound translates gorm.ErrRecordNotFound into the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func orderToResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:               o.ID.String(),
		CustomerID:       o.CustomerID.String(),
		DeliveryDate:     formatDate(o.DeliveryDate),
		Status:           o.Status.String(),
		Total:            o.Total,
		Notes:            o.Notes,
		IsAutoGenerated:  o.IsAutoGenerated,
		IsMonthlyPayment: o.IsMonthlyPayment,
		Items:            make([]dto.OrderItemResponse, 0, len(o.Items)),
		CreatedAt:        o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.RecurringPlanID != nil {
		id := o.RecurringPlanID.String()
		resp.RecurringPlanID = &id
	}
	for _, it := range o.Items {
		item := dto.OrderItemResponse{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.LineTotal(),
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func planToResponse(p *model.RecurringPlan) dto.PlanResponse {
	resp := dto.PlanResponse{
		ID:           p.ID.String(),
		CustomerID:   p.CustomerID.String(),
		DayOfWeek:    p.DayOfWeek,
		StartDate:    toDate(p.StartDate).Format(dateLayout),
		EndDate:      formatDate(p.EndDate),
		Active:       p.Active,
		PrepaidMonth: p.PrepaidMonth,
		Items:        make([]dto.PlanItemResponse, 0, len(p.Items)),
		WeeklyTotal:  weeklyTotal(p),
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, it := range p.Items {
		item := dto.PlanItemResponse{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
			item.UnitPrice = it.Product.UnitPrice
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func historyToEntries(rows []model.OrderStatusHistory) []dto.OrderHistoryEntry {
	out := make([]dto.OrderHistoryEntry, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.OrderHistoryEntry{
			ID:        h.ID.String(),
			Status:    h.Status.String(),
			ChangedAt: h.ChangedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func parseUUID(s string, sentinel error) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, sentinel
	}
	return id, nil
}
