package service

import (
	"context"
	"fmt"
	"time"

	"famorders/internal/dto"
	"famorders/internal/model"
	"famorders/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderService covers manual order mutation and the status lifecycle.
type OrderService interface {
	Create(ctx context.Context, req dto.OrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderResponse, error)
	// Update rewrites customer, date and notes and replaces the whole item set.
	// Status is untouched; use SetStatus. Moving a plan's order onto a date the
	// plan already covers fails with ErrOrderConflict.
	Update(ctx context.Context, id uuid.UUID, req dto.OrderRequest) (*dto.OrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// SetStatus accepts any known status from any other and appends a history row.
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error)
	// History returns the trail oldest-first, backfilling one entry when empty.
	History(ctx context.Context, id uuid.UUID) ([]dto.OrderHistoryEntry, error)
}

type orderService struct {
	orders    repository.OrderRepository
	history   repository.OrderStatusHistoryRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
}

func NewOrderService(
	orders repository.OrderRepository,
	history repository.OrderStatusHistoryRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
) OrderService {
	return &orderService{orders: orders, history: history, products: products, customers: customers}
}

// orderFields are the scalar columns a manual create or update may set.
type orderFields struct {
	customerID   uuid.UUID
	deliveryDate *datatypes.Date
	notes        *string
}

func parseOrderFields(req dto.OrderRequest) (orderFields, error) {
	var f orderFields
	id, err := parseUUID(req.CustomerID, ErrCustomerNotFound)
	if err != nil {
		return f, err
	}
	f.customerID = id
	f.notes = req.Notes
	if req.DeliveryDate != nil && *req.DeliveryDate != "" {
		t, err := parseDate(*req.DeliveryDate)
		if err != nil {
			return f, err
		}
		d := fromDate(t)
		f.deliveryDate = &d
	}
	return f, nil
}

func (f orderFields) apply(o *model.Order) {
	o.CustomerID = f.customerID
	o.DeliveryDate = f.deliveryDate
	o.Notes = f.notes
}

// resolveItems checks every referenced product inside tx and builds the lines
// with the caller's unit prices.
func (s *orderService) resolveItems(ctx context.Context, tx *gorm.DB, reqs []dto.OrderItemRequest) ([]model.OrderItem, map[uuid.UUID]*model.Product, error) {
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		id, err := parseUUID(r.ProductID, ErrProductNotFound)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", err, r.ProductID)
		}
		ids = append(ids, id)
	}
	products, err := s.products.FindByIDs(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]model.OrderItem, 0, len(reqs))
	for i, r := range reqs {
		if _, ok := products[ids[i]]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrProductNotFound, r.ProductID)
		}
		items = append(items, model.OrderItem{
			ProductID: ids[i],
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
		})
	}
	return items, products, nil
}

func (s *orderService) checkCustomer(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if _, err := s.customers.FindByID(ctx, tx, id); err != nil {
		return notFound(err, ErrCustomerNotFound)
	}
	return nil
}

func (s *orderService) Create(ctx context.Context, req dto.OrderRequest) (*dto.OrderResponse, error) {
	fields, err := parseOrderFields(req)
	if err != nil {
		return nil, err
	}

	var order model.Order
	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.checkCustomer(ctx, tx, fields.customerID); err != nil {
			return err
		}
		items, products, err := s.resolveItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		order = model.Order{Status: model.StatusOrdered, Items: items}
		fields.apply(&order)
		order.Total = model.SumItems(items)
		if err := s.orders.Create(ctx, tx, &order); err != nil {
			return err
		}
		if err := s.history.Append(ctx, tx, &model.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    order.Status,
			ChangedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].Product = products[order.Items[i].ProductID]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order_id", order.ID.String()).Str("total", order.Total.StringFixed(2)).Msg("order created")
	resp := orderToResponse(&order)
	return &resp, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	resp := orderToResponse(o)
	return &resp, nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderResponse, error) {
	if filter.Status != "" && !model.OrderStatus(filter.Status).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, orderToResponse(&orders[i]))
	}
	return out, nil
}

func (s *orderService) Update(ctx context.Context, id uuid.UUID, req dto.OrderRequest) (*dto.OrderResponse, error) {
	fields, err := parseOrderFields(req)
	if err != nil {
		return nil, err
	}

	var updated *model.Order
	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		if err := s.checkCustomer(ctx, tx, fields.customerID); err != nil {
			return err
		}
		items, _, err := s.resolveItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		fields.apply(order)
		order.Total = model.SumItems(items)
		if err := s.orders.UpdateFields(ctx, tx, order); err != nil {
			return err
		}
		if err := s.orders.ReplaceItems(ctx, tx, order.ID, items); err != nil {
			return err
		}
		updated, err = s.orders.FindByID(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, conflict(err)
	}

	resp := orderToResponse(updated)
	return &resp, nil
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if _, err := s.orders.FindByID(ctx, tx, id); err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		return s.orders.Delete(ctx, tx, id)
	})
}

func (s *orderService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error) {
	st := model.OrderStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var order *model.Order
	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if _, err := s.orders.FindByID(ctx, tx, id); err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		if err := s.orders.UpdateStatus(ctx, tx, id, st); err != nil {
			return err
		}
		if err := s.history.Append(ctx, tx, &model.OrderStatusHistory{
			OrderID:   id,
			Status:    st,
			ChangedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		var err error
		order, err = s.orders.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order_id", id.String()).Str("status", status).Msg("order status changed")
	resp := orderToResponse(order)
	return &resp, nil
}

func (s *orderService) History(ctx context.Context, id uuid.UUID) ([]dto.OrderHistoryEntry, error) {
	var rows []model.OrderStatusHistory
	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		rows, err = s.history.ListByOrder(ctx, tx, id)
		if err != nil || len(rows) > 0 {
			return err
		}

		// Legacy orders carry no trail: persist one entry for the current status.
		entry := model.OrderStatusHistory{
			OrderID:   id,
			Status:    order.Status,
			ChangedAt: time.Now().UTC(),
		}
		if err := s.history.Append(ctx, tx, &entry); err != nil {
			return err
		}
		log.Debug().Str("order_id", id.String()).Msg("history backfilled")
		rows = []model.OrderStatusHistory{entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return historyToEntries(rows), nil
}
