package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"famorders/internal/dto"
	"famorders/internal/model"
	"famorders/internal/repository"
	"famorders/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaterializerService turns recurring plans into concrete orders for a month.
// Both operations are idempotent: re-running them never duplicates an order.
type MaterializerService interface {
	// GenerateDeliveries creates one paid delivery order per plan occurrence in
	// the month except the first, which belongs to the monthly payment. It
	// returns only the orders created by this call; a missing or inactive plan
	// yields none.
	GenerateDeliveries(ctx context.Context, planID uuid.UUID, month, year int) ([]dto.OrderResponse, error)
	// CreateMonthlyPayment returns the month's payment order, creating it when
	// absent. A nil order with a nil error means the plan is missing, inactive
	// or has nothing to bill.
	CreateMonthlyPayment(ctx context.Context, planID uuid.UUID, month, year int) (*dto.OrderResponse, bool, error)
	// MaterializeMonth runs CreateMonthlyPayment then GenerateDeliveries.
	MaterializeMonth(ctx context.Context, planID uuid.UUID, month, year int) (*dto.MaterializeResult, error)
}

// Notifier queues customer e-mails. *worker.Dispatcher satisfies it.
type Notifier interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

type materializerService struct {
	plans     repository.RecurringPlanRepository
	orders    repository.OrderRepository
	history   repository.OrderStatusHistoryRepository
	customers repository.CustomerRepository
	notifier  Notifier // nil disables payment notices
	business  string
}

func NewMaterializerService(
	plans repository.RecurringPlanRepository,
	orders repository.OrderRepository,
	history repository.OrderStatusHistoryRepository,
	customers repository.CustomerRepository,
	notifier Notifier,
	businessName string,
) MaterializerService {
	return &materializerService{
		plans:     plans,
		orders:    orders,
		history:   history,
		customers: customers,
		notifier:  notifier,
		business:  businessName,
	}
}

// loadPlan returns a nil plan, and no error, when the plan does not exist: a
// deleted plan has nothing left to materialize.
func (s *materializerService) loadPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID) (*model.RecurringPlan, error) {
	plan, err := s.plans.FindByID(ctx, tx, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return plan, err
}

// pricedItems builds order lines from the plan at live catalogue prices,
// multiplying every quantity by factor.
func pricedItems(plan *model.RecurringPlan, factor int) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(plan.Items))
	for _, pi := range plan.Items {
		if pi.Product == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, pi.ProductID)
		}
		items = append(items, model.OrderItem{
			ProductID: pi.ProductID,
			Quantity:  pi.Quantity * factor,
			UnitPrice: pi.Product.UnitPrice,
		})
	}
	return items, nil
}

// attachProducts restores the product pointers on freshly created items so the
// response carries product names. Products are set after Create so GORM does
// not try to upsert them.
func attachProducts(o *model.Order, plan *model.RecurringPlan) {
	byID := make(map[uuid.UUID]*model.Product, len(plan.Items))
	for _, pi := range plan.Items {
		byID[pi.ProductID] = pi.Product
	}
	for i := range o.Items {
		o.Items[i].Product = byID[o.Items[i].ProductID]
	}
}

// createSeeded inserts the order with its items and the first history row.
func (s *materializerService) createSeeded(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	if err := s.orders.Create(ctx, tx, o); err != nil {
		return err
	}
	return s.history.Append(ctx, tx, &model.OrderStatusHistory{
		OrderID:   o.ID,
		Status:    o.Status,
		ChangedAt: time.Now().UTC(),
	})
}

func (s *materializerService) GenerateDeliveries(ctx context.Context, planID uuid.UUID, month, year int) ([]dto.OrderResponse, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	var created []model.Order
	err := runTxRetryDuplicate(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		created = created[:0]

		plan, err := s.loadPlan(ctx, tx, planID)
		if err != nil {
			return err
		}
		if plan == nil || !plan.Active || len(plan.Items) == 0 {
			return nil
		}
		dates := planOccurrences(plan, year, month)
		if len(dates) < 2 {
			return nil
		}

		note := deliveryNote
		for _, d := range dates[1:] {
			exists, err := s.orders.ExistsForPlanDate(ctx, tx, plan.ID, d)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			items, err := pricedItems(plan, 1)
			if err != nil {
				return err
			}
			date := fromDate(d)
			order := model.Order{
				CustomerID:      plan.CustomerID,
				DeliveryDate:    &date,
				Status:          model.StatusPaid,
				Total:           model.SumItems(items),
				Notes:           &note,
				RecurringPlanID: &plan.ID,
				IsAutoGenerated: true,
				Items:           items,
			}
			if err := s.createSeeded(ctx, tx, &order); err != nil {
				return err
			}
			attachProducts(&order, plan)
			created = append(created, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("plan_id", planID.String()).
		Int("month", month).
		Int("year", year).
		Int("created", len(created)).
		Msg("deliveries generated")

	out := make([]dto.OrderResponse, 0, len(created))
	for i := range created {
		out = append(out, orderToResponse(&created[i]))
	}
	return out, nil
}

func (s *materializerService) CreateMonthlyPayment(ctx context.Context, planID uuid.UUID, month, year int) (*dto.OrderResponse, bool, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, false, err
	}

	var (
		order   *model.Order
		created bool
		plan    *model.RecurringPlan
	)
	err := runTxRetryDuplicate(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, created = nil, false

		var err error
		plan, err = s.loadPlan(ctx, tx, planID)
		if err != nil {
			return err
		}
		if plan == nil || !plan.Active {
			return nil
		}
		dates := planOccurrences(plan, year, month)
		if len(dates) == 0 {
			return nil
		}

		first, last := monthBounds(year, month)
		period := billingPeriod(year, month)
		existing, err := s.orders.FindMonthlyPayment(ctx, tx, plan.ID, period, first, last)
		if err == nil {
			order = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if len(plan.Items) == 0 {
			return nil
		}

		weeks := len(dates)
		items, err := pricedItems(plan, weeks)
		if err != nil {
			return err
		}
		date := fromDate(dates[0])
		note := monthlyPaymentNote(year, month, weeks)
		order = &model.Order{
			CustomerID:       plan.CustomerID,
			DeliveryDate:     &date,
			Status:           model.StatusOrdered,
			Total:            model.SumItems(items),
			Notes:            &note,
			RecurringPlanID:  &plan.ID,
			IsMonthlyPayment: true,
			BillingPeriod:    &period,
			Items:            items,
		}
		if err := s.createSeeded(ctx, tx, order); err != nil {
			return err
		}
		attachProducts(order, plan)
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if order == nil {
		return nil, false, nil
	}

	if created {
		log.Info().
			Str("plan_id", planID.String()).
			Str("order_id", order.ID.String()).
			Str("total", order.Total.StringFixed(2)).
			Msg("monthly payment created")
		s.notifyPayment(ctx, plan, order, month, year)
	}

	resp := orderToResponse(order)
	return &resp, created, nil
}

// notifyPayment queues the payment notice after commit. Failures are logged
// and never undo the order.
func (s *materializerService) notifyPayment(ctx context.Context, plan *model.RecurringPlan, order *model.Order, month, year int) {
	if s.notifier == nil {
		return
	}
	customer, err := s.customers.FindByID(ctx, nil, plan.CustomerID)
	if err != nil {
		log.Warn().Err(err).Str("customer_id", plan.CustomerID.String()).Msg("payment notice: customer lookup failed")
		return
	}
	if customer.Email == nil || *customer.Email == "" {
		return
	}
	payload := worker.EmailJobPayload{
		ToEmail: *customer.Email,
		Subject: fmt.Sprintf("%s - Pagamento %s %d", s.business, monthNamesPT[month-1], year),
		Body:    paymentNoticeBody(customer.Name, order),
	}
	if err := s.notifier.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("payment notice: enqueue failed")
	}
}

func paymentNoticeBody(name string, o *model.Order) string {
	body := fmt.Sprintf("Olá %s,\n\n", name)
	if o.Notes != nil {
		body += *o.Notes + "\n\n"
	}
	for _, it := range o.Items {
		label := it.ProductID.String()
		if it.Product != nil {
			label = it.Product.Name
		}
		body += fmt.Sprintf("%3d x %-30s %s\n", it.Quantity, label, it.LineTotal().StringFixed(2))
	}
	body += fmt.Sprintf("\nTotal: %s\n", o.Total.StringFixed(2))
	return body
}

func (s *materializerService) MaterializeMonth(ctx context.Context, planID uuid.UUID, month, year int) (*dto.MaterializeResult, error) {
	res := &dto.MaterializeResult{PlanID: planID.String(), Month: month, Year: year}

	payment, created, err := s.CreateMonthlyPayment(ctx, planID, month, year)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		res.PaymentOrderID = payment.ID
		res.PaymentCreated = created
	}

	deliveries, err := s.GenerateDeliveries(ctx, planID, month, year)
	if err != nil {
		return nil, err
	}
	res.DeliveriesCreated = len(deliveries)
	return res, nil
}

// weeklyTotal is Σ quantity × live price for one delivery of the plan.
func weeklyTotal(plan *model.RecurringPlan) decimal.Decimal {
	total := decimal.Zero
	for _, it := range plan.Items {
		if it.Product != nil {
			total = total.Add(it.Product.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return total
}
