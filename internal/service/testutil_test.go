package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"famorders/internal/infra"
	"famorders/internal/model"
	"famorders/internal/repository"
	"famorders/internal/worker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

// newTestDB opens a private in-memory SQLite database migrated like production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := infra.NewDatabase("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type repos struct {
	db         *gorm.DB
	orders     repository.OrderRepository
	history    repository.OrderStatusHistoryRepository
	plans      repository.RecurringPlanRepository
	products   repository.ProductRepository
	customers  repository.CustomerRepository
	production repository.ProductionRepository
}

func newRepos(t *testing.T) *repos {
	db := newTestDB(t)
	return &repos{
		db:         db,
		orders:     repository.NewOrderRepository(db),
		history:    repository.NewOrderStatusHistoryRepository(db),
		plans:      repository.NewRecurringPlanRepository(db),
		products:   repository.NewProductRepository(db),
		customers:  repository.NewCustomerRepository(db),
		production: repository.NewProductionRepository(db),
	}
}

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dateVal(s string) datatypes.Date { return datatypes.Date(day(s)) }

func (r *repos) customer(t *testing.T, email string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: "Cliente " + email}
	if email != "" {
		c.Email = &email
	}
	require.NoError(t, r.customers.Create(context.Background(), c))
	return c
}

func (r *repos) product(t *testing.T, sku, name, price string, batch *int) *model.Product {
	t.Helper()
	p := &model.Product{
		SKU:       sku,
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Active:    true,
		BatchSize: batch,
	}
	require.NoError(t, r.products.Create(context.Background(), p))
	return p
}

type planItem struct {
	product *model.Product
	qty     int
}

func (r *repos) plan(t *testing.T, c *model.Customer, dow int, start string, end *string, active bool, items ...planItem) *model.RecurringPlan {
	t.Helper()
	p := &model.RecurringPlan{
		CustomerID: c.ID,
		DayOfWeek:  dow,
		StartDate:  dateVal(start),
		Active:     active,
	}
	if end != nil {
		e := dateVal(*end)
		p.EndDate = &e
	}
	ctx := context.Background()
	require.NoError(t, r.plans.Create(ctx, nil, p))
	rows := make([]model.RecurringPlanItem, 0, len(items))
	for _, it := range items {
		rows = append(rows, model.RecurringPlanItem{ProductID: it.product.ID, Quantity: it.qty})
	}
	require.NoError(t, r.plans.ReplaceItems(ctx, nil, p.ID, rows))
	return p
}

// order inserts an order straight through the repository, without history.
func (r *repos) order(t *testing.T, c *model.Customer, date string, status model.OrderStatus, items ...model.OrderItem) *model.Order {
	t.Helper()
	d := dateVal(date)
	o := &model.Order{
		CustomerID:   c.ID,
		DeliveryDate: &d,
		Status:       status,
		Total:        model.SumItems(items),
		Items:        items,
	}
	require.NoError(t, r.orders.Create(context.Background(), nil, o))
	return o
}

func (r *repos) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := r.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubNotifier struct {
	sent []worker.EmailJobPayload
}

func (n *stubNotifier) EnqueueEmail(_ context.Context, p worker.EmailJobPayload) error {
	n.sent = append(n.sent, p)
	return nil
}

type stubQueue struct {
	jobs []worker.MaterializeJobPayload
	err  error
}

func (q *stubQueue) EnqueueMaterialize(_ context.Context, p worker.MaterializeJobPayload) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, p)
	return nil
}

var (
	_ Notifier         = (*stubNotifier)(nil)
	_ MaterializeQueue = (*stubQueue)(nil)
)
