package service

import (
	"context"
	"errors"
	"testing"

	"famorders/internal/dto"
	"famorders/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planEnv struct {
	*repos
	svc      PlanService
	queue    *stubQueue
	customer *model.Customer
	bread    *model.Product
}

func newPlanEnv(t *testing.T) *planEnv {
	r := newRepos(t)
	q := &stubQueue{}
	return &planEnv{
		repos:    r,
		svc:      NewPlanService(r.plans, r.products, r.customers, q),
		queue:    q,
		customer: r.customer(t, ""),
		bread:    r.product(t, "PAO", "Pão", "2.00", nil),
	}
}

func (e *planEnv) request() dto.PlanRequest {
	return dto.PlanRequest{
		CustomerID: e.customer.ID.String(),
		DayOfWeek:  4,
		StartDate:  "2024-01-01",
		Items:      []dto.PlanItemRequest{{ProductID: e.bread.ID.String(), Quantity: 2}},
	}
}

func TestPlanCreate_DefaultsActive(t *testing.T) {
	env := newPlanEnv(t)

	resp, err := env.svc.Create(context.Background(), env.request())
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Equal(t, 4, resp.DayOfWeek)
	assert.Equal(t, "2024-01-01", resp.StartDate)
	assert.Nil(t, resp.EndDate)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Pão", resp.Items[0].ProductName)
	assert.Equal(t, "4.00", resp.WeeklyTotal.StringFixed(2))
}

func TestPlanCreate_InactiveIsKept(t *testing.T) {
	env := newPlanEnv(t)
	req := env.request()
	req.Active = ptr(false)

	resp, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	got, err := env.svc.Get(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestPlanCreate_Validation(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()

	req := env.request()
	req.DayOfWeek = 7
	_, err := env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	req = env.request()
	req.EndDate = ptr("2023-12-31")
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	req = env.request()
	req.Items = append(req.Items, dto.PlanItemRequest{ProductID: uuid.NewString(), Quantity: 1})
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrProductNotFound)

	req = env.request()
	req.CustomerID = uuid.NewString()
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	assert.Zero(t, env.count(t, &model.RecurringPlan{}, ""))
}

func TestPlanUpdate_ReplacesItems(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()
	cake := env.repos.product(t, "BOLO", "Bolo", "12.00", nil)

	created, err := env.svc.Create(ctx, env.request())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	req := env.request()
	req.DayOfWeek = 0
	req.EndDate = ptr("2024-06-30")
	req.Items = []dto.PlanItemRequest{{ProductID: cake.ID.String(), Quantity: 1}}
	updated, err := env.svc.Update(ctx, id, req)
	require.NoError(t, err)

	assert.Equal(t, 0, updated.DayOfWeek)
	assert.Equal(t, "2024-06-30", *updated.EndDate)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, cake.ID.String(), updated.Items[0].ProductID)
	assert.EqualValues(t, 1, env.count(t, &model.RecurringPlanItem{}, "plan_id = ?", id))

	_, err = env.svc.Update(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanDelete(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, env.request())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, env.svc.Delete(ctx, id))
	assert.Zero(t, env.count(t, &model.RecurringPlanItem{}, ""))
	_, err = env.svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.ErrorIs(t, env.svc.Delete(ctx, id), ErrPlanNotFound)
}

func TestPlanList_ByCustomer(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()
	other := env.repos.customer(t, "b@example.com")

	_, err := env.svc.Create(ctx, env.request())
	require.NoError(t, err)
	req := env.request()
	req.CustomerID = other.ID.String()
	_, err = env.svc.Create(ctx, req)
	require.NoError(t, err)

	all, err := env.svc.List(ctx, dto.PlanFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := env.svc.List(ctx, dto.PlanFilter{CustomerID: other.ID.String()})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, other.ID.String(), mine[0].CustomerID)
}

func TestScheduleMonth_QueuesActivePlansOnly(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()

	active, err := env.svc.Create(ctx, env.request())
	require.NoError(t, err)
	inactive := env.request()
	inactive.Active = ptr(false)
	_, err = env.svc.Create(ctx, inactive)
	require.NoError(t, err)

	resp, err := env.svc.ScheduleMonth(ctx, 2, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.PlansQueued)
	require.Len(t, env.queue.jobs, 1)
	assert.Equal(t, active.ID, env.queue.jobs[0].PlanID)
	assert.Equal(t, 2, env.queue.jobs[0].Month)
	assert.Equal(t, 2024, env.queue.jobs[0].Year)
}

func TestScheduleMonth_Errors(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()

	_, err := env.svc.ScheduleMonth(ctx, 0, 2024)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = env.svc.Create(ctx, env.request())
	require.NoError(t, err)
	env.queue.err = errors.New("redis down")
	_, err = env.svc.ScheduleMonth(ctx, 1, 2024)
	assert.Error(t, err)
}
