package service

import (
	"context"
	"fmt"

	"famorders/internal/dto"
	"famorders/internal/model"
	"famorders/internal/repository"
	"famorders/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanService manages recurring plans and fans monthly materialization out to
// the worker pool.
type PlanService interface {
	Create(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error)
	List(ctx context.Context, filter dto.PlanFilter) ([]dto.PlanResponse, error)
	// Update rewrites every field and replaces the item set.
	Update(ctx context.Context, id uuid.UUID, req dto.PlanRequest) (*dto.PlanResponse, error)
	// Delete removes the plan and its items. Orders already generated keep
	// their recurring_plan_id.
	Delete(ctx context.Context, id uuid.UUID) error
	// ScheduleMonth enqueues one materialization job per active plan.
	ScheduleMonth(ctx context.Context, month, year int) (*dto.ScheduleResponse, error)
}

// MaterializeQueue is satisfied by *worker.Dispatcher.
type MaterializeQueue interface {
	EnqueueMaterialize(ctx context.Context, payload worker.MaterializeJobPayload) error
}

type planService struct {
	plans     repository.RecurringPlanRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	queue     MaterializeQueue
}

func NewPlanService(
	plans repository.RecurringPlanRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	queue MaterializeQueue,
) PlanService {
	return &planService{plans: plans, products: products, customers: customers, queue: queue}
}

// planFields are the scalar columns of a plan, parsed and checked.
type planFields struct {
	customerID   uuid.UUID
	dayOfWeek    int
	startDate    datatypes.Date
	endDate      *datatypes.Date
	active       bool
	prepaidMonth bool
}

func parsePlanFields(req dto.PlanRequest) (planFields, error) {
	f := planFields{dayOfWeek: req.DayOfWeek, active: true, prepaidMonth: req.PrepaidMonth}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return f, fmt.Errorf("%w: day_of_week %d out of range 0..6", ErrInvalidPlan, req.DayOfWeek)
	}
	id, err := parseUUID(req.CustomerID, ErrCustomerNotFound)
	if err != nil {
		return f, err
	}
	f.customerID = id

	start, err := parseDate(req.StartDate)
	if err != nil {
		return f, err
	}
	f.startDate = fromDate(start)
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return f, err
		}
		if end.Before(start) {
			return f, fmt.Errorf("%w: end_date before start_date", ErrInvalidPlan)
		}
		d := fromDate(end)
		f.endDate = &d
	}
	if req.Active != nil {
		f.active = *req.Active
	}
	return f, nil
}

func (f planFields) apply(p *model.RecurringPlan) {
	p.CustomerID = f.customerID
	p.DayOfWeek = f.dayOfWeek
	p.StartDate = f.startDate
	p.EndDate = f.endDate
	p.Active = f.active
	p.PrepaidMonth = f.prepaidMonth
}

func (s *planService) resolveItems(ctx context.Context, tx *gorm.DB, reqs []dto.PlanItemRequest) ([]model.RecurringPlanItem, error) {
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		id, err := parseUUID(r.ProductID, ErrProductNotFound)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, r.ProductID)
		}
		ids = append(ids, id)
	}
	products, err := s.products.FindByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]model.RecurringPlanItem, 0, len(reqs))
	for i, r := range reqs {
		if _, ok := products[ids[i]]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, r.ProductID)
		}
		items = append(items, model.RecurringPlanItem{ProductID: ids[i], Quantity: r.Quantity})
	}
	return items, nil
}

func (s *planService) checkCustomer(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if _, err := s.customers.FindByID(ctx, tx, id); err != nil {
		return notFound(err, ErrCustomerNotFound)
	}
	return nil
}

func (s *planService) Create(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error) {
	fields, err := parsePlanFields(req)
	if err != nil {
		return nil, err
	}

	var plan *model.RecurringPlan
	err = runTx(ctx, s.plans.DB(), func(tx *gorm.DB) error {
		if err := s.checkCustomer(ctx, tx, fields.customerID); err != nil {
			return err
		}
		items, err := s.resolveItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}
		p := model.RecurringPlan{}
		fields.apply(&p)
		if err := s.plans.Create(ctx, tx, &p); err != nil {
			return err
		}
		if err := s.plans.ReplaceItems(ctx, tx, p.ID, items); err != nil {
			return err
		}
		plan, err = s.plans.FindByID(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("plan_id", plan.ID.String()).Int("day_of_week", plan.DayOfWeek).Msg("recurring plan created")
	resp := planToResponse(plan)
	return &resp, nil
}

func (s *planService) Get(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error) {
	p, err := s.plans.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}
	resp := planToResponse(p)
	return &resp, nil
}

func (s *planService) List(ctx context.Context, filter dto.PlanFilter) ([]dto.PlanResponse, error) {
	plans, err := s.plans.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, planToResponse(&plans[i]))
	}
	return out, nil
}

func (s *planService) Update(ctx context.Context, id uuid.UUID, req dto.PlanRequest) (*dto.PlanResponse, error) {
	fields, err := parsePlanFields(req)
	if err != nil {
		return nil, err
	}

	var plan *model.RecurringPlan
	err = runTx(ctx, s.plans.DB(), func(tx *gorm.DB) error {
		p, err := s.plans.FindByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrPlanNotFound)
		}
		if err := s.checkCustomer(ctx, tx, fields.customerID); err != nil {
			return err
		}
		items, err := s.resolveItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}
		fields.apply(p)
		if err := s.plans.UpdateFields(ctx, tx, p); err != nil {
			return err
		}
		if err := s.plans.ReplaceItems(ctx, tx, p.ID, items); err != nil {
			return err
		}
		plan, err = s.plans.FindByID(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := planToResponse(plan)
	return &resp, nil
}

func (s *planService) Delete(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.plans.DB(), func(tx *gorm.DB) error {
		if _, err := s.plans.FindByID(ctx, tx, id); err != nil {
			return notFound(err, ErrPlanNotFound)
		}
		return s.plans.Delete(ctx, tx, id)
	})
}

func (s *planService) ScheduleMonth(ctx context.Context, month, year int) (*dto.ScheduleResponse, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	ids, err := s.plans.ListActiveIDs(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ScheduleResponse{Month: month, Year: year}
	for _, id := range ids {
		payload := worker.MaterializeJobPayload{PlanID: id.String(), Month: month, Year: year}
		if err := s.queue.EnqueueMaterialize(ctx, payload); err != nil {
			return resp, fmt.Errorf("enqueue plan %s: %w", id, err)
		}
		resp.PlansQueued++
	}
	log.Info().Int("month", month).Int("year", year).Int("plans", resp.PlansQueued).Msg("month scheduled")
	return resp, nil
}
