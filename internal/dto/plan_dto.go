package dto

import "github.com/shopspring/decimal"

type PlanFilter struct {
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
}

type PlanItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// PlanRequest is the body of POST/PUT /v1/recurring/plans.
// DayOfWeek: 0=Monday … 6=Sunday. Active defaults to true when omitted.
type PlanRequest struct {
	CustomerID   string            `json:"customer_id"   validate:"required,uuid"`
	DayOfWeek    int               `json:"day_of_week"   validate:"min=0,max=6"`
	StartDate    string            `json:"start_date"    validate:"required,datetime=2006-01-02"`
	EndDate      *string           `json:"end_date"      validate:"omitempty,datetime=2006-01-02"`
	Active       *bool             `json:"active"`
	PrepaidMonth bool              `json:"prepaid_month"`
	Items        []PlanItemRequest `json:"items"         validate:"dive"`
}

// PeriodRequest selects a billing month.
type PeriodRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year"  validate:"required,min=2000,max=2100"`
}

type PlanItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type PlanResponse struct {
	ID           string             `json:"id"`
	CustomerID   string             `json:"customer_id"`
	DayOfWeek    int                `json:"day_of_week"`
	StartDate    string             `json:"start_date"`
	EndDate      *string            `json:"end_date"`
	Active       bool               `json:"active"`
	PrepaidMonth bool               `json:"prepaid_month"`
	Items        []PlanItemResponse `json:"items"`
	WeeklyTotal  decimal.Decimal    `json:"weekly_total"` // at live prices
	CreatedAt    string             `json:"created_at"`
}

// ScheduleResponse is returned (202) by POST /v1/recurring/schedule.
type ScheduleResponse struct {
	Month       int `json:"month"`
	Year        int `json:"year"`
	PlansQueued int `json:"plans_queued"`
}

// MaterializeResult summarises one plan's run for a month (worker + logs).
type MaterializeResult struct {
	PlanID            string `json:"plan_id"`
	Month             int    `json:"month"`
	Year              int    `json:"year"`
	PaymentOrderID    string `json:"payment_order_id,omitempty"`
	PaymentCreated    bool   `json:"payment_created"`
	DeliveriesCreated int    `json:"deliveries_created"`
}
