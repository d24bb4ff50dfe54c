package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	Status     string `form:"status"      validate:"omitempty,oneof=ordered paid preparing delivered"`
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// OrderItemRequest carries the caller's unit price; manual orders are priced
// from the request, not from the live catalogue.
type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
}

// OrderRequest is the body of POST /v1/orders and PUT /v1/orders/:id.
// An update replaces the whole item set.
type OrderRequest struct {
	CustomerID   string             `json:"customer_id"   validate:"required,uuid"`
	DeliveryDate *string            `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	Notes        *string            `json:"notes"`
	Items        []OrderItemRequest `json:"items"         validate:"required,min=1,dive"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ordered paid preparing delivered"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID               string              `json:"id"`
	CustomerID       string              `json:"customer_id"`
	DeliveryDate     *string             `json:"delivery_date"`
	Status           string              `json:"status"`
	Total            decimal.Decimal     `json:"total"`
	Notes            *string             `json:"notes"`
	RecurringPlanID  *string             `json:"recurring_plan_id"`
	IsAutoGenerated  bool                `json:"is_auto_generated"`
	IsMonthlyPayment bool                `json:"is_monthly_payment"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        string              `json:"created_at"`
}

// OrderHistoryEntry is one row of GET /v1/orders/:id/history, oldest first.
type OrderHistoryEntry struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ChangedAt string `json:"changed_at"`
}
