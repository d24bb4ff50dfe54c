package service

import "errors"

// Typed outcomes. Handlers map them with errors.Is; no-op conditions
// (inactive plan, no items, already generated) are not errors.
var (
	ErrPlanNotFound     = errors.New("recurring plan not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound marks an item that references a product that does not exist.
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrInvalidPeriod   = errors.New("invalid billing period")
	ErrInvalidPlan     = errors.New("invalid recurring plan")
	ErrInvalidDate     = errors.New("invalid date")
	// ErrOrderConflict means the write would give a plan two orders for the
	// same delivery date or two payments for the same month.
	ErrOrderConflict = errors.New("order conflicts with an existing order")
)
