package dto

// ProductionFilter is bound from GET /v1/production?date=YYYY-MM-DD.
type ProductionFilter struct {
	Date string `form:"date" validate:"required,datetime=2006-01-02"`
}

// ProductionNeed is one product's outstanding demand for a delivery date.
// RoundedQuantity is Quantity rounded up to a multiple of BatchSize.
type ProductionNeed struct {
	ProductID       string `json:"product_id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	RoundedQuantity int    `json:"rounded_quantity"`
	BatchSize       int    `json:"batch_size"`
}
