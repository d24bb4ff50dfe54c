// cmd/seed/main.go creates demo customers, products and a weekly plan.
// Usage: go run ./cmd/seed
// Safe to re-run: rows are matched by SKU / e-mail and the plan is only
// created when the demo customer has none.
package main

import (
	"context"
	"time"

	"famorders/internal/config"
	"famorders/internal/dto"
	"famorders/internal/infra"
	"famorders/internal/model"
	"famorders/internal/repository"
	"famorders/internal/router"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate error")
	}
	ctx := context.Background()

	products := []model.Product{
		{SKU: "PAO-FRM", Name: "Pão de fermentação natural", UnitPrice: decimal.RequireFromString("4.50"), Active: true, BatchSize: ptr(8)},
		{SKU: "BRO-MIL", Name: "Broa de milho", UnitPrice: decimal.RequireFromString("2.00"), Active: true, BatchSize: ptr(12)},
		{SKU: "BOL-LAR", Name: "Bolo de laranja", UnitPrice: decimal.RequireFromString("12.00"), Active: true},
	}
	productRepo := repository.NewProductRepository(db)
	for i := range products {
		price := products[i].UnitPrice
		if err := upsert(ctx, db, &products[i], "sku = ?", products[i].SKU); err != nil {
			log.Fatal().Err(err).Str("sku", products[i].SKU).Msg("product seed failed")
		}
		// Re-running the seed restores the demo prices.
		if !products[i].UnitPrice.Equal(price) {
			if err := productRepo.UpdatePrice(ctx, products[i].ID, price); err != nil {
				log.Fatal().Err(err).Str("sku", products[i].SKU).Msg("price reset failed")
			}
			products[i].UnitPrice = price
		}
	}

	customer := model.Customer{
		Name:           "Maria Demo",
		Email:          ptr("maria@example.com"),
		PickupLocation: ptr("Loja"),
		IsSubscription: true,
	}
	if err := upsert(ctx, db, &customer, "email = ?", *customer.Email); err != nil {
		log.Fatal().Err(err).Msg("customer seed failed")
	}

	var plans int64
	if err := db.WithContext(ctx).Model(&model.RecurringPlan{}).Where("customer_id = ?", customer.ID).Count(&plans).Error; err != nil {
		log.Fatal().Err(err).Msg("plan lookup failed")
	}
	if plans == 0 {
		svcs := router.NewServices(cfg, db, nil)
		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		plan, err := svcs.Plans.Create(ctx, dto.PlanRequest{
			CustomerID: customer.ID.String(),
			DayOfWeek:  2,
			StartDate:  start,
			Items: []dto.PlanItemRequest{
				{ProductID: products[0].ID.String(), Quantity: 2},
				{ProductID: products[1].ID.String(), Quantity: 6},
			},
		})
		if err != nil {
			log.Fatal().Err(err).Msg("plan seed failed")
		}
		log.Info().Str("plan_id", plan.ID).Msg("demo plan created")
	}

	log.Info().Int("products", len(products)).Str("customer", customer.Name).Msg("seed complete")
}

// upsert loads the row matching query into dst or inserts dst.
func upsert(ctx context.Context, db *gorm.DB, dst interface{}, query string, arg interface{}) error {
	return db.WithContext(ctx).Where(query, arg).FirstOrCreate(dst).Error
}
