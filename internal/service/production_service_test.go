package service

import (
	"bytes"
	"context"
	"testing"

	"famorders/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundUpToBatch(t *testing.T) {
	tests := []struct {
		qty, batch, want int
	}{
		{20, 8, 24},
		{24, 8, 24},
		{1, 8, 8},
		{7, 1, 7},
		{7, 0, 7},
		{0, 8, 0},
		{13, 12, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundUpToBatch(tt.qty, tt.batch), "qty=%d batch=%d", tt.qty, tt.batch)
	}
}

func TestProductionNeeds_SumsOpenLinesAndRoundsUp(t *testing.T) {
	r := newRepos(t)
	svc := NewProductionService(r.production, "Padaria Teste")
	ctx := context.Background()

	c := r.customer(t, "")
	sourdough := r.product(t, "FRM", "Pão de fermentação", "4.50", ptr(8))
	cornbread := r.product(t, "BRO", "Broa", "2.00", nil)
	cake := r.product(t, "BOL", "Bolo", "12.00", ptr(1))

	line := func(p *model.Product, qty int) model.OrderItem {
		return model.OrderItem{ProductID: p.ID, Quantity: qty, UnitPrice: p.UnitPrice}
	}
	r.order(t, c, "2024-01-10", model.StatusOrdered, line(sourdough, 12), line(cornbread, 4))
	r.order(t, c, "2024-01-10", model.StatusPreparing, line(sourdough, 8), line(cornbread, 3))
	r.order(t, c, "2024-01-10", model.StatusDelivered, line(sourdough, 50), line(cake, 2))
	r.order(t, c, "2024-01-11", model.StatusOrdered, line(cake, 5))

	needs, err := svc.Needs(ctx, "2024-01-10")
	require.NoError(t, err)
	require.Len(t, needs, 2, "delivered orders and other dates are excluded")

	// Sorted by name: Broa before Pão.
	assert.Equal(t, "Broa", needs[0].Name)
	assert.Equal(t, 7, needs[0].Quantity)
	assert.Equal(t, 7, needs[0].RoundedQuantity)
	assert.Equal(t, 1, needs[0].BatchSize)

	assert.Equal(t, "Pão de fermentação", needs[1].Name)
	assert.Equal(t, "FRM", needs[1].SKU)
	assert.Equal(t, 20, needs[1].Quantity)
	assert.Equal(t, 24, needs[1].RoundedQuantity)
	assert.Equal(t, 8, needs[1].BatchSize)
	assert.Equal(t, sourdough.ID.String(), needs[1].ProductID)
}

func TestProductionNeeds_EmptyDate(t *testing.T) {
	r := newRepos(t)
	svc := NewProductionService(r.production, "Padaria Teste")

	needs, err := svc.Needs(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.Empty(t, needs)
}

func TestProductionNeeds_InvalidDate(t *testing.T) {
	r := newRepos(t)
	svc := NewProductionService(r.production, "Padaria Teste")

	_, err := svc.Needs(context.Background(), "10/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestProductionSheet_RendersPDF(t *testing.T) {
	r := newRepos(t)
	svc := NewProductionService(r.production, "Padaria Teste")
	c := r.customer(t, "")
	p := r.product(t, "FRM", "Pão", "4.50", ptr(8))
	r.order(t, c, "2024-01-10", model.StatusOrdered, model.OrderItem{ProductID: p.ID, Quantity: 3, UnitPrice: p.UnitPrice})

	pdf, err := svc.Sheet(context.Background(), "2024-01-10")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
