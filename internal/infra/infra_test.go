package infra

import (
	"bytes"
	"testing"

	"famorders/internal/config"
	"famorders/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase("mysql", "root@/db")
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestMigrate_SQLiteIsRepeatable(t *testing.T) {
	db, err := NewDatabase("sqlite", "file:migrate_test?mode=memory&cache=shared&_foreign_keys=1")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	for _, table := range []string{"customers", "products", "recurring_plans", "recurring_plan_items", "orders", "order_items", "order_status_history"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("orders", "idx_orders_plan_billing"))
}

func TestRenderProductionSheet(t *testing.T) {
	needs := []dto.ProductionNeed{
		{SKU: "BRO", Name: "Broa", Quantity: 7, RoundedQuantity: 7, BatchSize: 1},
		{SKU: "FRM", Name: "Pão de fermentação", Quantity: 20, RoundedQuantity: 24, BatchSize: 8},
	}

	pdf, err := RenderProductionSheet("Padaria Teste", "2024-01-10", needs)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	empty, err := RenderProductionSheet("Padaria Teste", "2024-01-10", nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF")))
}

func TestMailer_FromFallsBackToUser(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "padaria@example.com"})
	require.True(t, m.Enabled())

	msg := m.message("ana@example.com", "Pagamento", "Total: 20.00")
	assert.Equal(t, "padaria@example.com", msg.From)
	assert.Equal(t, []string{"ana@example.com"}, msg.To)
	assert.Equal(t, "smtp.example.com:587", m.addr)
}

func TestMailer_DisabledWithoutHost(t *testing.T) {
	m := NewMailer(&config.Config{})
	assert.False(t, m.Enabled())
	assert.Error(t, m.Send("ana@example.com", "x", "y"))
}
