package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage/storagetest"
)

// checkTemplates runs every template once against a store loaded with
// ledgerFixture, so each backend's SQL dialect is exercised the same way.
func checkTemplates(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx)
	require.NoError(t, err)
	defer s.Close()

	lib := NewLibrary(nil, nil, WithClock(func() time.Time { return testNow }))

	t.Run("company outstanding", func(t *testing.T) {
		got, found, err := lib.CompanyOutstanding(ctx, s, "acme", false)
		require.NoError(t, err)
		require.True(t, found)
		names := make([]string, len(got))
		for i, b := range got {
			names[i] = b.Name
		}
		assert.ElementsMatch(t, []string{"Acme Traders", "Acme Nowhere"}, names)
	})

	t.Run("state outstanding", func(t *testing.T) {
		total, matched, found, err := lib.StateOutstanding(ctx, s, "bihar", false)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 2, matched)
		assertDecimal(t, "5000", total)
	})

	t.Run("aged receivables", func(t *testing.T) {
		got, err := lib.AgedReceivables(ctx, s, AgingFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assertDecimal(t, "9000", got[0].Balance)
		assertDecimal(t, "100", got[2].Balance)
	})

	t.Run("purchase summary", func(t *testing.T) {
		got, found, err := lib.PurchaseSummary(ctx, s, PurchaseFilter{Item: "resin", Vendor: "meera", Year: "2025"})
		require.NoError(t, err)
		require.True(t, found)
		assertDecimal(t, "500", got.Quantity)
		assertDecimal(t, "48000", got.Amount)
	})

	t.Run("sales by month", func(t *testing.T) {
		got, err := lib.SalesByMonth(ctx, s, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2023", got[0].Year)
		assertDecimal(t, "1500", got[0].Amount)
	})

	t.Run("expense amount", func(t *testing.T) {
		got, found, err := lib.ExpenseAmount(ctx, s, ExpenseFilter{Category: "TA DA", Location: "Delhi Mumbai", Month: 8})
		require.NoError(t, err)
		require.True(t, found)
		assertDecimal(t, "1250", got.Amount)
	})

	t.Run("inventory for location", func(t *testing.T) {
		qty, found, err := lib.InventoryForLocation(ctx, s, "PVC pipe", "Jaipur depot")
		require.NoError(t, err)
		require.True(t, found)
		assertDecimal(t, "1250.5", qty)
	})

	t.Run("sku and stock summary", func(t *testing.T) {
		item, found, err := lib.ItemBySKU(ctx, s, "PIPE-4")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "PVC Pipe 4in", item.Alias)

		report, found, err := lib.StockSummary(ctx, s, 2, decimal.NewFromInt(10))
		require.NoError(t, err)
		require.True(t, found)
		assertDecimal(t, "1631", report.Total)
		assert.Equal(t, "PIPE-4", report.Top[0].Code)
	})
}

func TestTemplates_SQLite(t *testing.T) {
	checkTemplates(t, storagetest.NewStore(t, ledgerFixture()))
}

func TestTemplates_Postgres(t *testing.T) {
	checkTemplates(t, storagetest.NewPostgresStore(t, ledgerFixture()))
}
