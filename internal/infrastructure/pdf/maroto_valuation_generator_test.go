package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1.234.567,89", formatNumber(decimal.RequireFromString("1234567.891"), 2))
	assert.Equal(t, "25.000,00", formatNumber(decimal.NewFromInt(25000), 2))
	assert.Equal(t, "1,2000", formatNumber(decimal.RequireFromString("1.2"), 4))
	assert.Equal(t, "-1.000", formatNumber(decimal.NewFromInt(-1000), 0))
}

func TestGenerateValuationPDF(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := decimal.RequireFromString("1.1")
	report := &inventory.ValuationReport{
		Warehouse: &entity.Warehouse{ID: "wh-1", PlantName: "Planta Norte", Name: "Bodega 1"},
		Product:   &entity.Product{ID: "p-1", Code: entity.ProductCodeDiesel, Name: "Diésel"},
		Lots: []costing.Lot{
			{EntryID: "e1", Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(1), EntryDate: asOf.AddDate(0, 0, -3)},
			{EntryID: "e2", Quantity: decimal.NewFromInt(100), UnitCost: decimal.RequireFromString("1.2"), EntryDate: asOf.AddDate(0, 0, -1)},
		},
		Summary: inventory.ValuationSummary{
			AsOf:             asOf,
			TotalLiters:      decimal.NewFromInt(200),
			TotalValue:       decimal.NewFromInt(220),
			WeightedUnitCost: &w,
		},
	}

	out, err := NewMarotoValuationGenerator().GenerateValuationPDF(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewMarotoValuationGenerator().GenerateValuationPDF(context.Background(), &inventory.ValuationReport{})
	assert.Error(t, err)
}
