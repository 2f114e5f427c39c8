package postgres

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/flota-api/internal/domain/costing"
)

// Las columnas NUMERIC no deben redondear lo que el motor ya validó o calculó.
func TestSchema_EscalasDelMotor(t *testing.T) {
	qty := fmt.Sprintf("quantity_liters       NUMERIC(14, %d)", costing.QuantityScale)
	cost := fmt.Sprintf("unit_cost             NUMERIC(14, %d)", costing.UnitCostScale)

	assert.True(t, strings.Contains(schemaSQL, qty), "fuel_transactions.quantity_liters")
	assert.True(t, strings.Contains(schemaSQL, cost), "fuel_transactions.unit_cost")
	assert.Contains(t, schemaSQL, fmt.Sprintf("quantity_liters NUMERIC(14, %d)", costing.QuantityScale), "fuel_stock")
}
