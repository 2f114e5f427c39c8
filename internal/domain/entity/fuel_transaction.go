package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de combustible.
const (
	FuelKindEntry       = "ENTRY"       // entrada (compra, recepción o traslado entrante)
	FuelKindConsumption = "CONSUMPTION" // salida (consumo o traslado saliente)
)

// FuelTransaction fila inmutable del libro de combustible (diésel/urea) por bodega de planta.
// UnitCost solo existe en entradas con costo y en salidas de traslado (costo calculado,
// guardado para auditoría y nunca usado como entrada del FIFO).
type FuelTransaction struct {
	ID                  string
	WarehouseID         string
	ProductID           string
	Kind                string
	QuantityLiters      decimal.Decimal // siempre > 0
	UnitCost            *decimal.Decimal
	Date                time.Time
	IsTransfer          bool
	LinkedTransactionID string
	Notes               string
	CreatedAt           time.Time
	CreatedBy           string
}

// IsPricedEntry indica si la fila forma lotes de costo.
func (t *FuelTransaction) IsPricedEntry() bool {
	return t.Kind == FuelKindEntry && t.UnitCost != nil && t.UnitCost.IsPositive()
}

// TotalCost cantidad * costo, cero si no tiene costo.
func (t *FuelTransaction) TotalCost() decimal.Decimal {
	if t.UnitCost == nil {
		return decimal.Zero
	}
	return t.QuantityLiters.Mul(*t.UnitCost)
}
