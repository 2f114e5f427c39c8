package costing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricedEntry entrada (depósito) con costo unitario conocido.
type PricedEntry struct {
	ID       string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
	Date     time.Time
}

// Consumption retiro del libro. Los retiros de traslado (IsTransfer) no se reproducen.
type Consumption struct {
	ID         string
	Quantity   decimal.Decimal
	Date       time.Time
	IsTransfer bool
}

// Lot cantidad sobreviviente de una entrada, con el costo de esa entrada.
// Solo existe dentro de un cálculo; nunca se persiste.
type Lot struct {
	EntryID   string
	Quantity  decimal.Decimal // litros restantes
	UnitCost  decimal.Decimal
	EntryDate time.Time
}

// Value costo del remanente del lote.
func (l Lot) Value() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// TotalLiters suma de litros restantes.
func TotalLiters(lots []Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Quantity)
	}
	return total
}

// TotalValue suma del costo de los remanentes.
func TotalValue(lots []Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Value())
	}
	return total
}
