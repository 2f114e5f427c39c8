// Package costing reconstruye los lotes de costo de un par (bodega, producto) a partir
// del libro de movimientos y calcula el costo FIFO de un retiro (consumo o traslado).
//
// Todo el paquete es puro: no hay estado compartido ni caché de lotes. Cada cálculo se
// hace sobre una foto explícita del libro, por lo que dos llamadas con los mismos datos
// devuelven exactamente el mismo resultado.
package costing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/domain"
)

// DefaultLookbackDays ventana histórica por defecto que se reproduce para reconstruir lotes.
const DefaultLookbackDays = 45

// DefaultEpsilon tolerancia (litros) bajo la cual un lote se considera agotado.
var DefaultEpsilon = decimal.New(1, -2)

// Escalas con que el libro persiste litros y costos unitarios (NUMERIC(14,3) y NUMERIC(14,6)).
// El costo unitario de un retiro se redondea una sola vez a UnitCostScale: el valor
// devuelto es el que se guarda en ambas patas de un traslado.
const (
	QuantityScale int32 = 3
	UnitCostScale int32 = 6
)

// CheckQuantity exige litros > 0 y como máximo QuantityScale decimales.
func CheckQuantity(q decimal.Decimal) error {
	if !q.IsPositive() || !q.Equal(q.Truncate(QuantityScale)) {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// CheckUnitCost exige costo > 0 y como máximo UnitCostScale decimales.
func CheckUnitCost(c decimal.Decimal) error {
	if !c.IsPositive() || !c.Equal(c.Truncate(UnitCostScale)) {
		return domain.ErrInvalidInput
	}
	return nil
}

// Params parámetros inyectados en la reconstrucción.
type Params struct {
	Lookback time.Duration
	Epsilon  decimal.Decimal
}

// DefaultParams 45 días / 0.01 L.
func DefaultParams() Params {
	return Params{
		Lookback: DefaultLookbackDays * 24 * time.Hour,
		Epsilon:  DefaultEpsilon,
	}
}

// WindowStart inicio de la ventana que termina en cutoff. Lookback <= 0 = sin límite.
func (p Params) WindowStart(cutoff time.Time) time.Time {
	if p.Lookback <= 0 {
		return time.Time{}
	}
	return cutoff.Add(-p.Lookback)
}

// inWindow indica si t cae en [cutoff-lookback, cutoff].
func (p Params) inWindow(t, cutoff time.Time) bool {
	if t.After(cutoff) {
		return false
	}
	if t.Before(p.WindowStart(cutoff)) {
		return false
	}
	return true
}
