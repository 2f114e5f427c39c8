package costing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/domain"
)

// Method método con el que se costeó un retiro.
type Method string

const (
	MethodFIFO            Method = "fifo"
	MethodWeightedAverage Method = "weighted_average"
	MethodUnknown         Method = "unknown"
)

// String implementa fmt.Stringer.
func (m Method) String() string { return string(m) }

// WithdrawalCost resultado del costeo de un retiro.
// El costo unitario solo se obtiene vía UnitCost o Require, de modo que el caso
// "unknown" no se puede ignorar por accidente.
type WithdrawalCost struct {
	Method          Method
	MatchedLiters   decimal.Decimal
	UnmatchedLiters decimal.Decimal
	TotalCost       decimal.Decimal
	unitCost        decimal.Decimal
}

// Unknown resultado sin historial de precios.
func Unknown(matched, unmatched decimal.Decimal) WithdrawalCost {
	return WithdrawalCost{
		Method:          MethodUnknown,
		MatchedLiters:   matched,
		UnmatchedLiters: unmatched,
		TotalCost:       decimal.Zero,
		unitCost:        decimal.Zero,
	}
}

// Known indica si el retiro tiene costo.
func (w WithdrawalCost) Known() bool {
	return w.Method == MethodFIFO || w.Method == MethodWeightedAverage
}

// UnitCost devuelve el costo unitario y si es conocido.
func (w WithdrawalCost) UnitCost() (decimal.Decimal, bool) {
	if !w.Known() {
		return decimal.Zero, false
	}
	return w.unitCost, true
}

// Require devuelve el costo unitario o ErrInsufficientPriceHistory.
func (w WithdrawalCost) Require() (decimal.Decimal, error) {
	c, ok := w.UnitCost()
	if !ok {
		return decimal.Zero, domain.ErrInsufficientPriceHistory
	}
	return c, nil
}

// Price costea un retiro de quantity litros en asOf sobre una foto del libro:
// reconstruye lotes, los consume FIFO y, si faltan litros, los valora al promedio
// ponderado de todas las entradas con costo de la ventana. Una cantidad inválida
// (ver CheckQuantity) devuelve domain.ErrInvalidQuantity.
func Price(entries []PricedEntry, consumptions []Consumption, quantity decimal.Decimal, asOf time.Time, p Params) (WithdrawalCost, error) {
	if err := CheckQuantity(quantity); err != nil {
		return WithdrawalCost{}, err
	}
	lots := Reconstruct(entries, consumptions, asOf, p)
	m := Consume(lots, quantity, asOf, p.Epsilon)
	unmatched := quantity.Sub(m.MatchedLiters)

	if !unmatched.IsPositive() {
		return WithdrawalCost{
			Method:          MethodFIFO,
			MatchedLiters:   m.MatchedLiters,
			UnmatchedLiters: decimal.Zero,
			TotalCost:       m.MatchedCost,
			unitCost:        roundedUnitCost(m.MatchedCost, quantity),
		}, nil
	}

	windowed := make([]PricedEntry, 0, len(entries))
	for _, e := range entries {
		if p.inWindow(e.Date, asOf) {
			windowed = append(windowed, e)
		}
	}
	avg, ok := AveragePrice(windowed)
	if !ok {
		return Unknown(m.MatchedLiters, unmatched), nil
	}
	total := m.MatchedCost.Add(unmatched.Mul(avg))
	return WithdrawalCost{
		Method:          MethodWeightedAverage,
		MatchedLiters:   m.MatchedLiters,
		UnmatchedLiters: unmatched,
		TotalCost:       total,
		unitCost:        roundedUnitCost(total, quantity),
	}, nil
}

func roundedUnitCost(total, quantity decimal.Decimal) decimal.Decimal {
	return total.DivRound(quantity, UnitCostScale)
}
