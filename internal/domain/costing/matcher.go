package costing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Match resultado de consumir una cantidad contra los lotes.
type Match struct {
	MatchedCost   decimal.Decimal
	MatchedLiters decimal.Decimal
	Lots          []Lot // lotes que sobreviven, en el mismo orden
}

// Consume descuenta requested de los lotes del más antiguo al más nuevo.
// Los lotes con fecha posterior a cutoff no se tocan (se conservan para después);
// un lote que queda en eps o menos se descarta. No modifica el slice recibido.
func Consume(lots []Lot, requested decimal.Decimal, cutoff time.Time, eps decimal.Decimal) Match {
	out := Match{
		MatchedCost:   decimal.Zero,
		MatchedLiters: decimal.Zero,
		Lots:          make([]Lot, 0, len(lots)),
	}
	for _, lot := range lots {
		if lot.Quantity.LessThanOrEqual(eps) {
			continue
		}
		pending := requested.Sub(out.MatchedLiters)
		if !pending.IsPositive() || lot.EntryDate.After(cutoff) {
			out.Lots = append(out.Lots, lot)
			continue
		}
		take := decimal.Min(pending, lot.Quantity)
		out.MatchedCost = out.MatchedCost.Add(take.Mul(lot.UnitCost))
		out.MatchedLiters = out.MatchedLiters.Add(take)
		lot.Quantity = lot.Quantity.Sub(take)
		if lot.Quantity.GreaterThan(eps) {
			out.Lots = append(out.Lots, lot)
		}
	}
	return out
}
