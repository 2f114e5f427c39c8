package costing

import "github.com/shopspring/decimal"

// AveragePrice costo promedio ponderado de todas las entradas con costo de la ventana,
// incluidas las que ya se consumieron por completo.
// PromedioPonderado = Σ(Cantidad * CostoUnitario) / Σ(Cantidad)
// Devuelve false si no hay entradas con costo.
func AveragePrice(entries []PricedEntry) (decimal.Decimal, bool) {
	qty := decimal.Zero
	num := decimal.Zero
	for _, e := range entries {
		if !e.UnitCost.IsPositive() || !e.Quantity.IsPositive() {
			continue
		}
		qty = qty.Add(e.Quantity)
		num = num.Add(e.Quantity.Mul(e.UnitCost))
	}
	if !qty.IsPositive() {
		return decimal.Zero, false
	}
	return num.Div(qty), true
}
