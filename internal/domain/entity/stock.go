package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock saldo en litros de un producto en una bodega (proyección desnormalizada del libro).
type Stock struct {
	ProductID      string
	WarehouseID    string
	QuantityLiters decimal.Decimal
	UpdatedAt      time.Time
}
