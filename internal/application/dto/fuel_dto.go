package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// RegisterEntryRequest body para POST /api/fuel/entries.
type RegisterEntryRequest struct {
	WarehouseID    string           `json:"warehouse_id"`
	ProductID      string           `json:"product_id"`
	QuantityLiters decimal.Decimal  `json:"quantity_liters"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"` // nil = entrada sin costo
	Date           *time.Time       `json:"date,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

// RegisterConsumptionRequest body para POST /api/fuel/consumptions.
type RegisterConsumptionRequest struct {
	WarehouseID    string          `json:"warehouse_id"`
	ProductID      string          `json:"product_id"`
	QuantityLiters decimal.Decimal `json:"quantity_liters"`
	Date           *time.Time      `json:"date,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// RegisterTransferRequest body para POST /api/fuel/transfers.
type RegisterTransferRequest struct {
	ProductID       string          `json:"product_id"`
	FromWarehouseID string          `json:"from_warehouse_id"`
	ToWarehouseID   string          `json:"to_warehouse_id"`
	QuantityLiters  decimal.Decimal `json:"quantity_liters"`
	Date            *time.Time      `json:"date,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// WithdrawalCostResponse costo de un retiro. UnitCost es null cuando method = "unknown".
type WithdrawalCostResponse struct {
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	Method          string           `json:"method"`
	MatchedLiters   decimal.Decimal  `json:"matched_liters"`
	UnmatchedLiters decimal.Decimal  `json:"unmatched_liters"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
}

// NewWithdrawalCostResponse mapea el resultado del motor al DTO.
func NewWithdrawalCostResponse(c costing.WithdrawalCost) WithdrawalCostResponse {
	out := WithdrawalCostResponse{
		Method:          c.Method.String(),
		MatchedLiters:   c.MatchedLiters,
		UnmatchedLiters: c.UnmatchedLiters,
		TotalCost:       c.TotalCost,
	}
	if unit, ok := c.UnitCost(); ok {
		out.UnitCost = &unit
	}
	return out
}

// ConsumptionResponse respuesta de POST /api/fuel/consumptions.
type ConsumptionResponse struct {
	TransactionID string                 `json:"transaction_id"`
	Cost          WithdrawalCostResponse `json:"cost"`
}

// TransferResponse respuesta de POST /api/fuel/transfers.
type TransferResponse struct {
	State            string                 `json:"state"`
	OutTransactionID string                 `json:"out_transaction_id"`
	InTransactionID  string                 `json:"in_transaction_id"`
	UnitCost         decimal.Decimal        `json:"unit_cost"`
	Cost             WithdrawalCostResponse `json:"cost"`
}

// FuelTransactionResponse fila del libro.
type FuelTransactionResponse struct {
	ID                  string           `json:"id"`
	WarehouseID         string           `json:"warehouse_id"`
	ProductID           string           `json:"product_id"`
	Kind                string           `json:"kind"`
	QuantityLiters      decimal.Decimal  `json:"quantity_liters"`
	UnitCost            *decimal.Decimal `json:"unit_cost"`
	Date                time.Time        `json:"date"`
	IsTransfer          bool             `json:"is_transfer"`
	LinkedTransactionID string           `json:"linked_transaction_id,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

// NewFuelTransactionResponse mapea la entidad al DTO.
func NewFuelTransactionResponse(t *entity.FuelTransaction) FuelTransactionResponse {
	return FuelTransactionResponse{
		ID:                  t.ID,
		WarehouseID:         t.WarehouseID,
		ProductID:           t.ProductID,
		Kind:                t.Kind,
		QuantityLiters:      t.QuantityLiters,
		UnitCost:            t.UnitCost,
		Date:                t.Date,
		IsTransfer:          t.IsTransfer,
		LinkedTransactionID: t.LinkedTransactionID,
		Notes:               t.Notes,
		CreatedAt:           t.CreatedAt,
	}
}

// FuelTransactionListResponse listado paginado del libro.
type FuelTransactionListResponse struct {
	Items []FuelTransactionResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// LotDTO lote sobreviviente.
type LotDTO struct {
	EntryID        string          `json:"entry_id"`
	EntryDate      time.Time       `json:"entry_date"`
	QuantityLiters decimal.Decimal `json:"quantity_liters"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Value          decimal.Decimal `json:"value"`
}

// ValuationResponse respuesta de GET /api/fuel/valuation.
type ValuationResponse struct {
	WarehouseID      string           `json:"warehouse_id"`
	ProductID        string           `json:"product_id"`
	AsOf             time.Time        `json:"as_of"`
	Lots             []LotDTO         `json:"lots"`
	TotalLiters      decimal.Decimal  `json:"total_liters"`
	TotalValue       decimal.Decimal  `json:"total_value"`
	WeightedUnitCost *decimal.Decimal `json:"weighted_unit_cost"` // null sin lotes
}
