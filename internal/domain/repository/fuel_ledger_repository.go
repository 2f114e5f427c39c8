package repository

import (
	"context"
	"time"

	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// LedgerReader lectura del libro de combustible que necesita el motor de costeo.
// Ambos listados vienen ordenados ascendentemente por fecha y limitados a [from, to].
type LedgerReader interface {
	// ListPricedEntries solo entradas con unit_cost > 0.
	ListPricedEntries(ctx context.Context, warehouseID, productID string, from, to time.Time) ([]costing.PricedEntry, error)
	// ListNonTransferConsumptions consumos que no son salidas de traslado.
	ListNonTransferConsumptions(ctx context.Context, warehouseID, productID string, from, to time.Time) ([]costing.Consumption, error)
}

// FuelLedgerRepository define el puerto de persistencia del libro de combustible.
// Las filas son inmutables: no hay Update ni Delete.
type FuelLedgerRepository interface {
	LedgerReader
	Create(ctx context.Context, tx *entity.FuelTransaction) error
	GetByID(ctx context.Context, id string) (*entity.FuelTransaction, error)
	ListByWarehouse(ctx context.Context, warehouseID, productID string, from, to *time.Time, limit, offset int) ([]*entity.FuelTransaction, error)
}
