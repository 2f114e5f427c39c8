package inventory

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad de lectura-costeo-escritura para el motor de combustible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.FuelLedgerRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// ValuationPDFGenerator genera la representación PDF de la valorización de una bodega.
type ValuationPDFGenerator interface {
	GenerateValuationPDF(ctx context.Context, report *ValuationReport) ([]byte, error)
}

// ValuationReport composición FIFO del inventario de un producto en una bodega.
type ValuationReport struct {
	Warehouse *entity.Warehouse
	Product   *entity.Product
	Lots      []costing.Lot
	Summary   ValuationSummary
}
