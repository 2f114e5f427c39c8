package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// Service reconstruye el costo FIFO de un retiro leyendo el libro en cada llamada.
// No guarda estado entre llamadas: se puede usar desde varias goroutines.
type Service struct {
	reader repository.LedgerReader
	params costing.Params
}

// NewService construye el servicio con el lector del libro y los parámetros de ventana/epsilon.
func NewService(reader repository.LedgerReader, params costing.Params) *Service {
	return &Service{reader: reader, params: params}
}

// WithReader devuelve una copia atada a otro lector (p. ej. el de una transacción).
func (s *Service) WithReader(reader repository.LedgerReader) *Service {
	return &Service{reader: reader, params: s.params}
}

// Params parámetros con los que se costea.
func (s *Service) Params() costing.Params { return s.params }

// ComputeWithdrawalCost costea un retiro de quantity litros en asOf.
// Un resultado MethodUnknown no es un error: el llamador decide si aborta.
// Errores: ErrInvalidQuantity (antes de leer) y ErrLedgerRead (reintentable).
func (s *Service) ComputeWithdrawalCost(ctx context.Context, warehouseID, productID string, quantity decimal.Decimal, asOf time.Time) (costing.WithdrawalCost, error) {
	if err := costing.CheckQuantity(quantity); err != nil {
		return costing.WithdrawalCost{}, err
	}
	entries, consumptions, err := s.snapshot(ctx, warehouseID, productID, asOf)
	if err != nil {
		return costing.WithdrawalCost{}, err
	}
	return costing.Price(entries, consumptions, quantity, asOf, s.params)
}

// SurvivingLots composición FIFO del inventario en asOf.
func (s *Service) SurvivingLots(ctx context.Context, warehouseID, productID string, asOf time.Time) ([]costing.Lot, error) {
	entries, consumptions, err := s.snapshot(ctx, warehouseID, productID, asOf)
	if err != nil {
		return nil, err
	}
	return costing.Reconstruct(entries, consumptions, asOf, s.params), nil
}

func (s *Service) snapshot(ctx context.Context, warehouseID, productID string, asOf time.Time) ([]costing.PricedEntry, []costing.Consumption, error) {
	from := s.params.WindowStart(asOf)
	entries, err := s.reader.ListPricedEntries(ctx, warehouseID, productID, from, asOf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: entradas: %w", domain.ErrLedgerRead, err)
	}
	consumptions, err := s.reader.ListNonTransferConsumptions(ctx, warehouseID, productID, from, asOf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: consumos: %w", domain.ErrLedgerRead, err)
	}
	return entries, consumptions, nil
}
