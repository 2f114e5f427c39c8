package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	appcosting "github.com/jhoicas/flota-api/internal/application/costing"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// ValuationSummary totales de la composición FIFO.
type ValuationSummary struct {
	AsOf             time.Time
	TotalLiters      decimal.Decimal
	TotalValue       decimal.Decimal
	WeightedUnitCost *decimal.Decimal
}

// ValuationUseCase valoriza el inventario de una bodega a partir de los lotes que sobreviven.
type ValuationUseCase struct {
	costs         *appcosting.Service
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	pdf           ValuationPDFGenerator
	now           func() time.Time
}

// NewValuationUseCase construye el caso de uso.
func NewValuationUseCase(
	costs *appcosting.Service,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	pdf ValuationPDFGenerator,
) *ValuationUseCase {
	return &ValuationUseCase{
		costs:         costs,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		pdf:           pdf,
		now:           time.Now,
	}
}

// Report arma la valorización en asOf (nil = ahora).
func (uc *ValuationUseCase) Report(ctx context.Context, companyID, warehouseID, productID string, asOf *time.Time) (*ValuationReport, error) {
	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if wh.CompanyID != companyID || product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	at := uc.now()
	if asOf != nil && !asOf.IsZero() {
		at = *asOf
	}
	lots, err := uc.costs.SurvivingLots(ctx, warehouseID, productID, at)
	if err != nil {
		return nil, err
	}
	return &ValuationReport{
		Warehouse: wh,
		Product:   product,
		Lots:      lots,
		Summary:   summarize(lots, at),
	}, nil
}

// Valuation devuelve la valorización como DTO.
func (uc *ValuationUseCase) Valuation(ctx context.Context, companyID, warehouseID, productID string, asOf *time.Time) (*dto.ValuationResponse, error) {
	report, err := uc.Report(ctx, companyID, warehouseID, productID, asOf)
	if err != nil {
		return nil, err
	}
	out := &dto.ValuationResponse{
		WarehouseID:      warehouseID,
		ProductID:        productID,
		AsOf:             report.Summary.AsOf,
		Lots:             make([]dto.LotDTO, 0, len(report.Lots)),
		TotalLiters:      report.Summary.TotalLiters,
		TotalValue:       report.Summary.TotalValue,
		WeightedUnitCost: report.Summary.WeightedUnitCost,
	}
	for _, l := range report.Lots {
		out.Lots = append(out.Lots, dto.LotDTO{
			EntryID:        l.EntryID,
			EntryDate:      l.EntryDate,
			QuantityLiters: l.Quantity,
			UnitCost:       l.UnitCost,
			Value:          l.Value(),
		})
	}
	return out, nil
}

// ValuationPDF valorización renderizada en PDF.
func (uc *ValuationUseCase) ValuationPDF(ctx context.Context, companyID, warehouseID, productID string, asOf *time.Time) ([]byte, error) {
	report, err := uc.Report(ctx, companyID, warehouseID, productID, asOf)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateValuationPDF(ctx, report)
}

func summarize(lots []costing.Lot, asOf time.Time) ValuationSummary {
	s := ValuationSummary{
		AsOf:        asOf,
		TotalLiters: costing.TotalLiters(lots),
		TotalValue:  costing.TotalValue(lots),
	}
	if s.TotalLiters.IsPositive() {
		w := s.TotalValue.Div(s.TotalLiters)
		s.WeightedUnitCost = &w
	}
	return s
}
