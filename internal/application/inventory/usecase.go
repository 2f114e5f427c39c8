package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcosting "github.com/jhoicas/flota-api/internal/application/costing"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// FuelMovementUseCase registra entradas, consumos y traslados de combustible.
// Cada escritura ocurre dentro de una transacción que mantiene bloqueado el par
// (bodega, producto) durante lectura, costeo y escritura.
type FuelMovementUseCase struct {
	txRunner      TxRunner
	costs         *appcosting.Service
	locker        *KeyedLocker
	ledgerRepo    repository.FuelLedgerRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	log           *logger.Logger
	now           func() time.Time
}

// NewFuelMovementUseCase construye el caso de uso.
func NewFuelMovementUseCase(
	txRunner TxRunner,
	costs *appcosting.Service,
	ledgerRepo repository.FuelLedgerRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	log *logger.Logger,
) *FuelMovementUseCase {
	return &FuelMovementUseCase{
		txRunner:      txRunner,
		costs:         costs,
		locker:        NewKeyedLocker(),
		ledgerRepo:    ledgerRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		log:           log,
		now:           time.Now,
	}
}

// EntryInput entrada (compra o recepción) de combustible. UnitCost nil = entrada sin costo.
type EntryInput struct {
	CompanyID      string
	UserID         string
	WarehouseID    string
	ProductID      string
	QuantityLiters decimal.Decimal
	UnitCost       *decimal.Decimal
	Date           *time.Time
	Notes          string
}

// ConsumptionInput consumo de combustible en una bodega.
type ConsumptionInput struct {
	CompanyID      string
	UserID         string
	WarehouseID    string
	ProductID      string
	QuantityLiters decimal.Decimal
	Date           *time.Time
	Notes          string
}

// TransferInput traslado entre bodegas de la misma empresa.
type TransferInput struct {
	CompanyID       string
	UserID          string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	QuantityLiters  decimal.Decimal
	Date            *time.Time
	Notes           string
}

// ConsumptionResult consumo registrado y su costo FIFO.
type ConsumptionResult struct {
	TransactionID string
	Cost          costing.WithdrawalCost
}

// TransferResult resultado de un traslado. UnitCost es el costo escrito en ambas patas.
type TransferResult struct {
	State            string
	OutTransactionID string
	InTransactionID  string
	UnitCost         decimal.Decimal
	Cost             costing.WithdrawalCost
}

// RegisterEntry registra una entrada y suma el saldo de la bodega.
func (uc *FuelMovementUseCase) RegisterEntry(ctx context.Context, in EntryInput) (*entity.FuelTransaction, error) {
	if in.WarehouseID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := costing.CheckQuantity(in.QuantityLiters); err != nil {
		return nil, err
	}
	if in.UnitCost != nil && costing.CheckUnitCost(*in.UnitCost) != nil {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkOwnership(ctx, in.CompanyID, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	now := uc.now()
	tx := &entity.FuelTransaction{
		ID:             uuid.New().String(),
		WarehouseID:    in.WarehouseID,
		ProductID:      in.ProductID,
		Kind:           entity.FuelKindEntry,
		QuantityLiters: in.QuantityLiters,
		UnitCost:       in.UnitCost,
		Date:           uc.movementDate(in.Date, now),
		Notes:          in.Notes,
		CreatedAt:      now,
		CreatedBy:      in.UserID,
	}

	unlock, err := uc.locker.Lock(ctx, StockKey(in.WarehouseID, in.ProductID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = uc.txRunner.Run(ctx, func(ledgerRepo repository.FuelLedgerRepository, stockRepo repository.StockRepository) error {
		stock, err := stockRepo.GetForUpdate(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		stock.QuantityLiters = stock.QuantityLiters.Add(in.QuantityLiters)
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}
		return ledgerRepo.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// RegisterConsumption costea y registra un consumo. Si no hay historial de precios el
// consumo se rechaza sin escribir nada (ErrInsufficientPriceHistory).
func (uc *FuelMovementUseCase) RegisterConsumption(ctx context.Context, in ConsumptionInput) (*ConsumptionResult, error) {
	if in.WarehouseID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := costing.CheckQuantity(in.QuantityLiters); err != nil {
		return nil, err
	}
	if err := uc.checkOwnership(ctx, in.CompanyID, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	now := uc.now()
	date := uc.movementDate(in.Date, now)
	res := &ConsumptionResult{TransactionID: uuid.New().String()}

	unlock, err := uc.locker.Lock(ctx, StockKey(in.WarehouseID, in.ProductID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = uc.txRunner.Run(ctx, func(ledgerRepo repository.FuelLedgerRepository, stockRepo repository.StockRepository) error {
		stock, err := stockRepo.GetForUpdate(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		if stock.QuantityLiters.LessThan(in.QuantityLiters) {
			return domain.ErrInsufficientStock
		}
		cost, err := uc.costs.WithReader(ledgerRepo).ComputeWithdrawalCost(ctx, in.WarehouseID, in.ProductID, in.QuantityLiters, date)
		if err != nil {
			return err
		}
		if _, err := cost.Require(); err != nil {
			return err
		}
		res.Cost = cost

		stock.QuantityLiters = stock.QuantityLiters.Sub(in.QuantityLiters)
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}
		return ledgerRepo.Create(ctx, &entity.FuelTransaction{
			ID:             res.TransactionID,
			WarehouseID:    in.WarehouseID,
			ProductID:      in.ProductID,
			Kind:           entity.FuelKindConsumption,
			QuantityLiters: in.QuantityLiters,
			Date:           date,
			Notes:          in.Notes,
			CreatedAt:      now,
			CreatedBy:      in.UserID,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientPriceHistory) {
			uc.log.Stock(in.WarehouseID, in.ProductID).Warn().
				Str("quantity", in.QuantityLiters.String()).
				Msg("consumo rechazado: sin historial de precios")
		}
		return nil, err
	}
	return res, nil
}

// RegisterTransfer costea el traslado contra la bodega origen y escribe ambas patas en
// la misma transacción: la salida (con el costo calculado, para auditoría) y la entrada
// en destino con exactamente el mismo costo unitario.
func (uc *FuelMovementUseCase) RegisterTransfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.ProductID == "" || in.FromWarehouseID == "" || in.ToWarehouseID == "" || in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	if err := costing.CheckQuantity(in.QuantityLiters); err != nil {
		return nil, err
	}
	if err := uc.checkOwnership(ctx, in.CompanyID, in.ProductID, in.FromWarehouseID, in.ToWarehouseID); err != nil {
		return nil, err
	}

	now := uc.now()
	date := uc.movementDate(in.Date, now)
	res := &TransferResult{
		State:            entity.TransferStateRequested,
		OutTransactionID: uuid.New().String(),
		InTransactionID:  uuid.New().String(),
	}

	unlock, err := uc.locker.Lock(ctx,
		StockKey(in.FromWarehouseID, in.ProductID),
		StockKey(in.ToWarehouseID, in.ProductID),
	)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = uc.txRunner.Run(ctx, func(ledgerRepo repository.FuelLedgerRepository, stockRepo repository.StockRepository) error {
		res.State = entity.TransferStateRequested
		origin, dest, err := lockPair(ctx, stockRepo, in.ProductID, in.FromWarehouseID, in.ToWarehouseID)
		if err != nil {
			return err
		}
		if origin.QuantityLiters.LessThan(in.QuantityLiters) {
			return domain.ErrInsufficientStock
		}

		cost, err := uc.costs.WithReader(ledgerRepo).ComputeWithdrawalCost(ctx, in.FromWarehouseID, in.ProductID, in.QuantityLiters, date)
		if err != nil {
			return err
		}
		unitCost, err := cost.Require()
		if err != nil {
			res.State = entity.TransferStateRejected
			return err
		}
		res.State = entity.TransferStateCosted
		res.Cost = cost
		res.UnitCost = unitCost

		origin.QuantityLiters = origin.QuantityLiters.Sub(in.QuantityLiters)
		dest.QuantityLiters = dest.QuantityLiters.Add(in.QuantityLiters)
		origin.UpdatedAt = now
		dest.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, origin); err != nil {
			return err
		}
		if err := stockRepo.Upsert(ctx, dest); err != nil {
			return err
		}

		outCost := unitCost
		if err := ledgerRepo.Create(ctx, &entity.FuelTransaction{
			ID:                  res.OutTransactionID,
			WarehouseID:         in.FromWarehouseID,
			ProductID:           in.ProductID,
			Kind:                entity.FuelKindConsumption,
			QuantityLiters:      in.QuantityLiters,
			UnitCost:            &outCost,
			Date:                date,
			IsTransfer:          true,
			LinkedTransactionID: res.InTransactionID,
			Notes:               in.Notes,
			CreatedAt:           now,
			CreatedBy:           in.UserID,
		}); err != nil {
			return err
		}
		inCost := unitCost
		return ledgerRepo.Create(ctx, &entity.FuelTransaction{
			ID:                  res.InTransactionID,
			WarehouseID:         in.ToWarehouseID,
			ProductID:           in.ProductID,
			Kind:                entity.FuelKindEntry,
			QuantityLiters:      in.QuantityLiters,
			UnitCost:            &inCost,
			Date:                date,
			IsTransfer:          true,
			LinkedTransactionID: res.OutTransactionID,
			Notes:               in.Notes,
			CreatedAt:           now,
			CreatedBy:           in.UserID,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientPriceHistory) {
			uc.log.Stock(in.FromWarehouseID, in.ProductID).Warn().
				Str("to_warehouse_id", in.ToWarehouseID).
				Str("quantity", in.QuantityLiters.String()).
				Msg("traslado rechazado: sin historial de precios")
			return &TransferResult{State: entity.TransferStateRejected}, err
		}
		return nil, err
	}
	res.State = entity.TransferStateBothLegsWritten
	uc.log.Stock(in.FromWarehouseID, in.ProductID).Info().
		Str("to_warehouse_id", in.ToWarehouseID).
		Str("out_id", res.OutTransactionID).
		Str("in_id", res.InTransactionID).
		Str("unit_cost", res.UnitCost.String()).
		Str("method", res.Cost.Method.String()).
		Msg("traslado registrado")
	return res, nil
}

// PreviewCost costeo de solo lectura, sin bloqueos ni escrituras.
func (uc *FuelMovementUseCase) PreviewCost(ctx context.Context, companyID, warehouseID, productID string, quantity decimal.Decimal, asOf *time.Time) (costing.WithdrawalCost, error) {
	if err := costing.CheckQuantity(quantity); err != nil {
		return costing.WithdrawalCost{}, err
	}
	if err := uc.checkOwnership(ctx, companyID, productID, warehouseID); err != nil {
		return costing.WithdrawalCost{}, err
	}
	return uc.costs.ComputeWithdrawalCost(ctx, warehouseID, productID, quantity, uc.movementDate(asOf, uc.now()))
}

// ListTransactions filas del libro de una bodega (opcionalmente de un producto).
func (uc *FuelMovementUseCase) ListTransactions(ctx context.Context, companyID, warehouseID, productID string, from, to *time.Time, limit, offset int) ([]*entity.FuelTransaction, error) {
	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return uc.ledgerRepo.ListByWarehouse(ctx, warehouseID, productID, from, to, limit, offset)
}

// checkOwnership valida que producto y bodega(s) existan y sean de la empresa.
func (uc *FuelMovementUseCase) checkOwnership(ctx context.Context, companyID, productID string, warehouseIDs ...string) error {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return domain.ErrForbidden
	}
	for _, id := range warehouseIDs {
		wh, err := uc.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrNotFound
		}
		if wh.CompanyID != companyID {
			return domain.ErrForbidden
		}
	}
	return nil
}

func (uc *FuelMovementUseCase) movementDate(d *time.Time, now time.Time) time.Time {
	if d == nil || d.IsZero() {
		return now
	}
	return *d
}

// lockPair bloquea origen y destino en orden de ID de bodega, igual que KeyedLocker.
func lockPair(ctx context.Context, stockRepo repository.StockRepository, productID, fromID, toID string) (origin, dest *entity.Stock, err error) {
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	a, err := stockRepo.GetForUpdate(ctx, productID, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := stockRepo.GetForUpdate(ctx, productID, second)
	if err != nil {
		return nil, nil, err
	}
	if first == fromID {
		return a, b, nil
	}
	return b, a, nil
}
