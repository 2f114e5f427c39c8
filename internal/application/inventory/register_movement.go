package inventory

import (
	"context"

	"github.com/jhoicas/flota-api/internal/application/dto"
)

// Adaptadores de request HTTP a los casos de uso. Usar desde handlers HTTP o desde
// otros casos de uso que ya tengan companyID y userID.

// RegisterEntryFromRequest adapta dto.RegisterEntryRequest a RegisterEntry.
func (uc *FuelMovementUseCase) RegisterEntryFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterEntryRequest) (*dto.FuelTransactionResponse, error) {
	tx, err := uc.RegisterEntry(ctx, EntryInput{
		CompanyID:      companyID,
		UserID:         userID,
		WarehouseID:    in.WarehouseID,
		ProductID:      in.ProductID,
		QuantityLiters: in.QuantityLiters,
		UnitCost:       in.UnitCost,
		Date:           in.Date,
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewFuelTransactionResponse(tx)
	return &out, nil
}

// RegisterConsumptionFromRequest adapta dto.RegisterConsumptionRequest a RegisterConsumption.
func (uc *FuelMovementUseCase) RegisterConsumptionFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterConsumptionRequest) (*dto.ConsumptionResponse, error) {
	res, err := uc.RegisterConsumption(ctx, ConsumptionInput{
		CompanyID:      companyID,
		UserID:         userID,
		WarehouseID:    in.WarehouseID,
		ProductID:      in.ProductID,
		QuantityLiters: in.QuantityLiters,
		Date:           in.Date,
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ConsumptionResponse{
		TransactionID: res.TransactionID,
		Cost:          dto.NewWithdrawalCostResponse(res.Cost),
	}, nil
}

// RegisterTransferFromRequest adapta dto.RegisterTransferRequest a RegisterTransfer.
func (uc *FuelMovementUseCase) RegisterTransferFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterTransferRequest) (*dto.TransferResponse, error) {
	res, err := uc.RegisterTransfer(ctx, TransferInput{
		CompanyID:       companyID,
		UserID:          userID,
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		QuantityLiters:  in.QuantityLiters,
		Date:            in.Date,
		Notes:           in.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &dto.TransferResponse{
		State:            res.State,
		OutTransactionID: res.OutTransactionID,
		InTransactionID:  res.InTransactionID,
		UnitCost:         res.UnitCost,
		Cost:             dto.NewWithdrawalCostResponse(res.Cost),
	}, nil
}
