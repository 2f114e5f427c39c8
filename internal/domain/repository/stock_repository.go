package repository

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar el saldo por bodega+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	// GetForUpdate serializa el par (bodega, producto) hasta el fin de la transacción y
	// devuelve el saldo bloqueado. Si la fila no existe devuelve saldo cero.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
}
