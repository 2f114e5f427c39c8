package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo saldo de combustible por bodega sobre SQLite.
type StockRepo struct {
	q querier
}

// Get saldo actual (cero si no hay fila).
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	var s entity.Stock
	var updatedAt string
	err := r.q.QueryRowContext(ctx, `
		SELECT product_id, warehouse_id, quantity_liters, updated_at
		FROM fuel_stock WHERE product_id = ? AND warehouse_id = ?`,
		productID, warehouseID,
	).Scan(&s.ProductID, &s.WarehouseID, &s.QuantityLiters, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, QuantityLiters: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse stock updated_at: %w", err)
	}
	return &s, nil
}

// GetForUpdate igual que Get: la transacción de Store.Run ya es exclusiva.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(ctx, productID, warehouseID)
}

// Upsert inserta o actualiza el saldo.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	now := formatTime(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO fuel_stock (product_id, warehouse_id, quantity_liters, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity_liters = excluded.quantity_liters, updated_at = excluded.updated_at`,
		stock.ProductID, stock.WarehouseID, stock.QuantityLiters.String(), now)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}
