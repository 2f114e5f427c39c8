package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.FuelLedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de combustible sobre SQLite.
type LedgerRepo struct {
	q querier
}

const fuelTxColumns = `id, warehouse_id, product_id, kind, quantity_liters, unit_cost, date,
	is_transfer, linked_transaction_id, notes, created_at, created_by`

// Create persiste una fila del libro.
func (r *LedgerRepo) Create(ctx context.Context, t *entity.FuelTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	var unitCost sql.NullString
	if t.UnitCost != nil {
		unitCost = sql.NullString{String: t.UnitCost.String(), Valid: true}
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO fuel_transactions (`+fuelTxColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WarehouseID, t.ProductID, t.Kind, t.QuantityLiters.String(), unitCost, formatTime(t.Date),
		t.IsTransfer, nullString(t.LinkedTransactionID), t.Notes, formatTime(t.CreatedAt), nullString(t.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create fuel transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una fila por ID (nil si no existe).
func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.FuelTransaction, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+fuelTxColumns+` FROM fuel_transactions WHERE id = ?`, id)
	t, err := scanFuelTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fuel transaction: %w", err)
	}
	return t, nil
}

// ListByWarehouse filas de una bodega (opcionalmente un producto), más recientes primero.
func (r *LedgerRepo) ListByWarehouse(ctx context.Context, warehouseID, productID string, from, to *time.Time, limit, offset int) ([]*entity.FuelTransaction, error) {
	query := `SELECT ` + fuelTxColumns + ` FROM fuel_transactions WHERE warehouse_id = ?`
	args := []any{warehouseID}
	if productID != "" {
		query += ` AND product_id = ?`
		args = append(args, productID)
	}
	if from != nil {
		query += ` AND date >= ?`
		args = append(args, formatTime(*from))
	}
	if to != nil {
		query += ` AND date <= ?`
		args = append(args, formatTime(*to))
	}
	query += ` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by warehouse: %w", err)
	}
	defer rows.Close()

	var list []*entity.FuelTransaction
	for rows.Next() {
		t, err := scanFuelTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fuel transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// ListPricedEntries entradas con costo > 0 en [from, to], ascendente por fecha.
// El filtro de costo se hace en Go: la columna es TEXT y SQLite compararía como texto.
func (r *LedgerRepo) ListPricedEntries(ctx context.Context, warehouseID, productID string, from, to time.Time) ([]costing.PricedEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, quantity_liters, unit_cost, date
		FROM fuel_transactions
		WHERE warehouse_id = ? AND product_id = ? AND kind = 'ENTRY'
		  AND unit_cost IS NOT NULL AND date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC, id ASC`,
		warehouseID, productID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("list priced entries: %w", err)
	}
	defer rows.Close()

	var list []costing.PricedEntry
	for rows.Next() {
		var e costing.PricedEntry
		var date string
		if err := rows.Scan(&e.ID, &e.Quantity, &e.UnitCost, &date); err != nil {
			return nil, fmt.Errorf("scan priced entry: %w", err)
		}
		if !e.UnitCost.IsPositive() {
			continue
		}
		if e.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("parse entry date: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListNonTransferConsumptions consumos que no son traslados en [from, to], ascendente por fecha.
func (r *LedgerRepo) ListNonTransferConsumptions(ctx context.Context, warehouseID, productID string, from, to time.Time) ([]costing.Consumption, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, quantity_liters, date
		FROM fuel_transactions
		WHERE warehouse_id = ? AND product_id = ? AND kind = 'CONSUMPTION'
		  AND is_transfer = 0 AND date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC, id ASC`,
		warehouseID, productID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	defer rows.Close()

	var list []costing.Consumption
	for rows.Next() {
		var c costing.Consumption
		var date string
		if err := rows.Scan(&c.ID, &c.Quantity, &date); err != nil {
			return nil, fmt.Errorf("scan consumption: %w", err)
		}
		if c.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("parse consumption date: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFuelTransaction(row rowScanner) (*entity.FuelTransaction, error) {
	var t entity.FuelTransaction
	var unitCost decimal.NullDecimal
	var date, createdAt string
	var linked, createdBy sql.NullString
	if err := row.Scan(&t.ID, &t.WarehouseID, &t.ProductID, &t.Kind, &t.QuantityLiters, &unitCost, &date,
		&t.IsTransfer, &linked, &t.Notes, &createdAt, &createdBy); err != nil {
		return nil, err
	}
	if unitCost.Valid {
		c := unitCost.Decimal
		t.UnitCost = &c
	}
	var err error
	if t.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	t.LinkedTransactionID = linked.String
	t.CreatedBy = createdBy.String
	return &t, nil
}
