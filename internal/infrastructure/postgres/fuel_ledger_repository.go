package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.FuelLedgerRepository = (*FuelLedgerRepo)(nil)

// FuelLedgerRepo implementación del libro de combustible sobre PostgreSQL (usable con pool o tx).
type FuelLedgerRepo struct {
	q Querier
}

// NewFuelLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFuelLedgerRepository(q Querier) *FuelLedgerRepo {
	return &FuelLedgerRepo{q: q}
}

const fuelTxColumns = `id, warehouse_id, product_id, kind, quantity_liters, unit_cost, date,
		is_transfer, linked_transaction_id, notes, created_at, created_by`

// Create persiste una fila del libro.
func (r *FuelLedgerRepo) Create(ctx context.Context, t *entity.FuelTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO fuel_transactions (` + fuelTxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.WarehouseID, t.ProductID, t.Kind, t.QuantityLiters, t.UnitCost, t.Date,
		t.IsTransfer, nullIfEmpty(t.LinkedTransactionID), t.Notes, t.CreatedAt, nullIfEmpty(t.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create fuel transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una fila por ID.
func (r *FuelLedgerRepo) GetByID(ctx context.Context, id string) (*entity.FuelTransaction, error) {
	query := `SELECT ` + fuelTxColumns + ` FROM fuel_transactions WHERE id = $1`
	t, err := scanFuelTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fuel transaction: %w", err)
	}
	return t, nil
}

// ListByWarehouse lista filas de una bodega (y opcionalmente un producto) en un rango de fechas.
func (r *FuelLedgerRepo) ListByWarehouse(ctx context.Context, warehouseID, productID string, from, to *time.Time, limit, offset int) ([]*entity.FuelTransaction, error) {
	query := `SELECT ` + fuelTxColumns + ` FROM fuel_transactions WHERE warehouse_id = $1`
	args := []any{warehouseID}
	pos := 2
	if productID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, productID)
		pos++
	}
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
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
func (r *FuelLedgerRepo) ListPricedEntries(ctx context.Context, warehouseID, productID string, from, to time.Time) ([]costing.PricedEntry, error) {
	query := `
		SELECT id, quantity_liters, unit_cost, date
		FROM fuel_transactions
		WHERE warehouse_id = $1 AND product_id = $2 AND kind = 'ENTRY'
		  AND unit_cost > 0 AND date >= $3 AND date <= $4
		ORDER BY date ASC, created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, warehouseID, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list priced entries: %w", err)
	}
	defer rows.Close()
	var list []costing.PricedEntry
	for rows.Next() {
		var e costing.PricedEntry
		if err := rows.Scan(&e.ID, &e.Quantity, &e.UnitCost, &e.Date); err != nil {
			return nil, fmt.Errorf("scan priced entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListNonTransferConsumptions consumos que no son traslados en [from, to], ascendente por fecha.
func (r *FuelLedgerRepo) ListNonTransferConsumptions(ctx context.Context, warehouseID, productID string, from, to time.Time) ([]costing.Consumption, error) {
	query := `
		SELECT id, quantity_liters, date
		FROM fuel_transactions
		WHERE warehouse_id = $1 AND product_id = $2 AND kind = 'CONSUMPTION'
		  AND is_transfer = false AND date >= $3 AND date <= $4
		ORDER BY date ASC, created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, warehouseID, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	defer rows.Close()
	var list []costing.Consumption
	for rows.Next() {
		var c costing.Consumption
		if err := rows.Scan(&c.ID, &c.Quantity, &c.Date); err != nil {
			return nil, fmt.Errorf("scan consumption: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanFuelTransaction(row pgx.Row) (*entity.FuelTransaction, error) {
	var t entity.FuelTransaction
	var unitCost decimal.NullDecimal
	var linked, createdBy *string
	if err := row.Scan(&t.ID, &t.WarehouseID, &t.ProductID, &t.Kind, &t.QuantityLiters, &unitCost, &t.Date,
		&t.IsTransfer, &linked, &t.Notes, &t.CreatedAt, &createdBy); err != nil {
		return nil, err
	}
	if unitCost.Valid {
		c := unitCost.Decimal
		t.UnitCost = &c
	}
	if linked != nil {
		t.LinkedTransactionID = *linked
	}
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	return &t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
