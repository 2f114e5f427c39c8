// Package sqlite implementa los puertos del libro de combustible sobre SQLite.
//
// Pensado para desarrollo local (LEDGER_DRIVER=sqlite) y pruebas con ":memory:".
// Las mismas tablas que en PostgreSQL; fechas como TEXT UTC de ancho fijo (ordenables
// lexicográficamente) y cantidades/costos como TEXT decimal exacto.
//
// Concurrencia: una sola conexión abierta y un mutex de escritura. Toda transacción de
// Run queda serializada, lo que cumple la exclusión por (bodega, producto) que en
// PostgreSQL da el advisory lock.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// timeLayout UTC con nanosegundos de ancho fijo.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// querier operaciones comunes a *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store base SQLite con repositorios y TxRunner.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New abre (o crea) la base en dbPath y aplica el esquema. ":memory:" para pruebas.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Una conexión: ":memory:" es por conexión y así las escrituras quedan serializadas.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrar sqlite: %w", err)
	}
	return s, nil
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS warehouses (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		plant_name TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (company_id, code)
	);

	CREATE TABLE IF NOT EXISTS fuel_transactions (
		id TEXT PRIMARY KEY,
		warehouse_id TEXT NOT NULL REFERENCES warehouses(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		kind TEXT NOT NULL CHECK (kind IN ('ENTRY', 'CONSUMPTION')),
		quantity_liters TEXT NOT NULL,
		unit_cost TEXT,
		date TEXT NOT NULL,
		is_transfer INTEGER NOT NULL DEFAULT 0,
		linked_transaction_id TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		created_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_fuel_transactions_wh_product_date
		ON fuel_transactions (warehouse_id, product_id, date, kind);

	CREATE TABLE IF NOT EXISTS fuel_stock (
		product_id TEXT NOT NULL REFERENCES products(id),
		warehouse_id TEXT NOT NULL REFERENCES warehouses(id),
		quantity_liters TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (product_id, warehouse_id)
	);`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// LedgerRepository libro sobre la conexión principal (lecturas fuera de transacción).
func (s *Store) LedgerRepository() *LedgerRepo { return &LedgerRepo{q: s.db} }

// StockRepository saldos sobre la conexión principal.
func (s *Store) StockRepository() *StockRepo { return &StockRepo{q: s.db} }

// WarehouseRepository bodegas.
func (s *Store) WarehouseRepository() *WarehouseRepo { return &WarehouseRepo{q: s.db} }

// ProductRepository productos.
func (s *Store) ProductRepository() *ProductRepo { return &ProductRepo{q: s.db} }

// Run ejecuta fn en una transacción serializada; Commit si fn no falla, si no Rollback.
func (s *Store) Run(ctx context.Context, fn func(
	ledgerRepo repository.FuelLedgerRepository,
	stockRepo repository.StockRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&LedgerRepo{q: tx}, &StockRepo{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
