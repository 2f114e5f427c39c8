// Package store abre el libro de combustible con el driver configurado (LEDGER_DRIVER).
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/infrastructure/postgres"
	"github.com/jhoicas/flota-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/flota-api/pkg/config"
)

// Ledger repositorios y TxRunner de un driver. Close libera conexiones.
type Ledger struct {
	TxRunner      inventory.TxRunner
	LedgerRepo    repository.FuelLedgerRepository
	ProductRepo   repository.ProductRepository
	WarehouseRepo repository.WarehouseRepository
	Close         func()
}

// Open conecta y migra el almacenamiento indicado en cfg.Ledger.
func Open(ctx context.Context, cfg *config.Config) (*Ledger, error) {
	switch cfg.Ledger.Driver {
	case config.LedgerDriverSQLite:
		return openSQLite(cfg.Ledger.SQLitePath)
	case config.LedgerDriverPostgres:
		return openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("driver de libro desconocido: %q", cfg.Ledger.Driver)
	}
}

func openSQLite(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("crear directorio sqlite: %w", err)
		}
	}
	s, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		TxRunner:      s,
		LedgerRepo:    s.LedgerRepository(),
		ProductRepo:   s.ProductRepository(),
		WarehouseRepo: s.WarehouseRepository(),
		Close:         func() { _ = s.Close() },
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Ledger, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Ledger{
		TxRunner:      postgres.NewTxRunner(pool, cfg.Ledger.TxMaxAttempts),
		LedgerRepo:    postgres.NewFuelLedgerRepository(pool),
		ProductRepo:   postgres.NewProductRepository(pool),
		WarehouseRepo: postgres.NewWarehouseRepository(pool),
		Close:         pool.Close,
	}, nil
}
