package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	appcosting "github.com/jhoicas/flota-api/internal/application/costing"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/infrastructure/store"
	"github.com/jhoicas/flota-api/pkg/config"
	"github.com/jhoicas/flota-api/pkg/jwt"
)

// CostFlags parámetros comunes de un retiro.
type CostFlags struct {
	Warehouse string    `help:"ID de la bodega." required:""`
	Product   string    `help:"ID del producto." required:""`
	Quantity  string    `help:"Litros a retirar." required:""`
	AsOf      time.Time `help:"Fecha de corte (RFC3339). Vacío = ahora." name:"as-of"`
}

func (f CostFlags) quantity() (decimal.Decimal, error) {
	q, err := decimal.NewFromString(f.Quantity)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--quantity: %w", err)
	}
	if err := costing.CheckQuantity(q); err != nil {
		return decimal.Zero, fmt.Errorf("--quantity %s: %w", f.Quantity, err)
	}
	return q, nil
}

func (f CostFlags) cutoff() time.Time {
	if f.AsOf.IsZero() {
		return time.Now()
	}
	return f.AsOf
}

// costOutput salida JSON de replay y preview.
type costOutput struct {
	dto.WithdrawalCostResponse
	Lots []dto.LotDTO `json:"lots,omitempty"`
}

// ReplayCmd costea sobre una foto del libro con el mismo formato que GET /api/fuel/transactions.
// La API pagina de a 100 filas como máximo: se pasan todas las páginas que cubren la
// ventana, una por --file; las filas repetidas entre páginas se cuentan una vez.
type ReplayCmd struct {
	CostFlags
	Files        []string `help:"Página del libro (JSON de /api/fuel/transactions, máx. 100 filas). Repetir por cada página de la ventana." name:"file" sep:"none" required:""`
	LookbackDays int    `help:"Ventana histórica en días." default:"45"`
	Epsilon      string `help:"Tolerancia en litros." default:"0.01"`
	Lots         bool   `help:"Incluir los lotes que sobreviven al corte."`
}

func (cmd *ReplayCmd) Run(ctx *kong.Context) error {
	return cmd.run(ctx.Stdout)
}

func (cmd *ReplayCmd) run(w io.Writer) error {
	qty, err := cmd.quantity()
	if err != nil {
		return err
	}
	params, err := config.CostingConfig{LookbackDays: cmd.LookbackDays, EpsilonLiters: cmd.Epsilon}.Params()
	if err != nil {
		return err
	}
	rows, err := readPages(cmd.Files)
	if err != nil {
		return err
	}
	entries, consumptions := splitLedger(rows, cmd.Warehouse, cmd.Product)

	asOf := cmd.cutoff()
	cost, err := costing.Price(entries, consumptions, qty, asOf, params)
	if err != nil {
		return err
	}
	out := costOutput{WithdrawalCostResponse: dto.NewWithdrawalCostResponse(cost)}
	if cmd.Lots {
		for _, l := range costing.Reconstruct(entries, consumptions, asOf, params) {
			out.Lots = append(out.Lots, dto.LotDTO{
				EntryID: l.EntryID, EntryDate: l.EntryDate, QuantityLiters: l.Quantity, UnitCost: l.UnitCost, Value: l.Value(),
			})
		}
	}
	return writeJSON(w, out)
}

// readPages une las páginas del libro descartando filas repetidas por ID.
func readPages(paths []string) ([]dto.FuelTransactionResponse, error) {
	seen := make(map[string]struct{})
	var rows []dto.FuelTransactionResponse
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("leer foto del libro: %w", err)
		}
		var page dto.FuelTransactionListResponse
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("leer foto del libro %s: %w", path, err)
		}
		for _, r := range page.Items {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// splitLedger separa filas de la bodega/producto en entradas con costo y consumos.
func splitLedger(rows []dto.FuelTransactionResponse, warehouseID, productID string) ([]costing.PricedEntry, []costing.Consumption) {
	var entries []costing.PricedEntry
	var consumptions []costing.Consumption
	for _, r := range rows {
		if r.WarehouseID != warehouseID || r.ProductID != productID {
			continue
		}
		switch r.Kind {
		case entity.FuelKindEntry:
			if r.UnitCost == nil || !r.UnitCost.IsPositive() {
				continue
			}
			entries = append(entries, costing.PricedEntry{ID: r.ID, Quantity: r.QuantityLiters, UnitCost: *r.UnitCost, Date: r.Date})
		case entity.FuelKindConsumption:
			consumptions = append(consumptions, costing.Consumption{ID: r.ID, Quantity: r.QuantityLiters, Date: r.Date, IsTransfer: r.IsTransfer})
		}
	}
	return entries, consumptions
}

// StoreFlags conexión al libro configurado.
type StoreFlags struct {
	EnvFile string `help:"Archivo .env a cargar antes de leer la configuración." type:"existingfile" name:"env-file"`
}

func (f StoreFlags) config() (*config.Config, error) {
	if f.EnvFile != "" {
		if err := godotenv.Load(f.EnvFile); err != nil {
			return nil, fmt.Errorf("cargar %s: %w", f.EnvFile, err)
		}
	}
	return config.Load()
}

func (f StoreFlags) open(ctx context.Context) (*store.Ledger, *config.Config, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, nil, err
	}
	l, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return l, cfg, nil
}

// PreviewCmd costea contra el libro en vivo, sin escribir.
type PreviewCmd struct {
	CostFlags
	StoreFlags
}

func (cmd *PreviewCmd) Run(ctx *kong.Context) error {
	qty, err := cmd.quantity()
	if err != nil {
		return err
	}
	bg := context.Background()
	l, cfg, err := cmd.open(bg)
	if err != nil {
		return err
	}
	defer l.Close()

	params, err := cfg.Costing.Params()
	if err != nil {
		return err
	}
	cost, err := appcosting.NewService(l.LedgerRepo, params).
		ComputeWithdrawalCost(bg, cmd.Warehouse, cmd.Product, qty, cmd.cutoff())
	if err != nil {
		return err
	}
	return writeJSON(ctx.Stdout, costOutput{WithdrawalCostResponse: dto.NewWithdrawalCostResponse(cost)})
}

// WarehouseCmd alta de bodega.
type WarehouseCmd struct {
	StoreFlags
	ID      string `help:"ID de la bodega (vacío = UUID)."`
	Company string `help:"ID de la empresa." required:""`
	Plant   string `help:"Nombre de la planta."`
	Name    string `help:"Nombre de la bodega." required:""`
}

func (cmd *WarehouseCmd) Run(ctx *kong.Context) error {
	bg := context.Background()
	l, _, err := cmd.open(bg)
	if err != nil {
		return err
	}
	defer l.Close()

	wh, err := usecase.NewWarehouseUseCase(l.WarehouseRepo).Create(bg, cmd.Company, dto.CreateWarehouseRequest{
		ID: cmd.ID, PlantName: cmd.Plant, Name: cmd.Name,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(ctx.Stdout, "bodega %s registrada\n", wh.ID)
	return nil
}

// ProductCmd alta de producto.
type ProductCmd struct {
	StoreFlags
	ID      string `help:"ID del producto (vacío = UUID)."`
	Company string `help:"ID de la empresa." required:""`
	Code    string `help:"Código." enum:"DIESEL,UREA" required:""`
	Name    string `help:"Nombre." required:""`
}

func (cmd *ProductCmd) Run(ctx *kong.Context) error {
	bg := context.Background()
	l, _, err := cmd.open(bg)
	if err != nil {
		return err
	}
	defer l.Close()

	p, err := usecase.NewProductUseCase(l.ProductRepo).Create(bg, cmd.Company, dto.CreateProductRequest{
		ID: cmd.ID, Code: cmd.Code, Name: cmd.Name,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(ctx.Stdout, "producto %s registrado\n", p.ID)
	return nil
}

// TokenCmd emite un Bearer Token firmado con JWT_SECRET para un usuario de planta.
type TokenCmd struct {
	StoreFlags
	User    string `help:"ID del usuario." required:""`
	Company string `help:"ID de la empresa." required:""`
	Role    string `help:"Rol." enum:"admin,bodeguero,consulta" default:"consulta"`
}

func (cmd *TokenCmd) Run(ctx *kong.Context) error {
	return cmd.run(ctx.Stdout)
}

func (cmd *TokenCmd) run(w io.Writer) error {
	cfg, err := cmd.config()
	if err != nil {
		return err
	}
	signer := jwt.Signer{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.Expiration) * time.Minute,
	}
	token, err := signer.Sign(jwt.Identity{UserID: cmd.User, CompanyID: cmd.Company, Role: cmd.Role})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func writeJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
