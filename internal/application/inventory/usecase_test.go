package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcosting "github.com/jhoicas/flota-api/internal/application/costing"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/costing"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/flota-api/pkg/logger"
)

const (
	company = "co-1"
	user    = "user-1"
	whA     = "wh-a"
	whB     = "wh-b"
	whOther = "wh-otra"
	diesel  = "diesel"
)

type fixture struct {
	store     *sqlite.Store
	fuel      *inventory.FuelMovementUseCase
	valuation *inventory.ValuationUseCase
	pdf       *fakePDF
}

type fakePDF struct {
	report *inventory.ValuationReport
}

func (f *fakePDF) GenerateValuationPDF(_ context.Context, r *inventory.ValuationReport) ([]byte, error) {
	f.report = r
	return []byte("%PDF-1.4"), nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now()
	for _, wh := range []entity.Warehouse{
		{ID: whA, CompanyID: company, PlantName: "Planta Norte", Name: "Bodega A"},
		{ID: whB, CompanyID: company, PlantName: "Planta Sur", Name: "Bodega B"},
		{ID: whOther, CompanyID: "co-2", PlantName: "Otra", Name: "Bodega ajena"},
	} {
		wh := wh
		wh.CreatedAt, wh.UpdatedAt = now, now
		require.NoError(t, store.WarehouseRepository().Create(ctx, &wh))
	}
	require.NoError(t, store.ProductRepository().Create(ctx, &entity.Product{
		ID: diesel, CompanyID: company, Code: entity.ProductCodeDiesel, Name: "Diésel", CreatedAt: now, UpdatedAt: now,
	}))

	costs := appcosting.NewService(store.LedgerRepository(), costing.DefaultParams())
	pdf := &fakePDF{}
	return &fixture{
		store: store,
		fuel: inventory.NewFuelMovementUseCase(store, costs, store.LedgerRepository(),
			store.ProductRepository(), store.WarehouseRepository(), logger.Nop()),
		valuation: inventory.NewValuationUseCase(costs, store.ProductRepository(), store.WarehouseRepository(), pdf),
		pdf:       pdf,
	}
}

var base = time.Now().UTC().Truncate(time.Second).AddDate(0, 0, -20)

func day(n int) *time.Time {
	t := base.AddDate(0, 0, n)
	return &t
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func dp(v string) *decimal.Decimal {
	x := d(v)
	return &x
}

func (f *fixture) entry(t *testing.T, wh, qty string, cost *decimal.Decimal, date *time.Time) {
	t.Helper()
	_, err := f.fuel.RegisterEntry(context.Background(), inventory.EntryInput{
		CompanyID: company, UserID: user, WarehouseID: wh, ProductID: diesel,
		QuantityLiters: d(qty), UnitCost: cost, Date: date,
	})
	require.NoError(t, err)
}

func (f *fixture) consume(wh, qty string, date *time.Time) (*inventory.ConsumptionResult, error) {
	return f.fuel.RegisterConsumption(context.Background(), inventory.ConsumptionInput{
		CompanyID: company, UserID: user, WarehouseID: wh, ProductID: diesel,
		QuantityLiters: d(qty), Date: date,
	})
}

func (f *fixture) stock(t *testing.T, wh string) decimal.Decimal {
	t.Helper()
	st, err := f.store.StockRepository().Get(context.Background(), diesel, wh)
	require.NoError(t, err)
	return st.QuantityLiters
}

func (f *fixture) rows(t *testing.T, wh string) []*entity.FuelTransaction {
	t.Helper()
	list, err := f.store.LedgerRepository().ListByWarehouse(context.Background(), wh, diesel, nil, nil, 100, 0)
	require.NoError(t, err)
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterConsumption_FIFOPuro(t *testing.T) {
	f := newFixture(t)
	f.entry(t, whA, "5000", dp("1.00"), day(1))
	f.entry(t, whA, "3000", dp("1.20"), day(5))

	res, err := f.consume(whA, "6000", day(10))
	require.NoError(t, err)
	assert.Equal(t, costing.MethodFIFO, res.Cost.Method)
	assert.True(t, res.Cost.TotalCost.Equal(d("6200")), res.Cost.TotalCost.String())
	assert.True(t, res.Cost.MatchedLiters.Equal(d("6000")))
	assert.True(t, f.stock(t, whA).Equal(d("2000")))

	row, err := f.store.LedgerRepository().GetByID(context.Background(), res.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Nil(t, row.UnitCost, "el consumo no guarda costo")
	assert.False(t, row.IsTransfer)
}

func TestRegisterConsumption_SinHistorialRechaza(t *testing.T) {
	f := newFixture(t)
	f.entry(t, whA, "1000", nil, day(1))

	res, err := f.consume(whA, "500", day(2))
	assert.ErrorIs(t, err, domain.ErrInsufficientPriceHistory)
	assert.Nil(t, res)
	assert.True(t, f.stock(t, whA).Equal(d("1000")), "no se descuenta saldo")
	assert.Len(t, f.rows(t, whA), 1, "no se escribe el consumo")
}

func TestRegisterConsumption_PromedioDeRespaldo(t *testing.T) {
	f := newFixture(t)
	f.entry(t, whA, "1000", dp("1.00"), day(1))
	_, err := f.consume(whA, "500", day(2))
	require.NoError(t, err)
	// Stock sin costo para que el saldo alcance.
	f.entry(t, whA, "100", nil, day(2))

	res, err := f.consume(whA, "600", day(3))
	require.NoError(t, err)
	assert.Equal(t, costing.MethodWeightedAverage, res.Cost.Method)
	assert.True(t, res.Cost.MatchedLiters.Equal(d("500")))
	assert.True(t, res.Cost.UnmatchedLiters.Equal(d("100")))
	assert.True(t, res.Cost.TotalCost.Equal(d("600")), res.Cost.TotalCost.String())
	unit, err := res.Cost.Require()
	require.NoError(t, err)
	assert.True(t, unit.Equal(d("1")))
}

func TestRegisterConsumption_SaldoInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.entry(t, whA, "100", dp("1.00"), day(1))

	_, err := f.consume(whA, "150", day(2))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, whA).Equal(d("100")))
}

func TestRegisterConsumption_Validaciones(t *testing.T) {
	f := newFixture(t)

	_, err := f.consume(whA, "0", day(1))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.consume(whA, "-3", day(1))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.consume("no-existe", "10", day(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.consume(whOther, "10", day(1))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.fuel.RegisterEntry(context.Background(), inventory.EntryInput{
		CompanyID: company, WarehouseID: whA, ProductID: diesel, QuantityLiters: d("10"), UnitCost: dp("0"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// El libro guarda litros con 3 decimales y costos con 6.
	_, err = f.consume(whA, "0.0004", day(1))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.fuel.RegisterEntry(context.Background(), inventory.EntryInput{
		CompanyID: company, WarehouseID: whA, ProductID: diesel, QuantityLiters: d("10.1234"), UnitCost: dp("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.fuel.RegisterEntry(context.Background(), inventory.EntryInput{
		CompanyID: company, WarehouseID: whA, ProductID: diesel, QuantityLiters: d("10"), UnitCost: dp("1.1234567"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.rows(t, whA))
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterTransfer_CostoViajaConElProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.entry(t, whA, "5000", dp("1.00"), day(1))
	f.entry(t, whA, "3000", dp("1.20"), day(5))
	_, err := f.consume(whA, "6000", day(10))
	require.NoError(t, err)
	// Historial propio de B a otro precio: no debe influir en el traslado.
	f.entry(t, whB, "200", dp("2.00"), day(1))

	preview, err := f.fuel.PreviewCost(ctx, company, whA, diesel, d("1000"), day(11))
	require.NoError(t, err)

	res, err := f.fuel.RegisterTransfer(ctx, inventory.TransferInput{
		CompanyID: company, UserID: user, ProductID: diesel,
		FromWarehouseID: whA, ToWarehouseID: whB, QuantityLiters: d("1000"), Date: day(11),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStateBothLegsWritten, res.State)
	assert.True(t, res.UnitCost.Equal(d("1.2")), res.UnitCost.String())
	assert.True(t, res.Cost.TotalCost.Equal(d("1200")))
	previewUnit, _ := preview.UnitCost()
	assert.True(t, res.UnitCost.Equal(previewUnit))

	out, err := f.store.LedgerRepository().GetByID(ctx, res.OutTransactionID)
	require.NoError(t, err)
	in, err := f.store.LedgerRepository().GetByID(ctx, res.InTransactionID)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.NotNil(t, in)
	assert.Equal(t, entity.FuelKindConsumption, out.Kind)
	assert.Equal(t, entity.FuelKindEntry, in.Kind)
	assert.True(t, out.IsTransfer && in.IsTransfer)
	assert.Equal(t, in.ID, out.LinkedTransactionID)
	assert.Equal(t, out.ID, in.LinkedTransactionID)
	require.NotNil(t, in.UnitCost)
	assert.True(t, in.UnitCost.Equal(res.UnitCost))

	assert.True(t, f.stock(t, whA).Equal(d("1000")))
	assert.True(t, f.stock(t, whB).Equal(d("1200")))

	// En B la entrada trasladada es un lote más: 200 @ 2.00 primero, luego 100 @ 1.20.
	cons, err := f.consume(whB, "300", day(12))
	require.NoError(t, err)
	assert.Equal(t, costing.MethodFIFO, cons.Cost.Method)
	assert.True(t, cons.Cost.TotalCost.Equal(d("520")), cons.Cost.TotalCost.String())
}

// Con un costo que no divide exacto, ambas patas guardan el mismo valor que se devuelve.
func TestRegisterTransfer_CostoNoExacto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.entry(t, whA, "5000", dp("1.00"), day(1))
	f.entry(t, whA, "3000", dp("1.20"), day(5))

	preview, err := f.fuel.PreviewCost(ctx, company, whA, diesel, d("6000"), day(10))
	require.NoError(t, err)

	res, err := f.fuel.RegisterTransfer(ctx, inventory.TransferInput{
		CompanyID: company, UserID: user, ProductID: diesel,
		FromWarehouseID: whA, ToWarehouseID: whB, QuantityLiters: d("6000"), Date: day(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "1.033333", res.UnitCost.String())
	assert.True(t, res.UnitCost.Equal(res.UnitCost.Truncate(costing.UnitCostScale)))
	previewUnit, ok := preview.UnitCost()
	require.True(t, ok)
	assert.True(t, res.UnitCost.Equal(previewUnit))

	for _, id := range []string{res.OutTransactionID, res.InTransactionID} {
		row, err := f.store.LedgerRepository().GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, row)
		require.NotNil(t, row.UnitCost)
		assert.True(t, row.UnitCost.Equal(res.UnitCost), "%s: %s != %s", id, row.UnitCost, res.UnitCost)
	}

	// En B el lote trasladado se consume al mismo costo unitario.
	cons, err := f.consume(whB, "6000", day(11))
	require.NoError(t, err)
	unit, err := cons.Cost.Require()
	require.NoError(t, err)
	assert.True(t, unit.Equal(res.UnitCost), unit.String())
}

func TestRegisterTransfer_SinHistorialNoEscribe(t *testing.T) {
	f := newFixture(t)
	f.entry(t, whA, "500", nil, day(1))

	res, err := f.fuel.RegisterTransfer(context.Background(), inventory.TransferInput{
		CompanyID: company, UserID: user, ProductID: diesel,
		FromWarehouseID: whA, ToWarehouseID: whB, QuantityLiters: d("100"), Date: day(2),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPriceHistory)
	require.NotNil(t, res)
	assert.Equal(t, entity.TransferStateRejected, res.State)
	assert.Len(t, f.rows(t, whA), 1)
	assert.Empty(t, f.rows(t, whB))
	assert.True(t, f.stock(t, whA).Equal(d("500")))
	assert.True(t, f.stock(t, whB).IsZero())
}

func TestRegisterTransfer_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.fuel.RegisterTransfer(ctx, inventory.TransferInput{
		CompanyID: company, ProductID: diesel, FromWarehouseID: whA, ToWarehouseID: whA, QuantityLiters: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.fuel.RegisterTransfer(ctx, inventory.TransferInput{
		CompanyID: company, ProductID: diesel, FromWarehouseID: whA, ToWarehouseID: whOther, QuantityLiters: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.fuel.RegisterTransfer(ctx, inventory.TransferInput{
		CompanyID: company, ProductID: diesel, FromWarehouseID: whA, ToWarehouseID: whB, QuantityLiters: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterConsumption_ConcurrentesNoDuplicanLotes(t *testing.T) {
	f := newFixture(t)
	f.entry(t, whA, "100", dp("1.00"), day(1))
	f.entry(t, whA, "100", dp("2.00"), day(2))

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := decimal.Zero
	failures := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.consume(whA, "10", day(3))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				return
			}
			total = total.Add(res.Cost.TotalCost)
		}()
	}
	wg.Wait()

	assert.Zero(t, failures)
	// 200 litros: los primeros 100 a 1.00 y los siguientes 100 a 2.00, sin importar el orden.
	assert.True(t, total.Equal(d("300")), total.String())
	assert.True(t, f.stock(t, whA).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.entry(t, whA, "100", dp("1.00"), day(1))
	_, err := f.consume(whA, "10", day(2))
	require.NoError(t, err)

	list, err := f.fuel.ListTransactions(ctx, company, whA, diesel, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.FuelKindConsumption, list[0].Kind)

	_, err = f.fuel.ListTransactions(ctx, company, whOther, "", nil, nil, 10, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestValuation_LotesSobrevivientes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.entry(t, whA, "100", dp("1.00"), day(1))
	f.entry(t, whA, "100", dp("1.50"), day(2))
	_, err := f.consume(whA, "150", day(3))
	require.NoError(t, err)

	v, err := f.valuation.Valuation(ctx, company, whA, diesel, day(4))
	require.NoError(t, err)
	require.Len(t, v.Lots, 1)
	assert.True(t, v.Lots[0].QuantityLiters.Equal(d("50")))
	assert.True(t, v.TotalValue.Equal(d("75")))
	require.NotNil(t, v.WeightedUnitCost)
	assert.True(t, v.WeightedUnitCost.Equal(d("1.5")))

	empty, err := f.valuation.Valuation(ctx, company, whB, diesel, day(4))
	require.NoError(t, err)
	assert.Empty(t, empty.Lots)
	assert.Nil(t, empty.WeightedUnitCost)

	pdf, err := f.valuation.ValuationPDF(ctx, company, whA, diesel, day(4))
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	require.NotNil(t, f.pdf.report)
	assert.Equal(t, "Bodega A", f.pdf.report.Warehouse.Name)

	_, err = f.valuation.Valuation(ctx, company, whOther, diesel, day(4))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
