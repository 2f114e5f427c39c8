package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/pkg/jwt"
)

func row(id, kind, qty string, cost string, date time.Time, transfer bool) dto.FuelTransactionResponse {
	r := dto.FuelTransactionResponse{
		ID: id, WarehouseID: "wh", ProductID: "diesel", Kind: kind,
		QuantityLiters: decimal.RequireFromString(qty), Date: date, IsTransfer: transfer,
	}
	if cost != "" {
		c := decimal.RequireFromString(cost)
		r.UnitCost = &c
	}
	return r
}

func writeSnapshot(t *testing.T, rows ...dto.FuelTransactionResponse) string {
	t.Helper()
	raw, err := json.Marshal(dto.FuelTransactionListResponse{Items: rows})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "libro.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func parseReplay(t *testing.T, args ...string) *ReplayCmd {
	t.Helper()
	var c struct {
		Replay ReplayCmd `cmd:""`
	}
	parser, err := kong.New(&c)
	require.NoError(t, err)
	_, err = parser.Parse(append([]string{"replay"}, args...))
	require.NoError(t, err)
	return &c.Replay
}

func TestReplay_FIFOSobreFoto(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC) }
	path := writeSnapshot(t,
		row("e1", entity.FuelKindEntry, "5000", "1.00", day(1), false),
		row("e2", entity.FuelKindEntry, "3000", "1.20", day(5), false),
		row("s0", entity.FuelKindEntry, "900", "", day(6), false),
		row("c1", entity.FuelKindConsumption, "6000", "", day(10), false),
		row("t1", entity.FuelKindConsumption, "500", "1.20", day(11), true),
	)

	cmd := parseReplay(t, "--file", path, "--warehouse", "wh", "--product", "diesel",
		"--quantity", "1000", "--as-of", "2026-01-12T00:00:00Z", "--lots")

	var out bytes.Buffer
	require.NoError(t, cmd.run(&out))

	var got costOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "fifo", got.Method)
	require.NotNil(t, got.UnitCost)
	assert.True(t, got.UnitCost.Equal(decimal.RequireFromString("1.2")), got.UnitCost.String())
	// La salida por traslado no se reproduce: queda un solo lote de 2000 L.
	require.Len(t, got.Lots, 1)
	assert.True(t, got.Lots[0].QuantityLiters.Equal(decimal.NewFromInt(2000)))
}

func TestReplay_SinHistorial(t *testing.T) {
	path := writeSnapshot(t,
		row("s0", entity.FuelKindEntry, "900", "", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), false),
	)
	cmd := parseReplay(t, "--file", path, "--warehouse", "wh", "--product", "diesel",
		"--quantity", "100", "--as-of", "2026-01-12T00:00:00Z")

	var out bytes.Buffer
	require.NoError(t, cmd.run(&out))
	assert.Contains(t, out.String(), `"method": "unknown"`)
	assert.Contains(t, out.String(), `"unit_cost": null`)
}

func TestReplay_CantidadInvalida(t *testing.T) {
	path := writeSnapshot(t)

	cmd := parseReplay(t, "--file", path, "--warehouse", "wh", "--product", "diesel", "--quantity", "diez")
	assert.Error(t, cmd.run(&bytes.Buffer{}))

	for _, q := range []string{"0", "-5", "0.0004"} {
		cmd := parseReplay(t, "--file", path, "--warehouse", "wh", "--product", "diesel", "--quantity="+q)
		var out bytes.Buffer
		err := cmd.run(&out)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, q)
		assert.Zero(t, out.Len(), "no debe imprimir costo para %s", q)
	}
}

// Una ventana de más de 100 filas llega en varias páginas; el solapamiento no duplica filas.
func TestReplay_VariasPaginas(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC) }
	e1 := row("e1", entity.FuelKindEntry, "5000", "1.00", day(1), false)
	e2 := row("e2", entity.FuelKindEntry, "3000", "1.20", day(5), false)
	c1 := row("c1", entity.FuelKindConsumption, "6000", "", day(10), false)
	newest := writeSnapshot(t, c1, e2)
	oldest := writeSnapshot(t, e2, e1)

	cmd := parseReplay(t, "--file", newest, "--file", oldest, "--warehouse", "wh", "--product", "diesel",
		"--quantity", "1000", "--as-of", "2026-01-12T00:00:00Z", "--lots")

	var out bytes.Buffer
	require.NoError(t, cmd.run(&out))

	var got costOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.NotNil(t, got.UnitCost)
	assert.True(t, got.UnitCost.Equal(decimal.RequireFromString("1.2")), got.UnitCost.String())
	require.Len(t, got.Lots, 1)
	assert.True(t, got.Lots[0].QuantityLiters.Equal(decimal.NewFromInt(2000)))
}

func TestToken_EmiteTokenValido(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")
	t.Setenv("LEDGER_DRIVER", "sqlite")

	var c struct {
		Token TokenCmd `cmd:""`
	}
	parser, err := kong.New(&c)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"token", "--user", "u-1", "--company", "co-1", "--role", "bodeguero"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.Token.run(&out))

	id, err := jwt.Parse("secreto-de-prueba", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{UserID: "u-1", CompanyID: "co-1", Role: jwt.RoleBodeguero}, id)
}

func TestToken_RolDesconocido(t *testing.T) {
	var c struct {
		Token TokenCmd `cmd:""`
	}
	parser, err := kong.New(&c)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"token", "--user", "u-1", "--company", "co-1", "--role", "root"})
	assert.Error(t, err)
}
