package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/application/dto"
	pkgjwt "github.com/jhoicas/flota-api/pkg/jwt"
)

func TestCatalogAPI_AltaYConsulta(t *testing.T) {
	app := fuelApp(t)

	status, body := call(t, app, http.MethodPost, "/api/warehouses", pkgjwt.RoleAdmin, map[string]any{
		"plant_name": "Planta Centro", "name": "Tanque 1",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var wh dto.WarehouseResponse
	require.NoError(t, json.Unmarshal(body, &wh))
	assert.NotEmpty(t, wh.ID)
	assert.Equal(t, testCompanyID, wh.CompanyID)

	status, body = call(t, app, http.MethodGet, "/api/warehouses/"+wh.ID, pkgjwt.RoleConsulta, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = call(t, app, http.MethodPost, "/api/products", pkgjwt.RoleAdmin, map[string]any{
		"id": "diesel", "code": "diesel", "name": "Diésel",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "DIESEL", p.Code)

	status, body = call(t, app, http.MethodGet, "/api/products/"+urea, pkgjwt.RoleConsulta, nil)
	require.Equal(t, http.StatusOK, status, string(body))
}

func TestCatalogAPI_Errores(t *testing.T) {
	app := fuelApp(t)

	tests := []struct {
		name       string
		method     string
		path       string
		role       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"bodeguero no da de alta", http.MethodPost, "/api/warehouses", pkgjwt.RoleBodeguero, map[string]any{"name": "x"}, http.StatusForbidden, "FORBIDDEN"},
		{"bodega sin nombre", http.MethodPost, "/api/warehouses", pkgjwt.RoleAdmin, map[string]any{"name": " "}, http.StatusBadRequest, "VALIDATION"},
		{"bodega duplicada", http.MethodPost, "/api/warehouses", pkgjwt.RoleAdmin, map[string]any{"id": whNorte, "name": "x"}, http.StatusConflict, "CONFLICT"},
		{"código de producto inválido", http.MethodPost, "/api/products", pkgjwt.RoleAdmin, map[string]any{"code": "GASOLINA", "name": "x"}, http.StatusBadRequest, "VALIDATION"},
		{"producto duplicado", http.MethodPost, "/api/products", pkgjwt.RoleAdmin, map[string]any{"id": urea, "code": "UREA", "name": "x"}, http.StatusConflict, "CONFLICT"},
		{"bodega inexistente", http.MethodGet, "/api/warehouses/nope", pkgjwt.RoleConsulta, nil, http.StatusNotFound, "NOT_FOUND"},
		{"producto inexistente", http.MethodGet, "/api/products/nope", pkgjwt.RoleConsulta, nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.method, tt.path, tt.role, tt.body)
			assert.Equal(t, tt.wantStatus, status, string(body))
			assert.Equal(t, tt.wantCode, errorCode(t, body))
		})
	}
}
