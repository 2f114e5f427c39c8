package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/pkg/jwt"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	FuelMovement *inventory.FuelMovementUseCase
	Valuation    *inventory.ValuationUseCase
	Warehouses   *usecase.WarehouseUseCase
	Products     *usecase.ProductUseCase
	Logger       *logger.Logger
	JWTSecret    string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	fuel := api.Group("/fuel")
	h := NewFuelHandler(deps.FuelMovement, deps.Valuation, log.Component("http"))

	// Escrituras: solo admin y bodeguero
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	fuel.Post("/entries", writers, h.RegisterEntry)
	fuel.Post("/consumptions", writers, h.RegisterConsumption)
	fuel.Post("/transfers", writers, h.RegisterTransfer)

	// Lecturas: cualquier usuario autenticado de la empresa
	fuel.Get("/cost-preview", h.CostPreview)
	fuel.Get("/valuation", h.Valuation)
	fuel.Get("/valuation.pdf", h.ValuationPDF)
	fuel.Get("/transactions", h.ListTransactions)

	// Catálogo: altas solo admin
	admin := RequireRole(jwt.RoleAdmin)
	if deps.Warehouses != nil {
		wh := NewWarehouseHandler(deps.Warehouses, h)
		api.Post("/warehouses", admin, wh.Create)
		api.Get("/warehouses/:id", wh.GetByID)
	}
	if deps.Products != nil {
		ph := NewProductHandler(deps.Products, h)
		api.Post("/products", admin, ph.Create)
		api.Get("/products/:id", ph.GetByID)
	}
}
