package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appcosting "github.com/jhoicas/flota-api/internal/application/costing"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/flota-api/internal/infrastructure/pdf"
	"github.com/jhoicas/flota-api/internal/infrastructure/store"
	httpRouter "github.com/jhoicas/flota-api/internal/interfaces/http"
	"github.com/jhoicas/flota-api/pkg/config"
	"github.com/jhoicas/flota-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ledger_driver", cfg.Ledger.Driver).
		Msg("iniciando aplicación")

	params, err := cfg.Costing.Params()
	if err != nil {
		log.Fatal().Err(err).Msg("parámetros de costeo")
	}

	ctx := context.Background()
	ledger, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir libro de combustible")
	}
	defer ledger.Close()

	costs := appcosting.NewService(ledger.LedgerRepo, params)
	fuelUC := inventory.NewFuelMovementUseCase(
		ledger.TxRunner, costs, ledger.LedgerRepo, ledger.ProductRepo, ledger.WarehouseRepo, log,
	)
	valuationUC := inventory.NewValuationUseCase(
		costs, ledger.ProductRepo, ledger.WarehouseRepo, infrapdf.NewMarotoValuationGenerator(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Flota API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "ledger": cfg.Ledger.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		FuelMovement: fuelUC,
		Valuation:    valuationUC,
		Warehouses:   usecase.NewWarehouseUseCase(ledger.WarehouseRepo),
		Products:     usecase.NewProductUseCase(ledger.ProductRepo),
		Logger:       log,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
