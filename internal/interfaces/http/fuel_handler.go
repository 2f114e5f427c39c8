package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// FuelHandler maneja el libro de combustible: entradas, consumos, traslados, costeo y valorización.
type FuelHandler struct {
	movements *inventory.FuelMovementUseCase
	valuation *inventory.ValuationUseCase
	log       *logger.Logger
}

// NewFuelHandler construye el handler.
func NewFuelHandler(movements *inventory.FuelMovementUseCase, valuation *inventory.ValuationUseCase, log *logger.Logger) *FuelHandler {
	return &FuelHandler{movements: movements, valuation: valuation, log: log}
}

// RegisterEntry godoc
// @Summary      Registrar entrada de combustible
// @Tags         fuel
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterEntryRequest  true  "warehouse_id, product_id, quantity_liters, unit_cost (opcional)"
// @Success      201   {object}  dto.FuelTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fuel/entries [post]
func (h *FuelHandler) RegisterEntry(c *fiber.Ctx) error {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RegisterEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.movements.RegisterEntryFromRequest(c.UserContext(), companyID, userID, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterConsumption godoc
// @Summary      Registrar consumo de combustible (costeo FIFO)
// @Tags         fuel
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterConsumptionRequest  true  "warehouse_id, product_id, quantity_liters"
// @Success      201   {object}  dto.ConsumptionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/fuel/consumptions [post]
func (h *FuelHandler) RegisterConsumption(c *fiber.Ctx) error {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RegisterConsumptionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.movements.RegisterConsumptionFromRequest(c.UserContext(), companyID, userID, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterTransfer godoc
// @Summary      Trasladar combustible entre bodegas
// @Description  El costo se calcula en la bodega origen y se escribe igual en ambas patas.
// @Tags         fuel
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterTransferRequest  true  "product_id, from_warehouse_id, to_warehouse_id, quantity_liters"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/fuel/transfers [post]
func (h *FuelHandler) RegisterTransfer(c *fiber.Ctx) error {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RegisterTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.movements.RegisterTransferFromRequest(c.UserContext(), companyID, userID, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CostPreview godoc
// @Summary      Costo FIFO de un retiro sin registrarlo
// @Tags         fuel
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        product_id    query  string  true   "Producto"
// @Param        quantity      query  string  true   "Litros"
// @Param        as_of         query  string  false  "RFC3339 o YYYY-MM-DD (vacío = ahora)"
// @Success      200  {object}  dto.WithdrawalCostResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/fuel/cost-preview [get]
func (h *FuelHandler) CostPreview(c *fiber.Ctx) error {
	companyID, _, ok := h.identity(c)
	if !ok {
		return unauthorized(c)
	}
	qty, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return badQuery(c, "quantity debe ser numérico")
	}
	asOf, err := parseTimeQuery(c.Query("as_of"), true)
	if err != nil {
		return badQuery(c, "as_of inválido")
	}
	cost, err := h.movements.PreviewCost(c.UserContext(), companyID, c.Query("warehouse_id"), c.Query("product_id"), qty, asOf)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.NewWithdrawalCostResponse(cost))
}

// Valuation godoc
// @Summary      Valorización FIFO de una bodega
// @Tags         fuel
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        product_id    query  string  true   "Producto"
// @Param        as_of         query  string  false  "Fecha de corte"
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/fuel/valuation [get]
func (h *FuelHandler) Valuation(c *fiber.Ctx) error {
	companyID, _, ok := h.identity(c)
	if !ok {
		return unauthorized(c)
	}
	asOf, err := parseTimeQuery(c.Query("as_of"), true)
	if err != nil {
		return badQuery(c, "as_of inválido")
	}
	out, err := h.valuation.Valuation(c.UserContext(), companyID, c.Query("warehouse_id"), c.Query("product_id"), asOf)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// ValuationPDF godoc
// @Summary      Valorización FIFO en PDF
// @Tags         fuel
// @Security     Bearer
// @Produce      application/pdf
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        product_id    query  string  true   "Producto"
// @Param        as_of         query  string  false  "Fecha de corte"
// @Success      200  {file}  binary
// @Router       /api/fuel/valuation.pdf [get]
func (h *FuelHandler) ValuationPDF(c *fiber.Ctx) error {
	companyID, _, ok := h.identity(c)
	if !ok {
		return unauthorized(c)
	}
	asOf, err := parseTimeQuery(c.Query("as_of"), true)
	if err != nil {
		return badQuery(c, "as_of inválido")
	}
	pdf, err := h.valuation.ValuationPDF(c.UserContext(), companyID, c.Query("warehouse_id"), c.Query("product_id"), asOf)
	if err != nil {
		return h.writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="valorizacion.pdf"`)
	return c.Send(pdf)
}

// ListTransactions godoc
// @Summary      Libro de combustible de una bodega
// @Tags         fuel
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        product_id    query  string  false  "Producto"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta"
// @Param        limit         query  int     false  "Máximo 100"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.FuelTransactionListResponse
// @Router       /api/fuel/transactions [get]
func (h *FuelHandler) ListTransactions(c *fiber.Ctx) error {
	companyID, _, ok := h.identity(c)
	if !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badQuery(c, "paginación inválida")
	}
	page.DefaultPage()
	from, err := parseTimeQuery(c.Query("from"), false)
	if err != nil {
		return badQuery(c, "from inválido")
	}
	to, err := parseTimeQuery(c.Query("to"), true)
	if err != nil {
		return badQuery(c, "to inválido")
	}
	list, err := h.movements.ListTransactions(c.UserContext(), companyID, c.Query("warehouse_id"), c.Query("product_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return h.writeError(c, err)
	}
	out := dto.FuelTransactionListResponse{
		Items: make([]dto.FuelTransactionResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(list)},
	}
	for _, t := range list {
		out.Items = append(out.Items, dto.NewFuelTransactionResponse(t))
	}
	return c.JSON(out)
}

func (h *FuelHandler) identity(c *fiber.Ctx) (companyID, userID string, ok bool) {
	companyID, userID = GetCompanyID(c), GetUserID(c)
	return companyID, userID, companyID != "" && userID != ""
}

// writeError traduce errores de dominio a HTTP.
func (h *FuelHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: domain.ErrInvalidQuantity.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto o bodega no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInsufficientPriceHistory):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_PRICE_HISTORY", Message: domain.ErrInsufficientPriceHistory.Error()})
	case errors.Is(err, domain.ErrLedgerRead):
		h.log.Error().Err(err).Str("path", c.Path()).Msg("lectura del libro falló")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LEDGER_UNAVAILABLE", Message: "no se pudo leer el libro, intente más tarde"})
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badQuery(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: msg})
}

// parseTimeQuery acepta RFC3339 o YYYY-MM-DD (UTC; con endOfDay, el último instante del día).
// Vacío = nil.
func parseTimeQuery(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return &d, nil
}
