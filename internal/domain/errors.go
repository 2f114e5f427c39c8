package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Costeo FIFO.
	ErrInvalidQuantity          = errors.New("la cantidad debe ser mayor a cero")
	ErrInsufficientPriceHistory = errors.New("no se puede determinar el costo histórico")
	ErrLedgerRead               = errors.New("no se pudo leer el libro de movimientos")
)
