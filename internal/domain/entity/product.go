package entity

import "time"

// Códigos de producto líquido manejados en bodega.
const (
	ProductCodeDiesel = "DIESEL"
	ProductCodeUrea   = "UREA"
)

// Product commodity fungible medido en litros.
type Product struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
