package dto

import "time"

// CreateProductRequest entrada para registrar un producto.
type CreateProductRequest struct {
	ID   string `json:"id,omitempty"` // opcional; vacío = UUID nuevo
	Code string `json:"code"`         // DIESEL | UREA
	Name string `json:"name"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
