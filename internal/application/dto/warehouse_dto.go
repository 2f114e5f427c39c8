package dto

import "time"

// CreateWarehouseRequest entrada para registrar una bodega.
type CreateWarehouseRequest struct {
	ID        string `json:"id,omitempty"` // opcional; vacío = UUID nuevo
	PlantName string `json:"plant_name"`
	Name      string `json:"name"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	PlantName string    `json:"plant_name"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
