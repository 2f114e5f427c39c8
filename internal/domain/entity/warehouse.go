package entity

import "time"

// Warehouse representa la bodega de combustible de una planta.
type Warehouse struct {
	ID        string
	CompanyID string
	PlantName string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
