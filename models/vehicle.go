package models

import "github.com/google/uuid"

type Vehicle struct {
	Base
	Tenant
	Plate      string     `gorm:"not null" json:"placa"`
	Model      string     `gorm:"not null" json:"modelo"`
	Make       string     `gorm:"not null" json:"marca"`
	Year       *int       `json:"ano"`
	Mileage    *int       `json:"km"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"cliente_id"`
}

func (Vehicle) TableName() string { return "vehicles" }
