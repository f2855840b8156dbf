package models

import "github.com/shopspring/decimal"

type Service struct {
	Base
	Tenant
	Name             string          `gorm:"not null" json:"nome"`
	Category         string          `json:"categoria"`
	EstimatedMinutes *int            `json:"tempo_estimado"`
	BasePrice        decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"preco_base"`
	Status           string          `gorm:"type:varchar(20);default:'Ativo'" json:"status"`
}

func (Service) TableName() string { return "services" }
