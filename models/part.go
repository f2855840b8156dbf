package models

import "github.com/shopspring/decimal"

const (
	PartOutOfStock = "Sem Estoque"
	PartLowStock   = "Baixo"
	PartInStock    = "Em Estoque"
)

type Part struct {
	Base
	Tenant
	Name      string          `gorm:"not null" json:"nome"`
	Code      string          `gorm:"not null" json:"codigo"`
	Quantity  int             `gorm:"default:0" json:"quantidade"`
	Minimum   int             `gorm:"default:0" json:"minimo"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"preco_unitario"`
	Status    string          `gorm:"type:varchar(20)" json:"status"`
}

func (Part) TableName() string { return "parts" }

// StockStatus derives the stock label from quantity and minimum.
func StockStatus(quantity, minimum int) string {
	switch {
	case quantity <= 0:
		return PartOutOfStock
	case quantity <= minimum:
		return PartLowStock
	default:
		return PartInStock
	}
}
