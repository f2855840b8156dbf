package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LedgerRevenue = "Receita"
	LedgerExpense = "Despesa"
)

type LedgerEntry struct {
	Base
	Tenant
	WorkOrderID *uuid.UUID      `gorm:"type:uuid;index" json:"ordem_servico_id"`
	Type        string          `gorm:"type:varchar(20);not null;index" json:"tipo"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"valor"`
	Description string          `gorm:"type:text" json:"descricao"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// IsOrderRevenue reports whether the entry is the revenue posted for a work
// order, whose amount is owned by the order.
func (e LedgerEntry) IsOrderRevenue() bool {
	return e.Type == LedgerRevenue && e.WorkOrderID != nil
}
