package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusOpen      = "Aberta"
	OrderStatusFinalized = "Finalizada"
)

// MaxOrderTotal is the largest value a decimal(10,2) total column holds.
var MaxOrderTotal = decimal.RequireFromString("99999999.99")

type WorkOrder struct {
	Base
	Tenant
	CustomerID uuid.UUID       `gorm:"type:uuid;index;not null" json:"cliente_id"`
	VehicleID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"veiculo_id"`
	Status     string          `gorm:"type:varchar(40);not null" json:"status"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	Note       string          `gorm:"type:text" json:"observacao"`

	Services []WorkOrderService `gorm:"foreignKey:WorkOrderID" json:"-"`
}

func (WorkOrder) TableName() string { return "work_orders" }

// IsFinalized reports whether the order is in the terminal status that
// requires a revenue entry.
func (o WorkOrder) IsFinalized() bool {
	return IsFinalizedStatus(o.Status)
}

func IsFinalizedStatus(status string) bool {
	s := strings.TrimSpace(status)
	return strings.EqualFold(s, OrderStatusFinalized) || strings.EqualFold(s, "Finalized")
}

// WorkOrderService associates a work order with one service. The same
// service may appear more than once on an order.
type WorkOrderService struct {
	Base
	Tenant
	WorkOrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"ordem_servico_id"`
	ServiceID   uuid.UUID `gorm:"type:uuid;index;not null" json:"servico_id"`
}

func (WorkOrderService) TableName() string { return "work_order_services" }
