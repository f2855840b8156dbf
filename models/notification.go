package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderFinalized = "order_finalized"

	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationTemplate is the per-workshop message for an event. Supported
// placeholders: [CustomerName], [Vehicle], [Total].
type NotificationTemplate struct {
	Base
	Tenant
	Event    string `gorm:"type:varchar(40);not null;index" json:"evento"`
	Message  string `gorm:"type:text;not null" json:"mensagem"`
	IsActive bool   `gorm:"not null" json:"ativo"`
}

func (NotificationTemplate) TableName() string { return "notification_templates" }

// DefaultOrderFinalizedMessage is used when a workshop has no template.
const DefaultOrderFinalizedMessage = "Olá [CustomerName], o serviço no seu [Vehicle] foi finalizado. Total: R$ [Total]."

type NotificationLog struct {
	Base
	Tenant
	CustomerID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"cliente_id"`
	WorkOrderID  *uuid.UUID `gorm:"type:uuid;index" json:"ordem_servico_id"`
	Event        string     `gorm:"type:varchar(40)" json:"evento"`
	Message      string     `gorm:"type:text" json:"mensagem"`
	Status       string     `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string     `gorm:"type:text" json:"erro,omitempty"`
	Channel      string     `gorm:"type:varchar(20)" json:"canal"` // whatsapp, sms
	SentAt       time.Time  `json:"enviado_em"`
}

func (NotificationLog) TableName() string { return "notification_logs" }
