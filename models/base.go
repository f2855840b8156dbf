package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Base carries the application-generated UUID key and timestamps.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TenantOwned is implemented by every row that belongs to a workshop.
type TenantOwned interface {
	TableName() string
	SetTenantID(id uuid.UUID)
}

// Tenant is embedded by tenant-owned rows.
type Tenant struct {
	TenantID uuid.UUID `gorm:"type:uuid;index;not null" json:"oficina_id"`
}

func (t *Tenant) SetTenantID(id uuid.UUID) {
	t.TenantID = id
}

const (
	StatusActive   = "Ativo"
	StatusInactive = "Inativo"
)

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&Workshop{},
		&Customer{},
		&Vehicle{},
		&Service{},
		&Part{},
		&WorkOrder{},
		&WorkOrderService{},
		&LedgerEntry{},
		&User{},
		&NotificationTemplate{},
		&NotificationLog{},
	}
}
