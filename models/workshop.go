package models

// Workshop is the tenant ("oficina"). Every other row references one.
type Workshop struct {
	Base
	Name    string `gorm:"not null" json:"nome"`
	TaxID   string `gorm:"column:cnpj" json:"cnpj"`
	Phone   string `json:"telefone"`
	Email   string `json:"email"`
	Address string `json:"endereco"`
}

func (Workshop) TableName() string { return "workshops" }

// DefaultWorkshopName is used when a default tenant has to be materialized.
const DefaultWorkshopName = "Oficina Principal"
