package models

type Customer struct {
	Base
	Tenant
	Name   string `gorm:"not null" json:"nome"`
	Phone  string `json:"telefone"`
	Email  string `json:"email"`
	City   string `json:"cidade"`
	Status string `gorm:"type:varchar(20);default:'Ativo'" json:"status"`
}

func (Customer) TableName() string { return "customers" }
