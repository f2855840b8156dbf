package models

import (
	"time"
)

type User struct {
	Base
	Tenant
	Name       string     `gorm:"not null" json:"nome"`
	Email      string     `gorm:"uniqueIndex;not null" json:"email"`
	Role       string     `gorm:"type:varchar(40)" json:"cargo"`
	Department string     `gorm:"type:varchar(60)" json:"departamento"`
	Password   string     `gorm:"not null" json:"-"`
	Status     string     `gorm:"type:varchar(20);default:'Ativo'" json:"status"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string { return "users" }

func (u User) IsActive() bool {
	return u.Status == StatusActive
}
