package services

import (
	"context"
	"fmt"
	"strings"

	"oficina-backend/models"
	"oficina-backend/repository"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerInput struct {
	Name   string
	Phone  string
	Email  string
	City   string
	Status string
}

type CustomerRow struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"nome"`
	Phone      string    `json:"telefone"`
	Email      string    `json:"email"`
	City       string    `json:"cidade"`
	Status     string    `json:"status"`
	OrderCount int64     `json:"total_servicos"`
}

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func normalizeStatus(status string) (string, error) {
	switch s := strings.TrimSpace(status); s {
	case "":
		return models.StatusActive, nil
	case models.StatusActive, models.StatusInactive:
		return s, nil
	default:
		return "", utils.ValidationError("status must be %s or %s", models.StatusActive, models.StatusInactive)
	}
}

func (in CustomerInput) apply(c *models.Customer) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return utils.ValidationError("name is required")
	}
	if in.Phone != "" && !utils.ValidatePhone(in.Phone) {
		return utils.ValidationError("invalid phone number format")
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return err
	}
	c.Name = name
	c.Phone = in.Phone
	c.Email = strings.TrimSpace(in.Email)
	c.City = in.City
	c.Status = status
	return nil
}

// List returns the tenant's customers with how many work orders each has.
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID) ([]CustomerRow, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	rows := []CustomerRow{}
	q := t.Table(ctx, "customers", "c").
		Select("c.id, c.name, c.phone, c.email, c.city, c.status, COUNT(o.id) AS order_count")
	q = t.JoinScoped(q, "LEFT", "work_orders", "o", "o.customer_id = c.id")
	if err := q.Group("c.id, c.name, c.phone, c.email, c.city, c.status").
		Order("c.name").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return rows, nil
}

func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, in CustomerInput) (*models.Customer, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var customer models.Customer
	if err := in.apply(&customer); err != nil {
		return nil, err
	}
	if err := t.Create(ctx, &customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &customer, nil
}

func (s *CustomerService) Update(ctx context.Context, tenantID, id uuid.UUID, in CustomerInput) (*models.Customer, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var customer models.Customer
	if err := t.First(ctx, &customer, id); err != nil {
		return nil, notFoundOr(err, "customer")
	}
	if err := in.apply(&customer); err != nil {
		return nil, err
	}
	if err := t.Save(ctx, &customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return &customer, nil
}

// Delete refuses while work orders or vehicles still point at the customer.
func (s *CustomerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return err
	}
	return t.Transaction(ctx, func(tx *repository.TenantDB) error {
		if ok, err := tx.Exists(ctx, &models.Customer{}, id); err != nil {
			return fmt.Errorf("check customer: %w", err)
		} else if !ok {
			return utils.NotFoundError("customer not found")
		}

		var orders, vehicles int64
		if err := tx.Model(ctx, &models.WorkOrder{}).Where("customer_id = ?", id).Count(&orders).Error; err != nil {
			return fmt.Errorf("count work orders: %w", err)
		}
		if orders > 0 {
			return utils.ConflictError("cannot delete a customer that has work orders")
		}
		if err := tx.Model(ctx, &models.Vehicle{}).Where("customer_id = ?", id).Count(&vehicles).Error; err != nil {
			return fmt.Errorf("count vehicles: %w", err)
		}
		if vehicles > 0 {
			return utils.ConflictError("cannot delete a customer that has linked vehicles")
		}

		return tx.Model(ctx, &models.Customer{}).Where("id = ?", id).Delete(&models.Customer{}).Error
	})
}
