package services

import (
	"context"
	"fmt"
	"strings"

	"oficina-backend/models"
	"oficina-backend/repository"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceInput struct {
	Name             string
	Category         string
	EstimatedMinutes *int
	BasePrice        decimal.Decimal
	Status           string
}

// ServiceOption is the short form used by the work order form.
type ServiceOption struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"nome"`
	Price    decimal.Decimal `json:"preco"`
	Duration int             `json:"duracao"`
}

// CatalogService manages the services a workshop offers.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (in ServiceInput) apply(s *models.Service) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return utils.ValidationError("name is required")
	}
	if in.BasePrice.IsNegative() {
		return utils.ValidationError("base price cannot be negative")
	}
	if in.EstimatedMinutes != nil && *in.EstimatedMinutes < 0 {
		return utils.ValidationError("estimated time cannot be negative")
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return err
	}
	s.Name = name
	s.Category = in.Category
	s.EstimatedMinutes = in.EstimatedMinutes
	s.BasePrice = in.BasePrice
	s.Status = status
	return nil
}

func (s *CatalogService) Options(ctx context.Context, tenantID uuid.UUID) ([]ServiceOption, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	rows := []ServiceOption{}
	if err := t.Model(ctx, &models.Service{}).
		Select("id, name, COALESCE(base_price, 0) AS price, COALESCE(estimated_minutes, 0) AS duration").
		Order("name").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list service options: %w", err)
	}
	return rows, nil
}

func (s *CatalogService) List(ctx context.Context, tenantID uuid.UUID) ([]models.Service, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	services := []models.Service{}
	if err := t.Model(ctx, &models.Service{}).Order("name").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) Create(ctx context.Context, tenantID uuid.UUID, in ServiceInput) (*models.Service, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var service models.Service
	if err := in.apply(&service); err != nil {
		return nil, err
	}
	if err := t.Create(ctx, &service); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &service, nil
}

func (s *CatalogService) Update(ctx context.Context, tenantID, id uuid.UUID, in ServiceInput) (*models.Service, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var service models.Service
	if err := t.First(ctx, &service, id); err != nil {
		return nil, notFoundOr(err, "service")
	}
	if err := in.apply(&service); err != nil {
		return nil, err
	}
	if err := t.Save(ctx, &service); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return &service, nil
}

// Delete refuses while any work order lists the service.
func (s *CatalogService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return err
	}
	return t.Transaction(ctx, func(tx *repository.TenantDB) error {
		if ok, err := tx.Exists(ctx, &models.Service{}, id); err != nil {
			return fmt.Errorf("check service: %w", err)
		} else if !ok {
			return utils.NotFoundError("service not found")
		}
		var links int64
		if err := tx.Model(ctx, &models.WorkOrderService{}).Where("service_id = ?", id).Count(&links).Error; err != nil {
			return fmt.Errorf("count service links: %w", err)
		}
		if links > 0 {
			return utils.ConflictError("cannot delete a service used by work orders")
		}
		return tx.Model(ctx, &models.Service{}).Where("id = ?", id).Delete(&models.Service{}).Error
	})
}
