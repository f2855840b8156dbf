package services

import (
	"context"
	"fmt"
	"strings"

	"oficina-backend/models"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PartInput struct {
	Name      string
	Code      string
	Quantity  int
	Minimum   int
	UnitPrice decimal.Decimal
}

type PartService struct {
	db *gorm.DB
}

func NewPartService(db *gorm.DB) *PartService {
	return &PartService{db: db}
}

// apply copies in onto p and recomputes the stock status.
func (in PartInput) apply(p *models.Part) error {
	name, code := strings.TrimSpace(in.Name), strings.TrimSpace(in.Code)
	if name == "" || code == "" {
		return utils.ValidationError("name and code are required")
	}
	if in.Quantity < 0 || in.Minimum < 0 {
		return utils.ValidationError("quantity and minimum cannot be negative")
	}
	if in.UnitPrice.IsNegative() {
		return utils.ValidationError("unit price cannot be negative")
	}
	p.Name = name
	p.Code = code
	p.Quantity = in.Quantity
	p.Minimum = in.Minimum
	p.UnitPrice = in.UnitPrice
	p.Status = models.StockStatus(in.Quantity, in.Minimum)
	return nil
}

func (s *PartService) List(ctx context.Context, tenantID uuid.UUID) ([]models.Part, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	parts := []models.Part{}
	if err := t.Model(ctx, &models.Part{}).Order("name").Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	return parts, nil
}

func (s *PartService) Create(ctx context.Context, tenantID uuid.UUID, in PartInput) (*models.Part, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var part models.Part
	if err := in.apply(&part); err != nil {
		return nil, err
	}
	if err := t.Create(ctx, &part); err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}
	return &part, nil
}

func (s *PartService) Update(ctx context.Context, tenantID, id uuid.UUID, in PartInput) (*models.Part, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var part models.Part
	if err := t.First(ctx, &part, id); err != nil {
		return nil, notFoundOr(err, "part")
	}
	if err := in.apply(&part); err != nil {
		return nil, err
	}
	if err := t.Save(ctx, &part); err != nil {
		return nil, fmt.Errorf("update part: %w", err)
	}
	return &part, nil
}

func (s *PartService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return err
	}
	res := t.Model(ctx, &models.Part{}).Where("id = ?", id).Delete(&models.Part{})
	if res.Error != nil {
		return fmt.Errorf("delete part: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundError("part not found")
	}
	return nil
}
