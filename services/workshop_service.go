package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"oficina-backend/models"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkshopInput struct {
	Name    string
	TaxID   string
	Phone   string
	Email   string
	Address string
}

// WorkshopService manages the tenants themselves; its queries are not
// tenant scoped.
type WorkshopService struct {
	db *gorm.DB
}

func NewWorkshopService(db *gorm.DB) *WorkshopService {
	return &WorkshopService{db: db}
}

func (in WorkshopInput) apply(w *models.Workshop) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return utils.ValidationError("workshop name is required")
	}
	w.Name = name
	w.TaxID = in.TaxID
	w.Phone = in.Phone
	w.Email = in.Email
	w.Address = in.Address
	return nil
}

func (s *WorkshopService) List(ctx context.Context) ([]models.Workshop, error) {
	workshops := []models.Workshop{}
	if err := s.db.WithContext(ctx).Order("name").Find(&workshops).Error; err != nil {
		return nil, fmt.Errorf("list workshops: %w", err)
	}
	return workshops, nil
}

func (s *WorkshopService) Get(ctx context.Context, id uuid.UUID) (*models.Workshop, error) {
	var w models.Workshop
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "workshop")
	}
	return &w, nil
}

func (s *WorkshopService) Create(ctx context.Context, in WorkshopInput) (*models.Workshop, error) {
	var w models.Workshop
	if err := in.apply(&w); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&w).Error; err != nil {
		return nil, fmt.Errorf("create workshop: %w", err)
	}
	return &w, nil
}

func (s *WorkshopService) Update(ctx context.Context, id uuid.UUID, in WorkshopInput) (*models.Workshop, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(w); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Select("*").Omit("created_at").Updates(w).Error; err != nil {
		return nil, fmt.Errorf("update workshop: %w", err)
	}
	return w, nil
}

// EnsureDefault returns the workshop named models.DefaultWorkshopName,
// creating it when missing.
func (s *WorkshopService) EnsureDefault(ctx context.Context) (*models.Workshop, error) {
	var w models.Workshop
	err := s.db.WithContext(ctx).Where("name = ?", models.DefaultWorkshopName).Order("created_at").First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find default workshop: %w", err)
	}
	return s.Create(ctx, WorkshopInput{Name: models.DefaultWorkshopName})
}

// AssignOrphans moves every tenant-owned row without a workshop to id and
// returns the number of rows changed per table.
func (s *WorkshopService) AssignOrphans(ctx context.Context, id uuid.UUID) (map[string]int64, error) {
	if id == uuid.Nil {
		return nil, utils.ValidationError("oficina_id is required")
	}
	moved := map[string]int64{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range models.All() {
			owned, ok := m.(models.TenantOwned)
			if !ok {
				continue
			}
			res := tx.Model(m).
				Where("tenant_id IS NULL OR tenant_id = ?", uuid.Nil).
				Update("tenant_id", id)
			if res.Error != nil {
				return fmt.Errorf("backfill %s: %w", owned.TableName(), res.Error)
			}
			if res.RowsAffected > 0 {
				moved[owned.TableName()] = res.RowsAffected
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}
