package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"oficina-backend/models"
	"oficina-backend/repository"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleInput struct {
	Plate      string
	Model      string
	Make       string
	Year       *int
	Mileage    *int
	CustomerID *uuid.UUID
}

type VehicleRow struct {
	ID         uuid.UUID  `json:"id"`
	Plate      string     `json:"placa"`
	Model      string     `json:"modelo"`
	Make       string     `json:"marca"`
	Year       *int       `json:"ano"`
	Mileage    *int       `json:"km"`
	CustomerID *uuid.UUID `json:"cliente_id"`
	OwnerName  *string    `json:"proprietario_nome"`
	CreatedAt  time.Time  `json:"created_at"`
}

type VehicleService struct {
	db *gorm.DB
}

func NewVehicleService(db *gorm.DB) *VehicleService {
	return &VehicleService{db: db}
}

func (in VehicleInput) apply(ctx context.Context, t *repository.TenantDB, v *models.Vehicle) error {
	plate := strings.ToUpper(strings.TrimSpace(in.Plate))
	if plate == "" || strings.TrimSpace(in.Model) == "" || strings.TrimSpace(in.Make) == "" {
		return utils.ValidationError("plate, model and make are required")
	}
	if in.Year != nil && *in.Year < 1900 {
		return utils.ValidationError("invalid year")
	}
	if in.Mileage != nil && *in.Mileage < 0 {
		return utils.ValidationError("mileage cannot be negative")
	}
	if in.CustomerID != nil {
		ok, err := t.Exists(ctx, &models.Customer{}, *in.CustomerID)
		if err != nil {
			return fmt.Errorf("check customer: %w", err)
		}
		if !ok {
			return utils.NotFoundError("customer not found")
		}
	}
	v.Plate = plate
	v.Model = strings.TrimSpace(in.Model)
	v.Make = strings.TrimSpace(in.Make)
	v.Year = in.Year
	v.Mileage = in.Mileage
	v.CustomerID = in.CustomerID
	return nil
}

// List returns the tenant's vehicles with the owner's name when known.
func (s *VehicleService) List(ctx context.Context, tenantID uuid.UUID) ([]VehicleRow, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	rows := []VehicleRow{}
	q := t.Table(ctx, "vehicles", "v").
		Select("v.id, v.plate, v.model, v.make, v.year, v.mileage, v.customer_id, c.name AS owner_name, v.created_at")
	q = t.JoinScoped(q, "LEFT", "customers", "c", "c.id = v.customer_id")
	if err := q.Order("v.make, v.model").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return rows, nil
}

func (s *VehicleService) Create(ctx context.Context, tenantID uuid.UUID, in VehicleInput) (*models.Vehicle, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var vehicle models.Vehicle
	if err := in.apply(ctx, t, &vehicle); err != nil {
		return nil, err
	}
	if err := t.Create(ctx, &vehicle); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return &vehicle, nil
}

func (s *VehicleService) Update(ctx context.Context, tenantID, id uuid.UUID, in VehicleInput) (*models.Vehicle, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var vehicle models.Vehicle
	if err := t.First(ctx, &vehicle, id); err != nil {
		return nil, notFoundOr(err, "vehicle")
	}
	if err := in.apply(ctx, t, &vehicle); err != nil {
		return nil, err
	}
	if err := t.Save(ctx, &vehicle); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	return &vehicle, nil
}

// Delete refuses while a work order references the vehicle.
func (s *VehicleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return err
	}
	return t.Transaction(ctx, func(tx *repository.TenantDB) error {
		if ok, err := tx.Exists(ctx, &models.Vehicle{}, id); err != nil {
			return fmt.Errorf("check vehicle: %w", err)
		} else if !ok {
			return utils.NotFoundError("vehicle not found")
		}
		var orders int64
		if err := tx.Model(ctx, &models.WorkOrder{}).Where("vehicle_id = ?", id).Count(&orders).Error; err != nil {
			return fmt.Errorf("count work orders: %w", err)
		}
		if orders > 0 {
			return utils.ConflictError("cannot delete a vehicle that has work orders")
		}
		return tx.Model(ctx, &models.Vehicle{}).Where("id = ?", id).Delete(&models.Vehicle{}).Error
	})
}
