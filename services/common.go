package services

import (
	"errors"
	"fmt"

	"oficina-backend/repository"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func bindTenant(db *gorm.DB, tenantID uuid.UUID) (*repository.TenantDB, error) {
	t, err := repository.ForTenant(db, tenantID)
	if errors.Is(err, repository.ErrTenantRequired) {
		return nil, utils.ValidationError("oficina_id is required")
	}
	return t, err
}

// notFoundOr turns gorm.ErrRecordNotFound into "<what> not found" and wraps
// anything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFoundError("%s not found", what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
