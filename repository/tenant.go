// Package repository binds gorm handles to a single workshop.
//
// A TenantDB adds "<table>.tenant_id = ?" to every query it builds and stamps
// the tenant id on every row it creates, so callers cannot reach another
// workshop's rows by forgetting a filter.
package repository

import (
	"context"
	"errors"

	"oficina-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTenantRequired is returned when binding to the nil workshop id.
var ErrTenantRequired = errors.New("oficina_id is required")

type TenantDB struct {
	db       *gorm.DB
	tenantID uuid.UUID
}

// ForTenant binds db to tenantID.
func ForTenant(db *gorm.DB, tenantID uuid.UUID) (*TenantDB, error) {
	if tenantID == uuid.Nil {
		return nil, ErrTenantRequired
	}
	return &TenantDB{db: db, tenantID: tenantID}, nil
}

func (t *TenantDB) TenantID() uuid.UUID {
	return t.tenantID
}

// Scope returns a gorm scope filtering table by tenant.
func Scope(table string, tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{
			Column: clause.Column{Table: table, Name: "tenant_id"},
			Value:  tenantID,
		})
	}
}

// Model starts a query on m's table restricted to the tenant.
func (t *TenantDB) Model(ctx context.Context, m models.TenantOwned) *gorm.DB {
	return t.db.WithContext(ctx).Model(m).Scopes(Scope(m.TableName(), t.tenantID))
}

// Unscoped starts a query on m's table without the tenant predicate. Use it
// only for guards that must see rows from every workshop.
func (t *TenantDB) Unscoped(ctx context.Context, m models.TenantOwned) *gorm.DB {
	return t.db.WithContext(ctx).Model(m)
}

// Table starts a query on table (optionally aliased, "table alias") with the
// tenant predicate on table. Joined tables must be scoped by the caller
// through JoinScoped.
func (t *TenantDB) Table(ctx context.Context, table, alias string) *gorm.DB {
	from, qualifier := table, table
	if alias != "" {
		from, qualifier = table+" "+alias, alias
	}
	return t.db.WithContext(ctx).Table(from).Scopes(Scope(qualifier, t.tenantID))
}

// JoinScoped appends a join whose ON clause also pins the joined table to the
// tenant. on must not contain placeholders.
func (t *TenantDB) JoinScoped(db *gorm.DB, kind, table, alias, on string) *gorm.DB {
	return db.Joins(kind+" JOIN "+table+" "+alias+" ON "+on+" AND "+alias+".tenant_id = ?", t.tenantID)
}

// First loads the row with id into dest. It returns gorm.ErrRecordNotFound
// when the row is absent or owned by another tenant.
func (t *TenantDB) First(ctx context.Context, dest models.TenantOwned, id uuid.UUID) error {
	return t.Model(ctx, dest).Where(clause.Eq{
		Column: clause.Column{Table: dest.TableName(), Name: "id"},
		Value:  id,
	}).First(dest).Error
}

// Exists reports whether a row of m's table with id exists for the tenant.
func (t *TenantDB) Exists(ctx context.Context, m models.TenantOwned, id uuid.UUID) (bool, error) {
	var count int64
	err := t.Model(ctx, m).Where(clause.Eq{
		Column: clause.Column{Table: m.TableName(), Name: "id"},
		Value:  id,
	}).Count(&count).Error
	return count > 0, err
}

// Create stamps the tenant on row and inserts it.
func (t *TenantDB) Create(ctx context.Context, row models.TenantOwned) error {
	row.SetTenantID(t.tenantID)
	return t.db.WithContext(ctx).Create(row).Error
}

// CreateAll stamps the tenant on each row and inserts them in order.
func CreateAll[T models.TenantOwned](ctx context.Context, t *TenantDB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		row.SetTenantID(t.tenantID)
	}
	return t.db.WithContext(ctx).Create(rows).Error
}

// Save writes every column of row, keeping it pinned to the tenant.
func (t *TenantDB) Save(ctx context.Context, row models.TenantOwned) error {
	row.SetTenantID(t.tenantID)
	return t.Model(ctx, row).Select("*").Omit("created_at", clause.Associations).Updates(row).Error
}

// Transaction runs fn inside one database transaction bound to the same
// tenant. The transaction commits when fn returns nil and rolls back on an
// error or panic.
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *TenantDB) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TenantDB{db: tx, tenantID: t.tenantID})
	})
}
