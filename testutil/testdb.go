// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"oficina-backend/config"
	"oficina-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
// The pool holds one connection so the database lives as long as the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.GormConfig(zap.NewNop(), 0)
	cfg.Logger = cfg.Logger.LogMode(gormlogger.Silent)
	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Fixture is one workshop with a customer, a vehicle and two services.
type Fixture struct {
	Workshop models.Workshop
	Customer models.Customer
	Vehicle  models.Vehicle
	Oil      models.Service
	Brakes   models.Service
}

// Seed creates a workshop named name and its reference data.
func Seed(t testing.TB, db *gorm.DB, name string) Fixture {
	t.Helper()

	f := Fixture{Workshop: models.Workshop{Name: name}}
	require.NoError(t, db.Create(&f.Workshop).Error)
	tenant := models.Tenant{TenantID: f.Workshop.ID}

	f.Customer = models.Customer{Tenant: tenant, Name: "João Silva", Phone: "+5511999990000", Status: models.StatusActive}
	require.NoError(t, db.Create(&f.Customer).Error)

	year := 2019
	f.Vehicle = models.Vehicle{Tenant: tenant, Plate: "ABC1D23", Model: "Onix", Make: "Chevrolet", Year: &year, CustomerID: &f.Customer.ID}
	require.NoError(t, db.Create(&f.Vehicle).Error)

	f.Oil = models.Service{Tenant: tenant, Name: "Troca de óleo", Category: "Manutenção", BasePrice: decimal.NewFromInt(120), Status: models.StatusActive}
	require.NoError(t, db.Create(&f.Oil).Error)
	f.Brakes = models.Service{Tenant: tenant, Name: "Freios", Category: "Segurança", BasePrice: decimal.NewFromInt(300), Status: models.StatusActive}
	require.NoError(t, db.Create(&f.Brakes).Error)
	return f
}

// SetCreatedAt moves a row's creation time, for month-bucketed queries.
func SetCreatedAt(t testing.TB, db *gorm.DB, model any, id uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(model).Where("id = ?", id).UpdateColumn("created_at", at.UTC()).Error)
}
