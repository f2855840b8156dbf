package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"oficina-backend/models"
	"oficina-backend/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func TestForTenant_RequiresID(t *testing.T) {
	_, err := ForTenant(nil, uuid.Nil)
	assert.ErrorIs(t, err, ErrTenantRequired)
}

func TestModel_AddsTenantPredicate(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	td, err := ForTenant(db, tenantID)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "work_orders" WHERE status = $1 AND "work_orders"."tenant_id" = $2`)).
		WithArgs("Aberta", tenantID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var orders []models.WorkOrder
	err = td.Model(context.Background(), &models.WorkOrder{}).Where("status = ?", "Aberta").Find(&orders).Error
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnscoped_OmitsTenantPredicate(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	td, err := ForTenant(db, uuid.New())
	require.NoError(t, err)

	orderID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "ledger_entries" WHERE work_order_id = $1`)).
		WithArgs(orderID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	var n int64
	err = td.Unscoped(context.Background(), &models.LedgerEntry{}).Where("work_order_id = ?", orderID).Count(&n).Error
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinScoped_PinsJoinedTable(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	td, err := ForTenant(db, tenantID)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN customers c ON c.id = o.customer_id AND c.tenant_id = $1 WHERE "o"."tenant_id" = $2`)).
		WithArgs(tenantID.String(), tenantID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	var rows []struct{ ID uuid.UUID }
	q := td.Table(context.Background(), "work_orders", "o").Select("o.id")
	err = td.JoinScoped(q, "LEFT", "customers", "c", "c.id = o.customer_id").Scan(&rows).Error
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantDB_Isolation(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.Seed(t, db, "Oficina A")
	b := testutil.Seed(t, db, "Oficina B")
	ctx := context.Background()

	ta, err := ForTenant(db, a.Workshop.ID)
	require.NoError(t, err)
	tb, err := ForTenant(db, b.Workshop.ID)
	require.NoError(t, err)

	part := &models.Part{Name: "Filtro", Code: "F1", UnitPrice: decimal.NewFromInt(30)}
	part.SetTenantID(b.Workshop.ID)
	require.NoError(t, ta.Create(ctx, part))
	assert.Equal(t, a.Workshop.ID, part.TenantID, "Create stamps the bound tenant")

	var loaded models.Part
	require.NoError(t, ta.First(ctx, &loaded, part.ID))
	err = tb.First(ctx, &models.Part{}, part.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	ok, err := tb.Exists(ctx, &models.Part{}, part.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Saving through B cannot take over A's row.
	loaded.Name = "Roubado"
	require.NoError(t, tb.Save(ctx, &loaded))
	var stored models.Part
	require.NoError(t, db.First(&stored, "id = ?", part.ID).Error)
	assert.Equal(t, "Filtro", stored.Name)
	assert.Equal(t, a.Workshop.ID, stored.TenantID)
}

func TestTransaction_RollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina A")
	ctx := context.Background()
	td, err := ForTenant(db, f.Workshop.ID)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = td.Transaction(ctx, func(tx *TenantDB) error {
		if err := CreateAll(ctx, tx, []*models.Part{{Name: "A", Code: "1"}, {Name: "B", Code: "2"}}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, td.Model(ctx, &models.Part{}).Count(&count).Error)
	assert.Zero(t, count)
}
