package services

import (
	"context"
	"testing"
	"time"

	"oficina-backend/models"
	"oficina-backend/testutil"
	"oficina-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboard_MonthFilters(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	orders := NewWorkOrderService(db, zap.NewNop(), nil, nil)
	parts := NewPartService(db)
	ledger := NewLedgerService(db, zap.NewNop())
	dashboard := NewDashboardService(db, orders, parts)
	dashboard.now = func() time.Time { return time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	march := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	february := time.Date(2026, time.February, 27, 9, 0, 0, 0, time.UTC)

	in, err := ledger.Create(ctx, f.Workshop.ID, LedgerInput{Type: "Receita", Amount: dec("300")})
	require.NoError(t, err)
	testutil.SetCreatedAt(t, db, &models.LedgerEntry{}, in.ID, march)
	out, err := ledger.Create(ctx, f.Workshop.ID, LedgerInput{Type: "Despesa", Amount: dec("120.5")})
	require.NoError(t, err)
	testutil.SetCreatedAt(t, db, &models.LedgerEntry{}, out.ID, march)
	old, err := ledger.Create(ctx, f.Workshop.ID, LedgerInput{Type: "Receita", Amount: dec("50")})
	require.NoError(t, err)
	testutil.SetCreatedAt(t, db, &models.LedgerEntry{}, old.ID, february)

	_, err = parts.Create(ctx, f.Workshop.ID, PartInput{Name: "Vela", Code: "V1", Quantity: 1, Minimum: 4})
	require.NoError(t, err)
	_, err = parts.Create(ctx, f.Workshop.ID, PartInput{Name: "Correia", Code: "C1", Quantity: 10, Minimum: 2})
	require.NoError(t, err)
	createOpenOrder(t, orders, f)

	d, err := dashboard.Build(ctx, f.Workshop.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Month)
	assert.Equal(t, 2026, d.Year)
	assert.True(t, d.Summary.Inflow.Equal(dec("300")))
	assert.True(t, d.Summary.Outflow.Equal(dec("120.5")))
	assert.True(t, d.Summary.Balance.Equal(dec("179.5")))
	assert.Len(t, d.Orders, 1)
	assert.Len(t, d.Parts, 2)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "Vela", d.LowStock[0].Name)

	require.Len(t, d.Movement, 2)
	assert.Equal(t, 2, d.Movement[0].Month)
	assert.True(t, d.Movement[0].Inflow.Equal(dec("50")))
	assert.Equal(t, 3, d.Movement[1].Month)
	assert.Equal(t, 2026, d.Movement[1].Year)
	assert.True(t, d.Movement[1].Outflow.Equal(dec("120.5")))

	feb, err := dashboard.Build(ctx, f.Workshop.ID, 2, 2026)
	require.NoError(t, err)
	assert.True(t, feb.Summary.Inflow.Equal(dec("50")))
	assert.True(t, feb.Summary.Outflow.IsZero())

	_, err = dashboard.Build(ctx, f.Workshop.ID, 13, 2026)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}
