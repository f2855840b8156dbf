package services

import (
	"context"
	"testing"

	"oficina-backend/models"
	"oficina-backend/testutil"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OrderFinalized(ctx context.Context, tenantID, orderID uuid.UUID) {
	m.Called(tenantID, orderID)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func orderRevenues(t *testing.T, db *gorm.DB, orderID uuid.UUID) []models.LedgerEntry {
	t.Helper()
	var entries []models.LedgerEntry
	require.NoError(t, db.Where("work_order_id = ? AND type = ?", orderID, models.LedgerRevenue).Find(&entries).Error)
	return entries
}

func newOrderService(t *testing.T) (*WorkOrderService, *gorm.DB, testutil.Fixture) {
	t.Helper()
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	return NewWorkOrderService(db, zap.NewNop(), nil, nil), db, f
}

func createOpenOrder(t *testing.T, svc *WorkOrderService, f testutil.Fixture, services ...uuid.UUID) *models.WorkOrder {
	t.Helper()
	order, err := svc.Create(context.Background(), f.Workshop.ID, CreateOrderInput{
		CustomerID: f.Customer.ID,
		VehicleID:  f.Vehicle.ID,
		ServiceIDs: services,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder_DefaultsWithoutLedger(t *testing.T) {
	svc, db, f := newOrderService(t)

	order := createOpenOrder(t, svc, f)

	assert.Equal(t, models.OrderStatusOpen, order.Status)
	assert.True(t, order.Total.IsZero())
	assert.Empty(t, orderRevenues(t, db, order.ID))

	var entries int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("work_order_id = ?", order.ID).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestCreateOrder_KeepsDuplicateServices(t *testing.T) {
	svc, db, f := newOrderService(t)

	order := createOpenOrder(t, svc, f, f.Oil.ID, f.Oil.ID, f.Brakes.ID)

	var links int64
	require.NoError(t, db.Model(&models.WorkOrderService{}).Where("work_order_id = ?", order.ID).Count(&links).Error)
	assert.Equal(t, int64(3), links)
}

func TestCreateOrder_FinalizedPostsRevenue(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	notifier := &mockNotifier{}
	svc := NewWorkOrderService(db, zap.NewNop(), nil, notifier)

	notifier.On("OrderFinalized", f.Workshop.ID, mock.Anything).Once()
	order, err := svc.Create(context.Background(), f.Workshop.ID, CreateOrderInput{
		CustomerID: f.Customer.ID,
		VehicleID:  f.Vehicle.ID,
		Status:     "Finalizada",
		Total:      decPtr("80.00"),
	})
	require.NoError(t, err)

	revenues := orderRevenues(t, db, order.ID)
	require.Len(t, revenues, 1)
	assert.True(t, revenues[0].Amount.Equal(dec("80.00")))
	assert.Equal(t, f.Workshop.ID, revenues[0].TenantID)
	notifier.AssertExpectations(t)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _, f := newOrderService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		tenant uuid.UUID
		in     CreateOrderInput
		kind   utils.ErrorKind
	}{
		{"missing tenant", uuid.Nil, CreateOrderInput{CustomerID: f.Customer.ID, VehicleID: f.Vehicle.ID}, utils.KindValidation},
		{"missing customer", f.Workshop.ID, CreateOrderInput{VehicleID: f.Vehicle.ID}, utils.KindValidation},
		{"missing vehicle", f.Workshop.ID, CreateOrderInput{CustomerID: f.Customer.ID}, utils.KindValidation},
		{"negative total", f.Workshop.ID, CreateOrderInput{CustomerID: f.Customer.ID, VehicleID: f.Vehicle.ID, Total: decPtr("-1")}, utils.KindValidation},
		{"unknown customer", f.Workshop.ID, CreateOrderInput{CustomerID: uuid.New(), VehicleID: f.Vehicle.ID}, utils.KindNotFound},
		{"unknown vehicle", f.Workshop.ID, CreateOrderInput{CustomerID: f.Customer.ID, VehicleID: uuid.New()}, utils.KindNotFound},
		{"unknown service", f.Workshop.ID, CreateOrderInput{CustomerID: f.Customer.ID, VehicleID: f.Vehicle.ID, ServiceIDs: []uuid.UUID{f.Oil.ID, uuid.New()}}, utils.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.tenant, tt.in)
			require.Error(t, err)
			assert.True(t, utils.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestCreateOrder_RejectsOtherTenantReferences(t *testing.T) {
	svc, db, f := newOrderService(t)
	other := testutil.Seed(t, db, "Oficina Norte")

	_, err := svc.Create(context.Background(), f.Workshop.ID, CreateOrderInput{
		CustomerID: other.Customer.ID,
		VehicleID:  f.Vehicle.ID,
	})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestUpdateOrder_LedgerLifecycle(t *testing.T) {
	svc, db, f := newOrderService(t)
	ctx := context.Background()
	order := createOpenOrder(t, svc, f, f.Oil.ID)

	// Finalizing posts the revenue.
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("150.00")}))
	revenues := orderRevenues(t, db, order.ID)
	require.Len(t, revenues, 1)
	assert.True(t, revenues[0].Amount.Equal(dec("150.00")))

	// Same update again keeps a single entry.
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("150.00")}))
	again := orderRevenues(t, db, order.ID)
	require.Len(t, again, 1)
	assert.Equal(t, revenues[0].ID, again[0].ID)

	// A new total moves the revenue with it.
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "finalized", Total: decPtr("175.50")}))
	moved := orderRevenues(t, db, order.ID)
	require.Len(t, moved, 1)
	assert.True(t, moved[0].Amount.Equal(dec("175.50")))

	// Reopening removes it.
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Aberta", Total: decPtr("175.50")}))
	assert.Empty(t, orderRevenues(t, db, order.ID))

	var stored models.WorkOrder
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "Aberta", stored.Status)
	assert.True(t, stored.Total.Equal(dec("175.50")))
}

func TestUpdateOrder_TotalBounds(t *testing.T) {
	svc, db, f := newOrderService(t)
	ctx := context.Background()
	order := createOpenOrder(t, svc, f)

	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("99999999.99")}))
	revenues := orderRevenues(t, db, order.ID)
	require.Len(t, revenues, 1)
	assert.True(t, revenues[0].Amount.Equal(dec("99999999.99")))

	for _, total := range []string{"100000000.00", "-0.01"} {
		err := svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Aberta", Total: decPtr(total)})
		assert.True(t, utils.IsKind(err, utils.KindValidation), "total %s: %v", total, err)
	}

	// Rejected updates leave order and ledger untouched.
	require.Len(t, orderRevenues(t, db, order.ID), 1)
	var stored models.WorkOrder
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "Finalizada", stored.Status)
}

func TestUpdateOrder_NotFoundAndValidation(t *testing.T) {
	svc, db, f := newOrderService(t)
	ctx := context.Background()
	order := createOpenOrder(t, svc, f)
	other := testutil.Seed(t, db, "Oficina Norte")

	err := svc.Update(ctx, f.Workshop.ID, uuid.New(), UpdateOrderInput{Status: "Aberta"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	err = svc.Update(ctx, other.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("10")})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	assert.Empty(t, orderRevenues(t, db, order.ID))

	err = svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "  ", Total: decPtr("10")})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestUpdateOrder_TotalRequired(t *testing.T) {
	svc, db, f := newOrderService(t)
	ctx := context.Background()
	order := createOpenOrder(t, svc, f)
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("250")}))

	err := svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada"})
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)

	var stored models.WorkOrder
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.True(t, stored.Total.Equal(dec("250")))
	revenues := orderRevenues(t, db, order.ID)
	require.Len(t, revenues, 1)
	assert.True(t, revenues[0].Amount.Equal(dec("250")))
}

func TestUpdateOrder_NotifiesOnlyOnTransition(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	notifier := &mockNotifier{}
	svc := NewWorkOrderService(db, zap.NewNop(), nil, notifier)
	ctx := context.Background()
	order := createOpenOrder(t, svc, f)

	notifier.On("OrderFinalized", f.Workshop.ID, order.ID).Once()
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("50")}))
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("60")}))
	notifier.AssertNumberOfCalls(t, "OrderFinalized", 1)
}

func TestUpdateOrder_CountsSyncActions(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewWorkOrderService(db, zap.NewNop(), metrics, nil)
	ctx := context.Background()
	order := createOpenOrder(t, svc, f)

	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("50")}))
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("70")}))
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Aberta", Total: decPtr("70")}))

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.ledgerSync.WithLabelValues(SyncNone)))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.ledgerSync.WithLabelValues(SyncCreated)))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.ledgerSync.WithLabelValues(SyncUpdated)))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.ledgerSync.WithLabelValues(SyncDeleted)))
}

func TestInvariantHoldsAcrossUpdateSequence(t *testing.T) {
	svc, db, f := newOrderService(t)
	ctx := context.Background()
	order := createOpenOrder(t, svc, f)

	steps := []UpdateOrderInput{
		{Status: "Finalizada", Total: decPtr("10")},
		{Status: "Em andamento", Total: decPtr("20")},
		{Status: "FINALIZADA", Total: decPtr("30")},
		{Status: "Finalized", Total: decPtr("40")},
		{Status: "Aberta", Total: decPtr("0")},
		{Status: "finalizada", Total: decPtr("0")},
	}
	for _, step := range steps {
		require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, step))

		revenues := orderRevenues(t, db, order.ID)
		if models.IsFinalizedStatus(step.Status) {
			require.Len(t, revenues, 1, step.Status)
			assert.True(t, revenues[0].Amount.Equal(*step.Total), step.Status)
		} else {
			assert.Empty(t, revenues, step.Status)
		}
	}
}

func TestDeleteOrder(t *testing.T) {
	svc, db, f := newOrderService(t)
	ctx := context.Background()

	t.Run("without ledger activity", func(t *testing.T) {
		order := createOpenOrder(t, svc, f, f.Oil.ID)
		require.NoError(t, svc.Delete(ctx, f.Workshop.ID, order.ID))

		var orders, links int64
		require.NoError(t, db.Model(&models.WorkOrder{}).Where("id = ?", order.ID).Count(&orders).Error)
		require.NoError(t, db.Model(&models.WorkOrderService{}).Where("work_order_id = ?", order.ID).Count(&links).Error)
		assert.Zero(t, orders)
		assert.Zero(t, links)
	})

	t.Run("with ledger activity", func(t *testing.T) {
		order := createOpenOrder(t, svc, f, f.Oil.ID, f.Brakes.ID)
		require.NoError(t, svc.Update(ctx, f.Workshop.ID, order.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("420")}))

		err := svc.Delete(ctx, f.Workshop.ID, order.ID)
		assert.True(t, utils.IsKind(err, utils.KindConflict))

		var orders, links int64
		require.NoError(t, db.Model(&models.WorkOrder{}).Where("id = ?", order.ID).Count(&orders).Error)
		require.NoError(t, db.Model(&models.WorkOrderService{}).Where("work_order_id = ?", order.ID).Count(&links).Error)
		assert.Equal(t, int64(1), orders)
		assert.Equal(t, int64(2), links)
	})

	t.Run("entry linked from another workshop", func(t *testing.T) {
		order := createOpenOrder(t, svc, f)
		other := testutil.Seed(t, db, "Oficina Norte")
		entry := models.LedgerEntry{
			Tenant:      models.Tenant{TenantID: other.Workshop.ID},
			WorkOrderID: &order.ID,
			Type:        models.LedgerExpense,
			Amount:      dec("35"),
		}
		require.NoError(t, db.Create(&entry).Error)

		err := svc.Delete(ctx, f.Workshop.ID, order.ID)
		assert.True(t, utils.IsKind(err, utils.KindConflict), "got %v", err)

		var orders int64
		require.NoError(t, db.Model(&models.WorkOrder{}).Where("id = ?", order.ID).Count(&orders).Error)
		assert.Equal(t, int64(1), orders)
	})

	t.Run("unknown order", func(t *testing.T) {
		err := svc.Delete(ctx, f.Workshop.ID, uuid.New())
		assert.True(t, utils.IsKind(err, utils.KindNotFound))
	})
}

func TestListOrders(t *testing.T) {
	svc, db, f := newOrderService(t)
	ctx := context.Background()
	other := testutil.Seed(t, db, "Oficina Norte")

	first := createOpenOrder(t, svc, f, f.Oil.ID, f.Oil.ID, f.Brakes.ID)
	second := createOpenOrder(t, svc, f)
	require.NoError(t, svc.Update(ctx, f.Workshop.ID, second.ID, UpdateOrderInput{Status: "Finalizada", Total: decPtr("99.90"), Note: "urgente"}))
	createOpenOrder(t, svc, other)

	rows, err := svc.List(ctx, f.Workshop.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uuid.UUID]OrderSummary{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	assert.Equal(t, "Freios, Troca de óleo", byID[first.ID].ServiceNames)
	assert.False(t, byID[first.ID].HasLedgerActivity)
	assert.Equal(t, "João Silva", byID[first.ID].CustomerName)
	assert.Equal(t, "Chevrolet", byID[first.ID].VehicleMake)
	assert.Equal(t, "Onix", byID[first.ID].VehicleModel)

	assert.True(t, byID[second.ID].HasLedgerActivity)
	assert.Equal(t, "urgente", byID[second.ID].Note)
	assert.True(t, byID[second.ID].Total.Equal(dec("99.90")))
}

func TestGetOrder_TenantIsolation(t *testing.T) {
	svc, db, f := newOrderService(t)
	ctx := context.Background()
	other := testutil.Seed(t, db, "Oficina Norte")
	order := createOpenOrder(t, svc, f, f.Brakes.ID, f.Brakes.ID)

	detail, err := svc.Get(ctx, f.Workshop.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Customer.ID, detail.Customer.ID)
	assert.Equal(t, f.Vehicle.ID, detail.Vehicle.ID)
	assert.Len(t, detail.Services, 2)

	_, err = svc.Get(ctx, other.Workshop.ID, order.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
