package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"oficina-backend/models"
	"oficina-backend/repository"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderNotifier is told about orders that just became finalized. It runs
// after the transaction committed and must handle its own failures.
type OrderNotifier interface {
	OrderFinalized(ctx context.Context, tenantID, orderID uuid.UUID)
}

type CreateOrderInput struct {
	CustomerID uuid.UUID
	VehicleID  uuid.UUID
	ServiceIDs []uuid.UUID
	Status     string
	Total      *decimal.Decimal
	Note       string
}

type UpdateOrderInput struct {
	Status string
	Total  *decimal.Decimal
	Note   string
}

// OrderSummary is one row of the work order listing.
type OrderSummary struct {
	ID                uuid.UUID       `json:"ordem_id"`
	CustomerName      string          `json:"nome_cliente"`
	VehicleMake       string          `json:"marca_veiculo"`
	VehicleModel      string          `json:"modelo_veiculo"`
	ServiceNames      string          `json:"servico_nome"`
	Status            string          `json:"status"`
	Total             decimal.Decimal `json:"total"`
	Note              string          `json:"observacao"`
	HasLedgerActivity bool            `json:"tem_financeiro"`
	CreatedAt         time.Time       `json:"created_at"`
}

// OrderDetail is a work order with everything needed to print it.
type OrderDetail struct {
	Order    models.WorkOrder `json:"ordem"`
	Customer models.Customer  `json:"cliente"`
	Vehicle  models.Vehicle   `json:"veiculo"`
	Services []models.Service `json:"servicos"`
}

type WorkOrderService struct {
	db       *gorm.DB
	log      *zap.Logger
	metrics  *Metrics
	notifier OrderNotifier
}

// NewWorkOrderService builds the engine. metrics and notifier may be nil.
func NewWorkOrderService(db *gorm.DB, log *zap.Logger, metrics *Metrics, notifier OrderNotifier) *WorkOrderService {
	return &WorkOrderService{db: db, log: log, metrics: metrics, notifier: notifier}
}

func validateTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return utils.ValidationError("total cannot be negative")
	}
	if total.GreaterThan(models.MaxOrderTotal) {
		return utils.ValidationError("total too large; maximum allowed is %s", models.MaxOrderTotal.StringFixed(2))
	}
	return nil
}

// Create inserts the order and its service links, then applies the revenue
// rule so an order created as finalized is posted immediately.
func (s *WorkOrderService) Create(ctx context.Context, tenantID uuid.UUID, in CreateOrderInput) (*models.WorkOrder, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if in.CustomerID == uuid.Nil {
		return nil, utils.ValidationError("customer is required")
	}
	if in.VehicleID == uuid.Nil {
		return nil, utils.ValidationError("vehicle is required")
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.OrderStatusOpen
	}
	total := decimal.Zero
	if in.Total != nil {
		total = *in.Total
	}
	if err := validateTotal(total); err != nil {
		return nil, err
	}

	order := &models.WorkOrder{
		CustomerID: in.CustomerID,
		VehicleID:  in.VehicleID,
		Status:     status,
		Total:      total,
		Note:       in.Note,
	}

	var action string
	err = t.Transaction(ctx, func(tx *repository.TenantDB) error {
		if ok, err := tx.Exists(ctx, &models.Customer{}, in.CustomerID); err != nil {
			return fmt.Errorf("check customer: %w", err)
		} else if !ok {
			return utils.NotFoundError("customer not found")
		}
		if ok, err := tx.Exists(ctx, &models.Vehicle{}, in.VehicleID); err != nil {
			return fmt.Errorf("check vehicle: %w", err)
		} else if !ok {
			return utils.NotFoundError("vehicle not found")
		}
		if err := checkServices(ctx, tx, in.ServiceIDs); err != nil {
			return err
		}

		if err := tx.Create(ctx, order); err != nil {
			return fmt.Errorf("create work order: %w", err)
		}
		links := make([]*models.WorkOrderService, 0, len(in.ServiceIDs))
		for _, id := range in.ServiceIDs {
			links = append(links, &models.WorkOrderService{WorkOrderID: order.ID, ServiceID: id})
		}
		if err := repository.CreateAll(ctx, tx, links); err != nil {
			return fmt.Errorf("link services: %w", err)
		}

		action, err = syncOrderRevenue(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LedgerSync(action)
	if order.IsFinalized() {
		s.notify(ctx, tenantID, order.ID)
	}
	return order, nil
}

func checkServices(ctx context.Context, tx *repository.TenantDB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	distinct := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return utils.ValidationError("invalid service id")
		}
		distinct[id] = struct{}{}
	}
	keys := make([]uuid.UUID, 0, len(distinct))
	for id := range distinct {
		keys = append(keys, id)
	}

	var count int64
	if err := tx.Model(ctx, &models.Service{}).Where("id IN ?", keys).Count(&count).Error; err != nil {
		return fmt.Errorf("check services: %w", err)
	}
	if int(count) != len(keys) {
		return utils.NotFoundError("service not found")
	}
	return nil
}

// Update persists status, total and note and brings the order's revenue
// entry in line within the same transaction.
func (s *WorkOrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, in UpdateOrderInput) error {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return err
	}

	var (
		action       string
		wasFinalized bool
		order        models.WorkOrder
	)
	err = t.Transaction(ctx, func(tx *repository.TenantDB) error {
		if err := tx.First(ctx, &order, orderID); err != nil {
			return notFoundOr(err, "work order")
		}
		status := strings.TrimSpace(in.Status)
		if status == "" {
			return utils.ValidationError("status is required")
		}
		if in.Total == nil {
			return utils.ValidationError("total is required")
		}
		if err := validateTotal(*in.Total); err != nil {
			return err
		}

		wasFinalized = order.IsFinalized()
		order.Status = status
		order.Total = *in.Total
		order.Note = in.Note
		if err := tx.Save(ctx, &order); err != nil {
			return fmt.Errorf("update work order: %w", err)
		}

		action, err = syncOrderRevenue(ctx, tx, &order)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.LedgerSync(action)
	if order.IsFinalized() && !wasFinalized {
		s.notify(ctx, tenantID, orderID)
	}
	return nil
}

// Delete removes an order without ledger activity along with its service
// links.
func (s *WorkOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return err
	}

	return t.Transaction(ctx, func(tx *repository.TenantDB) error {
		ok, err := tx.Exists(ctx, &models.WorkOrder{}, orderID)
		if err != nil {
			return fmt.Errorf("check work order: %w", err)
		}
		if !ok {
			return utils.NotFoundError("work order not found")
		}

		// Entries linked from any workshop block the delete.
		var entries int64
		if err := tx.Unscoped(ctx, &models.LedgerEntry{}).
			Where("work_order_id = ?", orderID).
			Count(&entries).Error; err != nil {
			return fmt.Errorf("count ledger entries: %w", err)
		}
		if entries > 0 {
			return utils.ConflictError("this work order has financial activity and cannot be deleted")
		}

		if err := tx.Model(ctx, &models.WorkOrderService{}).
			Where("work_order_id = ?", orderID).
			Delete(&models.WorkOrderService{}).Error; err != nil {
			return fmt.Errorf("delete service links: %w", err)
		}
		if err := tx.Model(ctx, &models.WorkOrder{}).
			Where("id = ?", orderID).
			Delete(&models.WorkOrder{}).Error; err != nil {
			return fmt.Errorf("delete work order: %w", err)
		}
		return nil
	})
}

// List returns the tenant's orders, newest first.
func (s *WorkOrderService) List(ctx context.Context, tenantID uuid.UUID) ([]OrderSummary, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	rows := []OrderSummary{}
	q := t.Table(ctx, "work_orders", "o").
		Select("o.id, c.name AS customer_name, v.make AS vehicle_make, v.model AS vehicle_model, o.status, o.total, o.note, o.created_at")
	q = t.JoinScoped(q, "INNER", "customers", "c", "c.id = o.customer_id")
	q = t.JoinScoped(q, "INNER", "vehicles", "v", "v.id = o.vehicle_id")
	if err := q.Order("o.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	names, err := serviceNamesByOrder(ctx, t)
	if err != nil {
		return nil, err
	}

	var counts []struct {
		WorkOrderID uuid.UUID
		Entries     int64
	}
	if err := t.Table(ctx, "ledger_entries", "l").
		Select("l.work_order_id, COUNT(*) AS entries").
		Where("l.work_order_id IS NOT NULL").
		Group("l.work_order_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count ledger activity: %w", err)
	}
	active := make(map[uuid.UUID]bool, len(counts))
	for _, c := range counts {
		active[c.WorkOrderID] = c.Entries > 0
	}

	for i := range rows {
		rows[i].ServiceNames = strings.Join(names[rows[i].ID], ", ")
		rows[i].HasLedgerActivity = active[rows[i].ID]
	}
	return rows, nil
}

// serviceNamesByOrder maps each order to its distinct service names, sorted.
func serviceNamesByOrder(ctx context.Context, t *repository.TenantDB) (map[uuid.UUID][]string, error) {
	var links []struct {
		WorkOrderID uuid.UUID
		Name        string
	}
	q := t.Table(ctx, "work_order_services", "ws").Select("ws.work_order_id, s.name")
	q = t.JoinScoped(q, "INNER", "services", "s", "s.id = ws.service_id")
	if err := q.Scan(&links).Error; err != nil {
		return nil, fmt.Errorf("load service names: %w", err)
	}

	seen := make(map[uuid.UUID]map[string]bool)
	names := make(map[uuid.UUID][]string)
	for _, l := range links {
		if seen[l.WorkOrderID] == nil {
			seen[l.WorkOrderID] = map[string]bool{}
		}
		if seen[l.WorkOrderID][l.Name] {
			continue
		}
		seen[l.WorkOrderID][l.Name] = true
		names[l.WorkOrderID] = append(names[l.WorkOrderID], l.Name)
	}
	for id := range names {
		sort.Strings(names[id])
	}
	return names, nil
}

// Get loads one order with its customer, vehicle and services. Services
// linked more than once are repeated.
func (s *WorkOrderService) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderDetail, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var d OrderDetail
	if err := t.First(ctx, &d.Order, orderID); err != nil {
		return nil, notFoundOr(err, "work order")
	}
	if err := t.First(ctx, &d.Customer, d.Order.CustomerID); err != nil {
		return nil, notFoundOr(err, "customer")
	}
	if err := t.First(ctx, &d.Vehicle, d.Order.VehicleID); err != nil {
		return nil, notFoundOr(err, "vehicle")
	}

	d.Services = []models.Service{}
	q := t.Table(ctx, "work_order_services", "ws").Select("s.*")
	q = t.JoinScoped(q, "INNER", "services", "s", "s.id = ws.service_id")
	if err := q.Where("ws.work_order_id = ?", orderID).
		Order("ws.created_at").
		Scan(&d.Services).Error; err != nil {
		return nil, fmt.Errorf("load order services: %w", err)
	}
	return &d, nil
}

func (s *WorkOrderService) notify(ctx context.Context, tenantID, orderID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.OrderFinalized(ctx, tenantID, orderID)
}
