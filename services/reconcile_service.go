package services

import (
	"context"
	"fmt"
	"time"

	"oficina-backend/models"
	"oficina-backend/repository"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ProblemMissingRevenue    = "missing_revenue"
	ProblemUnexpectedRevenue = "unexpected_revenue"
	ProblemDuplicateRevenue  = "duplicate_revenue"
	ProblemAmountMismatch    = "amount_mismatch"
)

// Mismatch is a work order whose revenue entries disagree with its status or
// total.
type Mismatch struct {
	TenantID uuid.UUID
	OrderID  uuid.UUID
	Status   string
	Total    decimal.Decimal
	Revenues []decimal.Decimal
	Problem  string
}

type FixReport struct {
	Checked int
	Created int
	Updated int
	Deleted int
}

// ReconcileService audits every workshop's ledger against its work orders.
type ReconcileService struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *Metrics
}

func NewReconcileService(db *gorm.DB, log *zap.Logger, metrics *Metrics) *ReconcileService {
	return &ReconcileService{db: db, log: log, metrics: metrics}
}

// Check lists every order whose ledger breaks the revenue rule.
func (s *ReconcileService) Check(ctx context.Context) ([]Mismatch, error) {
	var orders []models.WorkOrder
	if err := s.db.WithContext(ctx).
		Select("id, tenant_id, status, total").
		Order("created_at").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load work orders: %w", err)
	}

	var revenues []models.LedgerEntry
	if err := s.db.WithContext(ctx).
		Where("type = ? AND work_order_id IS NOT NULL", models.LedgerRevenue).
		Find(&revenues).Error; err != nil {
		return nil, fmt.Errorf("load revenues: %w", err)
	}
	byOrder := make(map[uuid.UUID][]decimal.Decimal, len(revenues))
	for _, r := range revenues {
		byOrder[*r.WorkOrderID] = append(byOrder[*r.WorkOrderID], r.Amount)
	}

	var out []Mismatch
	for _, o := range orders {
		amounts := byOrder[o.ID]
		problem := ""
		switch {
		case o.IsFinalized() && len(amounts) == 0:
			problem = ProblemMissingRevenue
		case !o.IsFinalized() && len(amounts) > 0:
			problem = ProblemUnexpectedRevenue
		case len(amounts) > 1:
			problem = ProblemDuplicateRevenue
		case len(amounts) == 1 && !amounts[0].Equal(o.Total):
			problem = ProblemAmountMismatch
		}
		if problem == "" {
			continue
		}
		out = append(out, Mismatch{
			TenantID: o.TenantID,
			OrderID:  o.ID,
			Status:   o.Status,
			Total:    o.Total,
			Revenues: amounts,
			Problem:  problem,
		})
	}
	return out, nil
}

// Fix repairs every mismatch, one transaction per order.
func (s *ReconcileService) Fix(ctx context.Context) (FixReport, error) {
	mismatches, err := s.Check(ctx)
	if err != nil {
		return FixReport{}, err
	}
	report := FixReport{Checked: len(mismatches)}
	for _, m := range mismatches {
		t, err := repository.ForTenant(s.db, m.TenantID)
		if err != nil {
			s.log.Warn("order without workshop skipped", zap.String("order_id", m.OrderID.String()))
			continue
		}
		var action string
		err = t.Transaction(ctx, func(tx *repository.TenantDB) error {
			var order models.WorkOrder
			if err := tx.First(ctx, &order, m.OrderID); err != nil {
				return err
			}
			action, err = syncOrderRevenue(ctx, tx, &order)
			return err
		})
		if err != nil {
			return report, fmt.Errorf("fix order %s: %w", m.OrderID, err)
		}
		s.metrics.LedgerSync(action)
		switch action {
		case SyncCreated:
			report.Created++
		case SyncUpdated:
			report.Updated++
		case SyncDeleted:
			report.Deleted++
		}
		s.log.Info("ledger repaired",
			zap.String("oficina_id", m.TenantID.String()),
			zap.String("order_id", m.OrderID.String()),
			zap.String("problem", m.Problem),
			zap.String("action", action),
		)
	}
	return report, nil
}

// StartScheduler runs Fix on schedule until the returned cron is stopped.
func (s *ReconcileService) StartScheduler(schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		report, err := s.Fix(ctx)
		if err != nil {
			s.log.Error("scheduled reconciliation failed", zap.Error(err))
			return
		}
		s.log.Info("scheduled reconciliation finished",
			zap.Int("mismatches", report.Checked),
			zap.Int("created", report.Created),
			zap.Int("updated", report.Updated),
			zap.Int("deleted", report.Deleted),
		)
	}); err != nil {
		return nil, fmt.Errorf("schedule reconciliation %q: %w", schedule, err)
	}
	c.Start()
	s.log.Info("reconciliation scheduler started", zap.String("schedule", schedule))
	return c, nil
}
