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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ledgerListLimit = 100

type LedgerInput struct {
	Type        string
	Amount      decimal.Decimal
	WorkOrderID *uuid.UUID
	Description string
}

// LedgerUpdate carries the fields of an edit. Nil fields keep their stored
// value, except WorkOrderID where nil unlinks the entry.
type LedgerUpdate struct {
	Type        *string
	Amount      *decimal.Decimal
	WorkOrderID *uuid.UUID
	Description *string
}

type LedgerRow struct {
	ID          uuid.UUID       `json:"id"`
	WorkOrderID *uuid.UUID      `json:"ordem_servico_id"`
	Type        string          `json:"tipo"`
	Amount      decimal.Decimal `json:"valor"`
	Description string          `json:"descricao"`
	CreatedAt   time.Time       `json:"created_at"`
}

type LedgerSummary struct {
	Revenue decimal.Decimal `json:"receita"`
	Expense decimal.Decimal `json:"despesa"`
	Profit  decimal.Decimal `json:"lucro"`
	Margin  decimal.Decimal `json:"lucratividade"`
}

type LedgerService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLedgerService(db *gorm.DB, log *zap.Logger) *LedgerService {
	return &LedgerService{db: db, log: log}
}

// checkEntry enforces the rules shared by create and free-form update and
// returns the canonical type.
func checkEntry(ctx context.Context, tx *repository.TenantDB, typ string, amount decimal.Decimal, orderID *uuid.UUID) (string, error) {
	canonical, ok := utils.NormalizeLedgerType(typ)
	if strings.TrimSpace(typ) == "" || amount.IsZero() {
		return "", utils.ValidationError("type and amount are required")
	}
	if !ok {
		return "", utils.ValidationError("type must be Receita or Despesa")
	}
	if amount.IsNegative() {
		return "", utils.ValidationError("amount cannot be negative")
	}
	if amount.GreaterThan(models.MaxOrderTotal) {
		return "", utils.ValidationError("amount too large; maximum allowed is %s", models.MaxOrderTotal.StringFixed(2))
	}
	if orderID == nil {
		return canonical, nil
	}

	if canonical == models.LedgerRevenue {
		return "", utils.ConflictError("revenue for a work order is posted by the order itself")
	}
	var order models.WorkOrder
	if err := tx.First(ctx, &order, *orderID); err != nil {
		return "", notFoundOr(err, "work order")
	}
	if order.IsFinalized() {
		return "", utils.ConflictError("an expense cannot be linked to a finalized work order")
	}
	return canonical, nil
}

func (s *LedgerService) Create(ctx context.Context, tenantID uuid.UUID, in LedgerInput) (*models.LedgerEntry, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		WorkOrderID: in.WorkOrderID,
		Amount:      in.Amount,
		Description: in.Description,
	}
	err = t.Transaction(ctx, func(tx *repository.TenantDB) error {
		typ, err := checkEntry(ctx, tx, in.Type, in.Amount, in.WorkOrderID)
		if err != nil {
			return err
		}
		entry.Type = typ
		if err := tx.Create(ctx, entry); err != nil {
			return fmt.Errorf("create ledger entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Update edits an entry. The revenue entry of a work order only accepts a new
// description; its amount is re-read from the order.
func (s *LedgerService) Update(ctx context.Context, tenantID, entryID uuid.UUID, in LedgerUpdate) (*models.LedgerEntry, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var entry models.LedgerEntry
	err = t.Transaction(ctx, func(tx *repository.TenantDB) error {
		if err := tx.First(ctx, &entry, entryID); err != nil {
			return notFoundOr(err, "ledger entry")
		}

		if entry.IsOrderRevenue() {
			var order models.WorkOrder
			if err := tx.First(ctx, &order, *entry.WorkOrderID); err != nil {
				return notFoundOr(err, "work order")
			}
			entry.Amount = order.Total
			if in.Description != nil {
				entry.Description = *in.Description
			}
			return tx.Save(ctx, &entry)
		}

		typ := entry.Type
		if in.Type != nil {
			typ = *in.Type
		}
		amount := entry.Amount
		if in.Amount != nil {
			amount = *in.Amount
		}
		canonical, err := checkEntry(ctx, tx, typ, amount, in.WorkOrderID)
		if err != nil {
			return err
		}
		entry.Type = canonical
		entry.Amount = amount
		entry.WorkOrderID = in.WorkOrderID
		if in.Description != nil {
			entry.Description = *in.Description
		}
		return tx.Save(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *LedgerService) Delete(ctx context.Context, tenantID, entryID uuid.UUID) error {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return err
	}
	res := t.Model(ctx, &models.LedgerEntry{}).Where("id = ?", entryID).Delete(&models.LedgerEntry{})
	if res.Error != nil {
		return fmt.Errorf("delete ledger entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundError("ledger entry not found")
	}
	return nil
}

// List returns the latest entries. Entries without a description show the
// services of their work order.
func (s *LedgerService) List(ctx context.Context, tenantID uuid.UUID) ([]LedgerRow, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	rows := []LedgerRow{}
	if err := t.Table(ctx, "ledger_entries", "").
		Select("id, work_order_id, type, amount, description, created_at").
		Order("created_at DESC").
		Limit(ledgerListLimit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	var names map[uuid.UUID][]string
	for i := range rows {
		if rows[i].Description != "" || rows[i].WorkOrderID == nil {
			continue
		}
		if names == nil {
			if names, err = serviceNamesByOrder(ctx, t); err != nil {
				return nil, err
			}
		}
		rows[i].Description = strings.Join(names[*rows[i].WorkOrderID], ", ")
	}
	return rows, nil
}

// Summary totals revenue and expense over all of the tenant's entries.
func (s *LedgerService) Summary(ctx context.Context, tenantID uuid.UUID) (*LedgerSummary, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	revenue, expense, err := sumLedger(t.Model(ctx, &models.LedgerEntry{}))
	if err != nil {
		return nil, err
	}
	return summarize(revenue, expense), nil
}

func sumLedger(q *gorm.DB) (decimal.Decimal, decimal.Decimal, error) {
	var totals struct {
		Revenue decimal.Decimal
		Expense decimal.Decimal
	}
	err := q.Select(
		"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS revenue, "+
			"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS expense",
		models.LedgerRevenue, models.LedgerExpense,
	).Scan(&totals).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum ledger: %w", err)
	}
	return totals.Revenue.Round(2), totals.Expense.Round(2), nil
}

func summarize(revenue, expense decimal.Decimal) *LedgerSummary {
	profit := revenue.Sub(expense)
	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = profit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return &LedgerSummary{Revenue: revenue, Expense: expense, Profit: profit, Margin: margin}
}
