package services

import (
	"context"
	"fmt"
	"time"

	"oficina-backend/models"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MonthSummary struct {
	Inflow  decimal.Decimal `json:"entrada"`
	Outflow decimal.Decimal `json:"saida"`
	Balance decimal.Decimal `json:"saldo"`
}

type MonthlyMovement struct {
	Year    int             `gorm:"column:ano" json:"ano"`
	Month   int             `gorm:"column:mes" json:"mes"`
	Inflow  decimal.Decimal `gorm:"column:entradas" json:"entradas"`
	Outflow decimal.Decimal `gorm:"column:saidas" json:"saidas"`
}

type Dashboard struct {
	Month    int               `json:"mes"`
	Year     int               `json:"ano"`
	Orders   []OrderSummary    `json:"ordens_servico"`
	Parts    []models.Part     `json:"pecas"`
	LowStock []models.Part     `json:"estoque_baixo"`
	Movement []MonthlyMovement `json:"movimentacao_mensal"`
	Summary  MonthSummary      `json:"resumo_mensal"`
}

type DashboardService struct {
	db     *gorm.DB
	orders *WorkOrderService
	parts  *PartService
	now    func() time.Time
}

func NewDashboardService(db *gorm.DB, orders *WorkOrderService, parts *PartService) *DashboardService {
	return &DashboardService{db: db, orders: orders, parts: parts, now: time.Now}
}

// Build assembles the dashboard for month/year, or for the current month
// when both are zero.
func (s *DashboardService) Build(ctx context.Context, tenantID uuid.UUID, month, year int) (*Dashboard, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if month == 0 && year == 0 {
		now := s.now().UTC()
		month, year = int(now.Month()), now.Year()
	}
	if month < 1 || month > 12 {
		return nil, utils.ValidationError("mes must be between 1 and 12")
	}
	if year < 1900 || year > 9999 {
		return nil, utils.ValidationError("invalid ano")
	}

	d := &Dashboard{Month: month, Year: year, LowStock: []models.Part{}}
	if d.Orders, err = s.orders.List(ctx, tenantID); err != nil {
		return nil, err
	}
	if d.Parts, err = s.parts.List(ctx, tenantID); err != nil {
		return nil, err
	}
	for _, p := range d.Parts {
		if p.Status != models.PartInStock {
			d.LowStock = append(d.LowStock, p)
		}
	}

	start, end := utils.MonthRange(year, time.Month(month), time.UTC)
	inflow, outflow, err := sumLedger(t.Model(ctx, &models.LedgerEntry{}).
		Where("created_at >= ? AND created_at < ?", start, end))
	if err != nil {
		return nil, err
	}
	d.Summary = MonthSummary{Inflow: inflow, Outflow: outflow, Balance: inflow.Sub(outflow)}

	yearExpr, monthExpr := yearMonthExpr(s.db)
	d.Movement = []MonthlyMovement{}
	if err := t.Model(ctx, &models.LedgerEntry{}).
		Select(
			yearExpr+" AS ano, "+monthExpr+" AS mes, "+
				"SUM(CASE WHEN type = ? THEN amount ELSE 0 END) AS entradas, "+
				"SUM(CASE WHEN type = ? THEN amount ELSE 0 END) AS saidas",
			models.LedgerRevenue, models.LedgerExpense,
		).
		Group("ano, mes").
		Order("ano, mes").
		Scan(&d.Movement).Error; err != nil {
		return nil, fmt.Errorf("monthly movement: %w", err)
	}
	for i := range d.Movement {
		d.Movement[i].Inflow = d.Movement[i].Inflow.Round(2)
		d.Movement[i].Outflow = d.Movement[i].Outflow.Round(2)
	}
	return d, nil
}

// yearMonthExpr returns SQL extracting the year and month of created_at for
// the connected dialect.
func yearMonthExpr(db *gorm.DB) (string, string) {
	if db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%Y', created_at) AS INTEGER)", "CAST(strftime('%m', created_at) AS INTEGER)"
	}
	return "CAST(EXTRACT(YEAR FROM created_at) AS INTEGER)", "CAST(EXTRACT(MONTH FROM created_at) AS INTEGER)"
}
