package services

import (
	"context"
	"fmt"

	"oficina-backend/models"
	"oficina-backend/repository"
)

// syncOrderRevenue makes the ledger agree with order: a finalized order owns
// exactly one revenue entry equal to its total, any other order owns none.
// It must run inside the transaction that persisted the order.
func syncOrderRevenue(ctx context.Context, tx *repository.TenantDB, order *models.WorkOrder) (string, error) {
	var revenues []models.LedgerEntry
	if err := tx.Model(ctx, &models.LedgerEntry{}).
		Where("work_order_id = ? AND type = ?", order.ID, models.LedgerRevenue).
		Order("created_at ASC").
		Find(&revenues).Error; err != nil {
		return "", fmt.Errorf("load order revenue: %w", err)
	}

	if !order.IsFinalized() {
		if len(revenues) == 0 {
			return SyncNone, nil
		}
		if err := tx.Model(ctx, &models.LedgerEntry{}).
			Where("work_order_id = ? AND type = ?", order.ID, models.LedgerRevenue).
			Delete(&models.LedgerEntry{}).Error; err != nil {
			return "", fmt.Errorf("delete order revenue: %w", err)
		}
		return SyncDeleted, nil
	}

	if len(revenues) == 0 {
		orderID := order.ID
		entry := &models.LedgerEntry{
			WorkOrderID: &orderID,
			Type:        models.LedgerRevenue,
			Amount:      order.Total,
		}
		if err := tx.Create(ctx, entry); err != nil {
			return "", fmt.Errorf("create order revenue: %w", err)
		}
		return SyncCreated, nil
	}

	action := SyncNone
	keep := revenues[0]
	if len(revenues) > 1 {
		extra := make([]any, 0, len(revenues)-1)
		for _, r := range revenues[1:] {
			extra = append(extra, r.ID)
		}
		if err := tx.Model(ctx, &models.LedgerEntry{}).
			Where("id IN ?", extra).
			Delete(&models.LedgerEntry{}).Error; err != nil {
			return "", fmt.Errorf("delete duplicate revenue: %w", err)
		}
		action = SyncUpdated
	}
	if !keep.Amount.Equal(order.Total) {
		if err := tx.Model(ctx, &models.LedgerEntry{}).
			Where("id = ?", keep.ID).
			Update("amount", order.Total).Error; err != nil {
			return "", fmt.Errorf("update order revenue: %w", err)
		}
		action = SyncUpdated
	}
	return action, nil
}
