package pipeline

import (
	"context"
	"fmt"
	"time"

	"grocery-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// InventoryService 庫存追蹤階段，提供讀取與移除兩條路徑
type InventoryService struct {
	store GroceryStore
	now   func() time.Time
}

// NewInventoryService 創建庫存追蹤服務
func NewInventoryService(store GroceryStore) *InventoryService {
	return &InventoryService{
		store: store,
		now:   time.Now,
	}
}

// List 列出庫存品項。
// expiringWithinDays 非 nil 時只回傳 N 天內到期的品項，並附上
// days_until_expiration；沒有到期日、日期格式壞掉或已過期的品項
// 一律排除。空庫存是正常結果，回傳 items_count 為 0。
func (s *InventoryService) List(ctx context.Context, expiringWithinDays *int) (*InventoryResult, error) {
	items, err := s.store.Scan(ctx, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to scan grocery items: %w", err))
	}

	if expiringWithinDays != nil {
		items = filterExpiring(items, *expiringWithinDays, s.now())
	}
	if items == nil {
		items = []GroceryItem{}
	}

	return &InventoryResult{
		ItemsCount: len(items),
		Items:      items,
	}, nil
}

// Remove 將品項自庫存移除（視為已消耗）。
// 刪除是冪等的：重複刪除同一 item_id 一樣回報成功。
func (s *InventoryService) Remove(ctx context.Context, itemID string) (*RemovalResult, error) {
	if itemID == "" {
		return nil, common.ErrNoItemIDProvided
	}

	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to delete item %s: %w", itemID, err))
	}

	common.LogInfo("品項已移除", zap.String("item_id", itemID))

	return &RemovalResult{
		Message: fmt.Sprintf("Item %s removed from inventory", itemID),
		ItemID:  itemID,
	}, nil
}

// filterExpiring 過濾 N 天內到期的品項並標上剩餘天數。
// 天數以日曆日計算，今天到期算 0 天。
func filterExpiring(items []GroceryItem, withinDays int, now time.Time) []GroceryItem {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	filtered := make([]GroceryItem, 0)
	for _, item := range items {
		if item.ExpirationDate == "" {
			continue
		}
		expiration, err := time.Parse(DateLayout, item.ExpirationDate)
		if err != nil {
			continue
		}

		days := int(expiration.Sub(today).Hours() / 24)
		if days < 0 || days > withinDays {
			continue
		}

		d := days
		item.DaysUntilExpiration = &d
		filtered = append(filtered, item)
	}

	return filtered
}
