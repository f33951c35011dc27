package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"grocery-manager/internal/core/ai/extract"
	"grocery-manager/internal/core/ai/match"
	"grocery-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// expirationOutputFormat 保鮮期估算的期望輸出結構
const expirationOutputFormat = `[
    {"name": "Item name", "shelf_life_days": 7},
    ...
]`

// ExpirationService 效期估算階段。
// 依收據載入品項，一次推論估算全部品項的保鮮天數，
// 以模糊比對把估算值對回品項，對不上的用預設天數補齊。
type ExpirationService struct {
	generator            Generator
	store                GroceryStore
	defaultShelfLifeDays int
	matchThreshold       float64
	now                  func() time.Time
}

// NewExpirationService 創建效期估算服務
func NewExpirationService(generator Generator, store GroceryStore, defaultShelfLifeDays int, matchThreshold float64) *ExpirationService {
	return &ExpirationService{
		generator:            generator,
		store:                store,
		defaultShelfLifeDays: defaultShelfLifeDays,
		matchThreshold:       matchThreshold,
		now:                  time.Now,
	}
}

// Estimate 估算一張收據下所有品項的到期日。
// 找不到任何品項回傳 404 錯誤；推論或解析失敗時不中斷，
// 全部品項退回預設保鮮天數，保證每筆品項都會拿到到期日。
func (s *ExpirationService) Estimate(ctx context.Context, receiptID string) (*ReceiptResult, error) {
	if strings.TrimSpace(receiptID) == "" {
		return nil, common.NewError(common.ErrCodeInvalidRequest, "no receipt_id provided", http.StatusBadRequest, nil)
	}

	items, err := s.store.Scan(ctx, func(item GroceryItem) bool {
		return item.ReceiptID == receiptID
	})
	if err != nil {
		return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to load items for receipt %s: %w", receiptID, err))
	}
	if len(items) == 0 {
		return nil, common.NewError(common.ErrCodeNotFound,
			fmt.Sprintf("no items found for receipt_id: %s", receiptID), http.StatusNotFound, nil)
	}

	estimates := s.estimateShelfLives(ctx, items)

	names := make([]string, 0, len(estimates))
	byName := make(map[string]int, len(estimates))
	for _, e := range estimates {
		if _, exists := byName[e.Name]; exists {
			continue
		}
		names = append(names, e.Name)
		byName[e.Name] = e.ShelfLifeDays
	}

	now := s.now()
	updated := make([]GroceryItem, 0, len(items))

	for _, item := range items {
		days := s.defaultShelfLifeDays
		if matched, ok := match.Match(item.Name, names, s.matchThreshold); ok {
			days = byName[matched]
		}

		purchase, err := time.Parse(DateLayout, item.PurchaseDate)
		if err != nil {
			// 購買日壞掉就以今天起算，不讓單筆品項卡住整張收據
			purchase = now
		}
		expiration := purchase.AddDate(0, 0, days)

		update := ExpirationUpdate{
			ExpirationDate: expiration.Format(DateLayout),
			ShelfLifeDays:  days,
		}
		if err := s.store.UpdateExpiration(ctx, item.ItemID, update); err != nil {
			return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to update item %s: %w", item.ItemID, err))
		}

		shelfLife := days
		item.ExpirationDate = update.ExpirationDate
		item.ShelfLifeDays = &shelfLife
		item.UpdatedAt = now.Format(time.RFC3339)
		updated = append(updated, item)
	}

	common.LogInfo("效期估算完成",
		zap.String("receipt_id", receiptID),
		zap.Int("items_count", len(updated)),
		zap.Int("estimates_parsed", len(estimates)),
	)

	return &ReceiptResult{
		ReceiptID:  receiptID,
		ItemsCount: len(updated),
		Items:      updated,
	}, nil
}

// estimateShelfLives 向推論端點估算各品項的保鮮天數。
// 任何失敗都只記錄並回傳空結果，由呼叫端補預設值。
func (s *ExpirationService) estimateShelfLives(ctx context.Context, items []GroceryItem) []extract.Estimate {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Name)
	}

	prompt := fmt.Sprintf(`You are an expert at estimating expiration dates for grocery items.
Please estimate the typical shelf life (in days) for each of the following grocery items:

%s

For each item, provide only the name and the number of days until expiration.
Format your response as: "Item name: X days"`, strings.Join(lines, "\n"))

	result, err := s.generator.GenerateStructured(ctx, prompt, expirationOutputFormat, 1000, 0.2)
	if err != nil {
		common.LogWarn("保鮮期推論失敗，全部使用預設天數",
			zap.Int("items_count", len(items)),
			zap.Error(err),
		)
		return nil
	}

	return extract.Estimates(result.Raw)
}
