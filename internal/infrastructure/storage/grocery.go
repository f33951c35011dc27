package storage

import (
	"context"
	"fmt"
	"time"

	"grocery-manager/internal/core/pipeline"
	"grocery-manager/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Redis 鍵前綴
const (
	groceryItemPrefix = "grocery:item:"
	receiptPrefix     = "grocery:receipt:"
)

// scanBatchSize 每次 SCAN 取回的鍵數上限
const scanBatchSize = 100

// GroceryRedisStore 以 Redis 實作品項儲存。
// 每筆品項存成一個 JSON 字串鍵，全量讀取用 SCAN 游標分頁，
// 不用 KEYS 以免阻塞。
type GroceryRedisStore struct {
	client *redis.Client
}

// NewGroceryRedisStore 創建品項儲存
func NewGroceryRedisStore(client *redis.Client) *GroceryRedisStore {
	return &GroceryRedisStore{client: client}
}

// PutItem 寫入品項，同 item_id 直接覆蓋
func (s *GroceryRedisStore) PutItem(ctx context.Context, item pipeline.GroceryItem) error {
	data, err := common.ToJSON(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", item.ItemID, err)
	}
	return s.client.Set(ctx, groceryItemPrefix+item.ItemID, data, 0).Err()
}

// GetItem 讀取單筆品項，不存在時回傳 (nil, nil)
func (s *GroceryRedisStore) GetItem(ctx context.Context, itemID string) (*pipeline.GroceryItem, error) {
	data, err := s.client.Get(ctx, groceryItemPrefix+itemID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", itemID, err)
	}

	var item pipeline.GroceryItem
	if err := common.ParseJSON(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", itemID, err)
	}
	return &item, nil
}

// UpdateExpiration 更新品項的到期欄位。
// 讀取後整筆寫回，沒有樂觀鎖：併發更新同一品項以最後寫入為準。
func (s *GroceryRedisStore) UpdateExpiration(ctx context.Context, itemID string, update pipeline.ExpirationUpdate) error {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %s not found", itemID)
	}

	shelfLife := update.ShelfLifeDays
	item.ExpirationDate = update.ExpirationDate
	item.ShelfLifeDays = &shelfLife
	item.UpdatedAt = time.Now().Format(time.RFC3339)

	return s.PutItem(ctx, *item)
}

// DeleteItem 刪除品項。DEL 本身冪等，鍵不存在也回報成功。
func (s *GroceryRedisStore) DeleteItem(ctx context.Context, itemID string) error {
	return s.client.Del(ctx, groceryItemPrefix+itemID).Err()
}

// Scan 遍歷全部品項，filter 非 nil 時只回傳通過的項目。
// 以 SCAN 游標分頁直到游標歸零，對應全表掃描的續讀語意。
func (s *GroceryRedisStore) Scan(ctx context.Context, filter func(pipeline.GroceryItem) bool) ([]pipeline.GroceryItem, error) {
	items := make([]pipeline.GroceryItem, 0)
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, groceryItemPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan grocery items: %w", err)
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Result()
			if err == redis.Nil {
				// 掃描到讀取之間被刪掉，略過
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to get item at %s: %w", key, err)
			}

			var item pipeline.GroceryItem
			if err := common.ParseJSON(data, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal item at %s: %w", key, err)
			}
			if filter == nil || filter(item) {
				items = append(items, item)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return items, nil
}

// PutReceipt 寫入收據記錄
func (s *GroceryRedisStore) PutReceipt(ctx context.Context, receipt pipeline.Receipt) error {
	data, err := common.ToJSON(receipt)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt %s: %w", receipt.ReceiptID, err)
	}
	return s.client.Set(ctx, receiptPrefix+receipt.ReceiptID, data, 0).Err()
}
