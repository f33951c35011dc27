package pipeline

import (
	"context"

	"grocery-manager/internal/core/ai/deepseek"
)

// DateLayout 全管線統一的日期格式
const DateLayout = "2006-01-02"

// GroceryItem 一筆庫存品項。
// 由 interpret 階段建立（每行收據一筆），estimate 階段補上
// expiration_date / shelf_life_days，之後只會被消費者明確移除。
// 不變量：expiration_date = purchase_date + shelf_life_days。
type GroceryItem struct {
	ItemID              string  `json:"item_id"`
	ReceiptID           string  `json:"receipt_id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	PurchaseDate        string  `json:"purchase_date"`
	ExpirationDate      string  `json:"expiration_date,omitempty"`
	ShelfLifeDays       *int    `json:"shelf_life_days,omitempty"`
	DaysUntilExpiration *int    `json:"days_until_expiration,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

// Receipt 一張已上傳的收據，建立後不再修改
type Receipt struct {
	ReceiptID   string `json:"receipt_id"`
	ImageHandle string `json:"image_handle"`
	CreatedAt   string `json:"created_at"`
}

// Recipe 一份推薦食譜，與品項沒有外鍵關係
type Recipe struct {
	RecipeID           string   `json:"recipe_id"`
	Name               string   `json:"name"`
	Ingredients        []string `json:"ingredients"`
	Instructions       string   `json:"instructions"`
	CookingTimeMinutes int      `json:"cooking_time_minutes"`
	CreatedAt          string   `json:"created_at"`
}

// ReceiptResult interpret 與 estimate 階段的輸出契約
type ReceiptResult struct {
	ReceiptID  string        `json:"receipt_id"`
	ItemsCount int           `json:"items_count"`
	Items      []GroceryItem `json:"items"`
}

// InventoryResult track 階段讀取路徑的輸出
type InventoryResult struct {
	ItemsCount int           `json:"items_count"`
	Items      []GroceryItem `json:"items"`
}

// RemovalResult track 階段刪除路徑的輸出
type RemovalResult struct {
	Message string `json:"message"`
	ItemID  string `json:"item_id"`
}

// RecipeResult recommend 階段的輸出
type RecipeResult struct {
	RecipesCount int      `json:"recipes_count"`
	Recipes      []Recipe `json:"recipes"`
}

// ExpirationUpdate estimate 階段寫回儲存的欄位
type ExpirationUpdate struct {
	ExpirationDate string
	ShelfLifeDays  int
}

// Generator 推論端點的抽象，各階段只依賴這個介面
type Generator interface {
	Generate(ctx context.Context, prompt, imageBase64 string, maxTokens int, temperature float64) (string, error)
	GenerateStructured(ctx context.Context, prompt, outputFormat string, maxTokens int, temperature float64) (deepseek.StructuredResult, error)
}

// GroceryStore 品項的持久化儲存。
// Update 為讀取後整筆寫回，沒有樂觀鎖：兩個併發的 estimate
// 對同一品項會以最後寫入為準，這是已知且接受的限制。
type GroceryStore interface {
	PutItem(ctx context.Context, item GroceryItem) error
	GetItem(ctx context.Context, itemID string) (*GroceryItem, error)
	UpdateExpiration(ctx context.Context, itemID string, update ExpirationUpdate) error
	DeleteItem(ctx context.Context, itemID string) error
	Scan(ctx context.Context, filter func(GroceryItem) bool) ([]GroceryItem, error)
	PutReceipt(ctx context.Context, receipt Receipt) error
}

// RecipeStore 食譜的持久化儲存
type RecipeStore interface {
	PutRecipe(ctx context.Context, recipe Recipe) error
}

// BlobStore 收據圖片的物件儲存，回傳可供追溯的 handle
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
