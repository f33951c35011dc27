package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grocery-manager/internal/core/ai/extract"
	"grocery-manager/internal/core/image"
	"grocery-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// receiptPrompt 收據辨識提示詞
const receiptPrompt = `You are an expert at extracting information from grocery receipts.
Please analyze this receipt image and extract all grocery items with their prices.
Format the output as a list of items, one per line, with the item name followed by the price.`

// ReceiptService 收據判讀階段。
// 流程：驗證並解碼圖片 -> 上傳物件儲存 -> 推論擷取文字 ->
// 解析品項 -> 寫入儲存。圖片一定先落地，即使後續擷取不到任何品項。
type ReceiptService struct {
	generator Generator
	store     GroceryStore
	blobs     BlobStore
	images    *image.Service
	now       func() time.Time
}

// NewReceiptService 創建收據判讀服務
func NewReceiptService(generator Generator, store GroceryStore, blobs BlobStore, images *image.Service) *ReceiptService {
	return &ReceiptService{
		generator: generator,
		store:     store,
		blobs:     blobs,
		images:    images,
		now:       time.Now,
	}
}

// Interpret 處理一張上傳的收據。
// 擷取不到任何品項不是錯誤，回傳 items_count 為 0 的結果。
func (s *ReceiptService) Interpret(ctx context.Context, imageData string) (*ReceiptResult, error) {
	raw, contentType, err := s.images.DecodeReceipt(imageData)
	if err != nil {
		return nil, err
	}

	receiptID := common.GenerateUUID()
	now := s.now()

	// 圖片先落地，檔名帶上時間戳供追溯，副檔名跟著嗅探到的格式
	filename := fmt.Sprintf("%s-%s.%s", receiptID, now.Format("20060102-150405"), fileExtension(contentType))
	handle, err := s.blobs.Put(ctx, filename, raw, contentType)
	if err != nil {
		return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to store receipt image: %w", err))
	}

	if err := s.store.PutReceipt(ctx, Receipt{
		ReceiptID:   receiptID,
		ImageHandle: handle,
		CreatedAt:   now.Format(time.RFC3339),
	}); err != nil {
		return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to store receipt record: %w", err))
	}

	text, err := s.generator.Generate(ctx, receiptPrompt, s.images.ToBase64(raw), 1000, 0.2)
	if err != nil {
		return nil, err
	}

	parsed := extract.Items(text)
	purchaseDate := now.Format(DateLayout)

	items := make([]GroceryItem, 0, len(parsed))
	for i, p := range parsed {
		item := GroceryItem{
			ItemID:       fmt.Sprintf("%s-%d", receiptID, i+1),
			ReceiptID:    receiptID,
			Name:         p.Name,
			Price:        p.Price,
			PurchaseDate: purchaseDate,
			CreatedAt:    now.Format(time.RFC3339),
		}
		if err := s.store.PutItem(ctx, item); err != nil {
			return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to store grocery item %s: %w", item.ItemID, err))
		}
		items = append(items, item)
	}

	common.LogInfo("收據判讀完成",
		zap.String("receipt_id", receiptID),
		zap.Int("items_count", len(items)),
	)

	return &ReceiptResult{
		ReceiptID:  receiptID,
		ItemsCount: len(items),
		Items:      items,
	}, nil
}

// fileExtension 由 content type 推導副檔名
func fileExtension(contentType string) string {
	ext := strings.TrimPrefix(contentType, "image/")
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}
