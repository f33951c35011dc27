package grocery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"grocery-manager/internal/core/pipeline"
	"grocery-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubOrchestrator 測試用的收據處理入口
type stubOrchestrator struct {
	result *pipeline.ReceiptResult
	err    error
}

func (s *stubOrchestrator) ProcessReceipt(ctx context.Context, imageData string) (*pipeline.ReceiptResult, error) {
	return s.result, s.err
}

// memoryStore 測試用品項儲存
type memoryStore struct {
	items map[string]pipeline.GroceryItem
	order []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[string]pipeline.GroceryItem)}
}

func (s *memoryStore) PutItem(ctx context.Context, item pipeline.GroceryItem) error {
	if _, exists := s.items[item.ItemID]; !exists {
		s.order = append(s.order, item.ItemID)
	}
	s.items[item.ItemID] = item
	return nil
}

func (s *memoryStore) GetItem(ctx context.Context, itemID string) (*pipeline.GroceryItem, error) {
	item, exists := s.items[itemID]
	if !exists {
		return nil, nil
	}
	return &item, nil
}

func (s *memoryStore) UpdateExpiration(ctx context.Context, itemID string, update pipeline.ExpirationUpdate) error {
	return nil
}

func (s *memoryStore) DeleteItem(ctx context.Context, itemID string) error {
	delete(s.items, itemID)
	for i, id := range s.order {
		if id == itemID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryStore) Scan(ctx context.Context, filter func(pipeline.GroceryItem) bool) ([]pipeline.GroceryItem, error) {
	items := make([]pipeline.GroceryItem, 0, len(s.order))
	for _, id := range s.order {
		item := s.items[id]
		if filter == nil || filter(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *memoryStore) PutReceipt(ctx context.Context, receipt pipeline.Receipt) error {
	return nil
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleUploadSuccess(t *testing.T) {
	handler := &ReceiptHandler{orchestrator: &stubOrchestrator{
		result: &pipeline.ReceiptResult{ReceiptID: "r1", ItemsCount: 1, Items: []pipeline.GroceryItem{
			{ItemID: "r1-1", Name: "Milk", ExpirationDate: "2024-01-08"},
		}},
	}}

	router := gin.New()
	router.POST("/api/v1/receipts", handler.HandleUpload)

	w := performRequest(router, "POST", "/api/v1/receipts", `{"image": "base64data"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result pipeline.ReceiptResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "r1", result.ReceiptID)
	assert.Equal(t, 1, result.ItemsCount)
}

func TestHandleUploadMissingImage(t *testing.T) {
	handler := &ReceiptHandler{orchestrator: &stubOrchestrator{}}

	router := gin.New()
	router.POST("/api/v1/receipts", handler.HandleUpload)

	w := performRequest(router, "POST", "/api/v1/receipts", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no image provided")
}

func TestHandleUploadMalformedBody(t *testing.T) {
	handler := &ReceiptHandler{orchestrator: &stubOrchestrator{}}

	router := gin.New()
	router.POST("/api/v1/receipts", handler.HandleUpload)

	w := performRequest(router, "POST", "/api/v1/receipts", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUploadPipelineError(t *testing.T) {
	handler := &ReceiptHandler{orchestrator: &stubOrchestrator{err: common.ErrGenerationFailed}}

	router := gin.New()
	router.POST("/api/v1/receipts", handler.HandleUpload)

	w := performRequest(router, "POST", "/api/v1/receipts", `{"image": "base64data"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeGenerationFailed)
}

func TestHandleListInventory(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.PutItem(context.Background(), pipeline.GroceryItem{
		ItemID: "r1-1", Name: "Milk", ExpirationDate: "2024-01-08",
	}))

	handler := NewInventoryHandler(pipeline.NewInventoryService(store))

	router := gin.New()
	router.GET("/api/v1/grocery", handler.HandleList)

	w := performRequest(router, "GET", "/api/v1/grocery", "")
	require.Equal(t, http.StatusOK, w.Code)

	var result pipeline.InventoryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.ItemsCount)
	assert.Equal(t, "Milk", result.Items[0].Name)
}

func TestHandleListIgnoresInvalidQuery(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.PutItem(context.Background(), pipeline.GroceryItem{
		ItemID: "r1-1", Name: "Milk",
	}))

	handler := NewInventoryHandler(pipeline.NewInventoryService(store))

	router := gin.New()
	router.GET("/api/v1/grocery", handler.HandleList)

	// 參數非法時忽略，回傳全量庫存
	w := performRequest(router, "GET", "/api/v1/grocery?expiring_within_days=abc", "")
	require.Equal(t, http.StatusOK, w.Code)

	var result pipeline.InventoryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.ItemsCount)
}

func TestHandleRemoveItem(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.PutItem(context.Background(), pipeline.GroceryItem{
		ItemID: "r1-1", Name: "Milk",
	}))

	handler := NewInventoryHandler(pipeline.NewInventoryService(store))

	router := gin.New()
	router.DELETE("/api/v1/grocery", handler.HandleRemove)

	w := performRequest(router, "DELETE", "/api/v1/grocery", `{"item_id": "r1-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Item r1-1 removed from inventory")
	assert.Empty(t, store.items)
}

func TestHandleRemoveMissingItemID(t *testing.T) {
	handler := NewInventoryHandler(pipeline.NewInventoryService(newMemoryStore()))

	router := gin.New()
	router.DELETE("/api/v1/grocery", handler.HandleRemove)

	w := performRequest(router, "DELETE", "/api/v1/grocery", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no item_id provided")
}
