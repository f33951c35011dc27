package pipeline

import (
	"context"
	"fmt"
	"time"

	"grocery-manager/internal/core/ai/deepseek"
)

// fakeGenerator 測試用推論端點
type fakeGenerator struct {
	generateText  string
	generateErr   error
	structured    deepseek.StructuredResult
	structuredErr error
	lastPrompt    string
	calls         int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt, imageBase64 string, maxTokens int, temperature float64) (string, error) {
	g.calls++
	g.lastPrompt = prompt
	return g.generateText, g.generateErr
}

func (g *fakeGenerator) GenerateStructured(ctx context.Context, prompt, outputFormat string, maxTokens int, temperature float64) (deepseek.StructuredResult, error) {
	g.calls++
	g.lastPrompt = prompt
	return g.structured, g.structuredErr
}

// fakeGroceryStore 記憶體品項儲存，保留寫入順序讓測試可預期
type fakeGroceryStore struct {
	items    map[string]GroceryItem
	order    []string
	receipts []Receipt
	deleted  []string
	scanErr  error
}

func newFakeGroceryStore() *fakeGroceryStore {
	return &fakeGroceryStore{items: make(map[string]GroceryItem)}
}

func (s *fakeGroceryStore) PutItem(ctx context.Context, item GroceryItem) error {
	if _, exists := s.items[item.ItemID]; !exists {
		s.order = append(s.order, item.ItemID)
	}
	s.items[item.ItemID] = item
	return nil
}

func (s *fakeGroceryStore) GetItem(ctx context.Context, itemID string) (*GroceryItem, error) {
	item, exists := s.items[itemID]
	if !exists {
		return nil, nil
	}
	return &item, nil
}

func (s *fakeGroceryStore) UpdateExpiration(ctx context.Context, itemID string, update ExpirationUpdate) error {
	item, exists := s.items[itemID]
	if !exists {
		return fmt.Errorf("item %s not found", itemID)
	}
	shelfLife := update.ShelfLifeDays
	item.ExpirationDate = update.ExpirationDate
	item.ShelfLifeDays = &shelfLife
	item.UpdatedAt = time.Now().Format(time.RFC3339)
	s.items[itemID] = item
	return nil
}

func (s *fakeGroceryStore) DeleteItem(ctx context.Context, itemID string) error {
	delete(s.items, itemID)
	for i, id := range s.order {
		if id == itemID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.deleted = append(s.deleted, itemID)
	return nil
}

func (s *fakeGroceryStore) Scan(ctx context.Context, filter func(GroceryItem) bool) ([]GroceryItem, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	items := make([]GroceryItem, 0, len(s.order))
	for _, id := range s.order {
		item := s.items[id]
		if filter == nil || filter(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *fakeGroceryStore) PutReceipt(ctx context.Context, receipt Receipt) error {
	s.receipts = append(s.receipts, receipt)
	return nil
}

// fakeRecipeStore 記憶體食譜儲存
type fakeRecipeStore struct {
	recipes []Recipe
}

func (s *fakeRecipeStore) PutRecipe(ctx context.Context, recipe Recipe) error {
	s.recipes = append(s.recipes, recipe)
	return nil
}

// fakeBlobStore 記憶體物件儲存
type fakeBlobStore struct {
	keys []string
}

func (s *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.keys = append(s.keys, key)
	return "s3://test-bucket/" + key, nil
}

// fixedTime 固定時間，讓日期運算可預期
func fixedTime(value string) func() time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}
