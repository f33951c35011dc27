package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"grocery-manager/internal/core/ai/deepseek"
	"grocery-manager/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendStructuredPath(t *testing.T) {
	store := newFakeGroceryStore()
	seedItem(t, store, "r1-1", "r1", "Milk", "2024-01-01")
	seedItem(t, store, "r1-2", "r1", "Eggs", "2024-01-01")

	parsed := `{"recipes": [{"name": "Omelette", "ingredients": ["Milk", "Eggs"], "instructions": "Whisk and fry.", "cooking_time_minutes": 15}]}`
	gen := &fakeGenerator{structured: deepseek.StructuredResult{Parsed: json.RawMessage(parsed), Raw: parsed}}
	recipes := &fakeRecipeStore{}

	svc := NewRecipeService(gen, store, recipes, 3)
	svc.now = fixedTime("2024-01-06T08:00:00Z")

	result, err := svc.Recommend(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, result.RecipesCount)
	recipe := result.Recipes[0]
	assert.Equal(t, "Omelette", recipe.Name)
	assert.Equal(t, []string{"Milk", "Eggs"}, recipe.Ingredients)
	assert.Equal(t, 15, recipe.CookingTimeMinutes)
	assert.True(t, strings.HasPrefix(recipe.RecipeID, "recipe-"))

	// 食材名稱進入提示詞，推薦結果已持久化
	assert.Contains(t, gen.lastPrompt, "Milk, Eggs")
	assert.Len(t, recipes.recipes, 1)
}

func TestRecommendManualFallback(t *testing.T) {
	store := newFakeGroceryStore()
	seedItem(t, store, "r1-1", "r1", "Milk", "2024-01-01")

	raw := `1. Milk Pancakes
Ingredients: Milk, Flour
Instructions: Mix everything and fry.
Cooking time: 20 minutes
2. Warm Milk
Ingredients: Milk`
	gen := &fakeGenerator{structured: deepseek.StructuredResult{Raw: raw}}
	recipes := &fakeRecipeStore{}

	svc := NewRecipeService(gen, store, recipes, 3)
	svc.now = fixedTime("2024-01-06T08:00:00Z")

	result, err := svc.Recommend(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, result.RecipesCount)

	first := result.Recipes[0]
	assert.Equal(t, "Milk Pancakes", first.Name)
	assert.Equal(t, []string{"Milk", "Flour"}, first.Ingredients)
	assert.Equal(t, "Mix everything and fry.", first.Instructions)
	assert.Equal(t, 20, first.CookingTimeMinutes)

	// 缺漏欄位套用預設值
	second := result.Recipes[1]
	assert.Equal(t, "Warm Milk", second.Name)
	assert.Equal(t, "No instructions provided.", second.Instructions)
	assert.Equal(t, 30, second.CookingTimeMinutes)
}

func TestRecommendEmptyInventory(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewRecipeService(gen, newFakeGroceryStore(), &fakeRecipeStore{}, 3)

	_, err := svc.Recommend(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 404, common.StatusOf(err))
	assert.Zero(t, gen.calls)
}

func TestRecommendExpiringOnly(t *testing.T) {
	store := newFakeGroceryStore()
	require.NoError(t, store.PutItem(context.Background(), GroceryItem{
		ItemID: "r1-1", ReceiptID: "r1", Name: "Milk",
		PurchaseDate: "2024-01-01", ExpirationDate: "2024-01-08",
	}))
	require.NoError(t, store.PutItem(context.Background(), GroceryItem{
		ItemID: "r1-2", ReceiptID: "r1", Name: "Canned Beans",
		PurchaseDate: "2024-01-01", ExpirationDate: "2024-06-01",
	}))

	parsed := `{"recipes": []}`
	gen := &fakeGenerator{structured: deepseek.StructuredResult{Parsed: json.RawMessage(parsed), Raw: parsed}}

	svc := NewRecipeService(gen, store, &fakeRecipeStore{}, 3)
	svc.now = fixedTime("2024-01-06T08:00:00Z")

	days := 3
	_, err := svc.Recommend(context.Background(), &days)
	require.NoError(t, err)

	// 只有即將到期的品項進入提示詞
	assert.Contains(t, gen.lastPrompt, "Milk")
	assert.NotContains(t, gen.lastPrompt, "Canned Beans")
}

func TestRecommendExpiringOnlyEmptyResult(t *testing.T) {
	store := newFakeGroceryStore()
	require.NoError(t, store.PutItem(context.Background(), GroceryItem{
		ItemID: "r1-1", ReceiptID: "r1", Name: "Canned Beans",
		PurchaseDate: "2024-01-01", ExpirationDate: "2024-06-01",
	}))

	svc := NewRecipeService(&fakeGenerator{}, store, &fakeRecipeStore{}, 3)
	svc.now = fixedTime("2024-01-06T08:00:00Z")

	days := 3
	_, err := svc.Recommend(context.Background(), &days)
	require.Error(t, err)
	assert.Equal(t, 404, common.StatusOf(err))
}

func TestParseRecipesManuallyMultipleSections(t *testing.T) {
	text := `1. Milk Pancakes
Ingredients: Milk, Flour
2. Milk Toast
Ingredients: Milk, Bread`

	recipes := parseRecipesManually(text)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Milk Pancakes", recipes[0].Name)
	assert.Equal(t, []string{"Milk", "Flour"}, recipes[0].Ingredients)
	assert.Equal(t, "Milk Toast", recipes[1].Name)
	assert.Equal(t, []string{"Milk", "Bread"}, recipes[1].Ingredients)
}

func TestParseRecipesManuallyEmptyText(t *testing.T) {
	assert.Empty(t, parseRecipesManually(""))
	assert.Empty(t, parseRecipesManually("   \n  "))
}
