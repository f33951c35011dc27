package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"grocery-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// 食譜預設值：生成文字缺漏對應欄位時補上
const (
	defaultCookingTimeMinutes = 30
	defaultInstructions       = "No instructions provided."
)

// recipeOutputFormat 食譜推薦的期望輸出結構
const recipeOutputFormat = `{
    "recipes": [
        {
            "name": "Recipe Name",
            "ingredients": ["Ingredient 1", "Ingredient 2", ...],
            "instructions": "Brief cooking instructions",
            "cooking_time_minutes": 30
        },
        ...
    ]
}`

// RecipeService 食譜推薦階段。
// 以當前庫存快照組提示詞，結構化解析失敗時退回逐段手動解析。
type RecipeService struct {
	generator   Generator
	groceries   GroceryStore
	recipes     RecipeStore
	recipeCount int
	now         func() time.Time
}

// NewRecipeService 創建食譜推薦服務
func NewRecipeService(generator Generator, groceries GroceryStore, recipes RecipeStore, recipeCount int) *RecipeService {
	return &RecipeService{
		generator:   generator,
		groceries:   groceries,
		recipes:     recipes,
		recipeCount: recipeCount,
		now:         time.Now,
	}
}

// Recommend 依庫存推薦食譜。
// expiringWithinDays 非 nil 時只用 N 天內到期的品項當食材；
// 取不到任何食材回傳 404 錯誤。推薦結果會持久化後回傳。
func (s *RecipeService) Recommend(ctx context.Context, expiringWithinDays *int) (*RecipeResult, error) {
	items, err := s.groceries.Scan(ctx, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to scan grocery items: %w", err))
	}
	if expiringWithinDays != nil {
		items = filterExpiring(items, *expiringWithinDays, s.now())
	}
	if len(items) == 0 {
		return nil, common.ErrNoItemsFound
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}

	prompt := fmt.Sprintf(`You are a creative chef who specializes in creating recipes from available ingredients.
Please suggest %d recipes that can be made using some or all of the following ingredients:

%s

For each recipe, provide:
1. Recipe name
2. Ingredients needed (indicate which ones are from the provided list)
3. Brief cooking instructions
4. Approximate cooking time`, s.recipeCount, strings.Join(names, ", "))

	result, err := s.generator.GenerateStructured(ctx, prompt, recipeOutputFormat, 2000, 0.7)
	if err != nil {
		return nil, err
	}

	var parsed []parsedRecipe
	if !result.Degraded() {
		var payload struct {
			Recipes []parsedRecipe `json:"recipes"`
		}
		if err := json.Unmarshal(result.Parsed, &payload); err == nil {
			parsed = payload.Recipes
		}
	}
	if parsed == nil {
		common.LogWarn("食譜結構化解析失敗，退回手動解析",
			zap.Int("response_length", len(result.Raw)),
		)
		parsed = parseRecipesManually(result.Raw)
	}

	now := s.now()
	recipes := make([]Recipe, 0, len(parsed))
	for _, p := range parsed {
		recipe := Recipe{
			RecipeID:           fmt.Sprintf("recipe-%s", common.GenerateUUID()),
			Name:               p.Name,
			Ingredients:        p.Ingredients,
			Instructions:       p.Instructions,
			CookingTimeMinutes: p.CookingTimeMinutes,
			CreatedAt:          now.Format(time.RFC3339),
		}
		if recipe.Ingredients == nil {
			recipe.Ingredients = []string{}
		}
		if recipe.Instructions == "" {
			recipe.Instructions = defaultInstructions
		}
		if recipe.CookingTimeMinutes <= 0 {
			recipe.CookingTimeMinutes = defaultCookingTimeMinutes
		}

		if err := s.recipes.PutRecipe(ctx, recipe); err != nil {
			return nil, common.WrapError(common.ErrStorageError, fmt.Errorf("failed to store recipe %s: %w", recipe.RecipeID, err))
		}
		recipes = append(recipes, recipe)
	}

	common.LogInfo("食譜推薦完成",
		zap.Int("recipes_count", len(recipes)),
		zap.Int("ingredients_count", len(names)),
	)

	return &RecipeResult{
		RecipesCount: len(recipes),
		Recipes:      recipes,
	}, nil
}

// parsedRecipe 解析階段的中間結構，尚未套用預設值
type parsedRecipe struct {
	Name               string   `json:"name"`
	Ingredients        []string `json:"ingredients"`
	Instructions       string   `json:"instructions"`
	CookingTimeMinutes int      `json:"cooking_time_minutes"`
}

var (
	recipeSectionPattern = regexp.MustCompile(`(?m)^\s*\d+\.\s*`)
	recipeNamePattern    = regexp.MustCompile(`(?:Recipe name:|Name:)?\s*([^\n]+)`)
	ingredientsPattern   = regexp.MustCompile(`(?s)(?:Ingredients:|Ingredients needed:)(.*?)(?:Instructions:|Brief cooking instructions:|$)`)
	instructionsPattern  = regexp.MustCompile(`(?s)(?:Instructions:|Brief cooking instructions:)(.*?)(?:Cooking time:|Approximate cooking time:|$)`)
	cookingTimePattern   = regexp.MustCompile(`(?:Cooking time:|Approximate cooking time:)\s*(\d+)`)
	ingredientSeparator  = regexp.MustCompile(`[\n,]`)
)

// parseRecipesManually 從自由格式文字逐段解析食譜。
// 以編號列表切段，段落內靠標籤擷取各欄位；抓不到名稱的段落
// 整段略過，其餘欄位缺漏由呼叫端補預設值。
func parseRecipesManually(text string) []parsedRecipe {
	recipes := make([]parsedRecipe, 0)

	for _, section := range recipeSectionPattern.Split(text, -1) {
		if strings.TrimSpace(section) == "" {
			continue
		}

		nameMatch := recipeNamePattern.FindStringSubmatch(section)
		if nameMatch == nil || strings.TrimSpace(nameMatch[1]) == "" {
			continue
		}

		recipe := parsedRecipe{Name: strings.TrimSpace(nameMatch[1])}

		if m := ingredientsPattern.FindStringSubmatch(section); m != nil {
			for _, ing := range ingredientSeparator.Split(m[1], -1) {
				if ing = strings.TrimSpace(ing); ing != "" {
					recipe.Ingredients = append(recipe.Ingredients, ing)
				}
			}
		}

		if m := instructionsPattern.FindStringSubmatch(section); m != nil {
			recipe.Instructions = strings.TrimSpace(m[1])
		}

		if m := cookingTimePattern.FindStringSubmatch(section); m != nil {
			if minutes, err := strconv.Atoi(m[1]); err == nil {
				recipe.CookingTimeMinutes = minutes
			}
		}

		recipes = append(recipes, recipe)
	}

	return recipes
}
