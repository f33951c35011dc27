package storage

import (
	"context"
	"fmt"

	"grocery-manager/internal/core/pipeline"
	"grocery-manager/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const recipePrefix = "recipe:"

// RecipeRedisStore 以 Redis 實作食譜儲存
type RecipeRedisStore struct {
	client *redis.Client
}

// NewRecipeRedisStore 創建食譜儲存
func NewRecipeRedisStore(client *redis.Client) *RecipeRedisStore {
	return &RecipeRedisStore{client: client}
}

// PutRecipe 寫入食譜
func (s *RecipeRedisStore) PutRecipe(ctx context.Context, recipe pipeline.Recipe) error {
	data, err := common.ToJSON(recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe %s: %w", recipe.RecipeID, err)
	}
	return s.client.Set(ctx, recipePrefix+recipe.RecipeID, data, 0).Err()
}
