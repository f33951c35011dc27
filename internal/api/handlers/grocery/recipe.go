package grocery

import (
	"net/http"
	"strconv"
	"strings"

	"grocery-manager/internal/core/pipeline"

	"github.com/gin-gonic/gin"
)

// RecipeHandler 食譜推薦處理器
type RecipeHandler struct {
	recipes             *pipeline.RecipeService
	defaultExpiringDays int
}

// NewRecipeHandler 創建食譜推薦處理器
func NewRecipeHandler(recipes *pipeline.RecipeService, defaultExpiringDays int) *RecipeHandler {
	return &RecipeHandler{
		recipes:             recipes,
		defaultExpiringDays: defaultExpiringDays,
	}
}

// HandleRecommend 處理 GET /api/v1/recipes。
// use_expiring=true 時只用即將到期的品項當食材，
// expiring_within_days 缺漏或非法時用預設天數。
func (h *RecipeHandler) HandleRecommend(c *gin.Context) {
	var expiringWithinDays *int

	useExpiring := strings.EqualFold(c.Query("use_expiring"), "true")
	if useExpiring {
		days := h.defaultExpiringDays
		if raw, ok := c.GetQuery("expiring_within_days"); ok {
			if parsed, err := strconv.Atoi(raw); err == nil {
				days = parsed
			}
		}
		expiringWithinDays = &days
	}

	result, err := h.recipes.Recommend(c.Request.Context(), expiringWithinDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
