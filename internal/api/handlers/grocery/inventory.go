package grocery

import (
	"net/http"
	"strconv"

	"grocery-manager/internal/core/pipeline"
	"grocery-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// InventoryHandler 庫存查詢與移除處理器
type InventoryHandler struct {
	inventory *pipeline.InventoryService
}

// NewInventoryHandler 創建庫存處理器
func NewInventoryHandler(inventory *pipeline.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// HandleList 處理 GET /api/v1/grocery。
// expiring_within_days 參數非法時忽略，回傳全量庫存。
func (h *InventoryHandler) HandleList(c *gin.Context) {
	var expiringWithinDays *int
	if raw, ok := c.GetQuery("expiring_within_days"); ok {
		if days, err := strconv.Atoi(raw); err == nil {
			expiringWithinDays = &days
		}
	}

	result, err := h.inventory.List(c.Request.Context(), expiringWithinDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// removeRequest 品項移除請求
type removeRequest struct {
	ItemID string `json:"item_id"`
}

// HandleRemove 處理 DELETE /api/v1/grocery
func (h *InventoryHandler) HandleRemove(c *gin.Context) {
	var req removeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidRequest, err))
		return
	}
	if req.ItemID == "" {
		respondError(c, common.ErrNoItemIDProvided)
		return
	}

	result, err := h.inventory.Remove(c.Request.Context(), req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
