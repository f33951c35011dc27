package grocery

import (
	"context"
	"net/http"

	"grocery-manager/internal/core/pipeline"
	"grocery-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// receiptProcessor 收據上傳的處理入口
type receiptProcessor interface {
	ProcessReceipt(ctx context.Context, imageData string) (*pipeline.ReceiptResult, error)
}

// ReceiptHandler 收據上傳處理器
type ReceiptHandler struct {
	orchestrator receiptProcessor
}

// NewReceiptHandler 創建收據上傳處理器
func NewReceiptHandler(orchestrator *pipeline.Orchestrator) *ReceiptHandler {
	return &ReceiptHandler{orchestrator: orchestrator}
}

// uploadRequest 收據上傳請求
type uploadRequest struct {
	Image string `json:"image"`
}

// HandleUpload 處理 POST /api/v1/receipts。
// 完整流程：判讀收據 -> 估算效期，回傳帶到期日的品項列表。
func (h *ReceiptHandler) HandleUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidRequest, err))
		return
	}
	if req.Image == "" {
		respondError(c, common.ErrNoImageProvided)
		return
	}

	result, err := h.orchestrator.ProcessReceipt(c.Request.Context(), req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
