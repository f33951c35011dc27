package grocery

import (
	"errors"

	"grocery-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 把管線錯誤映射成對外的 JSON 錯誤響應。
// 狀態碼與訊息由錯誤本身決定，未分類的錯誤一律回 500。
func respondError(c *gin.Context, err error) {
	status := common.StatusOf(err)

	if status >= 500 {
		common.LogError("請求處理失敗",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
	}

	body := gin.H{"error": common.MessageOf(err)}

	var ce *common.CustomError
	if errors.As(err, &ce) && ce.Code != "" {
		body["code"] = ce.Code
	}

	c.JSON(status, body)
}
