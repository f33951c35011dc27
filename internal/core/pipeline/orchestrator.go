package pipeline

import "context"

// interpretStage 與 estimateStage 把編排器與具體服務解耦
type interpretStage interface {
	Interpret(ctx context.Context, imageData string) (*ReceiptResult, error)
}

type estimateStage interface {
	Estimate(ctx context.Context, receiptID string) (*ReceiptResult, error)
}

// Orchestrator 串接收據判讀與效期估算兩個階段。
// 第一階段失敗就短路回傳，不會呼叫第二階段；
// 成功時以第二階段的結果作為最終回應。
type Orchestrator struct {
	receipts    interpretStage
	expirations estimateStage
}

// NewOrchestrator 創建管線編排器
func NewOrchestrator(receipts *ReceiptService, expirations *ExpirationService) *Orchestrator {
	return &Orchestrator{
		receipts:    receipts,
		expirations: expirations,
	}
}

// ProcessReceipt 處理收據上傳的完整流程
func (o *Orchestrator) ProcessReceipt(ctx context.Context, imageData string) (*ReceiptResult, error) {
	interpreted, err := o.receipts.Interpret(ctx, imageData)
	if err != nil {
		return nil, err
	}

	return o.expirations.Estimate(ctx, interpreted.ReceiptID)
}
