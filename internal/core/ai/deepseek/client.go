package deepseek

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"grocery-manager/internal/core/ai/cache"
	"grocery-manager/internal/infrastructure/config"
	"grocery-manager/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client DeepSeek 推論端點客戶端。
// 單純的 request/response 包裝，失敗直接往上傳，不在這一層重試。
type Client struct {
	config *config.Config
	client *resty.Client
	cache  *cache.Manager
}

// generateRequest 推論端點的請求結構
type generateRequest struct {
	Prompt      string  `json:"prompt"`
	ImageBase64 string  `json:"image_base64,omitempty"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// generateResponse 推論端點的回應結構
type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// StructuredResult 結構化生成的結果。
// 解析成功時 Parsed 為擷取出的 JSON；解析失敗不視為錯誤，
// 改將原始文字放進 Raw，由呼叫端決定如何降級處理。
type StructuredResult struct {
	Parsed json.RawMessage
	Raw    string
}

// Degraded 回報結構化解析是否失敗
func (r StructuredResult) Degraded() bool {
	return r.Parsed == nil
}

// FallbackValue 以 {"raw_response": ...} 形式回傳降級結果
func (r StructuredResult) FallbackValue() map[string]string {
	return map[string]string{"raw_response": r.Raw}
}

// NewClient 創建推論端點客戶端
func NewClient(cfg *config.Config, cacheManager *cache.Manager) *Client {
	client := resty.New().
		SetBaseURL(cfg.DeepSeek.Endpoint).
		SetTimeout(cfg.DeepSeek.Timeout).
		SetHeader("Content-Type", "application/json")

	if cfg.DeepSeek.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.DeepSeek.APIKey))
	}

	return &Client{
		config: cfg,
		client: client,
		cache:  cacheManager,
	}
}

// Generate 呼叫推論端點生成文字，imageBase64 為空時是純文字請求。
// 回應缺少 generated_text 欄位視為生成失敗。
func (c *Client) Generate(ctx context.Context, prompt, imageBase64 string, maxTokens int, temperature float64) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.config.DeepSeek.MaxTokens
	}

	// 檢查緩存
	if value, ok := c.cache.Get(ctx, prompt, imageBase64); ok {
		return value, nil
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Prompt:      prompt,
			ImageBase64: imageBase64,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		}).
		Post("/generate")

	if err != nil {
		common.LogGenerationCall("generate", time.Since(start), err)
		return "", common.WrapError(common.ErrGenerationFailed, fmt.Errorf("failed to send request to inference endpoint: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("inference endpoint returned status %d: %s", resp.StatusCode(), resp.String())
		common.LogGenerationCall("generate", time.Since(start), err)
		return "", common.WrapError(common.ErrGenerationFailed, err)
	}

	// 解析回應
	var result generateResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		common.LogGenerationCall("generate", time.Since(start), err)
		return "", common.WrapError(common.ErrGenerationFailed, fmt.Errorf("failed to parse inference response: %w", err))
	}

	if result.GeneratedText == "" {
		common.LogGenerationCall("generate", time.Since(start), common.ErrGenerationFailed)
		return "", common.ErrGenerationFailed
	}

	common.LogGenerationCall("generate", time.Since(start), nil)

	_ = c.cache.Set(ctx, prompt, imageBase64, result.GeneratedText)

	return result.GeneratedText, nil
}

// GenerateStructured 要求推論端點依指定格式輸出 JSON。
// 從生成文字中擷取第一個配對完整的 JSON 片段並驗證；
// 擷取或驗證失敗時回傳帶原始文字的降級結果而非錯誤，
// 讓後續階段能退回手動解析。
func (c *Client) GenerateStructured(ctx context.Context, prompt, outputFormat string, maxTokens int, temperature float64) (StructuredResult, error) {
	enhanced := fmt.Sprintf(`%s

Please provide your response in the following format:
%s

Ensure your response is valid JSON and contains only the requested structure.`, prompt, outputFormat)

	if maxTokens <= 0 {
		maxTokens = 2000
	}

	text, err := c.Generate(ctx, enhanced, "", maxTokens, temperature)
	if err != nil {
		return StructuredResult{}, err
	}

	fragment, ok := common.ExtractFirstJSON(text)
	if !ok {
		common.LogWarn("結構化輸出中找不到 JSON，降級為原始文字",
			zap.Int("response_length", len(text)),
		)
		return StructuredResult{Raw: text}, nil
	}

	if !json.Valid([]byte(fragment)) {
		// 模型常輸出沒加引號的鍵，先修復再驗證一次
		repaired := common.QuoteJSONKeys(fragment)
		if json.Valid([]byte(repaired)) {
			return StructuredResult{Parsed: json.RawMessage(repaired), Raw: text}, nil
		}
		common.LogWarn("結構化輸出解析失敗，降級為原始文字",
			zap.Int("fragment_length", len(fragment)),
		)
		return StructuredResult{Raw: text}, nil
	}

	return StructuredResult{Parsed: json.RawMessage(fragment), Raw: text}, nil
}
