package common

import (
	"errors"
	"net/http"
)

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// WrapError 保留錯誤代碼與狀態碼，附加原始錯誤
func WrapError(base *CustomError, err error) *CustomError {
	return &CustomError{
		Code:    base.Code,
		Message: base.Message,
		Status:  base.Status,
		Err:     err,
	}
}

// StatusOf 取出錯誤對應的 HTTP 狀態碼，預設為 500
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Status
	}
	return http.StatusInternalServerError
}

// MessageOf 取出錯誤對應的對外訊息
func MessageOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"    // 408
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError    = "INTERNAL_ERROR"    // 500
	ErrCodeGenerationFailed = "GENERATION_FAILED" // 500
	ErrCodeStorageError     = "STORAGE_ERROR"     // 500
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)

	// 服務器錯誤
	ErrGenerationFailed = NewError(ErrCodeGenerationFailed, "failed to generate response from inference endpoint", http.StatusInternalServerError, nil)
	ErrStorageError     = NewError(ErrCodeStorageError, "storage operation failed", http.StatusInternalServerError, nil)

	// 業務錯誤
	ErrNoImageProvided    = NewError(ErrCodeInvalidRequest, "no image provided", http.StatusBadRequest, nil)
	ErrNoItemIDProvided   = NewError(ErrCodeInvalidRequest, "no item_id provided", http.StatusBadRequest, nil)
	ErrNoItemsFound       = NewError(ErrCodeNotFound, "no grocery items found", http.StatusNotFound, nil)
	ErrInvalidImageFormat = NewError("INVALID_IMAGE_FORMAT", "invalid image format", http.StatusBadRequest, nil)
	ErrInvalidImageSize   = NewError("INVALID_IMAGE_SIZE", "image size exceeds limit", http.StatusBadRequest, nil)
	ErrCacheFull          = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
)
