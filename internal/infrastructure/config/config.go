package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	DeepSeek    DeepSeekConfig  `mapstructure:"deepseek"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Pipeline    PipelineConfig  `mapstructure:"pipeline"`
	Cache       CacheConfig     `mapstructure:"cache"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Image       ImageConfig     `mapstructure:"image"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DeepSeekConfig 推論端點配置
type DeepSeekConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StorageConfig 儲存配置
type StorageConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSAccessKey  string `mapstructure:"aws_access_key"`
	AWSSecretKey  string `mapstructure:"aws_secret_key"`
	ReceiptBucket string `mapstructure:"receipt_bucket"`
}

// PipelineConfig 管線參數配置
type PipelineConfig struct {
	DefaultShelfLifeDays int     `mapstructure:"default_shelf_life_days"` // 無法匹配時的預設保存天數
	MatchThreshold       float64 `mapstructure:"match_threshold"`         // 模糊匹配的信心門檻
	RecipeCount          int     `mapstructure:"recipe_count"`            // 每次推薦的食譜數量
	DefaultExpiringDays  int     `mapstructure:"default_expiring_days"`   // use_expiring 的預設天數
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時不視為錯誤）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("deepseek.endpoint", "DEEPSEEK_ENDPOINT")
	viper.BindEnv("deepseek.api_key", "DEEPSEEK_API_KEY")
	viper.BindEnv("deepseek.model", "DEEPSEEK_MODEL")
	viper.BindEnv("deepseek.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("storage.redis_addr", "REDIS_ADDR")
	viper.BindEnv("storage.redis_password", "REDIS_PASSWORD")
	viper.BindEnv("storage.redis_db", "REDIS_DB")
	viper.BindEnv("storage.aws_region", "AWS_REGION")
	viper.BindEnv("storage.aws_access_key", "AWS_ACCESS_KEY_ID")
	viper.BindEnv("storage.aws_secret_key", "AWS_SECRET_ACCESS_KEY")
	viper.BindEnv("storage.receipt_bucket", "RECEIPT_BUCKET")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration",
		"deepseek_endpoint:", viper.GetString("deepseek.endpoint"),
		"deepseek_api_key:", maskAPIKey(viper.GetString("deepseek.api_key")),
		"receipt_bucket:", viper.GetString("storage.receipt_bucket"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "grocery-manager")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 推論端點設定
	viper.SetDefault("deepseek.model", "deepseek-vl-7b-chat")
	viper.SetDefault("deepseek.max_tokens", 1000)
	viper.SetDefault("deepseek.temperature", 0.2)
	viper.SetDefault("deepseek.timeout", "60s")

	// 儲存設定
	viper.SetDefault("storage.redis_addr", "localhost:6379")
	viper.SetDefault("storage.redis_db", 0)
	viper.SetDefault("storage.aws_region", "us-east-1")
	viper.SetDefault("storage.receipt_bucket", "grocery-receipts")

	// 管線設定
	viper.SetDefault("pipeline.default_shelf_life_days", 7)
	viper.SetDefault("pipeline.match_threshold", 0.5)
	viper.SetDefault("pipeline.recipe_count", 3)
	viper.SetDefault("pipeline.default_expiring_days", 3)

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	viper.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB

	// 去重時間窗預設
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證推論端點設定
	if config.DeepSeek.Endpoint == "" {
		return fmt.Errorf("deepseek endpoint is required")
	}

	// 驗證儲存設定
	if config.Storage.ReceiptBucket == "" {
		return fmt.Errorf("receipt bucket is required")
	}

	// 驗證管線設定
	if config.Pipeline.DefaultShelfLifeDays < 0 {
		return fmt.Errorf("invalid default shelf life days")
	}
	if config.Pipeline.MatchThreshold <= 0 || config.Pipeline.MatchThreshold >= 1 {
		return fmt.Errorf("match threshold must be in (0, 1)")
	}
	if config.Pipeline.RecipeCount <= 0 {
		return fmt.Errorf("invalid recipe count")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	return nil
}
