package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	APIToken             string
	DBPath               string
	KeywordsCSVPath      string
	WatchKeywords        bool // 监听 CSV 文件变化并自动重载词典
	RateLimitEnabled     bool
	RateLimitPerIP       int
	RateLimitBurst       int
	ReprocessWorkerCount int
}

// Load 加载配置（从 .env 文件和环境变量）
func Load() (*Config, error) {
	// 尝试加载 .env 文件（如果不存在也不报错）
	_ = godotenv.Load()

	cfg := &Config{
		APIToken:             getEnv("API_TOKEN", "your-secret-token-here"),
		DBPath:               parseDBPath(getEnv("DATABASE_URL", "quotes.db")),
		KeywordsCSVPath:      getEnv("KEYWORDS_CSV_PATH", "data/auto-tag-keywords.csv"),
		WatchKeywords:        getEnvBool("WATCH_KEYWORDS", true),
		RateLimitEnabled:     getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitPerIP:       getEnvInt("RATE_LIMIT_PER_IP", 60),
		RateLimitBurst:       getEnvInt("RATE_LIMIT_BURST", 10),
		ReprocessWorkerCount: getEnvInt("REPROCESS_WORKER_COUNT", 4),
	}

	return cfg, nil
}

// parseDBPath 解析数据库路径（兼容 sqlite:/// 前缀）
func parseDBPath(dbURL string) string {
	return strings.TrimPrefix(dbURL, "sqlite:///")
}

// getEnv 获取环境变量（带默认值）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	value = strings.ToLower(strings.TrimSpace(value))
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt 获取整型环境变量
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.APIToken == "" || c.APIToken == "your-secret-token-here" {
		return fmt.Errorf("请设置 API_TOKEN 环境变量")
	}

	if c.RateLimitPerIP <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_IP 必须大于 0")
	}

	if c.ReprocessWorkerCount <= 0 {
		return fmt.Errorf("REPROCESS_WORKER_COUNT 必须大于 0")
	}

	return nil
}
