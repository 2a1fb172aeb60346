package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Server
	Port string

	// Supabase
	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string

	// AI Gateway (OpenAI 호환 chat-completions)
	AIGatewayURL string
	AIGatewayKey string
	AIModel      string

	// 셀프호스팅 추론 프록시 (설정 시 AIGatewayURL 대체)
	InferenceProxyURL string

	// 아트워크 생성 백엔드 선택 ("gateway" | "gemini")
	ArtworkProvider string

	// Gemini API
	GeminiAPIKey string
	GeminiModel  string

	// 이미지 정책 (프로토콜 제약이 아닌 정책 상수)
	MinImageBytes int
	MaxImageBytes int
	MaxPhotos     int

	// WebP 프리뷰
	WebPPreview bool
	WebPQuality float32

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := true // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// WebP 프리뷰 파싱
	webpPreview := false
	if s := os.Getenv("WEBP_PREVIEW"); s != "" {
		if parsed, err := strconv.ParseBool(s); err == nil {
			webpPreview = parsed
		}
	}

	webpQuality := float32(85)
	if s := os.Getenv("WEBP_QUALITY"); s != "" {
		if parsed, err := strconv.ParseFloat(s, 32); err == nil && parsed > 0 {
			webpQuality = float32(parsed)
		}
	}

	globalConfig = &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Supabase
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", "generated-artworks"),

		// AI Gateway
		AIGatewayURL: getEnv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1"),
		AIGatewayKey: getEnv("AI_GATEWAY_KEY", ""),
		AIModel:      getEnv("AI_MODEL", "google/gemini-2.5-flash-image-preview"),

		InferenceProxyURL: getEnv("INFERENCE_PROXY_URL", ""),

		ArtworkProvider: getEnv("ARTWORK_PROVIDER", "gateway"),

		// Gemini API (ARTWORK_PROVIDER=gemini 일 때만 필수)
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),

		// 이미지 정책
		MinImageBytes: getEnvInt("MIN_IMAGE_BYTES", 1000),
		MaxImageBytes: getEnvInt("MAX_IMAGE_BYTES", 5*1024*1024),
		MaxPhotos:     getEnvInt("MAX_PHOTOS", 9),

		// WebP 프리뷰
		WebPPreview: webpPreview,
		WebPQuality: webpQuality,

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Supabase: %s (bucket: %s)", globalConfig.SupabaseURL, globalConfig.StorageBucket)
	log.Printf("   AI Gateway: %s (model: %s)", globalConfig.GatewayBaseURL(), globalConfig.AIModel)
	log.Printf("   Provider: %s", globalConfig.ArtworkProvider)
	log.Printf("   Image policy: %d..%d bytes, max %d photos", globalConfig.MinImageBytes, globalConfig.MaxImageBytes, globalConfig.MaxPhotos)
	log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)

	return globalConfig, nil
}

// SetConfig - 테스트에서 설정 주입용
func SetConfig(c *Config) {
	globalConfig = c
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.ArtworkProvider == "gemini" {
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when ARTWORK_PROVIDER=gemini")
		}
	} else if c.AIGatewayKey == "" {
		return fmt.Errorf("AI_GATEWAY_KEY is required")
	}
	if c.MinImageBytes <= 0 || c.MaxImageBytes <= c.MinImageBytes {
		return fmt.Errorf("invalid image size policy: min=%d max=%d", c.MinImageBytes, c.MaxImageBytes)
	}
	return nil
}

// GatewayBaseURL - 추론 프록시가 설정되어 있으면 게이트웨이 대신 사용
func (c *Config) GatewayBaseURL() string {
	if c.InferenceProxyURL != "" {
		return c.InferenceProxyURL
	}
	return c.AIGatewayURL
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt - 정수 환경변수 (기본값 지원)
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
