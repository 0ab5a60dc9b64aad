package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret       = "dev-secret-change-me"
	minJWTSecretLength = 32
)

type Config struct {
	Env  string
	Port string

	DBDriver string
	DBDSN    string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	CORSOrigins []string
	// TrustedProxies 为空时不信任任何代理头，客户端 IP 取连接地址
	TrustedProxies []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	StorageDriver  string
	UploadDir      string
	PublicMediaURL string
	GCSBucket      string

	RateLimitPerMinute int
	RateLimitBurst     int
}

func Load() *Config {
	return &Config{
		Env:  getEnv("APP_ENV", EnvDevelopment),
		Port: getEnv("PORT", "8080"),

		DBDriver: getEnv("DB_DRIVER", "mysql"),
		DBDSN:    getEnv("DB_DSN", "user:password@tcp(127.0.0.1:3306)/pedagopass?charset=utf8mb4&parseTime=True&loc=Local"),

		JWTSecret:  getEnv("JWT_SECRET", devJWTSecret),
		TokenTTL:   getDuration("TOKEN_TTL", 7*24*time.Hour),
		BcryptCost: getInt("BCRYPT_COST", 10),

		CORSOrigins:    getList("CORS_ORIGINS", ";", []string{"http://localhost:3000"}),
		TrustedProxies: getList("TRUSTED_PROXIES", ",", nil),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		KafkaBrokers: getList("KAFKA_BROKERS", ",", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "pedagopass.activities"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "PedagoPass <no-reply@pedagopass.local>"),

		StorageDriver:  getEnv("STORAGE_DRIVER", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		PublicMediaURL: getEnv("PUBLIC_MEDIA_URL", "/uploads"),
		GCSBucket:      getEnv("GCS_BUCKET", ""),

		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 10),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate 生产环境必须显式配置足够长的 JWT 密钥
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.JWTSecret == "" || c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minJWTSecretLength)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getList(key, sep string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
