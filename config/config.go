package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AWS      AWSConfig
	Whisper  WhisperConfig
	AI       AIConfig
	Limits   LimitsConfig
	Sweep    SweepConfig
	Upload   UploadConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/cliplearn?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the media bucket.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	MediaBucket     string
}

// WhisperConfig holds the speech-to-text subprocess settings.
type WhisperConfig struct {
	Command    string // whisper CLI binary
	Model      string // e.g. small.en
	Language   string // e.g. en
	TimeoutSec int    // hard deadline for one transcription run
}

// AIConfig holds the summarization and question-generation endpoints.
type AIConfig struct {
	SummarizerURL         string
	SummarizerToken       string
	SummarizerTimeoutSec  int
	QuestionGenURL        string
	QuestionGenTimeoutSec int
}

// LimitsConfig holds upload duration limits in seconds.
// FreeMaxSeconds doubles as the premium-content threshold: videos longer than
// it are stored premium-gated regardless of the uploader's tier.
type LimitsConfig struct {
	FreeMaxSeconds    float64
	PremiumMaxSeconds float64
}

// SweepConfig holds the premium-expiry sweeper schedule.
type SweepConfig struct {
	IntervalHours int
}

// UploadConfig holds local temp-file settings for multipart uploads.
type UploadConfig struct {
	TempDir string // empty = os.TempDir()
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/cliplearn?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cliplearn"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MediaBucket:     getEnv("AWS_S3_MEDIA_BUCKET", "cliplearn-media-bucket"),
		},
		Whisper: WhisperConfig{
			Command:    getEnv("WHISPER_CMD", "whisper"),
			Model:      getEnv("WHISPER_MODEL", "small.en"),
			Language:   getEnv("WHISPER_LANGUAGE", "en"),
			TimeoutSec: getEnvInt("WHISPER_TIMEOUT_SEC", 600),
		},
		AI: AIConfig{
			SummarizerURL:         getEnv("SUMMARIZER_URL", "https://api-inference.huggingface.co/models/sshleifer/distilbart-cnn-12-6"),
			SummarizerToken:       getEnv("SUMMARIZER_API_TOKEN", ""),
			SummarizerTimeoutSec:  getEnvInt("SUMMARIZER_TIMEOUT_SEC", 30),
			QuestionGenURL:        getEnv("QG_URL", "http://127.0.0.1:8001/generate-questions"),
			QuestionGenTimeoutSec: getEnvInt("QG_TIMEOUT_SEC", 5),
		},
		Limits: LimitsConfig{
			FreeMaxSeconds:    getEnvFloat("FREE_MAX_DURATION_SEC", 90),
			PremiumMaxSeconds: getEnvFloat("PREMIUM_MAX_DURATION_SEC", 180),
		},
		Sweep: SweepConfig{
			IntervalHours: getEnvInt("PREMIUM_SWEEP_INTERVAL_HOURS", 24),
		},
		Upload: UploadConfig{
			TempDir: getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
