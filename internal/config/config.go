package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Razorpay RazorpayConfig
	Email    EmailConfig
	Resend   ResendConfig
	WhatsApp WhatsAppConfig
	Storage  StorageConfig
	Event    EventConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL int // seconds; 0 disables the admin read cache
}

type AuthConfig struct {
	JWTSecret      string
	TokenTTLHours  int
	DemoAdminEmail string
	DemoAdminPass  string
	DemoStaffEmail string
	DemoStaffPass  string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
}

type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type WhatsAppConfig struct {
	APIKey       string
	CampaignName string
	SenderName   string
}

type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
	Endpoint        string
	FallbackDir     string
}

type EventConfig struct {
	Name string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: parseDatabaseConfig(),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsInt("ADMIN_CACHE_TTL", 15),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "dandiya-secret-key"),
			TokenTTLHours:  getEnvAsInt("JWT_TTL_HOURS", 24),
			DemoAdminEmail: getEnv("DEMO_ADMIN_EMAIL", "admin@dandiya.com"),
			DemoAdminPass:  getEnv("DEMO_ADMIN_PASSWORD", ""),
			DemoStaffEmail: getEnv("DEMO_STAFF_EMAIL", "staff@dandiya.com"),
			DemoStaffPass:  getEnv("DEMO_STAFF_PASSWORD", ""),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
			Currency:  getEnv("RAZORPAY_CURRENCY", "INR"),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("EMAIL_HOST", ""),
			SMTPPort:     getEnvAsInt("EMAIL_PORT", 587),
			SMTPUser:     getEnv("EMAIL_USER", ""),
			SMTPPassword: getEnv("EMAIL_PASS", ""),
			FromEmail:    getEnv("FROM_EMAIL", "tickets@malangdandiya.com"),
		},
		Resend: ResendConfig{
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("RESEND_FROM_EMAIL", "tickets@malangdandiya.com"),
			FromName:  getEnv("RESEND_FROM_NAME", "Malang Raas Dandiya"),
		},
		WhatsApp: WhatsAppConfig{
			APIKey:       getEnv("AISENSY_API_KEY", ""),
			CampaignName: getEnv("AISENSY_CAMPAIGN_NAME", "dandiya_notifications"),
			SenderName:   getEnv("AISENSY_SENDER_NAME", "Dandiya Platform"),
		},
		Storage: StorageConfig{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", "dandiya-tickets"),
			PublicURL:       getEnv("R2_PUBLIC_URL", ""),
			Region:          getEnv("R2_REGION", "auto"),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
			FallbackDir:     getEnv("STORAGE_FALLBACK_DIR", "uploads/tickets"),
		},
		Event: EventConfig{
			Name: getEnv("EVENT_NAME", "Malang Raas Dandiya 2025"),
		},
	}

	return config, nil
}

func parseDatabaseConfig() DatabaseConfig {
	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		return parseDatabaseURL(databaseURL)
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "dandiya_ticketing"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = 5432 // Default PostgreSQL port
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	config.DBName = strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	config.SSLMode = query.Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
