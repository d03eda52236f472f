package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Log       LogConfig
	Paystack  PaystackConfig
	S3        S3Config
	Email     EmailConfig
	Bank      BankConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port            string
	GinMode         string
	Environment     string
	CheckoutTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type LogConfig struct {
	Level      string
	Format     string // json, console
	Output     string // stdout, file
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Currency    string
	Timeout     time.Duration
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type EmailConfig struct {
	BrandName    string
	FromAddress  string
	AdminAddress string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPTimeout  time.Duration
	ResendAPIKey string
	ResendURL    string
	FrontendURL  string
}

// BankConfig is the account customers pay into on the bank-transfer path.
type BankConfig struct {
	BankName       string
	AccountNumber  string
	AccountName    string
	WhatsAppNumber string
}

type SchedulerConfig struct {
	Enabled    bool
	StaleCron  string
	StaleAfter time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			GinMode:         getEnv("GIN_MODE", "debug"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			CheckoutTimeout: parseDuration(getEnv("CHECKOUT_TIMEOUT", "20s"), 20*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "virginiacakes"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", ""),
			Format:     getEnv("LOG_FORMAT", "console"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE_PATH", "logs/storefront.log"),
			MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
			MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "5"), 5),
			MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		},
		Paystack: PaystackConfig{
			SecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
			BaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallbackURL: getEnv("PAYSTACK_CALLBACK_URL", "http://localhost:3000/checkout/paystack/callback"),
			Currency:    getEnv("PAYSTACK_CURRENCY", "NGN"),
			Timeout:     parseDuration(getEnv("PAYSTACK_TIMEOUT", "30s"), 30*time.Second),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-west-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "virginiacakes-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Email: EmailConfig{
			BrandName:    getEnv("BRAND_NAME", "Virginia Cakes"),
			FromAddress:  getEnv("FROM_EMAIL", "no-reply@virginiacakes.com"),
			AdminAddress: getEnv("ADMIN_EMAIL", getEnv("EMAIL", "")),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPTimeout:  parseDuration(getEnv("SMTP_TIMEOUT", "5s"), 5*time.Second),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			ResendURL:    getEnv("RESEND_API_URL", "https://api.resend.com/emails"),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Bank: BankConfig{
			BankName:       getEnv("BANK_NAME", "VFD Microfinance Bank"),
			AccountNumber:  getEnv("BANK_ACCOUNT_NUMBER", ""),
			AccountName:    getEnv("BANK_ACCOUNT_NAME", ""),
			WhatsAppNumber: getEnv("WHATSAPP_NUMBER", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:    parseBool(getEnv("SCHEDULER_ENABLED", "true")),
			StaleCron:  getEnv("SCHEDULER_STALE_CRON", "0 8 * * *"),
			StaleAfter: parseDuration(getEnv("SCHEDULER_STALE_AFTER", "24h"), 24*time.Hour),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns host:port for the redis client.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
