package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Server     ServerConfig
	LLM        LLMConfig
	Mail       MailConfig
	Slack      SlackConfig
	SuperAdmin SuperAdminConfig
	Storage    StorageConfig
	// SeedFile overrides the embedded knowledge dataset when non-empty.
	SeedFile   string
	Production bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	// ChatRPS and ChatBurst bound anonymous chat traffic per client IP.
	ChatRPS   float64
	ChatBurst int
}

// LLMConfig selects the generative fallback. An empty Provider disables it.
type LLMConfig struct {
	Provider string
	APIKey   string //nolint:gosec // G117: provider API key config
	Model    string
	Timeout  time.Duration
}

// Enabled reports whether a generative backend is configured.
func (c *LLMConfig) Enabled() bool {
	return c.Provider != ""
}

// MailConfig holds outbound email settings.
type MailConfig struct {
	From           string
	SendGridAPIKey string //nolint:gosec // G117: provider API key config
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string //nolint:gosec // G117: SMTP credential config
	Workers        int
	MaxRetries     int
}

// SlackConfig holds Slack integration settings.
type SlackConfig struct {
	BotToken      string
	SigningSecret string
	// AlertChannel receives forwarded questions for tenants without their own channel.
	AlertChannel string
	// TenantID is the tenant whose knowledge answers Slack mentions and /ask.
	TenantID string
}

// SuperAdminConfig identifies the operator allowed to manage tenants.
type SuperAdminConfig struct {
	Email        string
	PasswordHash string // argon2id, produced by `campusbot hash`
}

// StorageConfig holds S3-compatible object storage settings for raw documents.
// An empty Endpoint disables archiving.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string //nolint:gosec // G117: object storage credential config
	Bucket    string
	UseSSL    bool
}

// Load reads configuration from environment variables, after applying the
// optional .env file named by CAMPUSBOT_ENV_FILE (default ".env").
// Variables already present in the environment take precedence over the file.
func Load() (*Config, error) {
	envFile := getEnv("CAMPUSBOT_ENV_FILE", ".env")
	_ = godotenv.Load(envFile)

	dbPort, err := getEnvInt("CAMPUSBOT_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("CAMPUSBOT_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("CAMPUSBOT_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("CAMPUSBOT_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("CAMPUSBOT_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("CAMPUSBOT_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("CAMPUSBOT_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	chatRPS, err := getEnvFloat("CAMPUSBOT_CHAT_RPS", 2)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	chatBurst, err := getEnvInt("CAMPUSBOT_CHAT_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	llmTimeout, err := getEnvDuration("CAMPUSBOT_LLM_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	smtpPort, err := getEnvInt("CAMPUSBOT_SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	mailWorkers, err := getEnvInt("CAMPUSBOT_MAIL_WORKERS", 2)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	mailRetries, err := getEnvInt("CAMPUSBOT_MAIL_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	storageSSL, err := getEnvBool("CAMPUSBOT_STORAGE_USE_SSL", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	production, err := getEnvBool("CAMPUSBOT_PRODUCTION", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("CAMPUSBOT_CORS_ORIGINS", []string{"*"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("CAMPUSBOT_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("CAMPUSBOT_DB_USER", "campusbot"),
			Password: getEnv("CAMPUSBOT_DB_PASSWORD", ""),
			DBName:   getEnv("CAMPUSBOT_DB_NAME", "campusbot_dev"),
			SSLMode:  getEnv("CAMPUSBOT_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("CAMPUSBOT_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("CAMPUSBOT_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("CAMPUSBOT_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("CAMPUSBOT_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
			ChatRPS:      chatRPS,
			ChatBurst:    chatBurst,
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("CAMPUSBOT_LLM_PROVIDER", "")),
			APIKey:   getEnv("CAMPUSBOT_LLM_API_KEY", ""),
			Model:    getEnv("CAMPUSBOT_LLM_MODEL", ""),
			Timeout:  llmTimeout,
		},
		Mail: MailConfig{
			From:           getEnv("CAMPUSBOT_MAIL_FROM", "no-reply@example.com"),
			SendGridAPIKey: getEnv("CAMPUSBOT_SENDGRID_API_KEY", ""),
			SMTPHost:       getEnv("CAMPUSBOT_SMTP_HOST", ""),
			SMTPPort:       smtpPort,
			SMTPUser:       getEnv("CAMPUSBOT_SMTP_USER", ""),
			SMTPPassword:   getEnv("CAMPUSBOT_SMTP_PASSWORD", ""),
			Workers:        mailWorkers,
			MaxRetries:     mailRetries,
		},
		Slack: SlackConfig{
			BotToken:      getEnv("CAMPUSBOT_SLACK_BOT_TOKEN", ""),
			SigningSecret: getEnv("CAMPUSBOT_SLACK_SIGNING_SECRET", ""),
			AlertChannel:  getEnv("CAMPUSBOT_SLACK_ALERT_CHANNEL", ""),
			TenantID:      getEnv("CAMPUSBOT_SLACK_TENANT_ID", ""),
		},
		SuperAdmin: SuperAdminConfig{
			Email:        strings.ToLower(getEnv("CAMPUSBOT_SUPERADMIN_EMAIL", "")),
			PasswordHash: getEnv("CAMPUSBOT_SUPERADMIN_PASSWORD_HASH", ""),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("CAMPUSBOT_STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("CAMPUSBOT_STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("CAMPUSBOT_STORAGE_SECRET_KEY", ""),
			Bucket:    getEnv("CAMPUSBOT_STORAGE_BUCKET", "campusbot-docs"),
			UseSSL:    storageSSL,
		},
		SeedFile:   getEnv("CAMPUSBOT_SEED_FILE", ""),
		Production: production,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("CAMPUSBOT_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("CAMPUSBOT_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" && c.Production {
		log.Warn().Msg("CAMPUSBOT_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("CAMPUSBOT_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("CAMPUSBOT_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("CAMPUSBOT_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("CAMPUSBOT_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("CAMPUSBOT_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("CAMPUSBOT_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.ChatRPS <= 0 {
		return fmt.Errorf("CAMPUSBOT_CHAT_RPS must be positive, got %g", c.Server.ChatRPS)
	}
	if c.Server.ChatBurst < 1 {
		return fmt.Errorf("CAMPUSBOT_CHAT_BURST must be >= 1, got %d", c.Server.ChatBurst)
	}

	switch c.LLM.Provider {
	case "", "mock":
	case "openai", "anthropic":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("CAMPUSBOT_LLM_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("CAMPUSBOT_LLM_PROVIDER must be one of openai, anthropic, mock; got %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("CAMPUSBOT_LLM_TIMEOUT must be positive, got %s", c.LLM.Timeout)
	}

	if c.Mail.SMTPPort < 1 || c.Mail.SMTPPort > 65535 {
		return fmt.Errorf("CAMPUSBOT_SMTP_PORT must be 1-65535, got %d", c.Mail.SMTPPort)
	}
	if c.Mail.Workers < 1 {
		return fmt.Errorf("CAMPUSBOT_MAIL_WORKERS must be >= 1, got %d", c.Mail.Workers)
	}
	if c.Mail.MaxRetries < 0 {
		return fmt.Errorf("CAMPUSBOT_MAIL_MAX_RETRIES must be >= 0, got %d", c.Mail.MaxRetries)
	}

	if c.SuperAdmin.Email != "" && !strings.Contains(c.SuperAdmin.PasswordHash, "$") {
		return errors.New("CAMPUSBOT_SUPERADMIN_PASSWORD_HASH must be an argon2id hash when CAMPUSBOT_SUPERADMIN_EMAIL is set")
	}

	if c.Storage.Endpoint != "" && c.Storage.Bucket == "" {
		return errors.New("CAMPUSBOT_STORAGE_BUCKET is required when CAMPUSBOT_STORAGE_ENDPOINT is set")
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
