package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	Firebase    FirebaseConfig    `yaml:"firebase"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Email       EmailConfig       `yaml:"email"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	Log         LogConfig         `yaml:"log"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// ServerConfig contains gRPC and side HTTP server settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	HTTPPort               int    `yaml:"http_port"` // health, metrics, local uploads
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	Reflection             bool   `yaml:"reflection"`
}

const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
)

// StoreConfig selects the System of Record backend
type StoreConfig struct {
	Type    string `yaml:"type"`    // "firestore", "postgres" or "memory"
	Migrate bool   `yaml:"migrate"` // postgres only: apply schema on startup
}

type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	StorageBucket   string `yaml:"storage_bucket"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

const (
	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

type AuthConfig struct {
	Provider          string         `yaml:"provider"` // "local" or "firebase"
	JWTSecret         string         `yaml:"jwt_secret"`
	TokenExpiryMinute int            `yaml:"token_expiry_minutes"`
	Revocation        string         `yaml:"revocation"` // "memory" or "redis"
	Admins            []AdminAccount `yaml:"admins"`
}

// AdminAccount is a dashboard login for the local provider.
type AdminAccount struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	DisplayName  string `yaml:"display_name"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

const (
	EmailSMTP     = "smtp"
	EmailSendGrid = "sendgrid"
	EmailLog      = "log"
)

type EmailConfig struct {
	Provider          string     `yaml:"provider"` // "smtp", "sendgrid" or "log"
	From              string     `yaml:"from"`
	FromName          string     `yaml:"from_name"`
	ConciergeAddress  string     `yaml:"concierge_address"`
	OperationsAddress string     `yaml:"operations_address"`
	SMTP              SMTPConfig `yaml:"smtp"`
	SendGridAPIKey    string     `yaml:"sendgrid_api_key"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// StorageConfig contains car image storage settings
type StorageConfig struct {
	Type             string   `yaml:"type"`       // "local" or "firebase"
	UploadDir        string   `yaml:"upload_dir"` // For local storage
	BaseURL          string   `yaml:"base_url"`   // Side HTTP base URL for local URLs
	MaxFileSizeMB    int64    `yaml:"max_file_size_mb"`
	AllowedTypes     []string `yaml:"allowed_types"`
	URLExpiryMinutes int      `yaml:"url_expiry_minutes"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC collector, host:port
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type IdempotencyConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "redis"
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpiredRentalsReport string `yaml:"expired_rentals_report"`
	FleetSummary         string `yaml:"fleet_summary"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}

	// Store
	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}

	// Firebase
	if val := os.Getenv("FIREBASE_PROJECT_ID"); val != "" {
		c.Firebase.ProjectID = val
	}
	if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
		c.Firebase.CredentialsFile = val
	}
	if val := os.Getenv("FIREBASE_STORAGE_BUCKET"); val != "" {
		c.Firebase.StorageBucket = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Auth
	if val := os.Getenv("AUTH_PROVIDER"); val != "" {
		c.Auth.Provider = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Auth.JWTSecret = val
	}

	// Email
	if val := os.Getenv("EMAIL_PROVIDER"); val != "" {
		c.Email.Provider = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Email.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Email.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.Email.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.Email.SMTP.Password = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.Email.From = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
		c.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Kafka
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = strings.Split(val, ",")
		c.Kafka.Enabled = true
	}

	// Tracing
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
		c.Tracing.Enabled = true
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = c.Server.Port + 1
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 || c.Server.HTTPPort == c.Server.Port {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	// Store
	if c.Store.Type == "" {
		c.Store.Type = StoreFirestore
	}
	switch c.Store.Type {
	case StoreFirestore:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project id is required for the firestore store")
		}
	case StorePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store type: %q", c.Store.Type)
	}

	// Auth
	if c.Auth.Provider == "" {
		c.Auth.Provider = AuthLocal
	}
	switch c.Auth.Provider {
	case AuthLocal:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT secret is required")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
		for i, a := range c.Auth.Admins {
			if a.Email == "" || a.PasswordHash == "" {
				return fmt.Errorf("admin account %d needs an email and a password hash", i)
			}
		}
	case AuthFirebase:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project id is required for firebase auth")
		}
	default:
		return fmt.Errorf("unknown auth provider: %q", c.Auth.Provider)
	}
	if c.Auth.TokenExpiryMinute == 0 {
		c.Auth.TokenExpiryMinute = 60
	}
	if c.Auth.Revocation == "" {
		c.Auth.Revocation = "memory"
	}
	if c.Auth.Revocation == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("redis must be enabled for redis token revocation")
	}

	// Email
	if c.Email.Provider == "" {
		c.Email.Provider = EmailLog
	}
	switch c.Email.Provider {
	case EmailSMTP:
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Email.SMTP.Port <= 0 || c.Email.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTP.Port)
		}
	case EmailSendGrid:
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key is required")
		}
	case EmailLog:
	default:
		return fmt.Errorf("unknown email provider: %q", c.Email.Provider)
	}
	if c.Email.From == "" {
		c.Email.From = "no-reply@driveeasy.example"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "DriveEasy"
	}
	if c.Email.ConciergeAddress == "" {
		c.Email.ConciergeAddress = c.Email.From
	}
	if c.Email.OperationsAddress == "" {
		c.Email.OperationsAddress = c.Email.ConciergeAddress
	}

	// Storage
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
		if c.Storage.BaseURL == "" {
			c.Storage.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.HTTPPort)
		}
	case "firebase":
		if c.Firebase.StorageBucket == "" {
			return fmt.Errorf("firebase storage bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}
	if c.Storage.MaxFileSizeMB == 0 {
		c.Storage.MaxFileSizeMB = 10
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if c.Storage.URLExpiryMinutes == 0 {
		c.Storage.URLExpiryMinutes = 15
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required")
		}
		if c.Kafka.Topic == "" {
			c.Kafka.Topic = "driveeasy.rental-events"
		}
	}

	// Tracing
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "driveeasy-rental-backend"
	}
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required")
	}

	// Idempotency
	if c.Idempotency.Backend == "" {
		c.Idempotency.Backend = "memory"
		if c.Redis.Enabled {
			c.Idempotency.Backend = "redis"
		}
	}
	if c.Idempotency.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("redis must be enabled for the redis idempotency backend")
	}
	if c.Idempotency.TTLMinutes == 0 {
		c.Idempotency.TTLMinutes = 24 * 60
	}

	// Scheduler defaults
	if c.Scheduler.ExpiredRentalsReport == "" {
		c.Scheduler.ExpiredRentalsReport = "0 0 7 * * *" // 7 AM UTC
	}
	if c.Scheduler.FleetSummary == "" {
		c.Scheduler.FleetSummary = "0 0 18 * * *" // 6 PM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenExpiryMinute) * time.Minute
}

func (c *Config) UploadURLExpiry() time.Duration {
	return time.Duration(c.Storage.URLExpiryMinutes) * time.Minute
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.Idempotency.TTLMinutes) * time.Minute
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}
