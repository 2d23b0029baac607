package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Hasher    HasherConfig
	Tokens    TokenConfig
	App       AppConfig
	SMTP      SMTPConfig
	Mail      MailConfig
	MQTT      MQTTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// HasherConfig holds the argon2id cost parameters.
type HasherConfig struct {
	MemoryKB    uint32
	Iterations  uint32
	Parallelism uint8
}

type TokenConfig struct {
	VerificationTTL       time.Duration
	PasswordResetTTL      time.Duration
	PasswordResetThrottle time.Duration
	ResetSigningKey       string
	CleanupInterval       time.Duration
}

type AppConfig struct {
	FrontendURL       string
	AllowedReturnURLs []string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type MailConfig struct {
	QueueSize  int
	Workers    int
	MaxRetries int
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
	AuthRPS      float64 // Requests per second for credential endpoints
	AuthBurst    int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("JWT_EXPIRY_HOURS", 24)

	v.SetDefault("HASH_MEMORY_KB", 64*1024)
	v.SetDefault("HASH_ITERATIONS", 4)
	v.SetDefault("HASH_PARALLELISM", 1)

	v.SetDefault("TOKEN_VERIFICATION_TTL", 15*time.Minute)
	v.SetDefault("TOKEN_PASSWORD_RESET_TTL", time.Hour)
	v.SetDefault("TOKEN_PASSWORD_RESET_THROTTLE", time.Hour)
	v.SetDefault("TOKEN_CLEANUP_INTERVAL", time.Hour)

	v.SetDefault("APP_FRONTEND_URL", "http://localhost:3000")

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "aspire@aspireapp.online")

	v.SetDefault("MAIL_QUEUE_SIZE", 100)
	v.SetDefault("MAIL_WORKERS", 2)
	v.SetDefault("MAIL_MAX_RETRIES", 3)

	v.SetDefault("MQTT_CLIENT_ID", "aspire-wishlist")
	v.SetDefault("MQTT_TOPIC_PREFIX", "aspire/events")
	v.SetDefault("MQTT_QOS", 1)

	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 20)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)
	v.SetDefault("RATE_LIMIT_AUTH_RPS", 1)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 5)

	v.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	v.SetDefault("CORS_MAX_AGE", 12*60*60) // seconds
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(".env")
	v.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(homeDir)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	frontendURL := strings.TrimRight(v.GetString("APP_FRONTEND_URL"), "/")
	allowedReturnURLs := splitList(v.GetStringSlice("APP_ALLOWED_RETURN_URLS"))
	if len(allowedReturnURLs) == 0 {
		allowedReturnURLs = []string{frontendURL}
	}

	resetSigningKey := v.GetString("TOKEN_RESET_SIGNING_KEY")
	if resetSigningKey == "" {
		resetSigningKey = v.GetString("JWT_SECRET")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        v.GetString("SERVER_PORT"),
			Host:        v.GetString("SERVER_HOST"),
			Environment: v.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Hasher: HasherConfig{
			MemoryKB:    v.GetUint32("HASH_MEMORY_KB"),
			Iterations:  v.GetUint32("HASH_ITERATIONS"),
			Parallelism: uint8(v.GetUint("HASH_PARALLELISM")),
		},
		Tokens: TokenConfig{
			VerificationTTL:       v.GetDuration("TOKEN_VERIFICATION_TTL"),
			PasswordResetTTL:      v.GetDuration("TOKEN_PASSWORD_RESET_TTL"),
			PasswordResetThrottle: v.GetDuration("TOKEN_PASSWORD_RESET_THROTTLE"),
			ResetSigningKey:       resetSigningKey,
			CleanupInterval:       v.GetDuration("TOKEN_CLEANUP_INTERVAL"),
		},
		App: AppConfig{
			FrontendURL:       frontendURL,
			AllowedReturnURLs: allowedReturnURLs,
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Mail: MailConfig{
			QueueSize:  v.GetInt("MAIL_QUEUE_SIZE"),
			Workers:    v.GetInt("MAIL_WORKERS"),
			MaxRetries: v.GetInt("MAIL_MAX_RETRIES"),
		},
		MQTT: MQTTConfig{
			Broker:      v.GetString("MQTT_BROKER"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			Username:    v.GetString("MQTT_USERNAME"),
			Password:    v.GetString("MQTT_PASSWORD"),
			TopicPrefix: strings.TrimRight(v.GetString("MQTT_TOPIC_PREFIX"), "/"),
			QoS:         byte(v.GetUint("MQTT_QOS")),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
			AuthRPS:      v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:    v.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetStringSlice("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(v.GetStringSlice("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(v.GetStringSlice("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(v.GetStringSlice("CORS_EXPOSED_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
	}

	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{frontendURL}
	}

	return config, nil
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is missing, set JWT_SECRET")
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("database configuration is missing, set DB_HOST and DB_NAME")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Tokens.VerificationTTL <= 0 || c.Tokens.PasswordResetTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.Tokens.CleanupInterval <= 0 {
		return errors.New("TOKEN_CLEANUP_INTERVAL must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

// splitList accepts both repeated values and a single comma separated value,
// which is how slices arrive from the environment.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
