package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	HTTP        ServerConfig
	MySQL       MySQLConfig
	Log         LogConfig
	KCB         KCBConfig
	CyberSource CyberSourceConfig
	SMS         SMSConfig
	Retry       RetryConfig
	Sequence    SequenceConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type KCBConfig struct {
	ClientID        string
	ClientSecret    string
	TokenURL        string
	StkPushURL      string
	OrgShortCode    string
	OrgPassKey      string
	SharedShortCode bool
	CallbackURL     string
	HTTPTimeout     time.Duration
}

type CyberSourceConfig struct {
	APIKey      string
	MerchantID  string
	PaymentsURL string
	HTTPTimeout time.Duration
}

type SMSConfig struct {
	URL         string
	ClientID    string
	APIKey      string
	Secret      string
	ServiceID   string
	HTTPTimeout time.Duration
}

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

type SequenceConfig struct {
	MaxAttempts int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "changachanga-service"),
			APIKey:      getEnv("APP_API_KEY", ""),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		KCB: KCBConfig{
			ClientID:        getEnv("KCB_CLIENT_ID", ""),
			ClientSecret:    getEnv("KCB_CLIENT_SECRET", ""),
			TokenURL:        getEnv("KCB_TOKEN_URL", ""),
			StkPushURL:      getEnv("KCB_STK_PUSH_URL", ""),
			OrgShortCode:    getEnv("KCB_ORG_SHORT_CODE", ""),
			OrgPassKey:      getEnv("KCB_ORG_PASS_KEY", ""),
			SharedShortCode: getBoolEnv("KCB_SHARED_SHORT_CODE", true),
			CallbackURL:     getEnv("KCB_CALLBACK_URL", ""),
			HTTPTimeout:     getSecondsEnv("KCB_HTTP_TIMEOUT_SECONDS", 30*time.Second),
		},
		CyberSource: CyberSourceConfig{
			APIKey:      getEnv("CYBERSOURCE_API_KEY", ""),
			MerchantID:  getEnv("CYBERSOURCE_MERCHANT_ID", ""),
			PaymentsURL: getEnv("CYBERSOURCE_PAYMENTS_URL", ""),
			HTTPTimeout: getSecondsEnv("CYBERSOURCE_HTTP_TIMEOUT_SECONDS", 30*time.Second),
		},
		SMS: SMSConfig{
			URL:         getEnv("SMS_GATEWAY_URL", ""),
			ClientID:    getEnv("SMS_CLIENT_ID", ""),
			APIKey:      getEnv("SMS_API_KEY", ""),
			Secret:      getEnv("SMS_SECRET", ""),
			ServiceID:   getEnv("SMS_SERVICE_ID", ""),
			HTTPTimeout: getSecondsEnv("SMS_HTTP_TIMEOUT_SECONDS", 5*time.Second),
		},
		Retry: RetryConfig{
			MaxAttempts:  getIntEnv("PROVIDER_RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: getSecondsEnv("PROVIDER_RETRY_INITIAL_DELAY_SECONDS", time.Second),
			MaxDelay:     getSecondsEnv("PROVIDER_RETRY_MAX_DELAY_SECONDS", 10*time.Second),
		},
		Sequence: SequenceConfig{
			MaxAttempts: getIntEnv("SEQUENCE_MAX_ATTEMPTS", 10),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
