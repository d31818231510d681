package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for one monitoring run.
// It is built once at process start and passed to components; nothing
// below cmd/ reads the environment directly.
type Config struct {
	// Simulate forces simulated backend adapters even when live endpoints are configured
	Simulate bool

	// OUMapPath is the OU registry JSON file
	OUMapPath string

	// OutDir receives the snapshot and history files
	OutDir string

	// HTTPTimeout bounds every outbound HTTP call (adapters, ticketing, sinks)
	HTTPTimeout time.Duration

	OnPrem    OnPremConfig
	CloudWMS  CloudWMSConfig
	Fusion    FusionConfig
	Ticketing TicketingConfig
	PowerBI   PowerBIConfig
	Teams     TeamsConfig
	Email     EmailConfig
	Events    EventsConfig
	Archive   ArchiveConfig
	RunLock   RunLockConfig
	Metrics   MetricsConfig

	// DevMode enables debug logging
	DevMode bool

	// LogLevel is one of debug, info, warn, error
	LogLevel string
}

// OnPremConfig holds the on-prem ERP (Oracle EBS) connection
type OnPremConfig struct {
	DSN          string
	User         string
	Password     string
	QueryTimeout time.Duration
}

// CloudWMSConfig holds the cloud WMS REST endpoint
type CloudWMSConfig struct {
	BaseURL    string
	OAuthToken string
}

// FusionConfig holds the Fusion REST endpoint
type FusionConfig struct {
	BaseURL    string
	User       string
	Password   string
	OAuthToken string
}

// TicketingConfig holds the ServiceNow instance used for incidents
type TicketingConfig struct {
	Instance      string
	User          string
	Password      string
	RatePerSecond float64
}

// PowerBIConfig holds the BI push dataset URL
type PowerBIConfig struct {
	PushURL string
}

// TeamsConfig holds the chat webhook URL
type TeamsConfig struct {
	WebhookURL string
}

// EmailConfig holds SMTP relay settings
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	User       string
	Password   string
	To         string
}

// EventsConfig holds the optional run-completed event publisher
type EventsConfig struct {
	NATSURL     string
	Subject     string
	SQSQueueURL string
	AWSRegion   string
}

// ArchiveConfig holds the optional MongoDB report archive
type ArchiveConfig struct {
	MongoURI   string
	Database   string
	Collection string
}

// RunLockConfig holds the optional Redis lock preventing overlapping runs
type RunLockConfig struct {
	RedisURL string
	LockName string
	TTL      time.Duration
}

// MetricsConfig holds the optional Prometheus Pushgateway
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Simulate:    getEnvBool("SIMULATE", true),
		OUMapPath:   getEnv("OU_MAP_PATH", "config/ou_map.json"),
		OutDir:      getEnv("OUT_DIR", "out"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		OnPrem: OnPremConfig{
			DSN:          getEnv("ORACLE_DSN", ""),
			User:         getEnv("ORACLE_USER", "readonly"),
			Password:     getEnv("ORACLE_PASSWORD", ""),
			QueryTimeout: getEnvDuration("ORACLE_QUERY_TIMEOUT", 30*time.Second),
		},

		CloudWMS: CloudWMSConfig{
			BaseURL:    strings.TrimRight(getEnv("OCWMS_BASE_URL", ""), "/"),
			OAuthToken: getEnv("OCWMS_OAUTH_TOKEN", ""),
		},

		Fusion: FusionConfig{
			BaseURL:    strings.TrimRight(getEnv("FUSION_BASE_URL", ""), "/"),
			User:       getEnv("FUSION_USER", ""),
			Password:   getEnv("FUSION_PASSWORD", ""),
			OAuthToken: getEnv("FUSION_OAUTH_TOKEN", ""),
		},

		Ticketing: TicketingConfig{
			Instance:      strings.TrimRight(getEnv("SN_INSTANCE", ""), "/"),
			User:          getEnv("SN_USER", ""),
			Password:      getEnv("SN_PASSWORD", ""),
			RatePerSecond: getEnvFloat("SN_RATE_PER_SECOND", 2),
		},

		PowerBI: PowerBIConfig{
			PushURL: getEnv("POWERBI_PUSH_URL", ""),
		},

		Teams: TeamsConfig{
			WebhookURL: getEnv("TEAMS_WEBHOOK_URL", ""),
		},

		Email: EmailConfig{
			SMTPServer: getEnv("SMTP_SERVER", ""),
			SMTPPort:   getEnvInt("SMTP_PORT", 587),
			User:       getEnv("SMTP_USER", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			To:         getEnv("EMAIL_TO", ""),
		},

		Events: EventsConfig{
			NATSURL:     getEnv("EVENTS_NATS_URL", ""),
			Subject:     getEnv("EVENTS_SUBJECT", "wms.monitor.run"),
			SQSQueueURL: getEnv("EVENTS_SQS_QUEUE_URL", ""),
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		},

		Archive: ArchiveConfig{
			MongoURI:   getEnv("ARCHIVE_MONGODB_URI", ""),
			Database:   getEnv("ARCHIVE_MONGODB_DATABASE", "wms_monitor"),
			Collection: getEnv("ARCHIVE_MONGODB_COLLECTION", "report_rows"),
		},

		RunLock: RunLockConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			LockName: getEnv("RUN_LOCK_NAME", "wms-monitor:run"),
			TTL:      getEnvDuration("RUN_LOCK_TTL", 15*time.Minute),
		},

		Metrics: MetricsConfig{
			PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
			Job:            getEnv("PUSHGATEWAY_JOB", "wms_monitor"),
		},

		DevMode:  getEnvBool("WMS_DEV", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// SlogLevel returns the level to log at. DevMode always means debug.
func (c *Config) SlogLevel() slog.Level {
	if c.DevMode {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SnapshotPath returns the latest-snapshot file location
func (c *Config) SnapshotPath() string {
	return strings.TrimRight(c.OutDir, "/") + "/hybrid_report.json"
}

// HistoryPath returns the append-only history file location
func (c *Config) HistoryPath() string {
	return strings.TrimRight(c.OutDir, "/") + "/history.csv"
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
