package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/secrets"
)

// TOMLConfig represents the TOML configuration file structure
type TOMLConfig struct {
	Simulate    *bool  `toml:"simulate"`
	OUMapPath   string `toml:"ou_map_path"`
	OutDir      string `toml:"out_dir"`
	HTTPTimeout string `toml:"http_timeout"`

	OnPrem    TOMLOnPremConfig    `toml:"onprem"`
	CloudWMS  TOMLCloudWMSConfig  `toml:"cloud_wms"`
	Fusion    TOMLFusionConfig    `toml:"fusion"`
	Ticketing TOMLTicketingConfig `toml:"servicenow"`
	Sinks     TOMLSinksConfig     `toml:"sinks"`
	RunLock   TOMLRunLockConfig   `toml:"run_lock"`
	Metrics   TOMLMetricsConfig   `toml:"metrics"`
}

// TOMLOnPremConfig represents the on-prem ERP section in TOML
type TOMLOnPremConfig struct {
	DSN          string `toml:"dsn"`
	User         string `toml:"user"`
	QueryTimeout string `toml:"query_timeout"`
}

// TOMLCloudWMSConfig represents the cloud WMS section in TOML
type TOMLCloudWMSConfig struct {
	BaseURL string `toml:"base_url"`
}

// TOMLFusionConfig represents the Fusion section in TOML
type TOMLFusionConfig struct {
	BaseURL string `toml:"base_url"`
	User    string `toml:"user"`
}

// TOMLTicketingConfig represents the ServiceNow section in TOML
type TOMLTicketingConfig struct {
	Instance      string  `toml:"instance"`
	User          string  `toml:"user"`
	RatePerSecond float64 `toml:"rate_per_second"`
}

// TOMLSinksConfig represents notification sinks in TOML
type TOMLSinksConfig struct {
	PowerBIPushURL  string `toml:"powerbi_push_url"`
	TeamsWebhookURL string `toml:"teams_webhook_url"`
	SMTPServer      string `toml:"smtp_server"`
	SMTPPort        int    `toml:"smtp_port"`
	SMTPUser        string `toml:"smtp_user"`
	EmailTo         string `toml:"email_to"`
	NATSURL         string `toml:"nats_url"`
	EventsSubject   string `toml:"events_subject"`
	SQSQueueURL     string `toml:"sqs_queue_url"`
	ArchiveMongoURI string `toml:"archive_mongodb_uri"`
}

// TOMLRunLockConfig represents the run lock section in TOML
type TOMLRunLockConfig struct {
	RedisURL string `toml:"redis_url"`
	LockName string `toml:"lock_name"`
	TTL      string `toml:"ttl"`
}

// TOMLMetricsConfig represents the metrics section in TOML
type TOMLMetricsConfig struct {
	PushgatewayURL string `toml:"pushgateway_url"`
	Job            string `toml:"job"`
}

// ConfigPaths lists the paths to search for config files
var ConfigPaths = []string{
	"wms-monitor.toml",
	"./config/wms-monitor.toml",
	"/etc/wms-monitor/config.toml",
}

// LoadDotEnv loads a .env file into the process environment.
// A missing file is not an error; variables already set are not overridden.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("Loaded environment file", "path", path)
	return nil
}

// LoadWithFile loads configuration from the environment, then applies a TOML
// file for every setting whose environment variable is not set.
func LoadWithFile(explicitPath string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	configPath := explicitPath
	if configPath == "" {
		configPath = os.Getenv("WMS_MONITOR_CONFIG")
	}
	if configPath == "" {
		for _, path := range ConfigPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
	}

	if configPath == "" {
		return cfg, nil
	}

	var tc TOMLConfig
	if _, err := toml.DecodeFile(configPath, &tc); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	applyFile(cfg, &tc)
	slog.Debug("Applied configuration file", "path", configPath)
	return cfg, nil
}

// applyFile copies file values into cfg where the environment left them unset
func applyFile(cfg *Config, tc *TOMLConfig) {
	if tc.Simulate != nil && !envSet("SIMULATE") {
		cfg.Simulate = *tc.Simulate
	}
	fileString("OU_MAP_PATH", tc.OUMapPath, &cfg.OUMapPath)
	fileString("OUT_DIR", tc.OutDir, &cfg.OutDir)
	fileDuration("HTTP_TIMEOUT", tc.HTTPTimeout, &cfg.HTTPTimeout)

	fileString("ORACLE_DSN", tc.OnPrem.DSN, &cfg.OnPrem.DSN)
	fileString("ORACLE_USER", tc.OnPrem.User, &cfg.OnPrem.User)
	fileDuration("ORACLE_QUERY_TIMEOUT", tc.OnPrem.QueryTimeout, &cfg.OnPrem.QueryTimeout)

	fileString("OCWMS_BASE_URL", tc.CloudWMS.BaseURL, &cfg.CloudWMS.BaseURL)
	fileString("FUSION_BASE_URL", tc.Fusion.BaseURL, &cfg.Fusion.BaseURL)
	fileString("FUSION_USER", tc.Fusion.User, &cfg.Fusion.User)

	fileString("SN_INSTANCE", tc.Ticketing.Instance, &cfg.Ticketing.Instance)
	fileString("SN_USER", tc.Ticketing.User, &cfg.Ticketing.User)
	if tc.Ticketing.RatePerSecond > 0 && !envSet("SN_RATE_PER_SECOND") {
		cfg.Ticketing.RatePerSecond = tc.Ticketing.RatePerSecond
	}

	fileString("POWERBI_PUSH_URL", tc.Sinks.PowerBIPushURL, &cfg.PowerBI.PushURL)
	fileString("TEAMS_WEBHOOK_URL", tc.Sinks.TeamsWebhookURL, &cfg.Teams.WebhookURL)
	fileString("SMTP_SERVER", tc.Sinks.SMTPServer, &cfg.Email.SMTPServer)
	if tc.Sinks.SMTPPort > 0 && !envSet("SMTP_PORT") {
		cfg.Email.SMTPPort = tc.Sinks.SMTPPort
	}
	fileString("SMTP_USER", tc.Sinks.SMTPUser, &cfg.Email.User)
	fileString("EMAIL_TO", tc.Sinks.EmailTo, &cfg.Email.To)
	fileString("EVENTS_NATS_URL", tc.Sinks.NATSURL, &cfg.Events.NATSURL)
	fileString("EVENTS_SUBJECT", tc.Sinks.EventsSubject, &cfg.Events.Subject)
	fileString("EVENTS_SQS_QUEUE_URL", tc.Sinks.SQSQueueURL, &cfg.Events.SQSQueueURL)
	fileString("ARCHIVE_MONGODB_URI", tc.Sinks.ArchiveMongoURI, &cfg.Archive.MongoURI)

	fileString("REDIS_URL", tc.RunLock.RedisURL, &cfg.RunLock.RedisURL)
	fileString("RUN_LOCK_NAME", tc.RunLock.LockName, &cfg.RunLock.LockName)
	fileDuration("RUN_LOCK_TTL", tc.RunLock.TTL, &cfg.RunLock.TTL)

	fileString("PUSHGATEWAY_URL", tc.Metrics.PushgatewayURL, &cfg.Metrics.PushgatewayURL)
	fileString("PUSHGATEWAY_JOB", tc.Metrics.Job, &cfg.Metrics.Job)
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func fileString(envKey, fileValue string, target *string) {
	if fileValue != "" && !envSet(envKey) {
		*target = fileValue
	}
}

func fileDuration(envKey, fileValue string, target *time.Duration) {
	if fileValue == "" || envSet(envKey) {
		return
	}
	if d, err := time.ParseDuration(fileValue); err == nil {
		*target = d
	}
}

// ResolveSecrets fills empty credential fields from the secrets provider.
// A secret the provider does not hold leaves the field empty.
func (c *Config) ResolveSecrets(ctx context.Context, provider secrets.Provider) error {
	if provider == nil {
		return nil
	}

	fields := []struct {
		key    string
		target *string
	}{
		{"oracle-password", &c.OnPrem.Password},
		{"fusion-password", &c.Fusion.Password},
		{"fusion-oauth-token", &c.Fusion.OAuthToken},
		{"ocwms-oauth-token", &c.CloudWMS.OAuthToken},
		{"servicenow-password", &c.Ticketing.Password},
		{"smtp-password", &c.Email.Password},
	}

	resolved := 0
	for _, f := range fields {
		if *f.target != "" {
			continue
		}
		value, err := provider.Get(ctx, f.key)
		if err != nil {
			if errors.Is(err, secrets.ErrSecretNotFound) {
				continue
			}
			return fmt.Errorf("failed to resolve secret %s from %s: %w", f.key, provider.Name(), err)
		}
		*f.target = value
		resolved++
	}

	slog.Info("Resolved credentials from secrets provider",
		"provider", provider.Name(),
		"resolved", resolved)
	return nil
}

// WriteExampleConfig writes an example configuration file
func WriteExampleConfig(path string) error {
	example := `# Hybrid WMS Monitor Configuration
# Environment variables (and .env) override these settings.
# Credentials belong in the environment or a secrets provider, not here.

simulate = true
ou_map_path = "config/ou_map.json"
out_dir = "out"
http_timeout = "30s"

[onprem]
dsn = ""              # oracle://host:1521/ORCL
user = "readonly"
query_timeout = "30s"

[cloud_wms]
base_url = ""

[fusion]
base_url = ""
user = ""

[servicenow]
instance = ""
user = ""
rate_per_second = 2.0

[sinks]
powerbi_push_url = ""
teams_webhook_url = ""
smtp_server = ""
smtp_port = 587
smtp_user = ""
email_to = ""
nats_url = ""
events_subject = "wms.monitor.run"
sqs_queue_url = ""
archive_mongodb_uri = ""

[run_lock]
redis_url = ""
lock_name = "wms-monitor:run"
ttl = "15m"

[metrics]
pushgateway_url = ""
job = "wms_monitor"
`

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return os.WriteFile(path, []byte(example), 0644)
}
