// Package secrets resolves integration credentials from pluggable read-only backends.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Common errors
var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrInvalidKey     = errors.New("invalid encryption key")
	ErrProviderError  = errors.New("provider error")
)

// Provider defines the interface for secret storage backends.
// The monitor only ever reads credentials, so no write path is exposed.
type Provider interface {
	// Get retrieves a secret by key (e.g. "servicenow-password")
	Get(ctx context.Context, key string) (string, error)

	// Name returns the provider name for logging
	Name() string
}

// ProviderType represents the type of secret provider
type ProviderType string

const (
	ProviderTypeEncrypted ProviderType = "encrypted"
	ProviderTypeAWSSM     ProviderType = "aws-sm"
	ProviderTypeVault     ProviderType = "vault"
	ProviderTypeGCPSM     ProviderType = "gcp-sm"
	ProviderTypeEnv       ProviderType = "env"
)

// Config holds configuration for the secrets provider
type Config struct {
	Provider ProviderType `toml:"provider"`

	// Encrypted provider settings
	EncryptionKey string `toml:"encryption_key"`
	DataDir       string `toml:"data_dir"`

	// AWS Secrets Manager settings
	AWSRegion   string `toml:"aws_region"`
	AWSPrefix   string `toml:"aws_prefix"`
	AWSEndpoint string `toml:"aws_endpoint"`

	// HashiCorp Vault settings
	VaultAddr      string `toml:"vault_addr"`
	VaultToken     string `toml:"vault_token"`
	VaultMount     string `toml:"vault_mount"`
	VaultPath      string `toml:"vault_path"`
	VaultNamespace string `toml:"vault_namespace"`

	// GCP Secret Manager settings
	GCPProject string `toml:"gcp_project"`
	GCPPrefix  string `toml:"gcp_prefix"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:   ProviderTypeEnv,
		DataDir:    "./data/secrets",
		AWSPrefix:  "/wms-monitor/",
		VaultMount: "secret",
		VaultPath:  "wms-monitor",
		GCPPrefix:  "wms-monitor-",
	}
}

// LoadConfigFromEnv loads configuration from WMS_SECRETS_* variables, falling
// back to the cloud SDKs' own variables (AWS_REGION, VAULT_ADDR, VAULT_TOKEN,
// GOOGLE_CLOUD_PROJECT). An empty WMS_SECRETS_PROVIDER means no provider.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.Provider = ProviderType(strings.ToLower(os.Getenv("WMS_SECRETS_PROVIDER")))

	overrides := []struct {
		target *string
		keys   []string
	}{
		{&cfg.EncryptionKey, []string{"WMS_SECRETS_ENCRYPTION_KEY"}},
		{&cfg.DataDir, []string{"WMS_SECRETS_DATA_DIR"}},
		{&cfg.AWSRegion, []string{"WMS_SECRETS_AWS_REGION", "AWS_REGION"}},
		{&cfg.AWSPrefix, []string{"WMS_SECRETS_AWS_PREFIX"}},
		{&cfg.AWSEndpoint, []string{"WMS_SECRETS_AWS_ENDPOINT"}},
		{&cfg.VaultAddr, []string{"WMS_SECRETS_VAULT_ADDR", "VAULT_ADDR"}},
		{&cfg.VaultToken, []string{"WMS_SECRETS_VAULT_TOKEN", "VAULT_TOKEN"}},
		{&cfg.VaultMount, []string{"WMS_SECRETS_VAULT_MOUNT"}},
		{&cfg.VaultPath, []string{"WMS_SECRETS_VAULT_PATH"}},
		{&cfg.VaultNamespace, []string{"WMS_SECRETS_VAULT_NAMESPACE"}},
		{&cfg.GCPProject, []string{"WMS_SECRETS_GCP_PROJECT", "GOOGLE_CLOUD_PROJECT"}},
		{&cfg.GCPPrefix, []string{"WMS_SECRETS_GCP_PREFIX"}},
	}
	for _, o := range overrides {
		if v := firstEnv(o.keys...); v != "" {
			*o.target = v
		}
	}

	return cfg
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// NewProvider creates a secret provider based on configuration.
// It returns (nil, nil) when no provider is configured.
func NewProvider(ctx context.Context, cfg *Config) (Provider, error) {
	if cfg == nil {
		cfg = LoadConfigFromEnv()
	}

	switch cfg.Provider {
	case "":
		return nil, nil
	case ProviderTypeEncrypted:
		return NewEncryptedProvider(cfg.EncryptionKey, cfg.DataDir)
	case ProviderTypeAWSSM:
		return NewAWSSecretsManagerProvider(ctx, cfg)
	case ProviderTypeVault:
		return NewVaultProvider(cfg)
	case ProviderTypeGCPSM:
		return NewGCPSecretManagerProvider(ctx, cfg)
	case ProviderTypeEnv:
		return NewEnvProvider("WMS_SECRET_"), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider)
	}
}

// EnvProvider reads secrets from prefixed environment variables
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates a new environment variable provider
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// Get maps "servicenow-password" to <prefix>SERVICENOW_PASSWORD
func (p *EnvProvider) Get(ctx context.Context, key string) (string, error) {
	envKey := p.prefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	value := os.Getenv(envKey)
	if value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

// Name returns the provider name
func (p *EnvProvider) Name() string {
	return "env"
}
