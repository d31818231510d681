package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("WMS_SECRET_SERVICENOW_PASSWORD", "s3cret")

	p := NewEnvProvider("WMS_SECRET_")

	value, err := p.Get(context.Background(), "servicenow-password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = p.Get(context.Background(), "smtp-password")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestNewProvider_NoneConfigured(t *testing.T) {
	p, err := NewProvider(context.Background(), &Config{})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(context.Background(), &Config{Provider: "keychain"})
	assert.Error(t, err)
}

func TestEncryptedProvider_SealAndRead(t *testing.T) {
	dir := t.TempDir()
	key, err := GenerateKey()
	require.NoError(t, err)

	require.NoError(t, Seal(key, dir, map[string]string{"smtp-password": "hunter2"}))

	p, err := NewEncryptedProvider(key, dir)
	require.NoError(t, err)

	value, err := p.Get(context.Background(), "smtp-password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)

	_, err = p.Get(context.Background(), "oracle-password")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestEncryptedProvider_WrongKey(t *testing.T) {
	dir := t.TempDir()
	key, _ := GenerateKey()
	other, _ := GenerateKey()
	require.NoError(t, Seal(key, dir, map[string]string{"a": "b"}))

	_, err := NewEncryptedProvider(other, dir)
	assert.Error(t, err)
}

func TestEncryptedProvider_MissingFile(t *testing.T) {
	key, _ := GenerateKey()

	p, err := NewEncryptedProvider(key, t.TempDir())
	require.NoError(t, err)

	_, err = p.Get(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestEncryptedProvider_InvalidKey(t *testing.T) {
	_, err := NewEncryptedProvider("", t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewEncryptedProvider("dG9vLXNob3J0", t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidKey)
}

type fakeSecretsManager struct {
	values map[string]string
	err    error
}

func (f *fakeSecretsManager) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[aws.ToString(in.SecretId)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

func TestAWSProvider_Get(t *testing.T) {
	p := newAWSProvider(&fakeSecretsManager{
		values: map[string]string{"/wms/fusion-password": "pw"},
	}, "/wms")

	value, err := p.Get(context.Background(), "fusion-password")
	require.NoError(t, err)
	assert.Equal(t, "pw", value)

	_, err = p.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestAWSProvider_ProviderError(t *testing.T) {
	p := newAWSProvider(&fakeSecretsManager{err: errors.New("throttled")}, "")

	_, err := p.Get(context.Background(), "fusion-password")
	assert.ErrorIs(t, err, ErrProviderError)
}

func TestLoadConfigFromEnv_Fallbacks(t *testing.T) {
	t.Setenv("WMS_SECRETS_PROVIDER", "Vault")
	t.Setenv("VAULT_ADDR", "http://vault:8200")
	t.Setenv("WMS_SECRETS_VAULT_ADDR", "")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("WMS_SECRETS_AWS_REGION", "us-west-2")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, ProviderTypeVault, cfg.Provider)
	assert.Equal(t, "http://vault:8200", cfg.VaultAddr)
	assert.Equal(t, "us-west-2", cfg.AWSRegion, "prefixed key wins")
	assert.Equal(t, "secret", cfg.VaultMount, "default kept")
}
