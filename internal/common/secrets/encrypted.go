package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const encryptedFileName = "secrets.enc"

// EncryptedProvider reads credentials from an AES-256-GCM sealed file on local disk.
// The file is produced by Seal (see the `secrets seal` command).
type EncryptedProvider struct {
	values map[string]string
}

// NewEncryptedProvider decrypts <dataDir>/secrets.enc with the base64 key
func NewEncryptedProvider(encryptionKey, dataDir string) (*EncryptedProvider, error) {
	key, err := decodeKey(encryptionKey)
	if err != nil {
		return nil, err
	}

	p := &EncryptedProvider{values: make(map[string]string)}

	data, err := os.ReadFile(filepath.Join(dataDir, encryptedFileName))
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	plaintext, err := decrypt(key, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secrets: %w", err)
	}
	if err := json.Unmarshal(plaintext, &p.values); err != nil {
		return nil, fmt.Errorf("failed to parse secrets: %w", err)
	}

	return p, nil
}

// Get retrieves a secret by key
func (p *EncryptedProvider) Get(ctx context.Context, key string) (string, error) {
	value, ok := p.values[key]
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

// Name returns the provider name
func (p *EncryptedProvider) Name() string {
	return "encrypted"
}

// Seal encrypts values into <dataDir>/secrets.enc, replacing any previous file
func Seal(encryptionKey, dataDir string, values map[string]string) error {
	key, err := decodeKey(encryptionKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	plaintext, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to serialize secrets: %w", err)
	}

	ciphertext, err := encrypt(key, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt secrets: %w", err)
	}

	target := filepath.Join(dataDir, encryptedFileName)
	tmpFile := target + ".tmp"
	if err := os.WriteFile(tmpFile, ciphertext, 0600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	if err := os.Rename(tmpFile, target); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename secrets file: %w", err)
	}

	return nil
}

// GenerateKey generates a new 256-bit encryption key
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func decodeKey(encryptionKey string) ([]byte, error) {
	if encryptionKey == "" {
		return nil, fmt.Errorf("%w: encryption key is required", ErrInvalidKey)
	}

	key, err := base64.StdEncoding.DecodeString(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode encryption key: %v", ErrInvalidKey, err)
	}

	// AES-256
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: encryption key must be 32 bytes (256 bits), got %d", ErrInvalidKey, len(key))
	}
	return key, nil
}

func encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// nonce || ciphertext
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
