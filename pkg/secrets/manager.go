// Package secrets resolves sensitive settings (API keys, connection strings)
// from the environment or from AWS Secrets Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// ErrNotFound is returned when a secret does not exist in the backend.
var ErrNotFound = errors.New("secret not found")

// Manager defines the interface for secrets management
type Manager interface {
	// GetSecret retrieves a secret by key
	GetSecret(ctx context.Context, key string) (string, error)

	// RefreshCache forces a refresh of the cache
	RefreshCache(ctx context.Context) error

	// Close closes any resources held by the manager
	Close() error
}

// Config holds secrets manager configuration
type Config struct {
	Backend       string        // "env" or "aws-secrets-manager"
	AWSRegion     string        // AWS region for Secrets Manager
	CacheDuration time.Duration // How long to cache secrets
	Prefix        string        // Secret name prefix in Secrets Manager, e.g. "adlab/"
}

// NewManager creates a new secrets manager based on configuration
func NewManager(cfg Config) (Manager, error) {
	switch cfg.Backend {
	case "aws-secrets-manager", "aws":
		log.Printf("🔐 Initializing AWS Secrets Manager (region: %s)", cfg.AWSRegion)
		return NewAWSSecretsManager(cfg)
	case "", "env", "environment":
		return NewEnvironmentManager(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}

// ttlCache keeps resolved values for a fixed duration.
type ttlCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedSecret),
	}
}

func (c *ttlCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.entries[key]
	if !ok || !c.now().Before(cached.expiresAt) {
		return "", false
	}
	return cached.value, true
}

func (c *ttlCache) set(key, value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedSecret{value: value, expiresAt: c.now().Add(c.ttl)}
}

func (c *ttlCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cachedSecret)
}

// EnvironmentManager loads secrets from environment variables
type EnvironmentManager struct {
	cache  *ttlCache
	lookup func(string) (string, bool)
}

// NewEnvironmentManager creates a new environment-based secrets manager
func NewEnvironmentManager(cfg Config) *EnvironmentManager {
	return &EnvironmentManager{
		cache:  newTTLCache(cfg.CacheDuration),
		lookup: os.LookupEnv,
	}
}

// GetSecret retrieves a secret from environment variables
func (m *EnvironmentManager) GetSecret(ctx context.Context, key string) (string, error) {
	if value, ok := m.cache.get(key); ok {
		return value, nil
	}

	value, ok := m.lookup(key)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	m.cache.set(key, value)
	return value, nil
}

// RefreshCache clears the cache (forces reload on next access)
func (m *EnvironmentManager) RefreshCache(ctx context.Context) error {
	m.cache.clear()
	return nil
}

// Close is a no-op for environment manager
func (m *EnvironmentManager) Close() error {
	return nil
}

// AWSSecretsManager loads secrets from AWS Secrets Manager. Keys are
// looked up as Prefix + lower-kebab key, so OPENAI_API_KEY becomes
// "adlab/openai-api-key" with the prefix "adlab/".
type AWSSecretsManager struct {
	client secretsmanageriface.SecretsManagerAPI
	prefix string
	cache  *ttlCache
}

// NewAWSSecretsManager creates a new AWS Secrets Manager client
func NewAWSSecretsManager(cfg Config) (*AWSSecretsManager, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWSRegion),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	log.Printf("✅ AWS Secrets Manager initialized (cache duration: %s)", cfg.CacheDuration)
	return NewAWSSecretsManagerWithClient(secretsmanager.New(sess), cfg), nil
}

// NewAWSSecretsManagerWithClient wraps an existing Secrets Manager client.
func NewAWSSecretsManagerWithClient(client secretsmanageriface.SecretsManagerAPI, cfg Config) *AWSSecretsManager {
	return &AWSSecretsManager{
		client: client,
		prefix: cfg.Prefix,
		cache:  newTTLCache(cfg.CacheDuration),
	}
}

// SecretID maps an environment-style key to its Secrets Manager name.
func (m *AWSSecretsManager) SecretID(key string) string {
	return m.prefix + strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// GetSecret retrieves a secret from AWS Secrets Manager
func (m *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	if value, ok := m.cache.get(key); ok {
		return value, nil
	}

	id := m.SecretID(key)
	result, err := m.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == secretsmanager.ErrCodeResourceNotFoundException {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("failed to get secret %s: %w", id, err)
	}

	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", id)
	}

	m.cache.set(key, *result.SecretString)
	return *result.SecretString, nil
}

// RefreshCache forces a reload of all cached secrets
func (m *AWSSecretsManager) RefreshCache(ctx context.Context) error {
	m.cache.clear()
	log.Printf("🔄 AWS Secrets Manager cache cleared")
	return nil
}

// Close closes the AWS Secrets Manager client
func (m *AWSSecretsManager) Close() error {
	return nil
}
