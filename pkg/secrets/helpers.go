package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jordanlanch/adcreativelab/config"
)

// ConfigFrom derives the secrets manager configuration from the app config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Backend:       cfg.SecretsBackend,
		AWSRegion:     cfg.AWSRegion,
		CacheDuration: cfg.SecretsCacheTTL,
		Prefix:        cfg.SecretsPrefix,
	}
}

// LoadString loads a secret as a string, returning fallback when it does
// not exist. Backend failures are returned as errors.
func LoadString(ctx context.Context, m Manager, key, fallback string) (string, error) {
	value, err := m.GetSecret(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Apply overlays every sensitive setting found in m onto cfg. Settings the
// backend does not hold keep their current value.
func Apply(ctx context.Context, m Manager, cfg *config.Config) error {
	fields := []struct {
		key   string
		value *string
	}{
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"REDIS_URL", &cfg.RedisURL},
		{"OPENAI_API_KEY", &cfg.OpenAIAPIKey},
		{"AWS_ACCESS_KEY_ID", &cfg.AWSAccessKeyID},
		{"AWS_SECRET_ACCESS_KEY", &cfg.AWSSecretAccessKey},
		{"SENTRY_DSN", &cfg.SentryDSN},
	}

	for _, f := range fields {
		value, err := LoadString(ctx, m, f.key, *f.value)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", f.key, err)
		}
		*f.value = value
	}
	return nil
}
