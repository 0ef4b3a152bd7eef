package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// SecretSource fetches a named secret from an external store.
type SecretSource interface {
	GetSecret(ctx context.Context, key string) (string, error)
}

// KeyVaultSource reads secrets from Azure Key Vault using the default Azure credential chain
// (managed identity, workload identity, az CLI).
type KeyVaultSource struct {
	client *azsecrets.Client
}

// NewKeyVaultSource returns a SecretSource backed by the vault at vaultURL.
func NewKeyVaultSource(vaultURL string) (*KeyVaultSource, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("config: azure credential: %w", err)
	}
	client, err := azsecrets.NewClient(vaultURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("config: key vault client: %w", err)
	}
	return &KeyVaultSource{client: client}, nil
}

// GetSecret returns the latest version of the secret for key. Env-style keys are mapped to
// vault names by replacing underscores with hyphens (SESSION_SECRET -> SESSION-SECRET).
func (s *KeyVaultSource) GetSecret(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	name := vaultSecretName(key)
	resp, err := s.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", fmt.Errorf("config: get secret %q: %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("config: secret %q has no value", name)
	}
	return *resp.Value, nil
}

func vaultSecretName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// resolveSecrets fills SESSION_SECRET and DATABASE_URL from src when the environment left them empty.
func resolveSecrets(ctx context.Context, cfg *Config, src SecretSource) error {
	if cfg.SessionSecretValue == "" {
		v, err := src.GetSecret(ctx, "SESSION_SECRET")
		if err != nil {
			return err
		}
		cfg.SessionSecretValue = v
	}
	if cfg.DatabaseURL == "" {
		v, err := src.GetSecret(ctx, "DATABASE_URL")
		if err != nil {
			return err
		}
		cfg.DatabaseURL = v
	}
	return nil
}
