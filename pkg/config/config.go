// Package config resolves the deployment target configuration for
// forge-deploy. The four required values (API token, organization slug,
// server and site identifiers) come from the environment, optionally
// backed by a YAML manifest file and a Vault token source. Environment
// values always win over manifest values.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forgeline/forge-deploy/pkg/vault"
)

// Environment variable names for the required configuration values.
const (
	EnvToken        = "FORGE_API_TOKEN"
	EnvOrganization = "FORGE_ORG"
	EnvServer       = "FORGE_SERVER"
	EnvSite         = "FORGE_SITE"
)

// Config is the fully resolved configuration for one deployment session.
type Config struct {
	// Token is the API bearer token
	Token string

	// Organization slug
	Organization string

	// Server numeric identifier
	Server string

	// Site numeric identifier
	Site string

	// Interval between poll cycles; zero means the monitor default
	Interval time.Duration

	// Timeout is the session ceiling; zero means the monitor default
	Timeout time.Duration
}

// Manifest represents the optional forge-deploy manifest file. It can
// supply everything except the API token itself, which comes from the
// environment or from Vault.
//
// Example:
//
//	version: "1.0"
//	site:
//	  organization: acme
//	  server: "12"
//	  site: "34"
//	polling:
//	  interval_seconds: 10
//	  timeout_seconds: 600
type Manifest struct {
	// Version of the manifest schema (currently "1.0")
	Version string `yaml:"version"`

	// Site identifies the deployment target
	Site SiteConfig `yaml:"site"`

	// Polling overrides the monitor defaults - optional
	Polling PollingConfig `yaml:"polling,omitempty"`

	// Vault configures fetching the API token from Vault - optional
	Vault *VaultConfig `yaml:"vault,omitempty"`
}

// SiteConfig identifies one site on the platform.
type SiteConfig struct {
	// Organization slug
	Organization string `yaml:"organization"`

	// Server numeric identifier
	Server string `yaml:"server"`

	// Site numeric identifier
	Site string `yaml:"site"`
}

// PollingConfig overrides the monitor's timing defaults.
type PollingConfig struct {
	// IntervalSeconds between poll cycles (default: 10)
	IntervalSeconds int `yaml:"interval_seconds,omitempty"`

	// TimeoutSeconds before the session gives up (default: 600)
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// VaultConfig tells the resolver where to find the API token in Vault.
// It is consulted only when the token environment variable is unset.
type VaultConfig struct {
	// Address of the Vault server
	Address string `yaml:"address"`

	// AuthMethod is "token" or "approle"
	AuthMethod string `yaml:"auth_method"`

	// Token for token auth - optional, falls back to VAULT_TOKEN
	Token string `yaml:"token,omitempty"`

	// RoleID for approle auth
	RoleID string `yaml:"role_id,omitempty"`

	// SecretID for approle auth
	SecretID string `yaml:"secret_id,omitempty"`

	// SecretPath is the KV v2 path holding the token (e.g., "secret/data/forge/api")
	SecretPath string `yaml:"secret_path"`

	// SecretKey is the key within the secret (e.g., "token")
	SecretKey string `yaml:"secret_key"`

	// TLSSkipVerify skips TLS verification (not recommended)
	TLSSkipVerify bool `yaml:"tls_skip_verify,omitempty"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return &manifest, nil
}

// Validate checks if the manifest has valid values.
// Returns an error describing what is invalid.
func (m *Manifest) Validate() error {
	if m.Vault != nil {
		if m.Vault.Address == "" {
			return fmt.Errorf("vault.address is required when vault is configured")
		}
		if m.Vault.SecretPath == "" || m.Vault.SecretKey == "" {
			return fmt.Errorf("vault.secret_path and vault.secret_key are required when vault is configured")
		}
	}
	if m.Polling.IntervalSeconds < 0 || m.Polling.TimeoutSeconds < 0 {
		return fmt.Errorf("polling intervals must not be negative")
	}
	return nil
}

// Resolve builds the session configuration from the environment and an
// optional manifest. Every missing required value is reported in a single
// error so the caller sees the complete list, not just the first.
func Resolve(ctx context.Context, m *Manifest) (*Config, error) {
	cfg := &Config{
		Token:        os.Getenv(EnvToken),
		Organization: os.Getenv(EnvOrganization),
		Server:       os.Getenv(EnvServer),
		Site:         os.Getenv(EnvSite),
	}

	if m != nil {
		if cfg.Organization == "" {
			cfg.Organization = m.Site.Organization
		}
		if cfg.Server == "" {
			cfg.Server = m.Site.Server
		}
		if cfg.Site == "" {
			cfg.Site = m.Site.Site
		}
		cfg.Interval = time.Duration(m.Polling.IntervalSeconds) * time.Second
		cfg.Timeout = time.Duration(m.Polling.TimeoutSeconds) * time.Second

		if cfg.Token == "" && m.Vault != nil {
			token, err := tokenFromVault(ctx, m.Vault)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch API token from vault: %w", err)
			}
			cfg.Token = token
		}
	}

	var missing []string
	if cfg.Token == "" {
		missing = append(missing, EnvToken)
	}
	if cfg.Organization == "" {
		missing = append(missing, EnvOrganization)
	}
	if cfg.Server == "" {
		missing = append(missing, EnvServer)
	}
	if cfg.Site == "" {
		missing = append(missing, EnvSite)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// tokenFromVault fetches the API token from Vault using the manifest's
// vault section.
func tokenFromVault(ctx context.Context, vc *VaultConfig) (string, error) {
	authToken := vc.Token
	if authToken == "" {
		authToken = os.Getenv("VAULT_TOKEN")
	}

	client, err := vault.NewClient(&vault.Config{
		Address: vc.Address,
		Auth: vault.AuthConfig{
			Method:   vc.AuthMethod,
			Token:    authToken,
			RoleID:   vc.RoleID,
			SecretID: vc.SecretID,
		},
		TLSSkipVerify: vc.TLSSkipVerify,
	})
	if err != nil {
		return "", err
	}

	if err := client.Authenticate(ctx); err != nil {
		return "", err
	}

	return client.GetSecret(ctx, vc.SecretPath, vc.SecretKey)
}
