package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvToken, EnvOrganization, EnvServer, EnvSite} {
		t.Setenv(name, "")
	}
}

func TestResolveMissingAllListsEveryName(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(context.Background(), nil)
	if err == nil {
		t.Fatal("Resolve succeeded with no configuration")
	}

	for _, name := range []string{EnvToken, EnvOrganization, EnvServer, EnvSite} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}

func TestResolveFromEnvironment(t *testing.T) {
	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvOrganization, "acme")
	t.Setenv(EnvServer, "12")
	t.Setenv(EnvSite, "34")

	cfg, err := Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Token != "tok" || cfg.Organization != "acme" || cfg.Server != "12" || cfg.Site != "34" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestResolveEnvWinsOverManifest(t *testing.T) {
	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvOrganization, "env-org")
	t.Setenv(EnvServer, "")
	t.Setenv(EnvSite, "")

	m := &Manifest{
		Site: SiteConfig{
			Organization: "file-org",
			Server:       "12",
			Site:         "34",
		},
		Polling: PollingConfig{IntervalSeconds: 5, TimeoutSeconds: 120},
	}

	cfg, err := Resolve(context.Background(), m)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Organization != "env-org" {
		t.Errorf("Organization = %q, want env value to win", cfg.Organization)
	}
	if cfg.Server != "12" || cfg.Site != "34" {
		t.Errorf("manifest values not used for unset variables: %+v", cfg)
	}
	if cfg.Interval != 5*time.Second || cfg.Timeout != 120*time.Second {
		t.Errorf("polling overrides not applied: interval=%s timeout=%s", cfg.Interval, cfg.Timeout)
	}
}

func TestLoadManifest(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		shouldError bool
	}{
		{
			name: "valid manifest",
			content: `version: "1.0"
site:
  organization: acme
  server: "12"
  site: "34"
polling:
  interval_seconds: 10
  timeout_seconds: 600
`,
			shouldError: false,
		},
		{
			name: "vault without address",
			content: `version: "1.0"
site:
  organization: acme
  server: "12"
  site: "34"
vault:
  auth_method: token
  secret_path: secret/data/forge/api
  secret_key: token
`,
			shouldError: true,
		},
		{
			name:        "not yaml",
			content:     "{{{",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "forge-deploy.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write manifest: %v", err)
			}

			m, err := LoadManifest(path)
			if tt.shouldError {
				if err == nil {
					t.Error("LoadManifest succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadManifest failed: %v", err)
			}
			if m.Site.Organization != "acme" {
				t.Errorf("Organization = %q, want %q", m.Site.Organization, "acme")
			}
		})
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadManifest succeeded on a missing file")
	}
}
