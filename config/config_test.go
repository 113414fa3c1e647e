package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp runs the test from an empty directory so no config.yaml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Site.Domain != "https://starlitjournals.com" {
		t.Errorf("Site.Domain = %q, want %q", cfg.Site.Domain, "https://starlitjournals.com")
	}
	if cfg.Backend.URL != "http://localhost:5000" {
		t.Errorf("Backend.URL = %q, want %q", cfg.Backend.URL, "http://localhost:5000")
	}
	if cfg.Output.Path != "public/sitemap.xml" {
		t.Errorf("Output.Path = %q, want %q", cfg.Output.Path, "public/sitemap.xml")
	}
	if cfg.GetFetchTimeout() != 10*time.Second {
		t.Errorf("GetFetchTimeout() = %v, want %v", cfg.GetFetchTimeout(), 10*time.Second)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.LedgerEnabled() {
		t.Error("LedgerEnabled() = true, want false by default")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SITEMAP_BACKEND_URL", "https://api.example.com/")
	t.Setenv("SITEMAP_BACKEND_TIMEOUT", "3s")
	t.Setenv("SITEMAP_OUTPUT_PATH", "dist/sitemap.xml")
	t.Setenv("SITEMAP_STORAGE_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Backend.URL != "https://api.example.com" {
		t.Errorf("Backend.URL = %q, want %q", cfg.Backend.URL, "https://api.example.com")
	}
	if cfg.GetFetchTimeout() != 3*time.Second {
		t.Errorf("GetFetchTimeout() = %v, want %v", cfg.GetFetchTimeout(), 3*time.Second)
	}
	if cfg.Output.Path != "dist/sitemap.xml" {
		t.Errorf("Output.Path = %q, want %q", cfg.Output.Path, "dist/sitemap.xml")
	}
	if !cfg.LedgerEnabled() {
		t.Error("LedgerEnabled() = false, want true")
	}
}

func TestLoadConfig_ReadsYAMLFile(t *testing.T) {
	dir := chdirTemp(t)
	content := []byte("site:\n  domain: https://journals.example.org/\nserver:\n  port: 9090\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Site.Domain != "https://journals.example.org" {
		t.Errorf("Site.Domain = %q, want %q", cfg.Site.Domain, "https://journals.example.org")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SITEMAP_STORAGE_DRIVER", "mongo")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported storage driver")
	}
}

func TestGetFetchTimeout_InvalidFallsBack(t *testing.T) {
	cfg := &Config{}
	cfg.Backend.Timeout = "soon"
	if cfg.GetFetchTimeout() != 10*time.Second {
		t.Errorf("GetFetchTimeout() = %v, want %v", cfg.GetFetchTimeout(), 10*time.Second)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "https://starlitjournals.com", want: "https://starlitjournals.com"},
		{name: "trailing slash", input: "https://starlitjournals.com/", want: "https://starlitjournals.com"},
		{name: "with port", input: "http://localhost:3000", want: "http://localhost:3000"},
		{name: "unicode host", input: "https://bücher.example", want: "https://xn--bcher-kva.example"},
		{name: "missing scheme", input: "starlitjournals.com", wantErr: true},
		{name: "ftp scheme", input: "ftp://starlitjournals.com", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDomain(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
