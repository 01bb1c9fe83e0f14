package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("expected log level %q, got %q", DefaultLogLevel, cfg.Logging.Level)
	}
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("expected log format %q, got %q", DefaultLogFormat, cfg.Logging.Format)
	}
	if cfg.Tracing.Enabled {
		t.Error("expected tracing disabled by default")
	}
	if cfg.Providers.OpenAI.Timeout != DefaultTimeout {
		t.Errorf("expected openai timeout %v, got %v", DefaultTimeout, cfg.Providers.OpenAI.Timeout)
	}
	if cfg.Providers.OpenAI.APIKey != "" {
		t.Error("default config must not carry an api key")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name: "invalid log level",
			mutate: func(cfg *Config) {
				cfg.Logging.Level = "verbose"
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			mutate: func(cfg *Config) {
				cfg.Logging.Format = "xml"
			},
			wantErr: true,
		},
		{
			name: "negative provider timeout",
			mutate: func(cfg *Config) {
				cfg.Providers.Gemini.Timeout = -time.Second
			},
			wantErr: true,
		},
		{
			name: "base url without scheme",
			mutate: func(cfg *Config) {
				cfg.Providers.Custom.BaseURL = "localhost:8080/v1"
			},
			wantErr: true,
		},
		{
			name: "https base url accepted",
			mutate: func(cfg *Config) {
				cfg.Providers.Anthropic.BaseURL = "https://proxy.example.com"
			},
			wantErr: false,
		},
		{
			name: "otlp exporter without endpoint",
			mutate: func(cfg *Config) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.ExporterType = "otlp"
			},
			wantErr: true,
		},
		{
			name: "sample rate out of range",
			mutate: func(cfg *Config) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.ExporterType = "stdout"
				cfg.Tracing.SampleRate = 1.5
			},
			wantErr: true,
		},
		{
			name: "tracing enabled stdout",
			mutate: func(cfg *Config) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.ExporterType = "stdout"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_LoadMissingFileReturnsDefaults(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestLoader_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	cfg := NewDefaultConfig()
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.Providers.OpenAI.Model = "gpt-4o"
	cfg.Providers.Gemini.BaseURL = "https://proxy.example.com/v1beta"
	cfg.Logging.Level = "debug"

	if err := loader.Save(cfg, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Providers.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key not round-tripped: %q", loaded.Providers.OpenAI.APIKey)
	}
	if loaded.Providers.Gemini.BaseURL != "https://proxy.example.com/v1beta" {
		t.Errorf("base url not round-tripped: %q", loaded.Providers.Gemini.BaseURL)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("log level not round-tripped: %q", loaded.Logging.Level)
	}
}

func TestLoader_SaveRestrictsPermissions(t *testing.T) {
	dir := t.TempDir()
	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	if err := loader.Save(NewDefaultConfig(), ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(loader.DefaultConfigPath())
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}

	data, err := os.ReadFile(loader.DefaultConfigPath())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Parley Configuration") {
		t.Error("saved config missing header comment")
	}
}

func TestLoader_LoadFromFileMissing(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	if _, err := loader.LoadFromFile(filepath.Join(loader.ConfigDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoader_LoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("providers: [not a map"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := loader.Load(""); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestLoader_Paths(t *testing.T) {
	dir := t.TempDir()
	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	if loader.ConfigDir() != dir {
		t.Errorf("ConfigDir() = %q, want %q", loader.ConfigDir(), dir)
	}
	if loader.DefaultConfigPath() != filepath.Join(dir, "config.yaml") {
		t.Errorf("DefaultConfigPath() = %q", loader.DefaultConfigPath())
	}
	if loader.DefaultDatabasePath() != filepath.Join(dir, "parley.db") {
		t.Errorf("DefaultDatabasePath() = %q", loader.DefaultDatabasePath())
	}
}
