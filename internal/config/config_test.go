package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		env         map[string]string
		wantExpiry  time.Duration
		wantBackend string
		wantLevel   string
		wantErr     string
	}{
		{
			name:        "missing file uses defaults",
			wantExpiry:  DefaultExpiry,
			wantBackend: BackendJSON,
			wantLevel:   "info",
		},
		{
			name:        "file overrides defaults",
			content:     "expiry: 72h\nbackend: sqlite\nlog:\n  level: debug\n",
			wantExpiry:  72 * time.Hour,
			wantBackend: BackendSQLite,
			wantLevel:   "debug",
		},
		{
			name:        "env overrides file",
			content:     "backend: sqlite\nlog:\n  level: debug\n",
			env:         map[string]string{"BRANCHTABS_LOG_LEVEL": "warn", "BRANCHTABS_BACKEND": "json"},
			wantExpiry:  DefaultExpiry,
			wantBackend: BackendJSON,
			wantLevel:   "warn",
		},
		{
			name:    "unknown backend",
			content: "backend: postgres\n",
			wantErr: "backend must be",
		},
		{
			name:    "non-positive expiry",
			content: "expiry: 0s\n",
			wantErr: "expiry must be positive",
		},
		{
			name:    "bad log format",
			content: "log:\n  format: xml\n",
			wantErr: "log.format",
		},
		{
			name:    "malformed yaml",
			content: "expiry: [\n",
			wantErr: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BRANCHTABS_LOG_LEVEL", "")
			t.Setenv("BRANCHTABS_BACKEND", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Expiry != tt.wantExpiry {
				t.Errorf("Expiry = %v, want %v", cfg.Expiry, tt.wantExpiry)
			}
			if cfg.Backend != tt.wantBackend {
				t.Errorf("Backend = %q, want %q", cfg.Backend, tt.wantBackend)
			}
			if cfg.Log.Level != tt.wantLevel {
				t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, tt.wantLevel)
			}
		})
	}
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	t.Setenv("BRANCHTABS_LOG_LEVEL", "")
	t.Setenv("BRANCHTABS_BACKEND", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Expiry = 7 * 24 * time.Hour
	cfg.Backend = BackendSQLite

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Expiry != cfg.Expiry || loaded.Backend != cfg.Backend {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}
