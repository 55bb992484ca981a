package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/config"
	"github.com/danieljhkim/branchtabs/internal/engine"
	"github.com/danieljhkim/branchtabs/internal/fsops"
	"github.com/danieljhkim/branchtabs/internal/log"
)

// loadConfig resolves paths and reads config.yaml, applying --log-level.
func loadConfig() (*config.Paths, *config.Config, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return paths, cfg, nil
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() (*engine.Engine, error) {
	paths, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// Ensure directories exist
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logger := log.New(log.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Out:    os.Stderr,
	})

	return engine.New(paths, cfg, fsops.NewRealFS(), clock.RealClock{}, nil, logger), nil
}

// workingDir returns the directory commands resolve the repository from.
func workingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
