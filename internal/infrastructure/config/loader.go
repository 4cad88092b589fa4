package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/shlaunch/assets"
	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/pkg/filesystem"
	"github.com/doeshing/shlaunch/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "SHLAUNCH_CONFIG"

// FileLoader loads YAML configuration from ~/.shlaunch/config.yaml (overridable via SHLAUNCH_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded default.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := writeDefault(path); err != nil {
			return domain.Config{}, err
		}
		data = assets.DefaultConfigYAML
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return HydrateDefaults(cfg), nil
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// DefaultConfig parses the embedded default configuration.
func DefaultConfig() domain.Config {
	var cfg domain.Config
	_ = yaml.Unmarshal(assets.DefaultConfigYAML, &cfg)
	return HydrateDefaults(cfg)
}

// HydrateDefaults fills fields that older or hand-edited files leave empty.
func HydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Preferences.MaxHistorySize == 0 {
		cfg.Preferences.MaxHistorySize = domain.DefaultMaxHistorySize
	}
	if cfg.Preferences.DefaultShell == "" {
		cfg.Preferences.DefaultShell = domain.DefaultShell
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = domain.BackendFile
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = filepath.Join(filesystem.AppDir(), "history")
	}
	if cfg.Execution.Timeout == "" {
		cfg.Execution.Timeout = domain.DefaultExecutionTimeout.String()
	}
	if cfg.Execution.DirectorySource == "" {
		cfg.Execution.DirectorySource = domain.DirectorySourceAuto
	}
	return cfg
}

// Save writes cfg back to the loader's path.
func (l *FileLoader) Save(cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
