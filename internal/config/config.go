package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Ning0612/nasbrowser/internal/domain"
	"github.com/Ning0612/nasbrowser/internal/logger"
)

const (
	DefaultRoot        = "/mnt/nas"
	DefaultListen      = "0.0.0.0:5001"
	DefaultRootLabel   = "Root"
	DefaultMaxUploadMB = 1024
)

// Config represents the complete configuration for nasbrowser
type Config struct {
	// Root is the directory everything is served from
	Root string `mapstructure:"root"`

	// Listen is the HTTP listen address (host:port)
	Listen string `mapstructure:"listen"`

	// RootLabel names the first breadcrumb
	RootLabel string `mapstructure:"root_label"`

	// MaxUploadMB caps the size of one upload request body
	MaxUploadMB int64 `mapstructure:"max_upload_mb"`

	// PIDFile is written while serving when set; "stop" signals the process it names
	PIDFile string `mapstructure:"pid_file"`

	// Categories adds extensions to the built-in classification table
	Categories map[string][]string `mapstructure:"categories"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig 日誌設定
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig 日誌檔案設定
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("%w: root cannot be empty", domain.ErrConfigInvalid)
	}

	_, port, err := net.SplitHostPort(c.Listen)
	if err != nil {
		return fmt.Errorf("%w: listen address %q: %v", domain.ErrConfigInvalid, c.Listen, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("%w: listen port %q out of range", domain.ErrConfigInvalid, port)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: max_upload_mb must be positive", domain.ErrConfigInvalid)
	}

	for name := range c.Categories {
		category := domain.FileCategory(strings.ToLower(name))
		if !category.IsValid() {
			return fmt.Errorf("%w: unknown file category: %s", domain.ErrConfigInvalid, name)
		}
	}

	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("%w: invalid log level: %s", domain.ErrConfigInvalid, c.Log.Level)
	}
	if _, ok := logger.ParseFormat(c.Log.Format); !ok {
		return fmt.Errorf("%w: invalid log format: %s", domain.ErrConfigInvalid, c.Log.Format)
	}
	if c.Log.File.Enabled && c.Log.File.Path == "" {
		return fmt.Errorf("%w: log file enabled without a path", domain.ErrConfigInvalid)
	}

	return nil
}

// CategoryOverrides returns the configured extensions keyed by category
func (c *Config) CategoryOverrides() map[domain.FileCategory][]string {
	if len(c.Categories) == 0 {
		return nil
	}
	overrides := make(map[domain.FileCategory][]string, len(c.Categories))
	for name, exts := range c.Categories {
		category := domain.FileCategory(strings.ToLower(name))
		overrides[category] = append(overrides[category], exts...)
	}
	return overrides
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// LoggerConfig builds the logger configuration: stdout always, plus a
// rotated file when enabled
func (c *Config) LoggerConfig() logger.Config {
	level, _ := logger.ParseLevel(c.Log.Level)
	format, _ := logger.ParseFormat(c.Log.Format)

	cfg := logger.Config{
		Level:   level,
		Format:  format,
		Outputs: []logger.OutputConfig{{Type: logger.OutputStdout}},
		File: logger.FileConfig{
			Enabled:    c.Log.File.Enabled,
			Path:       ExpandPath(c.Log.File.Path),
			MaxSizeMB:  c.Log.File.MaxSizeMB,
			MaxAgeDays: c.Log.File.MaxAgeDays,
			MaxBackups: c.Log.File.MaxBackups,
			Compress:   c.Log.File.Compress,
		},
	}
	if c.Log.File.Enabled {
		cfg.Outputs = append(cfg.Outputs, logger.OutputConfig{Type: logger.OutputFile})
	}
	return cfg
}

// EnsureRoot makes Root absolute and creates it when absent
func (c *Config) EnsureRoot() error {
	root, err := filepath.Abs(ExpandPath(c.Root))
	if err != nil {
		return fmt.Errorf("failed to resolve root %q: %w", c.Root, err)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("failed to create root %q: %w", root, err)
	}

	c.Root = root
	return nil
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
