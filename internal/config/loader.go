package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Ning0612/nasbrowser/internal/domain"
)

// EnvPrefix prefixes every environment override (NASBROWSER_ROOT, ...)
const EnvPrefix = "NASBROWSER"

// DefaultConfigPaths returns the default paths to search for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
		"./configs",
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "nasbrowser"))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "nasbrowser"))
	}

	return paths
}

// Load reads the configuration.
// If path is empty, default locations are searched for config.yaml and a
// missing file means defaults plus environment; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		switch {
		case missing && path != "":
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		case missing:
			// defaults apply
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
		}
	}

	return decode(v)
}

// LoadFromString parses configuration from a YAML string.
// Defaults and environment overrides apply as in Load.
func LoadFromString(yamlContent string) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("root", DefaultRoot)
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("root_label", DefaultRootLabel)
	v.SetDefault("max_upload_mb", DefaultMaxUploadMB)
	v.SetDefault("pid_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "./logs/nasbrowser.log")
	v.SetDefault("log.file.max_size_mb", 10)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// BASE_DIR is the historical name of the root variable
	_ = v.BindEnv("root", EnvPrefix+"_ROOT", "BASE_DIR")

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	cfg.Root = ExpandPath(cfg.Root)
	cfg.PIDFile = ExpandPath(cfg.PIDFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
