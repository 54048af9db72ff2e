// Package config loads wprefs runtime settings and the persisted keybindings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ihatemodels/wprefs/internal/store"
)

const configName = "config"

// Settings holds the runtime configuration.
type Settings struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`
	Quiet   bool   `mapstructure:"quiet" yaml:"quiet"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

// StoreSettings returns the backend selection for store.Open.
func (s Settings) StoreSettings() store.Settings {
	return store.Settings{Backend: s.Backend, Dir: s.DataDir, DSN: s.DSN}
}

// NewViper returns a viper instance with defaults and WPREFS_* env binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("WPREFS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	dir, err := store.DefaultDir()
	if err != nil {
		dir = store.DirName
	}
	v.SetDefault("backend", store.BackendFile)
	v.SetDefault("data_dir", dir)
	v.SetDefault("dsn", "")
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	return v
}

// Load reads settings from v. When cfgFile is empty, config.yaml in the data
// directory is used if present; a missing default file is not an error.
func Load(v *viper.Viper, cfgFile string) (Settings, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(v.GetString("data_dir"))
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && cfgFile == "":
		case errors.Is(err, os.ErrNotExist) && cfgFile == "":
		default:
			return Settings{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	s.DataDir = filepath.Clean(s.DataDir)
	return s, nil
}

// Validate checks the backend selection.
func (s Settings) Validate() error {
	switch s.Backend {
	case store.BackendFile, store.BackendBolt, store.BackendMemory:
		if s.DataDir == "" && s.Backend != store.BackendMemory {
			return fmt.Errorf("data_dir is required for the %s backend", s.Backend)
		}
	case store.BackendPostgres:
		if s.DSN == "" {
			return fmt.Errorf("dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (expected file, bolt, postgres or memory)", s.Backend)
	}
	return nil
}
