package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/3leaps/gostratus/pkg/pathmap"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// GOSTRATUS_GATEWAY_BASE_URL.
const EnvPrefix = "GOSTRATUS"

// Load reads configuration from defaults, the optional config file, and
// the environment. configFile may be empty; the default location is
// $XDG_CONFIG_HOME/gostratus/config.yaml (or ~/.config/gostratus).
func Load(ctx context.Context, configFile string) (*Config, error) {
	_ = ctx

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := defaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		// A missing default config file is fine; defaults + env apply.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.token", "")
	v.SetDefault("gateway.tenant", "")
	v.SetDefault("gateway.username", "")
	v.SetDefault("gateway.timeout", 30*time.Second)
	v.SetDefault("gateway.rate_limit", 0.0)

	v.SetDefault("storage.scheme", pathmap.DefaultScheme)
	v.SetDefault("storage.personal_system_id", pathmap.DefaultPersonalSystemID)
	v.SetDefault("storage.community_system_id", pathmap.DefaultCommunitySystemID)
	v.SetDefault("storage.project_system_prefix", pathmap.DefaultProjectSystemPrefix)

	v.SetDefault("monitor.interval", 30*time.Second)
	v.SetDefault("monitor.timeout_minutes", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "STRUCTURED")

	v.SetDefault("data_dir", "")
}

func defaultConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "gostratus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gostratus"), nil
}

func defaultDataDir() string {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, "gostratus")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gostratus")
	}
	return filepath.Join(home, ".local", "share", "gostratus")
}
