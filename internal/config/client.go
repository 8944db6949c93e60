package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig configures the fieldctl terminal client.
type ClientConfig struct {
	// APIBaseURL is the root URL of the fieldops API.
	APIBaseURL string `mapstructure:"api_base_url"`
	// StoragePath is the local key-value file holding the token and notification settings.
	StoragePath string `mapstructure:"storage_path"`
	// LogLevel is the zap level for client diagnostics (default: warn).
	LogLevel string `mapstructure:"log_level"`
	// RequestTimeoutSeconds bounds each API call.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// ClientConfigDir returns the directory holding client config and storage.
func ClientConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fieldctl")
	}
	return filepath.Join(".", ".fieldctl")
}

// SetClientDefaults registers defaults on v.
func SetClientDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://127.0.0.1:8080")
	v.SetDefault("storage_path", filepath.Join(ClientConfigDir(), "storage.json"))
	v.SetDefault("log_level", "warn")
	v.SetDefault("request_timeout_seconds", 15)
}

// LoadClient reads the client config file (if any) and FIELDCTL_* env vars.
func LoadClient(v *viper.Viper, cfgFile string) (*ClientConfig, error) {
	SetClientDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ClientConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FIELDCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RequestTimeout returns the per-call timeout.
func (c ClientConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
