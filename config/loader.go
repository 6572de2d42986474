package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/apikit/client"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/validation"
)

const defaultEnvPrefix = "APIKIT"

// Settings aggregates the configuration of all apikit components.
type Settings struct {
	Client client.Config `yaml:"client" mapstructure:"client"`
	Logger logger.Config `yaml:"logger" mapstructure:"logger"`
}

// LoadOptions controls where settings are read from.
type LoadOptions struct {
	// ConfigFile is an explicit config file path. Empty searches the
	// working directory for config.yaml, config.yml, or
	// config/config.yaml.
	ConfigFile string
	// EnvFile is an explicit .env path. Empty loads ./.env when it
	// exists.
	EnvFile string
	// EnvPrefix overrides the environment variable prefix. Defaults to
	// APIKIT (e.g. APIKIT_CLIENT_BASE_URL).
	EnvPrefix string
}

// Load reads, defaults, and validates settings.
func Load(opts LoadOptions) (*Settings, error) {
	loadEnvFile(opts.EnvFile)

	v := viper.New()
	bindDefaults(v)

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = defaultEnvPrefix
	}
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := resolveConfigFile(opts.ConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	} else if opts.ConfigFile != "" {
		return nil, fmt.Errorf("config: file not found: %s", opts.ConfigFile)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: unmarshal settings: %w", err)
	}

	s.Client.ApplyDefaults()
	s.Logger.ApplyDefaults()

	if err := validation.Validate(&s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := s.Logger.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &s, nil
}

// bindDefaults registers every known key so environment variables are
// visible to Unmarshal even without a config file.
func bindDefaults(v *viper.Viper) {
	v.SetDefault("client.base_url", "")
	v.SetDefault("client.timeout", "0s")
	v.SetDefault("client.user_agent", "")
	v.SetDefault("client.retry_transient_errors", false)
	v.SetDefault("client.max_retries", 0)
	v.SetDefault("client.ignore_rate_limit", false)
	v.SetDefault("client.request_id_header", "")
	v.SetDefault("client.enable_tracing", false)
	v.SetDefault("client.pagination.total_header", "")
	v.SetDefault("client.pagination.next_page_header", "")
	v.SetDefault("client.pagination.page_param", "")
	v.SetDefault("client.pagination.per_page_param", "")
	v.SetDefault("client.pagination.per_page", 0)
	v.SetDefault("logger.level", "")
	v.SetDefault("logger.format", "")
	v.SetDefault("logger.output", "")
}

func loadEnvFile(explicit string) {
	path := explicit
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func resolveConfigFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	for _, candidate := range []string{"config.yaml", "config.yml", "config/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
