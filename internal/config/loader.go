package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load builds the application configuration. cfgFile, when non-empty,
// names an explicit config file; otherwise well-known locations are
// searched. Environment variables use the CLIPCAL_ prefix with
// underscores for nesting (CLIPCAL_SERVER_PORT, CLIPCAL_AILINK_API_KEY).
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("clipcal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/clipcal")
		v.AddConfigPath("/etc/clipcal")
	}

	v.SetEnvPrefix("CLIPCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("admission.limits.burst_requests", 5)
	v.SetDefault("admission.limits.burst_window", 10*time.Second)
	v.SetDefault("admission.limits.per_minute", 10)
	v.SetDefault("admission.limits.per_hour", 50)
	v.SetDefault("admission.limits.per_day", 200)
	v.SetDefault("admission.limits.ai_per_hour", 20)
	v.SetDefault("admission.limits.ai_per_day", 100)
	v.SetDefault("admission.limits.failures_per_hour", 10)

	v.SetDefault("ailink.provider", "openai")
	v.SetDefault("ailink.base_url", "https://api.openai.com/v1")
	// Empty defaults so the env bindings resolve (CLIPCAL_AILINK_API_KEY,
	// CLIPCAL_ADMIN_TOKEN).
	v.SetDefault("ailink.api_key", "")
	v.SetDefault("admin.token", "")
	v.SetDefault("ailink.model", "gpt-4o-mini")
	v.SetDefault("ailink.temperature", 0.3)
	v.SetDefault("ailink.max_tokens", 500)
	v.SetDefault("ailink.max_retries", 2)
	v.SetDefault("ailink.retry_base_delay", time.Second)
	v.SetDefault("ailink.timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Metrics.Enabled && (cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", cfg.Metrics.Port)
	}
	if cfg.AILink.MaxRetries < 0 {
		return fmt.Errorf("invalid ailink max_retries: %d", cfg.AILink.MaxRetries)
	}
	return nil
}
