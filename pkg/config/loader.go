package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("SAATHI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without SAATHI_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "SAATHI_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "SAATHI_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "SAATHI_REDIS_URL")
	viper.BindEnv("nats.url", "NATS_URL", "SAATHI_NATS_URL")
	viper.BindEnv("rabbitmq.url", "RABBITMQ_URL", "SAATHI_RABBITMQ_URL")
	viper.BindEnv("jwt.secret", "JWT_SECRET", "SAATHI_JWT_SECRET")
	viper.BindEnv("gemini.api_key", "GEMINI_API_KEY", "SAATHI_GEMINI_API_KEY")
	viper.BindEnv("whatsapp.account_sid", "TWILIO_ACCOUNT_SID")
	viper.BindEnv("whatsapp.auth_token", "TWILIO_AUTH_TOKEN")
	viper.BindEnv("alerts.sendgrid_api_key", "SENDGRID_API_KEY")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("app.environment", "SAATHI_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file: env vars and defaults only
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "saathi-core")
	viper.SetDefault("app.environment", "development")

	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.read_timeout", 15*time.Second)
	viper.SetDefault("http.write_timeout", 30*time.Second)
	viper.SetDefault("http.idle_timeout", time.Minute)

	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.max_idle_conns", 10)

	viper.SetDefault("nats.inbound_subject", "saathi.messages.inbound")
	viper.SetDefault("nats.outbound_subject", "saathi.messages.outbound")
	viper.SetDefault("rabbitmq.snapshot_queue", "saathi.earnings.snapshots")

	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.timeout", 20*time.Second)

	viper.SetDefault("assistant.confidence_floor", 0.6)
	viper.SetDefault("assistant.max_reply_lines", 4)
	viper.SetDefault("assistant.max_complaint_words", 200)
	viper.SetDefault("assistant.classify_timeout", 10*time.Second)
	viper.SetDefault("assistant.synthesize_timeout", 15*time.Second)

	viper.SetDefault("whatsapp.provider", "twilio")

	viper.SetDefault("jwt.access_token_duration", 15*time.Minute)
	viper.SetDefault("jwt.refresh_token_duration", 7*24*time.Hour)

	viper.SetDefault("prometheus.enabled", true)
	viper.SetDefault("prometheus.path", "/metrics")

	viper.SetDefault("opentelemetry.service_name", "saathi-core")
	viper.SetDefault("opentelemetry.jaeger.endpoint", "http://jaeger:14268/api/traces")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.max_requests", 60)
	viper.SetDefault("rate_limiting.window", time.Minute)
}
