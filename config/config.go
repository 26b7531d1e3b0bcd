package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// External property-management (booking) API.
	PMSBaseURL  string `mapstructure:"PMS_BASE_URL"`
	PMSAPIToken string `mapstructure:"PMS_API_TOKEN"`

	// Payment rails.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Shared secret for the inbound tool-call endpoint.
	ToolAuthSecret string `mapstructure:"TOOL_AUTH_SECRET"`

	// Webhook that receives asynchronous booking outcomes for the guest.
	NotifyWebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`

	// Recovery poll loop interval in seconds. The poll loop is a backstop
	// for queue tasks lost between restarts; the queue drives normal ticks.
	RecoveryPollSeconds int `mapstructure:"RECOVERY_POLL_SECONDS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("PMS_BASE_URL", "http://localhost:9090")
	viper.SetDefault("PMS_API_TOKEN", "")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("TOOL_AUTH_SECRET", "")
	viper.SetDefault("NOTIFY_WEBHOOK_URL", "")
	viper.SetDefault("RECOVERY_POLL_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
