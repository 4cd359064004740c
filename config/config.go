package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"chatrouter/core/log"
)

const (
	TransportSlack   = "slack"
	TransportDiscord = "discord"
)

type SlackConfig struct {
	BotToken      string
	AppToken      string
	SigningSecret string
}

// IsConfigured returns true if all required Slack configuration is present
func (c SlackConfig) IsConfigured() bool {
	return c.BotToken != "" &&
		c.AppToken != "" &&
		c.SigningSecret != ""
}

type DiscordConfig struct {
	BotToken string
}

// IsConfigured returns true if all required Discord configuration is present
func (c DiscordConfig) IsConfigured() bool {
	return c.BotToken != ""
}

type AppConfig struct {
	Transport          string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	LogLevel           string
	AlertWebhookURL    string
	ServerLogsURL      string

	DedupWindow     time.Duration
	SweepInterval   time.Duration
	RegistryWorkers int

	SlackConfig   SlackConfig
	DiscordConfig DiscordConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("⚠️ Could not load .env file, continuing with system env vars")
	}

	transport, err := getEnvRequired("TRANSPORT")
	if err != nil {
		return nil, err
	}

	dedupWindow, err := getDurationWithDefault("DEDUP_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	sweepInterval, err := getDurationWithDefault("DEDUP_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	registryWorkers, err := getIntWithDefault("REGISTRY_WORKERS", 0)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		Transport:          transport,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		AlertWebhookURL:    os.Getenv("ALERT_WEBHOOK_URL"),
		ServerLogsURL:      os.Getenv("SERVER_LOGS_URL"),

		DedupWindow:     dedupWindow,
		SweepInterval:   sweepInterval,
		RegistryWorkers: registryWorkers,

		SlackConfig: SlackConfig{
			BotToken:      os.Getenv("SLACK_BOT_TOKEN"),
			AppToken:      os.Getenv("SLACK_APP_TOKEN"),
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		},

		DiscordConfig: DiscordConfig{
			BotToken: os.Getenv("DISCORD_BOT_TOKEN"),
		},
	}

	if err := config.validateTransport(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *AppConfig) validateTransport() error {
	switch c.Transport {
	case TransportSlack:
		if !c.SlackConfig.IsConfigured() {
			return fmt.Errorf("slack transport selected but SLACK_BOT_TOKEN, SLACK_APP_TOKEN and SLACK_SIGNING_SECRET are not all set")
		}
		log.Info("✅ Slack transport configured")
	case TransportDiscord:
		if !c.DiscordConfig.IsConfigured() {
			return fmt.Errorf("discord transport selected but DISCORD_BOT_TOKEN is not set")
		}
		log.Info("✅ Discord transport configured")
	default:
		return fmt.Errorf("unknown TRANSPORT %q, expected %q or %q", c.Transport, TransportSlack, TransportDiscord)
	}
	return nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
	}
	return n, nil
}
