package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type ServerConfig struct {
	HTTPAddr string
	DBDSN    string
	SeedMenu bool

	// Locale drives name collation in menu listings.
	Locale string

	IntentProvider string
	IntentModel    string
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	IntentTimeout  time.Duration

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	SilenceWindow   time.Duration
	TextClearWindow time.Duration
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPAddr:        getenvDefault("KIOSK_HTTP_ADDR", ":8080"),
		DBDSN:           os.Getenv("DB_DSN"),
		SeedMenu:        getenvBoolDefault("KIOSK_SEED_MENU", true),
		Locale:          getenvDefault("KIOSK_LOCALE", "ko"),
		IntentProvider:  getenvDefault("INTENT_PROVIDER", "openai"),
		IntentModel:     getenvDefault("INTENT_MODEL", "gpt-4o"),
		OpenAIBaseURL:   getenvDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		IntentTimeout:   time.Duration(getenvIntDefault("INTENT_TIMEOUT_SECONDS", 15)) * time.Second,
		MQTTBrokerURL:   getenvDefault("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:    getenvDefault("KIOSK_MQTT_CLIENT_ID", "kiosk-server"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: getenvDefault("MQTT_TOPIC_PREFIX", "kiosk"),
		SilenceWindow:   time.Duration(getenvIntDefault("SILENCE_WINDOW_MS", 2000)) * time.Millisecond,
		TextClearWindow: time.Duration(getenvIntDefault("TEXT_CLEAR_WINDOW_MS", 5000)) * time.Millisecond,
	}

	if cfg.DBDSN == "" {
		return ServerConfig{}, fmt.Errorf("DB_DSN is required")
	}
	if cfg.IntentProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return ServerConfig{}, fmt.Errorf("OPENAI_API_KEY is required when INTENT_PROVIDER=openai")
	}

	return cfg, nil
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvBoolDefault(key string, val bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return val
	}
	return b
}
