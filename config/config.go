package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the issue triage pipeline service.
type Config struct {
	// Server configuration
	Port string

	// Classifier configuration
	ClassifierProvider string // "http" or "stub"
	ClassifierURL      string
	ClassifierTimeout  time.Duration

	// Translation configuration
	TranslationEnabled bool
	TranslateURL       string
	TranslateTimeout   time.Duration
	PivotLanguage      string
	DisplayLanguage    string

	// Session configuration
	RunCapacity  int
	DisplayLimit int

	// RabbitMQ configuration (empty URL disables publishing)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server defaults
		Port: getEnv("PORT", "8080"),

		// Classifier defaults
		ClassifierProvider: getEnv("CLASSIFIER_PROVIDER", "http"),
		ClassifierURL:      getEnv("CLASSIFIER_URL", "http://localhost:9000"),
		ClassifierTimeout:  getDurationEnv("CLASSIFIER_TIMEOUT", 60*time.Second),

		// Translation defaults (disabled unless a service is configured)
		TranslationEnabled: getBoolEnv("TRANSLATION_ENABLED", false),
		TranslateURL:       getEnv("TRANSLATE_URL", ""),
		TranslateTimeout:   getDurationEnv("TRANSLATE_TIMEOUT", 10*time.Second),
		PivotLanguage:      getEnv("PIVOT_LANGUAGE", "en"),
		DisplayLanguage:    getEnv("DISPLAY_LANGUAGE", "en"),

		// Session defaults
		RunCapacity:  getIntEnv("RUN_CAPACITY", 20),
		DisplayLimit: getIntEnv("DISPLAY_LIMIT", 50),

		// RabbitMQ defaults
		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "triage"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "triage.run-completed"),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
