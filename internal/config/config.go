// Package config provides configuration helpers for go-posture commands.
package config

import (
	"os"
	"strconv"
)

// Default server configuration.
const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"
)

// Port returns the HTTP port from the PORT env var.
// Falls back to the default if not set.
func Port() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// LogLevel returns the log level from the LOG_LEVEL env var or default.
func LogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return DefaultLogLevel
}

// AlertWebhookURL returns the alert webhook URL from ALERT_WEBHOOK_URL.
// Empty means webhook delivery is disabled.
func AlertWebhookURL() string {
	return os.Getenv("ALERT_WEBHOOK_URL")
}

// AlertThreshold returns the score threshold from ALERT_THRESHOLD.
// Falls back to the provided default when unset or unparsable.
func AlertThreshold(defaultThreshold int) int {
	if raw := os.Getenv("ALERT_THRESHOLD"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultThreshold
}
