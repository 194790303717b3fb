package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/posturelab/go-posture/internal/config"
	"github.com/posturelab/go-posture/internal/log"
	"github.com/posturelab/go-posture/pkg/alert"
	"github.com/posturelab/go-posture/pkg/web"
)

func main() {
	// Command line flags
	port := flag.String("port", config.Port(), "HTTP port (or set PORT env)")
	webhookURL := flag.String("webhook", config.AlertWebhookURL(), "Alert webhook URL (or set ALERT_WEBHOOK_URL env)")
	threshold := flag.Int("threshold", config.AlertThreshold(alert.DefaultThreshold), "Alert score threshold 50-95")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	settings := web.DefaultSettings()
	settings.Threshold = *threshold

	var notifier alert.Notifier
	if *webhookURL != "" {
		notifier = alert.NewWebhook(*webhookURL)
		log.Info("alert webhook enabled", "url", *webhookURL)
	}

	server, err := web.NewServer(*port, settings, notifier)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("posture server starting", "port", *port, "threshold", *threshold)
	if err := server.Start(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
