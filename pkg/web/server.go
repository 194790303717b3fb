// Package web exposes the posture pipeline to hosts: a websocket ingest
// endpoint for pose-estimator clients, a websocket event stream for
// score/alert consumers, and a small REST API for session control and
// settings.
package web

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/posturelab/go-posture/internal/log"
	"github.com/posturelab/go-posture/pkg/alert"
	"github.com/posturelab/go-posture/pkg/calibration"
	"github.com/posturelab/go-posture/pkg/hub"
	"github.com/posturelab/go-posture/pkg/protocol"
	"github.com/posturelab/go-posture/pkg/session"
)

// Settings is the runtime-tunable pipeline configuration. Updating
// settings rebuilds the session with the new values; the captured
// baseline carries over.
type Settings struct {
	Threshold             int                  `json:"threshold"`
	CooldownMs            int64                `json:"cooldown_ms"`
	CalibrationDurationMs int64                `json:"calibration_duration_ms"`
	Exercise              calibration.Exercise `json:"exercise"`
	AlertsEnabled         bool                 `json:"alerts_enabled"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Threshold:             alert.DefaultThreshold,
		CooldownMs:            alert.DefaultCooldown.Milliseconds(),
		CalibrationDurationMs: calibration.DefaultDuration.Milliseconds(),
		Exercise:              calibration.ExerciseSitTall,
		AlertsEnabled:         true,
	}
}

// Validate checks settings bounds before they are applied.
func (s Settings) Validate() error {
	if s.Threshold < alert.MinThreshold || s.Threshold > alert.MaxThreshold {
		return fmt.Errorf("threshold %d outside [%d,%d]", s.Threshold, alert.MinThreshold, alert.MaxThreshold)
	}
	if s.CooldownMs < 5000 {
		return fmt.Errorf("cooldown %dms below 5s minimum", s.CooldownMs)
	}
	if s.CalibrationDurationMs < 1000 || s.CalibrationDurationMs > 10000 {
		return fmt.Errorf("calibration duration %dms outside [1s,10s]", s.CalibrationDurationMs)
	}
	switch s.Exercise {
	case calibration.ExerciseSitTall, calibration.ExerciseNeckTilt, calibration.ExerciseNeckRotation:
	default:
		return fmt.Errorf("unknown exercise %q", s.Exercise)
	}
	return nil
}

// Server hosts the pipeline. One server owns one session at a time.
type Server struct {
	app  *fiber.App
	port string

	mu       sync.RWMutex
	settings Settings
	sess     *session.Session

	// Hub for websocket event broadcast (thread-safe!)
	events *hub.Hub

	// Optional extra alert consumer (e.g. webhook)
	notifier alert.Notifier
}

// NewServer creates a web server with the given settings. notifier may
// be nil.
func NewServer(port string, settings Settings, notifier alert.Notifier) (*Server, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("web: invalid settings: %w", err)
	}

	s := &Server{
		port:     port,
		settings: settings,
		events:   hub.New("events"),
		notifier: notifier,
	}

	sess, err := s.newSession(settings, nil)
	if err != nil {
		return nil, err
	}
	s.sess = sess

	app := fiber.New(fiber.Config{
		AppName:               "Posture Pipeline",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/session/start", s.handleSessionStart)
	api.Post("/session/stop", s.handleSessionStop)
	api.Post("/calibration/start", s.handleCalibrationStart)
	api.Post("/calibration/cancel", s.handleCalibrationCancel)
	api.Get("/settings", s.handleGetSettings)
	api.Put("/settings", s.handlePutSettings)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s, nil
}

// newSession builds a session wired to the event hub, carrying over a
// previous baseline when one exists.
func (s *Server) newSession(settings Settings, baseline *calibration.Baseline) (*session.Session, error) {
	cfg := session.DefaultConfig()
	cfg.Alert.Threshold = settings.Threshold
	cfg.Alert.Cooldown = time.Duration(settings.CooldownMs) * time.Millisecond
	cfg.AlertsEnabled = settings.AlertsEnabled
	cfg.AlertNotifier = s.notifier

	sess, err := session.New(cfg, session.Listener{
		OnScore:               s.broadcastScore,
		OnCalibrationProgress: s.broadcastCalibrationProgress,
		OnCalibrationResult:   s.broadcastCalibrationResult,
		OnAlert:               s.broadcastAlert,
	})
	if err != nil {
		return nil, err
	}
	if baseline != nil {
		sess.SetBaseline(baseline)
	}
	return sess, nil
}

// session returns the current session under the read lock.
func (s *Server) session() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// Start starts the web server. Blocks until shutdown.
func (s *Server) Start() error {
	go s.events.Run()
	log.Info("web server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the server and the active session.
func (s *Server) Shutdown() error {
	s.session().Stop()
	return s.app.Shutdown()
}

func (s *Server) broadcastScore(u session.ScoreUpdate) {
	s.broadcast(protocol.NewScoreMessage(u))
}

func (s *Server) broadcastCalibrationProgress(p calibration.Progress) {
	s.broadcast(protocol.NewCalibrationProgressMessage(p))
}

func (s *Server) broadcastCalibrationResult(r calibration.Result) {
	s.broadcast(protocol.NewCalibrationResultMessage(r))
}

func (s *Server) broadcastAlert(ev alert.Event) {
	s.broadcast(protocol.NewAlertMessage(ev))
}

func (s *Server) broadcast(msg *protocol.Message, err error) {
	if err != nil {
		log.Error("web: encode event failed", "error", err)
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		log.Error("web: encode event failed", "error", err)
		return
	}
	s.events.Broadcast(data)
}
