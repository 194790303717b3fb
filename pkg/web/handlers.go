package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/posturelab/go-posture/internal/log"
	"github.com/posturelab/go-posture/pkg/calibration"
	"github.com/posturelab/go-posture/pkg/hub"
	"github.com/posturelab/go-posture/pkg/protocol"
)

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Session  interface{} `json:"session"`
	Settings Settings    `json:"settings"`
	Clients  int         `json:"event_clients"`
}

// handleStatus returns the current session snapshot and settings
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.RLock()
	settings := s.settings
	sess := s.sess
	s.mu.RUnlock()

	return c.JSON(StatusResponse{
		Session:  sess.Status(),
		Settings: settings,
		Clients:  s.events.ClientCount(),
	})
}

// handleSessionStart begins live scoring
func (s *Server) handleSessionStart(c *fiber.Ctx) error {
	sess := s.session()
	sess.Start()
	return c.JSON(fiber.Map{"id": sess.ID(), "running": true})
}

// handleSessionStop halts live scoring; stopping twice is harmless
func (s *Server) handleSessionStop(c *fiber.Ctx) error {
	sess := s.session()
	sess.Stop()
	return c.JSON(fiber.Map{"id": sess.ID(), "running": false})
}

// CalibrationRequest is the body for /api/calibration/start. Zero
// values fall back to the active settings.
type CalibrationRequest struct {
	Exercise   calibration.Exercise `json:"exercise"`
	DurationMs int64                `json:"duration_ms"`
}

// handleCalibrationStart kicks off a baseline capture
func (s *Server) handleCalibrationStart(c *fiber.Ctx) error {
	var req CalibrationRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	s.mu.RLock()
	settings := s.settings
	sess := s.sess
	s.mu.RUnlock()

	if req.Exercise == "" {
		req.Exercise = settings.Exercise
	}
	if req.DurationMs == 0 {
		req.DurationMs = settings.CalibrationDurationMs
	}

	err := sess.Calibrate(req.Exercise, time.Duration(req.DurationMs)*time.Millisecond)
	if err != nil {
		if errors.Is(err, calibration.ErrAlreadyRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"exercise":    req.Exercise,
		"duration_ms": req.DurationMs,
		"state":       sess.CalibrationState(),
	})
}

// handleCalibrationCancel abandons an in-flight capture
func (s *Server) handleCalibrationCancel(c *fiber.Ctx) error {
	sess := s.session()
	sess.CancelCalibration()
	return c.JSON(fiber.Map{"state": sess.CalibrationState()})
}

// handleGetSettings returns the active settings
func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.settings)
}

// handlePutSettings validates and applies new settings. The session is
// rebuilt with the new alert configuration; the baseline carries over.
func (s *Server) handlePutSettings(c *fiber.Ctx) error {
	var settings Settings
	if err := c.BodyParser(&settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := settings.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	old := s.sess
	sess, err := s.newSession(settings, old.Baseline())
	if err != nil {
		s.mu.Unlock()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	s.settings = settings
	s.sess = sess
	s.mu.Unlock()

	old.Stop()
	log.Info("settings updated", "threshold", settings.Threshold, "cooldown_ms", settings.CooldownMs)
	return c.JSON(settings)
}

// handleFramesWS ingests landmark frames from a pose-estimator client.
// Frames are processed synchronously in arrival order.
func (s *Server) handleFramesWS(conn *websocket.Conn) {
	defer conn.Close()
	log.Info("frame producer connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info("frame producer disconnected")
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Debug("frames ws: bad message", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeFrame:
			var fd protocol.FrameData
			if err := msg.ParseData(&fd); err != nil {
				log.Debug("frames ws: bad frame payload", "error", err)
				continue
			}
			frame, err := fd.Frame()
			if err != nil {
				log.Debug("frames ws: invalid frame", "error", err)
				continue
			}
			s.session().Process(frame)

		case protocol.TypePing:
			if pong, err := protocol.NewPongMessage(); err == nil {
				if data, err := pong.Bytes(); err == nil {
					conn.WriteMessage(websocket.TextMessage, data)
				}
			}
		}
	}
}

// handleEventsWS streams pipeline events to a consumer
func (s *Server) handleEventsWS(conn *websocket.Conn) {
	client := hub.NewClient(s.events, conn)
	client.Run()
}
