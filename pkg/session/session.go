// Package session owns one posture-tracking run end to end: the
// calibration buffer, the smoothing and stuck-detection state, and the
// alert monitor all live on a single Session instance that the host
// passes around explicitly. Nothing in the pipeline is global.
//
// Frames are pushed in via Process and handled synchronously in arrival
// order; outbound events are delivered through the registered Listener.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/posturelab/go-posture/internal/log"
	"github.com/posturelab/go-posture/pkg/alert"
	"github.com/posturelab/go-posture/pkg/calibration"
	"github.com/posturelab/go-posture/pkg/landmark"
	"github.com/posturelab/go-posture/pkg/metric"
	"github.com/posturelab/go-posture/pkg/score"
	"github.com/posturelab/go-posture/pkg/stability"
)

// ScoreUpdate is one smoothed score sample, emitted on every smoothing
// update (every third processed frame).
type ScoreUpdate struct {
	Value       int          `json:"value"`
	Flags       []score.Flag `json:"flags,omitempty"`
	Stuck       bool         `json:"stuck"`
	TimestampMs int64        `json:"timestamp_ms"`
}

// Listener groups the session's outbound events. Any field may be nil.
// Score and alert callbacks run on the caller of Process; calibration
// callbacks run on the calibrator's goroutine.
type Listener struct {
	OnScore               func(ScoreUpdate)
	OnCalibrationProgress func(calibration.Progress)
	OnCalibrationResult   func(calibration.Result)
	OnAlert               func(alert.Event)
}

// Config tunes a session. DefaultConfig covers the common case.
type Config struct {
	// Alert configures the low-score monitor.
	Alert alert.Config

	// AlertsEnabled gates alert observation without tearing down the
	// monitor state.
	AlertsEnabled bool

	// SuppressAlertsWhenStuck skips alert observation while the
	// landmark stream looks frozen, so tracking loss cannot fire a
	// posture alert.
	SuppressAlertsWhenStuck bool

	// AlertNotifier, when set, additionally receives fired alerts
	// (e.g. a webhook). The Listener's OnAlert fires either way.
	AlertNotifier alert.Notifier
}

// DefaultConfig returns the stock session configuration.
func DefaultConfig() Config {
	return Config{
		Alert:                   alert.DefaultConfig(),
		AlertsEnabled:           true,
		SuppressAlertsWhenStuck: true,
	}
}

// Session is one tracking/exercise run. Create with New, feed with
// Process, and tear down with Stop. A Session is safe for concurrent
// use, though the pipeline itself processes one frame at a time.
type Session struct {
	id string

	mu       sync.Mutex
	cfg      Config
	listener Listener

	latest     *landmark.Frame
	calibrator *calibration.Calibrator
	baseline   *calibration.Baseline

	smoother *stability.Smoother
	stuck    *stability.StuckDetector
	monitor  *alert.Monitor

	running     bool
	frames      uint64
	skipped     uint64
	lastScore   ScoreUpdate
	lastAlertMs int64

	now func() time.Time
}

// New creates a stopped session. Returns an error if the alert
// configuration is out of bounds.
func New(cfg Config, listener Listener) (*Session, error) {
	monitor, err := alert.NewMonitor(cfg.Alert, cfg.AlertNotifier)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.New().String(),
		cfg:      cfg,
		listener: listener,
		smoother: stability.NewSmoother(),
		stuck:    stability.NewStuckDetector(),
		monitor:  monitor,
		now:      time.Now,
	}
	s.calibrator = calibration.New(s, calibration.Callbacks{
		OnProgress: s.onCalibrationProgress,
		OnResult:   s.onCalibrationResult,
	})
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Latest implements calibration.FrameSource: the most recently pushed
// frame, or nil before the first one. Never blocks.
func (s *Session) Latest() *landmark.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Start resets all per-run state and begins live scoring. Frames pushed
// before Start only feed calibration.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = true
	s.frames = 0
	s.skipped = 0
	s.lastScore = ScoreUpdate{}
	s.lastAlertMs = 0
	s.smoother.Reset()
	s.stuck.Reset()
	s.monitor.Start()
	log.Info("session started", "session", s.id)
}

// Stop halts live scoring, cancels any in-flight calibration, and
// clears alert state. Idempotent: stopping a stopped session is a
// no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.monitor.Stop()
	s.mu.Unlock()

	s.calibrator.Reset()
	if wasRunning {
		log.Info("session stopped", "session", s.id)
	}
}

// Running reports whether live scoring is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Calibrate begins a baseline capture for the given exercise. The
// session keeps feeding its latest frame to the calibrator; progress
// and the final result arrive through the Listener. Returns
// calibration.ErrAlreadyRunning if a capture is in flight.
func (s *Session) Calibrate(exercise calibration.Exercise, duration time.Duration) error {
	return s.calibrator.Start(exercise, duration)
}

// CancelCalibration abandons an in-flight capture. Idempotent.
func (s *Session) CancelCalibration() {
	s.calibrator.Reset()
}

// CalibrationState returns the calibrator's lifecycle phase.
func (s *Session) CalibrationState() calibration.State {
	return s.calibrator.State()
}

// Baseline returns the active baseline, or nil before a successful
// calibration.
func (s *Session) Baseline() *calibration.Baseline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

// SetBaseline installs a previously captured baseline, superseding the
// current one. Used by hosts restoring a baseline across restarts.
func (s *Session) SetBaseline(b *calibration.Baseline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseline = b
}

// Process feeds one landmark frame through the pipeline. The frame
// always refreshes the calibration source; when the session is running
// and a usable baseline exists it is also scored. Frames with missing
// landmarks are counted and skipped, never scored.
func (s *Session) Process(frame *landmark.Frame) {
	if frame == nil {
		return
	}

	s.mu.Lock()
	s.latest = frame

	if !s.running || s.baseline == nil || s.baseline.PostureRatio <= 0 {
		s.mu.Unlock()
		return
	}
	s.frames++

	ratio, err := metric.PostureRatio(frame)
	if err != nil {
		s.skipped++
		s.mu.Unlock()
		return
	}

	nowMs := frame.TimestampMs
	if nowMs == 0 {
		nowMs = s.now().UnixMilli()
	}

	stuck := s.stuck.Observe(ratio, nowMs)
	raw := score.Ratio(s.baseline.PostureRatio, ratio)
	smoothed, updated := s.smoother.Observe(raw.Value)

	var (
		update  ScoreUpdate
		fired   bool
		alertEv alert.Event
	)
	if updated {
		update = ScoreUpdate{
			Value:       smoothed,
			Flags:       raw.Flags,
			Stuck:       stuck,
			TimestampMs: nowMs,
		}
		s.lastScore = update

		enabled := s.cfg.AlertsEnabled && !(s.cfg.SuppressAlertsWhenStuck && stuck)
		alertEv, fired = s.monitor.Observe(smoothed, enabled)
		if fired {
			s.lastAlertMs = alertEv.TimestampMs
		}
	}
	onScore := s.listener.OnScore
	onAlert := s.listener.OnAlert
	s.mu.Unlock()

	if updated && onScore != nil {
		onScore(update)
	}
	if fired {
		log.Warn("posture alert", "session", s.id, "score", alertEv.Score, "threshold", alertEv.Threshold)
		if onAlert != nil {
			onAlert(alertEv)
		}
	}
}

func (s *Session) onCalibrationProgress(p calibration.Progress) {
	if cb := s.listener.OnCalibrationProgress; cb != nil {
		cb(p)
	}
}

func (s *Session) onCalibrationResult(r calibration.Result) {
	if r.Baseline != nil {
		s.mu.Lock()
		s.baseline = r.Baseline
		s.mu.Unlock()
	}
	if cb := s.listener.OnCalibrationResult; cb != nil {
		cb(r)
	}
}
