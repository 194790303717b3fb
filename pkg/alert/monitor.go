// Package alert raises debounced, cooldown-gated events when the
// smoothed posture score stays below a configured threshold. A momentary
// dip never fires; the score has to stay low for the full debounce
// window, and repeat alerts are separated by at least the cooldown.
package alert

import (
	"errors"
	"fmt"
	"time"
)

// Threshold bounds accepted by Config.Validate.
const (
	MinThreshold = 50
	MaxThreshold = 95
)

// Defaults for a monitor observing the ~10 Hz smoothed score stream.
const (
	DefaultThreshold   = 80
	DefaultRequiredLow = 20 // ~2s of sustained low score at 100ms cadence
	DefaultCooldown    = 30 * time.Second
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("alert: invalid config")

// Config tunes the monitor. Zero values are replaced by defaults in
// NewMonitor; out-of-range values are rejected by Validate.
type Config struct {
	// Threshold is the score below which a frame counts as "low".
	Threshold int

	// RequiredLow is how many consecutive low observations fire an
	// alert.
	RequiredLow int

	// Cooldown is the minimum spacing between two alerts.
	Cooldown time.Duration
}

// DefaultConfig returns the stock monitor configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:   DefaultThreshold,
		RequiredLow: DefaultRequiredLow,
		Cooldown:    DefaultCooldown,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.Threshold < MinThreshold || c.Threshold > MaxThreshold {
		return fmt.Errorf("%w: threshold %d outside [%d,%d]", ErrInvalidConfig, c.Threshold, MinThreshold, MaxThreshold)
	}
	if c.RequiredLow < 1 {
		return fmt.Errorf("%w: required-low count must be positive", ErrInvalidConfig)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("%w: negative cooldown", ErrInvalidConfig)
	}
	return nil
}

// Event is one raised alert, delivered to the external alert consumer.
type Event struct {
	Score       int   `json:"score"`
	Threshold   int   `json:"threshold"`
	TimestampMs int64 `json:"timestamp_ms"`
}

// Notifier receives raised alert events.
type Notifier interface {
	Notify(Event)
}

// Monitor is the per-session debounced low-score detector. It is not
// goroutine-safe; the owning session drives it from its single
// processing loop.
type Monitor struct {
	cfg      Config
	notifier Notifier

	active    bool
	lowCount  int
	lastAlert time.Time

	now func() time.Time
}

// NewMonitor creates a monitor. A nil notifier is allowed; callers can
// consume fired events from Observe's return value instead. Zero-valued
// config fields fall back to defaults.
func NewMonitor(cfg Config, notifier Notifier) (*Monitor, error) {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.RequiredLow == 0 {
		cfg.RequiredLow = DefaultRequiredLow
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Monitor{
		cfg:      cfg,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

// Start resets all alert state and begins observing. Idempotent.
func (m *Monitor) Start() {
	m.active = true
	m.lowCount = 0
	m.lastAlert = time.Time{}
}

// Stop resets all alert state and disables observation. Idempotent.
func (m *Monitor) Stop() {
	m.active = false
	m.lowCount = 0
	m.lastAlert = time.Time{}
}

// Active reports whether the monitor is currently observing.
func (m *Monitor) Active() bool {
	return m.active
}

// Observe feeds one smoothed score sample. When the score has stayed
// below the threshold for the full debounce window and the cooldown has
// elapsed, it fires: the returned Event is valid, the notifier (if any)
// is invoked, and the debounce counter resets. Disabled or stopped
// monitors ignore the sample entirely.
func (m *Monitor) Observe(smoothedScore int, enabled bool) (Event, bool) {
	if !m.active || !enabled {
		return Event{}, false
	}

	if smoothedScore >= m.cfg.Threshold {
		m.lowCount = 0
		return Event{}, false
	}

	m.lowCount++
	if m.lowCount < m.cfg.RequiredLow {
		return Event{}, false
	}

	now := m.now()
	if !m.lastAlert.IsZero() && now.Sub(m.lastAlert) < m.cfg.Cooldown {
		return Event{}, false
	}

	m.lowCount = 0
	m.lastAlert = now

	ev := Event{
		Score:       smoothedScore,
		Threshold:   m.cfg.Threshold,
		TimestampMs: now.UnixMilli(),
	}
	if m.notifier != nil {
		m.notifier.Notify(ev)
	}
	return ev, true
}
