package calibration

import (
	"sync"
	"time"

	"github.com/posturelab/go-posture/internal/log"
	"github.com/posturelab/go-posture/pkg/landmark"
	"github.com/posturelab/go-posture/pkg/metric"
)

// State is the calibrator's lifecycle phase.
type State string

// Calibrator states. Error is reachable from collecting and processing;
// Reset returns to idle from any state.
const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Timing. Samples are collected on a fixed 50ms cadence; progress is
// reported at 100ms regardless of sampling.
const (
	DefaultDuration  = 3 * time.Second
	sampleInterval   = 50 * time.Millisecond
	progressInterval = 100 * time.Millisecond
)

// FrameSource supplies the most recent landmark frame, or nil when none
// is available. Implementations must never block: if the pose estimator
// has not produced a frame by tick time, the calibrator simply skips
// that tick.
type FrameSource interface {
	Latest() *landmark.Frame
}

// Progress is a periodic snapshot of a running calibration. Percent
// ramps linearly from 0 to 90 over the collection window, jumps to 95
// while processing, and lands on 100 when completed.
type Progress struct {
	Percent         float64 `json:"percent"`
	SampleCount     int     `json:"sample_count"`
	TimeRemainingMs int64   `json:"time_remaining_ms"`
	State           State   `json:"state"`
}

// Result is the outcome of one calibration run. Exactly one of Baseline
// and Err is set.
type Result struct {
	Baseline *Baseline
	Err      error
}

// Callbacks groups the calibrator's outbound notifications. Either may
// be nil. Both are invoked from the calibrator's own goroutine.
type Callbacks struct {
	OnProgress func(Progress)
	OnResult   func(Result)
}

type calibrationSample struct {
	frame      landmark.Frame
	capturedAt time.Time
}

// Calibrator owns one baseline-capture run at a time: a timed sample
// collection followed by averaging and validation. Concurrent runs are
// rejected; Start is only valid from idle, completed, or error.
type Calibrator struct {
	mu sync.Mutex

	state    State
	source   FrameSource
	cb       Callbacks
	exercise Exercise
	duration time.Duration
	started  time.Time

	samples  []calibrationSample
	baseline *Baseline
	lastErr  error

	cancel chan struct{}

	// now is a seam for deterministic tests.
	now func() time.Time
}

// New creates an idle calibrator sampling from the given source.
func New(source FrameSource, cb Callbacks) *Calibrator {
	return &Calibrator{
		state:  StateIdle,
		source: source,
		cb:     cb,
		now:    time.Now,
	}
}

// Start begins a calibration run for the given exercise. A non-positive
// duration falls back to DefaultDuration. Returns ErrAlreadyRunning if
// a run is already collecting or processing.
func (c *Calibrator) Start(exercise Exercise, duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle, StateCompleted, StateError:
	default:
		return ErrAlreadyRunning
	}
	if c.source == nil {
		return ErrNoFrameSource
	}
	if duration <= 0 {
		duration = DefaultDuration
	}

	c.state = StateCollecting
	c.exercise = exercise
	c.duration = duration
	c.started = c.now()
	c.samples = c.samples[:0]
	c.lastErr = nil
	c.cancel = make(chan struct{})

	log.Info("calibration started", "exercise", string(exercise), "duration", duration)
	go c.run(c.cancel, duration)
	return nil
}

// run drives the collection window: a 50ms sample tick, a 100ms
// progress tick, and a single deadline that moves the run into
// processing.
func (c *Calibrator) run(cancel chan struct{}, duration time.Duration) {
	sampleTick := time.NewTicker(sampleInterval)
	defer sampleTick.Stop()
	progressTick := time.NewTicker(progressInterval)
	defer progressTick.Stop()
	deadline := time.NewTimer(duration)
	defer deadline.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-sampleTick.C:
			c.collectSample()
		case <-progressTick.C:
			c.reportProgress()
		case <-deadline.C:
			c.finish()
			return
		}
	}
}

// collectSample appends a copy of the latest frame, if one is available
// and the buffer has room.
func (c *Calibrator) collectSample() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateCollecting || len(c.samples) >= MaxSamples {
		return
	}
	frame := c.source.Latest()
	if frame == nil {
		return
	}
	c.samples = append(c.samples, calibrationSample{frame: *frame, capturedAt: c.now()})
}

// reportProgress pushes a progress snapshot to the callback.
func (c *Calibrator) reportProgress() {
	c.mu.Lock()
	p := c.progressLocked()
	cb := c.cb.OnProgress
	c.mu.Unlock()

	if cb != nil {
		cb(p)
	}
}

func (c *Calibrator) progressLocked() Progress {
	p := Progress{State: c.state, SampleCount: len(c.samples)}

	switch c.state {
	case StateCollecting:
		elapsed := c.now().Sub(c.started)
		p.Percent = float64(elapsed) / float64(c.duration) * 90
		if p.Percent > 90 {
			p.Percent = 90
		}
		if remaining := c.duration - elapsed; remaining > 0 {
			p.TimeRemainingMs = remaining.Milliseconds()
		}
	case StateProcessing:
		p.Percent = 95
	case StateCompleted:
		p.Percent = 100
	}
	return p
}

// finish moves the run to processing, averages the collected samples
// into a Baseline, validates it, and reports the result.
func (c *Calibrator) finish() {
	c.mu.Lock()
	if c.state != StateCollecting {
		c.mu.Unlock()
		return
	}
	c.state = StateProcessing
	c.mu.Unlock()
	c.reportProgress()

	c.mu.Lock()
	if c.state != StateProcessing {
		// Reset raced the deadline; the run is already abandoned.
		c.mu.Unlock()
		return
	}
	baseline, err := c.computeLocked()
	if err != nil {
		c.state = StateError
		c.lastErr = err
		log.Warn("calibration failed", "error", err)
	} else {
		c.state = StateCompleted
		c.baseline = baseline
		log.Info("calibration completed",
			"samples", baseline.SampleCount,
			"confidence", baseline.Confidence)
	}
	c.samples = nil
	cb := c.cb.OnResult
	c.mu.Unlock()

	c.reportProgress()
	if cb != nil {
		if err != nil {
			cb(Result{Err: err})
		} else {
			cb(Result{Baseline: baseline})
		}
	}
}

// computeLocked averages per-sample measurements into a Baseline.
// Samples where any measurement is missing or non-positive are skipped,
// never zero-filled.
func (c *Calibrator) computeLocked() (*Baseline, error) {
	var (
		sumNose, sumLeft, sumRight float64
		sumRatio                   float64
		valid, ratioCount          int
	)

	for i := range c.samples {
		frame := &c.samples[i].frame

		nose, err := metric.NoseToShoulderDistance(frame)
		if err != nil || nose <= 0 {
			continue
		}
		left, right, err := metric.ShoulderDistances(frame)
		if err != nil || left <= 0 || right <= 0 {
			continue
		}

		sumNose += nose
		sumLeft += left
		sumRight += right
		valid++

		if ratio, err := metric.PostureRatio(frame); err == nil && ratio > 0 {
			sumRatio += ratio
			ratioCount++
		}
	}

	if valid == 0 {
		return nil, ErrInsufficientData
	}

	b := &Baseline{
		NoseToShoulder: sumNose / float64(valid),
		ShoulderLeft:   sumLeft / float64(valid),
		ShoulderRight:  sumRight / float64(valid),
		SampleCount:    valid,
		Exercise:       c.exercise,
		CapturedAtMs:   c.now().UnixMilli(),
	}
	if ratioCount > 0 {
		b.PostureRatio = sumRatio / float64(ratioCount)
	}
	b.Confidence = confidence(valid, b.NoseToShoulder, b.ShoulderLeft, b.ShoulderRight)

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reset cancels any in-flight run, discards collected samples, and
// returns to idle. Valid from any state and idempotent: resetting an
// idle calibrator is a no-op.
func (c *Calibrator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	c.samples = nil
	c.lastErr = nil
	c.state = StateIdle
}

// Stop is an alias for Reset kept for symmetry with the session API.
func (c *Calibrator) Stop() {
	c.Reset()
}

// State returns the current lifecycle phase.
func (c *Calibrator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Baseline returns the most recently completed baseline, or nil if no
// run has completed yet. A later successful run supersedes the value.
func (c *Calibrator) Baseline() *Baseline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline
}

// Err returns the failure reason when the calibrator is in the error
// state, nil otherwise.
func (c *Calibrator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Progress returns a point-in-time snapshot without waiting for the
// next progress tick.
func (c *Calibrator) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}
