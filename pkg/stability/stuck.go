package stability

import "math"

// Stuck-detection parameters. The detector watches the raw posture
// ratio, not the score: a ratio that stops moving for longer than the
// window means the landmark stream has frozen.
const (
	// RatioEpsilon is the minimum per-frame ratio change that counts
	// as real movement.
	RatioEpsilon = 0.002

	// StuckWindowMs is how long the ratio must stay flat before the
	// stream is flagged as stuck.
	StuckWindowMs = 2000

	// clearStreak is how many consecutive moving frames are needed to
	// clear a stuck flag. A single noisy frame must not reset the
	// stuck timer.
	clearStreak = 3
)

// StuckDetector flags a frozen ratio stream. The flag is advisory: the
// caller may suppress alerts or prompt recalibration, but the pipeline
// keeps running either way.
type StuckDetector struct {
	lastRatio    float64
	lastChangeMs int64
	changeStreak int
	stuck        bool
	primed       bool
}

// NewStuckDetector returns a detector ready for a fresh session.
func NewStuckDetector() *StuckDetector {
	return &StuckDetector{}
}

// Observe feeds one raw ratio sample with its timestamp and returns the
// current stuck flag.
//
// The anchor ratio only advances when the detector is confident the
// stream is really moving (clearStreak consecutive changed frames), so
// a slow drift below RatioEpsilon per frame still trips the detector.
func (d *StuckDetector) Observe(ratio float64, nowMs int64) bool {
	if !d.primed {
		d.lastRatio = ratio
		d.lastChangeMs = nowMs
		d.primed = true
		return false
	}

	if math.Abs(ratio-d.lastRatio) < RatioEpsilon {
		d.changeStreak = 0
		if nowMs-d.lastChangeMs >= StuckWindowMs {
			d.stuck = true
		}
		return d.stuck
	}

	d.changeStreak++
	if d.changeStreak >= clearStreak {
		d.stuck = false
		d.lastRatio = ratio
		d.lastChangeMs = nowMs
		d.changeStreak = 0
	}
	return d.stuck
}

// IsStuck returns the current stuck flag.
func (d *StuckDetector) IsStuck() bool {
	return d.stuck
}

// Reset discards all detection state.
func (d *StuckDetector) Reset() {
	*d = StuckDetector{}
}
