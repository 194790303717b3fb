// Package stability filters the raw score/ratio stream coming out of the
// scorer: exponential smoothing to suppress frame-to-frame jitter, and
// stuck detection to flag a frozen landmark stream (tracking loss or a
// stalled camera feed).
package stability

import "math"

// Smoothing parameters. The smoothed value only moves on every third
// frame; between updates the previous value is held.
const (
	updateEvery = 3
	rawWeight   = 0.4
	prevWeight  = 0.6
)

// Smoother applies exponential smoothing to the raw score stream.
// One Smoother lives per active tracking session; Reset on session
// start/stop.
type Smoother struct {
	value  float64
	frames uint64
	primed bool
}

// NewSmoother returns a Smoother ready for a fresh session.
func NewSmoother() *Smoother {
	return &Smoother{}
}

// Observe feeds one raw score and returns the current smoothed value
// plus whether this frame updated it. The first frame primes the
// smoother with the raw value; after that only every third frame blends
// the raw score in.
func (s *Smoother) Observe(raw int) (value int, updated bool) {
	if !s.primed {
		s.value = float64(raw)
		s.primed = true
	}

	s.frames++
	if s.frames%updateEvery == 0 {
		blended := math.Round(float64(raw)*rawWeight + s.value*prevWeight)
		s.value = math.Min(100, math.Max(0, blended))
		updated = true
	}
	return int(s.value), updated
}

// Value returns the current smoothed score without consuming a frame.
func (s *Smoother) Value() int {
	return int(s.value)
}

// Frames returns how many frames have been observed this session.
func (s *Smoother) Frames() uint64 {
	return s.frames
}

// Reset discards all smoothing state.
func (s *Smoother) Reset() {
	*s = Smoother{}
}
