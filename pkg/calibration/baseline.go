// Package calibration captures a personalized posture baseline. The
// calibrator samples landmark frames for a few seconds while the user
// holds a reference pose, averages the geometric measurements, and
// produces a confidence-scored Baseline for live scoring to compare
// against.
package calibration

import "fmt"

// Exercise identifies which reference pose a baseline was captured for.
type Exercise string

// Supported calibration exercises.
const (
	ExerciseSitTall      Exercise = "sit_tall"
	ExerciseNeckTilt     Exercise = "neck_tilt"
	ExerciseNeckRotation Exercise = "neck_rotation"
)

// Sample and confidence bounds.
const (
	// MinSamples is the minimum number of collected samples for a
	// baseline to be usable.
	MinSamples = 30

	// MaxSamples caps the calibration buffer to bound memory.
	MaxSamples = 200

	// MinConfidence is the minimum confidence for a baseline to be
	// usable.
	MinConfidence = 0.6
)

// Baseline is the personalized reference produced by one calibration
// run. Immutable after creation; a re-calibration supersedes it with a
// new value rather than mutating it.
type Baseline struct {
	// NoseToShoulder is the averaged 3D distance from the nose to the
	// shoulder midpoint.
	NoseToShoulder float64 `json:"nose_to_shoulder"`

	// ShoulderLeft and ShoulderRight are the averaged nose-to-shoulder
	// distances per side, used to detect head rotation.
	ShoulderLeft  float64 `json:"shoulder_left"`
	ShoulderRight float64 `json:"shoulder_right"`

	// PostureRatio is the averaged face-to-shoulder ratio, the
	// reference value for ratio-mode live scoring.
	PostureRatio float64 `json:"posture_ratio"`

	// SampleCount is how many valid samples contributed to the
	// averages.
	SampleCount int `json:"sample_count"`

	// Confidence estimates baseline quality in [0,1].
	Confidence float64 `json:"confidence"`

	// Exercise is the pose this baseline was captured for.
	Exercise Exercise `json:"exercise"`

	// CapturedAtMs is when calibration completed, Unix milliseconds.
	CapturedAtMs int64 `json:"captured_at_ms"`
}

// Validate reports whether the baseline is usable for live scoring.
// The returned error carries the reason shown to the user.
func (b *Baseline) Validate() error {
	if b.SampleCount < MinSamples {
		return fmt.Errorf("%w: %d of %d required", ErrInsufficientSamples, b.SampleCount, MinSamples)
	}
	if b.Confidence < MinConfidence {
		return fmt.Errorf("%w: %.2f below %.2f", ErrLowConfidence, b.Confidence, MinConfidence)
	}

	switch b.Exercise {
	case ExerciseSitTall, ExerciseNeckTilt:
		if b.NoseToShoulder <= 0 {
			return fmt.Errorf("%w: nose-to-shoulder distance not captured", ErrLowConfidence)
		}
	case ExerciseNeckRotation:
		if b.ShoulderLeft <= 0 || b.ShoulderRight <= 0 {
			return fmt.Errorf("%w: shoulder distances not captured", ErrLowConfidence)
		}
	}
	return nil
}

// confidence scores a baseline from its sample count and measurement
// coverage: 0.5 base, up to 0.3 for sample volume (full credit at 60),
// 0.1 for a usable nose-to-shoulder distance, 0.1 for usable per-side
// distances.
func confidence(sampleCount int, noseToShoulder, shoulderLeft, shoulderRight float64) float64 {
	c := 0.5

	volume := float64(sampleCount) / 60
	if volume > 1 {
		volume = 1
	}
	c += volume * 0.3

	if noseToShoulder > 0 {
		c += 0.1
	}
	if shoulderLeft > 0 && shoulderRight > 0 {
		c += 0.1
	}

	if c > 1 {
		c = 1
	}
	return c
}
