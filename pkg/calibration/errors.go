package calibration

import "errors"

// Sentinel errors for calibration failures. All of them are recoverable:
// the calibrator can always be Reset and restarted.
var (
	// ErrAlreadyRunning is returned when Start is called while a run
	// is collecting or processing. This is a caller contract
	// violation, not a runtime condition.
	ErrAlreadyRunning = errors.New("calibration: already running")

	// ErrInsufficientData is returned when a run produced zero valid
	// samples. The caller should retry calibration.
	ErrInsufficientData = errors.New("calibration: no valid samples collected")

	// ErrInsufficientSamples is returned by Baseline.Validate when too
	// few samples were collected.
	ErrInsufficientSamples = errors.New("calibration: insufficient samples")

	// ErrLowConfidence is returned by Baseline.Validate when the
	// computed confidence is below the usable floor.
	ErrLowConfidence = errors.New("calibration: low confidence")

	// ErrNoFrameSource is returned when Start is called without a
	// frame source to sample from.
	ErrNoFrameSource = errors.New("calibration: no frame source")
)
