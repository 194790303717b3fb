package metric

import (
	"fmt"

	"github.com/posturelab/go-posture/pkg/landmark"
)

// MissingLandmarkError reports that a body part required by a metric was
// absent or below the visibility threshold. Recoverable: the caller
// should skip the frame.
type MissingLandmarkError struct {
	// Index is the body-part index that failed the visibility check.
	Index int
}

// Error implements the error interface.
func (e *MissingLandmarkError) Error() string {
	return fmt.Sprintf("metric: landmark %s not visible", landmark.Name(e.Index))
}

// DegenerateInputError reports that a frame's geometry was unusable
// (e.g. coincident shoulders producing a zero-width divisor).
// Recoverable: the caller should skip the frame.
type DegenerateInputError struct {
	Reason string
}

// Error implements the error interface.
func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("metric: degenerate input: %s", e.Reason)
}
