// Package landmark defines the body-landmark frame model consumed by the
// posture pipeline. Frames are produced by an external pose estimator
// (MediaPipe Pose or compatible) and pushed into the pipeline as-is.
package landmark

import "strconv"

// Body-part indices following the MediaPipe pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// MinVisibility is the detector confidence below which a landmark is
// treated as absent.
const MinVisibility = 0.5

// Landmark is a single tracked body point. Coordinates are normalized to
// [0,1] image space; Z is depth relative to the hip midplane. Visibility
// is the detector's confidence in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Visible reports whether the landmark passes the visibility threshold.
func (l Landmark) Visible() bool {
	return l.Visibility >= MinVisibility
}

// Frame is one pose-estimation sample: a fixed array of 33 landmarks plus
// the capture timestamp in Unix milliseconds. Frames are immutable once
// produced; the pipeline never writes to them.
type Frame struct {
	Points      [NumLandmarks]Landmark `json:"points"`
	TimestampMs int64                  `json:"timestamp_ms"`
}

// At returns the landmark at the given body-part index.
func (f *Frame) At(index int) Landmark {
	return f.Points[index]
}

// Has reports whether every listed body part is visible in the frame.
func (f *Frame) Has(indices ...int) bool {
	for _, i := range indices {
		if !f.Points[i].Visible() {
			return false
		}
	}
	return true
}

// Name returns a human-readable name for a body-part index, for error
// messages and logs.
func Name(index int) string {
	switch index {
	case Nose:
		return "nose"
	case LeftEye:
		return "left_eye"
	case RightEye:
		return "right_eye"
	case LeftEar:
		return "left_ear"
	case RightEar:
		return "right_ear"
	case LeftShoulder:
		return "left_shoulder"
	case RightShoulder:
		return "right_shoulder"
	case LeftHip:
		return "left_hip"
	case RightHip:
		return "right_hip"
	default:
		return "landmark_" + strconv.Itoa(index)
	}
}
