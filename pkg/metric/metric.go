// Package metric extracts geometric posture features from a single
// landmark frame. All functions are pure: every call is reproducible
// from its inputs and nothing is cached between frames.
package metric

import (
	"math"

	"github.com/posturelab/go-posture/pkg/landmark"
)

// NoseToShoulderDistance returns the 3D Euclidean distance between the
// nose and the midpoint of the two shoulders. Returns a
// MissingLandmarkError if the nose or either shoulder is not visible.
func NoseToShoulderDistance(f *landmark.Frame) (float64, error) {
	if err := requireVisible(f, landmark.Nose, landmark.LeftShoulder, landmark.RightShoulder); err != nil {
		return 0, err
	}

	nose := f.At(landmark.Nose)
	mid := midpoint(f.At(landmark.LeftShoulder), f.At(landmark.RightShoulder))
	return distance3D(nose, mid), nil
}

// ShoulderDistances returns the 3D distances from the nose to each
// shoulder independently. The left/right ratio is used downstream to
// detect head rotation. Returns a MissingLandmarkError if the nose or
// either shoulder is not visible.
func ShoulderDistances(f *landmark.Frame) (left, right float64, err error) {
	if err := requireVisible(f, landmark.Nose, landmark.LeftShoulder, landmark.RightShoulder); err != nil {
		return 0, 0, err
	}

	nose := f.At(landmark.Nose)
	left = distance3D(nose, f.At(landmark.LeftShoulder))
	right = distance3D(nose, f.At(landmark.RightShoulder))
	return left, right, nil
}

// PostureRatio returns faceToShoulder / shoulderWidth for the frame:
// the vertical distance from the eye/nose line to the shoulder line,
// normalized by shoulder width so the ratio is distance-invariant.
// Slouching or leaning toward the camera lowers the ratio.
func PostureRatio(f *landmark.Frame) (float64, error) {
	if err := requireVisible(f,
		landmark.Nose, landmark.LeftEye, landmark.RightEye,
		landmark.LeftShoulder, landmark.RightShoulder); err != nil {
		return 0, err
	}

	faceY := (f.At(landmark.LeftEye).Y + f.At(landmark.RightEye).Y + f.At(landmark.Nose).Y) / 3
	shoulderY := (f.At(landmark.LeftShoulder).Y + f.At(landmark.RightShoulder).Y) / 2
	faceToShoulder := math.Abs(faceY - shoulderY)

	width := distance2D(f.At(landmark.LeftShoulder), f.At(landmark.RightShoulder))
	if width <= 0 {
		return 0, &DegenerateInputError{Reason: "zero shoulder width"}
	}
	return faceToShoulder / width, nil
}

// AngleFromVertical returns the angle in degrees between the segment
// (x1,y1)-(x2,y2) and the vertical axis. A perfectly vertical segment
// yields 0, a horizontal one 90.
func AngleFromVertical(x1, y1, x2, y2 float64) float64 {
	dx := math.Abs(x2 - x1)
	dy := math.Abs(y2 - y1)
	return math.Atan2(dx, dy) * 180 / math.Pi
}

// Set bundles the absolute posture metrics consumed by the
// threshold-penalty scoring mode.
type Set struct {
	// TorsoTilt is the lean of the shoulder-midpoint-to-hip-midpoint
	// segment away from vertical, in degrees.
	TorsoTilt float64

	// ShoulderTilt is the tilt of the shoulder line away from
	// horizontal, in degrees.
	ShoulderTilt float64

	// NeckFlex is the lean of the nose-to-shoulder-midpoint segment
	// away from vertical, in degrees.
	NeckFlex float64

	// HeadZDelta is the depth offset of the nose relative to the
	// shoulder line. More negative means the head has drifted forward
	// of the shoulders.
	HeadZDelta float64

	// ShoulderAsymY is the absolute height difference between the two
	// shoulders in normalized image space.
	ShoulderAsymY float64
}

// FullSet computes every metric in Set from one frame. Returns a
// MissingLandmarkError if the nose, a shoulder, or a hip is not visible.
func FullSet(f *landmark.Frame) (Set, error) {
	if err := requireVisible(f,
		landmark.Nose,
		landmark.LeftShoulder, landmark.RightShoulder,
		landmark.LeftHip, landmark.RightHip); err != nil {
		return Set{}, err
	}

	nose := f.At(landmark.Nose)
	ls := f.At(landmark.LeftShoulder)
	rs := f.At(landmark.RightShoulder)
	shoulderMid := midpoint(ls, rs)
	hipMid := midpoint(f.At(landmark.LeftHip), f.At(landmark.RightHip))

	// Shoulder tilt is measured from horizontal, everything else from
	// vertical.
	shoulderTilt := math.Atan2(math.Abs(rs.Y-ls.Y), math.Abs(rs.X-ls.X)) * 180 / math.Pi

	return Set{
		TorsoTilt:     AngleFromVertical(shoulderMid.X, shoulderMid.Y, hipMid.X, hipMid.Y),
		ShoulderTilt:  shoulderTilt,
		NeckFlex:      AngleFromVertical(nose.X, nose.Y, shoulderMid.X, shoulderMid.Y),
		HeadZDelta:    nose.Z - shoulderMid.Z,
		ShoulderAsymY: math.Abs(ls.Y - rs.Y),
	}, nil
}

// requireVisible returns a MissingLandmarkError for the first listed
// body part that fails the visibility threshold.
func requireVisible(f *landmark.Frame, indices ...int) error {
	for _, i := range indices {
		if !f.At(i).Visible() {
			return &MissingLandmarkError{Index: i}
		}
	}
	return nil
}

func midpoint(a, b landmark.Landmark) landmark.Landmark {
	return landmark.Landmark{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}

func distance3D(a, b landmark.Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func distance2D(a, b landmark.Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
