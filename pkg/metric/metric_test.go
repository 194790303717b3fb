package metric_test

import (
	"errors"
	"math"
	"testing"

	"github.com/posturelab/go-posture/pkg/landmark"
	"github.com/posturelab/go-posture/pkg/metric"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// uprightFrame builds a typical seated pose with every landmark the
// extractor needs fully visible.
func uprightFrame() *landmark.Frame {
	f := &landmark.Frame{TimestampMs: 1000}
	set := func(i int, x, y, z float64) {
		f.Points[i] = landmark.Landmark{X: x, Y: y, Z: z, Visibility: 0.9}
	}
	set(landmark.Nose, 0.50, 0.30, -0.25)
	set(landmark.LeftEye, 0.53, 0.27, -0.24)
	set(landmark.RightEye, 0.47, 0.27, -0.24)
	set(landmark.LeftShoulder, 0.62, 0.48, -0.05)
	set(landmark.RightShoulder, 0.38, 0.48, -0.05)
	set(landmark.LeftHip, 0.58, 0.80, 0)
	set(landmark.RightHip, 0.42, 0.80, 0)
	return f
}

func TestNoseToShoulderDistance(t *testing.T) {
	f := uprightFrame()

	got, err := metric.NoseToShoulderDistance(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shoulder midpoint is (0.5, 0.48, -0.05); nose is (0.5, 0.30, -0.25).
	want := math.Sqrt(0.18*0.18 + 0.20*0.20)
	if !floatEquals(got, want) {
		t.Errorf("distance = %v, want %v", got, want)
	}
}

func TestNoseToShoulderDistance_MissingLandmark(t *testing.T) {
	f := uprightFrame()
	f.Points[landmark.Nose].Visibility = 0.3

	_, err := metric.NoseToShoulderDistance(f)
	if err == nil {
		t.Fatal("expected error for hidden nose")
	}

	var missing *metric.MissingLandmarkError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingLandmarkError, got %T", err)
	}
	if missing.Index != landmark.Nose {
		t.Errorf("missing index = %d, want %d", missing.Index, landmark.Nose)
	}
}

func TestShoulderDistances_Symmetric(t *testing.T) {
	f := uprightFrame()

	left, right, err := metric.ShoulderDistances(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The test pose is left-right symmetric about the nose.
	if !floatEquals(left, right) {
		t.Errorf("left = %v, right = %v, want equal", left, right)
	}
	want := math.Sqrt(0.12*0.12 + 0.18*0.18 + 0.20*0.20)
	if !floatEquals(left, want) {
		t.Errorf("left = %v, want %v", left, want)
	}
}

func TestPostureRatio(t *testing.T) {
	f := uprightFrame()

	got, err := metric.PostureRatio(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// faceY = (0.27+0.27+0.30)/3 = 0.28, shoulderY = 0.48,
	// shoulderWidth = 0.24.
	want := 0.20 / 0.24
	if !floatEquals(got, want) {
		t.Errorf("ratio = %v, want %v", got, want)
	}
}

func TestPostureRatio_MissingEye(t *testing.T) {
	f := uprightFrame()
	f.Points[landmark.LeftEye].Visibility = 0.1

	if _, err := metric.PostureRatio(f); err == nil {
		t.Error("expected error for hidden eye")
	}
}

func TestAngleFromVertical(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		want           float64
	}{
		{"vertical", 0, 0, 0, 1, 0},
		{"horizontal", 0, 0, 1, 0, 90},
		{"diagonal", 0, 0, 1, 1, 45},
		{"direction independent", 1, 1, 0, 0, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metric.AngleFromVertical(tt.x1, tt.y1, tt.x2, tt.y2)
			if !floatEquals(got, tt.want) {
				t.Errorf("angle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFullSet_Upright(t *testing.T) {
	f := uprightFrame()

	set, err := metric.FullSet(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The upright pose is perfectly aligned except for head depth.
	if !floatEquals(set.TorsoTilt, 0) {
		t.Errorf("TorsoTilt = %v, want 0", set.TorsoTilt)
	}
	if !floatEquals(set.ShoulderTilt, 0) {
		t.Errorf("ShoulderTilt = %v, want 0", set.ShoulderTilt)
	}
	if !floatEquals(set.NeckFlex, 0) {
		t.Errorf("NeckFlex = %v, want 0", set.NeckFlex)
	}
	if !floatEquals(set.HeadZDelta, -0.20) {
		t.Errorf("HeadZDelta = %v, want -0.20", set.HeadZDelta)
	}
	if !floatEquals(set.ShoulderAsymY, 0) {
		t.Errorf("ShoulderAsymY = %v, want 0", set.ShoulderAsymY)
	}
}

func TestFullSet_MissingHip(t *testing.T) {
	f := uprightFrame()
	f.Points[landmark.LeftHip].Visibility = 0

	if _, err := metric.FullSet(f); err == nil {
		t.Error("expected error for hidden hip")
	}
}

func TestFullSet_DetectsAsymmetry(t *testing.T) {
	f := uprightFrame()
	f.Points[landmark.LeftShoulder].Y = 0.52

	set, err := metric.FullSet(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(set.ShoulderAsymY, 0.04) {
		t.Errorf("ShoulderAsymY = %v, want 0.04", set.ShoulderAsymY)
	}
	if set.ShoulderTilt <= 0 {
		t.Errorf("ShoulderTilt = %v, want > 0", set.ShoulderTilt)
	}
}
