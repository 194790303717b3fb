package score_test

import (
	"math"
	"testing"

	"github.com/posturelab/go-posture/pkg/metric"
	"github.com/posturelab/go-posture/pkg/score"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name       string
		calibrated float64
		current    float64
		want       int
	}{
		{"at baseline", 1.00, 1.00, 100},
		{"above baseline", 1.00, 1.10, 100},
		{"slight drop", 1.00, 0.95, 90},
		{"moderate drop", 1.00, 0.80, 60},
		{"severe drop clamps to zero", 1.00, 0.40, 0},
		{"small baseline", 0.50, 0.45, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score.Ratio(tt.calibrated, tt.current)
			if got.Value != tt.want {
				t.Errorf("Ratio(%v, %v) = %d, want %d", tt.calibrated, tt.current, got.Value, tt.want)
			}
			if len(got.Flags) != 0 {
				t.Errorf("unexpected flags: %v", got.Flags)
			}
		})
	}
}

func TestRatio_DegenerateInput(t *testing.T) {
	tests := []struct {
		name       string
		calibrated float64
		current    float64
	}{
		{"zero baseline", 0, 0.9},
		{"negative baseline", -1, 0.9},
		{"zero current", 1.0, 0},
		{"NaN baseline", math.NaN(), 0.9},
		{"NaN current", 1.0, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score.Ratio(tt.calibrated, tt.current)
			if got.Value != score.NeutralScore {
				t.Errorf("value = %d, want neutral %d", got.Value, score.NeutralScore)
			}
			if len(got.Flags) != 1 || got.Flags[0] != score.FlagDegenerateInput {
				t.Errorf("flags = %v, want [%s]", got.Flags, score.FlagDegenerateInput)
			}
		})
	}
}

func TestRatio_NeverOutOfRange(t *testing.T) {
	for calibrated := 0.1; calibrated <= 2.0; calibrated += 0.13 {
		for current := 0.1; current <= 2.0; current += 0.13 {
			got := score.Ratio(calibrated, current)
			if got.Value < 0 || got.Value > 100 {
				t.Fatalf("Ratio(%v, %v) = %d out of [0,100]", calibrated, current, got.Value)
			}
		}
	}
}

func TestPenalty_WithinThresholds(t *testing.T) {
	got := score.Penalty(metric.Set{TorsoTilt: 5, ShoulderTilt: 3, NeckFlex: 8}, score.DefaultThresholds())
	if got.Value != 100 {
		t.Errorf("value = %d, want 100", got.Value)
	}
	if len(got.Flags) != 0 {
		t.Errorf("unexpected flags: %v", got.Flags)
	}
}

func TestPenalty_TorsoTiltExcess(t *testing.T) {
	// 15 degrees against a threshold of 10 with span 20 and cap 25:
	// penalty = (5/20)*25 = 6.25, score = round(93.75) = 94.
	got := score.Penalty(metric.Set{TorsoTilt: 15}, score.DefaultThresholds())
	if got.Value != 94 {
		t.Errorf("value = %d, want 94", got.Value)
	}
	if len(got.Flags) != 1 || got.Flags[0] != score.FlagTorsoTilt {
		t.Errorf("flags = %v, want [%s]", got.Flags, score.FlagTorsoTilt)
	}
}

func TestPenalty_CapsPerMetric(t *testing.T) {
	// A huge excess still only costs the metric's cap.
	got := score.Penalty(metric.Set{TorsoTilt: 200}, score.DefaultThresholds())
	if got.Value != 75 {
		t.Errorf("value = %d, want 75", got.Value)
	}
}

func TestPenalty_InvertedHeadZDelta(t *testing.T) {
	// HeadZDelta penalizes below the limit: -0.10 against -0.05 is an
	// excess of 0.05 over span 0.10 at cap 45 -> penalty 22.5.
	got := score.Penalty(metric.Set{HeadZDelta: -0.10}, score.DefaultThresholds())
	if got.Value != 78 {
		t.Errorf("value = %d, want 78", got.Value)
	}
	if len(got.Flags) != 1 || got.Flags[0] != score.FlagHeadForward {
		t.Errorf("flags = %v, want [%s]", got.Flags, score.FlagHeadForward)
	}

	// On or above the limit there is no penalty.
	got = score.Penalty(metric.Set{HeadZDelta: 0.02}, score.DefaultThresholds())
	if got.Value != 100 {
		t.Errorf("value = %d, want 100", got.Value)
	}
}

func TestPenalty_ClampsAtZero(t *testing.T) {
	bad := metric.Set{
		TorsoTilt:     90,
		ShoulderTilt:  80,
		NeckFlex:      90,
		HeadZDelta:    -0.5,
		ShoulderAsymY: 0.4,
	}
	got := score.Penalty(bad, score.DefaultThresholds())
	if got.Value != 0 {
		t.Errorf("value = %d, want 0", got.Value)
	}
	if len(got.Flags) != 5 {
		t.Errorf("flags = %v, want all five", got.Flags)
	}
}

func TestPenalty_PersonalizedThresholds(t *testing.T) {
	// A personalized set captured during calibration replaces the
	// defaults wholesale.
	custom := score.DefaultThresholds()
	custom.TorsoTilt.Limit = 20

	got := score.Penalty(metric.Set{TorsoTilt: 15}, custom)
	if got.Value != 100 {
		t.Errorf("value = %d, want 100 with relaxed threshold", got.Value)
	}
}
