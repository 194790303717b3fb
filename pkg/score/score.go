// Package score converts posture metrics into a 0-100 quality score.
//
// Two interchangeable modes are provided: Ratio compares a live
// face-to-shoulder ratio against a calibrated reference (continuous
// tracking), and Penalty subtracts capped per-metric penalties against
// fixed or personalized thresholds (scans and exercise reports).
package score

import "math"

// Flag marks which metric pushed the score down, or that the scorer fell
// back to a neutral value.
type Flag string

// Diagnostic flags attached to a Score.
const (
	FlagDegenerateInput Flag = "degenerate_input"
	FlagTorsoTilt       Flag = "torso_tilt"
	FlagShoulderTilt    Flag = "shoulder_tilt"
	FlagNeckFlex        Flag = "neck_flex"
	FlagHeadForward     Flag = "head_forward"
	FlagShoulderAsym    Flag = "shoulder_asym"
)

// NeutralScore is returned when the scorer cannot produce a meaningful
// value from its inputs.
const NeutralScore = 50

// Score is one posture quality sample. Value is always in [0,100].
type Score struct {
	Value int    `json:"value"`
	Flags []Flag `json:"flags,omitempty"`
}

// ratioSlope maps a ratio drop to score points: a drop of 0.05 below the
// calibrated ratio costs 10 points.
const ratioSlope = 200

// Ratio scores a live posture ratio against a calibrated reference.
// A ratio at or above the baseline scores exactly 100; below it the
// score falls linearly. Non-positive or non-numeric inputs produce the
// neutral score with FlagDegenerateInput.
func Ratio(calibrated, current float64) Score {
	if !(calibrated > 0) || !(current > 0) {
		// Catches <=0 and NaN in one test per operand.
		return Score{Value: NeutralScore, Flags: []Flag{FlagDegenerateInput}}
	}

	drop := calibrated - current
	if drop <= 0 {
		return Score{Value: 100}
	}
	return Score{Value: clamp(int(math.Round(100 - drop*ratioSlope)))}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
