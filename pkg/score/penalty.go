package score

import (
	"math"

	"github.com/posturelab/go-posture/pkg/metric"
)

// Threshold describes when a single metric starts costing points and how
// fast the penalty grows.
type Threshold struct {
	// Limit is the value beyond which the metric is penalized.
	Limit float64

	// Span is the excess over Limit at which the penalty reaches Cap.
	Span float64

	// Cap is the maximum points this metric can cost.
	Cap float64

	// Inverted flips the comparison: the metric is penalized when it
	// falls below Limit instead of exceeding it.
	Inverted bool
}

// penalty returns the points this metric costs for the given value.
func (t Threshold) penalty(value float64) float64 {
	excess := value - t.Limit
	if t.Inverted {
		excess = t.Limit - value
	}
	if excess <= 0 {
		return 0
	}
	return math.Min(excess/t.Span*t.Cap, t.Cap)
}

// Thresholds is a full threshold set for penalty-mode scoring. Callers
// may substitute a personalized set captured during calibration.
type Thresholds struct {
	TorsoTilt     Threshold
	ShoulderTilt  Threshold
	NeckFlex      Threshold
	HeadZDelta    Threshold
	ShoulderAsymY Threshold
}

// DefaultThresholds returns the stock threshold table used when no
// personalized set is available.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TorsoTilt:     Threshold{Limit: 10, Span: 20, Cap: 25},
		ShoulderTilt:  Threshold{Limit: 7, Span: 20, Cap: 15},
		NeckFlex:      Threshold{Limit: 12, Span: 20, Cap: 35},
		HeadZDelta:    Threshold{Limit: -0.05, Span: 0.10, Cap: 45, Inverted: true},
		ShoulderAsymY: Threshold{Limit: 0.03, Span: 0.10, Cap: 20},
	}
}

// Penalty scores an absolute metric set against a threshold table.
// Starting from 100, each metric beyond its threshold subtracts a capped
// penalty and contributes a diagnostic flag. The result is rounded and
// clamped to [0,100].
func Penalty(m metric.Set, th Thresholds) Score {
	total := 100.0
	var flags []Flag

	checks := []struct {
		value float64
		th    Threshold
		flag  Flag
	}{
		{m.TorsoTilt, th.TorsoTilt, FlagTorsoTilt},
		{m.ShoulderTilt, th.ShoulderTilt, FlagShoulderTilt},
		{m.NeckFlex, th.NeckFlex, FlagNeckFlex},
		{m.HeadZDelta, th.HeadZDelta, FlagHeadForward},
		{m.ShoulderAsymY, th.ShoulderAsymY, FlagShoulderAsym},
	}

	for _, c := range checks {
		if p := c.th.penalty(c.value); p > 0 {
			total -= p
			flags = append(flags, c.flag)
		}
	}

	return Score{Value: clamp(int(math.Round(total))), Flags: flags}
}
