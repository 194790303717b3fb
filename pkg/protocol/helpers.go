package protocol

import (
	"github.com/posturelab/go-posture/pkg/alert"
	"github.com/posturelab/go-posture/pkg/calibration"
	"github.com/posturelab/go-posture/pkg/landmark"
	"github.com/posturelab/go-posture/pkg/session"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewFrameMessage creates a frame message from a landmark frame
func NewFrameMessage(f *landmark.Frame) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Points:      f.Points[:],
		TimestampMs: f.TimestampMs,
	})
}

// NewScoreMessage creates a score message from a session score update
func NewScoreMessage(u session.ScoreUpdate) (*Message, error) {
	return NewMessage(TypeScore, ScoreData{
		Value:       u.Value,
		Flags:       u.Flags,
		Stuck:       u.Stuck,
		TimestampMs: u.TimestampMs,
	})
}

// NewCalibrationProgressMessage creates a calibration progress message
func NewCalibrationProgressMessage(p calibration.Progress) (*Message, error) {
	return NewMessage(TypeCalibrationProgress, CalibrationProgressData{
		Percent:         p.Percent,
		SampleCount:     p.SampleCount,
		TimeRemainingMs: p.TimeRemainingMs,
		State:           p.State,
	})
}

// NewCalibrationResultMessage creates a calibration result message
func NewCalibrationResultMessage(r calibration.Result) (*Message, error) {
	data := CalibrationResultData{Baseline: r.Baseline}
	if r.Err != nil {
		data.Error = r.Err.Error()
	}
	return NewMessage(TypeCalibrationResult, data)
}

// NewAlertMessage creates an alert message
func NewAlertMessage(ev alert.Event) (*Message, error) {
	return NewMessage(TypeAlert, AlertDataFrom(ev))
}

// NewPongMessage creates a pong response
func NewPongMessage() (*Message, error) {
	return NewMessage(TypePong, nil)
}
