package session

import "github.com/posturelab/go-posture/pkg/calibration"

// Status is a point-in-time snapshot of a session for dashboards and
// the REST API. In-memory only; nothing is persisted.
type Status struct {
	ID               string            `json:"id"`
	Running          bool              `json:"running"`
	CalibrationState calibration.State `json:"calibration_state"`
	HasBaseline      bool              `json:"has_baseline"`
	Score            int               `json:"score"`
	Stuck            bool              `json:"stuck"`
	FramesProcessed  uint64            `json:"frames_processed"`
	FramesSkipped    uint64            `json:"frames_skipped"`
	LastAlertMs      int64             `json:"last_alert_ms,omitempty"`
}

// Status returns the current snapshot.
func (s *Session) Status() Status {
	state := s.calibrator.State()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ID:               s.id,
		Running:          s.running,
		CalibrationState: state,
		HasBaseline:      s.baseline != nil,
		Score:            s.lastScore.Value,
		Stuck:            s.lastScore.Stuck,
		FramesProcessed:  s.frames,
		FramesSkipped:    s.skipped,
		LastAlertMs:      s.lastAlertMs,
	}
}
