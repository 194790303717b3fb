package web

import (
	"testing"

	"github.com/posturelab/go-posture/pkg/calibration"
)

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"threshold floor", func(s *Settings) { s.Threshold = 50 }, false},
		{"threshold too low", func(s *Settings) { s.Threshold = 49 }, true},
		{"threshold too high", func(s *Settings) { s.Threshold = 96 }, true},
		{"cooldown too short", func(s *Settings) { s.CooldownMs = 4000 }, true},
		{"calibration too short", func(s *Settings) { s.CalibrationDurationMs = 500 }, true},
		{"calibration too long", func(s *Settings) { s.CalibrationDurationMs = 15000 }, true},
		{"unknown exercise", func(s *Settings) { s.Exercise = "handstand" }, true},
		{"neck tilt exercise", func(s *Settings) { s.Exercise = calibration.ExerciseNeckTilt }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewServer_RejectsBadSettings(t *testing.T) {
	bad := DefaultSettings()
	bad.Threshold = 10
	if _, err := NewServer("8080", bad, nil); err == nil {
		t.Error("NewServer accepted out-of-range threshold")
	}
}

func TestServer_SessionCarriesBaselineAcrossRebuild(t *testing.T) {
	s, err := NewServer("8080", DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	b := &calibration.Baseline{
		NoseToShoulder: 0.21,
		ShoulderLeft:   0.29,
		ShoulderRight:  0.29,
		PostureRatio:   0.95,
		SampleCount:    40,
		Confidence:     0.9,
		Exercise:       calibration.ExerciseSitTall,
	}
	s.sess.SetBaseline(b)

	next := DefaultSettings()
	next.Threshold = 70
	sess, err := s.newSession(next, s.sess.Baseline())
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	if got := sess.Baseline(); got == nil || got.PostureRatio != 0.95 {
		t.Errorf("baseline lost across rebuild: %+v", got)
	}
}
