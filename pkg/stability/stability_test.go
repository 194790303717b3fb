package stability

import "testing"

func TestSmoother_PrimesOnFirstFrame(t *testing.T) {
	s := NewSmoother()

	value, updated := s.Observe(90)
	if updated {
		t.Error("first frame should not be an update")
	}
	if value != 90 {
		t.Errorf("value = %d, want 90", value)
	}
}

func TestSmoother_UpdatesEveryThirdFrame(t *testing.T) {
	s := NewSmoother()

	s.Observe(90)
	if _, updated := s.Observe(90); updated {
		t.Error("frame 2 should hold")
	}

	// Frame 3 blends: round(60*0.4 + 90*0.6) = 78.
	value, updated := s.Observe(60)
	if !updated {
		t.Fatal("frame 3 should update")
	}
	if value != 78 {
		t.Errorf("value = %d, want 78", value)
	}

	// Frames 4 and 5 hold the blended value regardless of input.
	if v, updated := s.Observe(0); updated || v != 78 {
		t.Errorf("frame 4: value = %d updated = %v, want held 78", v, updated)
	}
	if v, updated := s.Observe(100); updated || v != 78 {
		t.Errorf("frame 5: value = %d updated = %v, want held 78", v, updated)
	}

	// Frame 6 blends again: round(60*0.4 + 78*0.6) = round(70.8) = 71.
	value, updated = s.Observe(60)
	if !updated || value != 71 {
		t.Errorf("frame 6: value = %d updated = %v, want 71 true", value, updated)
	}
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother()
	s.Observe(10)
	s.Observe(10)
	s.Observe(10)

	s.Reset()
	if s.Frames() != 0 {
		t.Errorf("frames after reset = %d, want 0", s.Frames())
	}
	if value, _ := s.Observe(95); value != 95 {
		t.Errorf("value after reset = %d, want re-primed 95", value)
	}
}

func TestStuckDetector_FlagsFrozenStream(t *testing.T) {
	d := NewStuckDetector()

	// 21 frames at the 100ms progress cadence with no movement: the
	// flat window crosses 2000ms on the 21st frame.
	for i := 0; i < 21; i++ {
		nowMs := int64(i) * 100
		stuck := d.Observe(0.80, nowMs)

		if i < 20 && stuck {
			t.Fatalf("frame %d: stuck too early", i+1)
		}
		if i == 20 && !stuck {
			t.Fatal("frame 21: expected stuck")
		}
	}
}

func TestStuckDetector_SingleSpikeDoesNotClear(t *testing.T) {
	d := NewStuckDetector()
	for i := 0; i < 21; i++ {
		d.Observe(0.80, int64(i)*100)
	}
	if !d.IsStuck() {
		t.Fatal("precondition: detector should be stuck")
	}

	// One noisy frame must not clear the flag...
	if stuck := d.Observe(0.81, 2100); !stuck {
		t.Error("single spike cleared stuck flag")
	}

	// ...and a small frame after it resets the change streak.
	if stuck := d.Observe(0.80, 2200); !stuck {
		t.Error("stuck flag lost after streak reset")
	}
}

func TestStuckDetector_ThreeChangedFramesClear(t *testing.T) {
	d := NewStuckDetector()
	for i := 0; i < 21; i++ {
		d.Observe(0.80, int64(i)*100)
	}

	d.Observe(0.82, 2100)
	d.Observe(0.83, 2200)
	if stuck := d.Observe(0.84, 2300); stuck {
		t.Error("three consecutive changed frames should clear stuck")
	}
	if d.IsStuck() {
		t.Error("IsStuck still true after clear")
	}
}

func TestStuckDetector_JitterBelowEpsilonStillTrips(t *testing.T) {
	// Sub-epsilon jitter around the anchor is not real movement.
	d := NewStuckDetector()
	for i := 0; i < 21; i++ {
		ratio := 0.800
		if i%2 == 1 {
			ratio = 0.8015
		}
		d.Observe(ratio, int64(i)*100)
	}
	if !d.IsStuck() {
		t.Error("sub-epsilon jitter should still be flagged as stuck")
	}
}

func TestStuckDetector_Reset(t *testing.T) {
	d := NewStuckDetector()
	for i := 0; i < 21; i++ {
		d.Observe(0.80, int64(i)*100)
	}

	d.Reset()
	if d.IsStuck() {
		t.Error("stuck after reset")
	}
	if stuck := d.Observe(0.80, 5000); stuck {
		t.Error("first frame after reset flagged stuck")
	}
}
