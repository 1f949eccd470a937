package logging

import "testing"

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("a", "uploading", 10) {
		t.Fatal("nil sampler should log everything")
	}
	s.Reset()
}

func TestProgressSamplerDefaultsStep(t *testing.T) {
	if s := NewProgressSampler(0); s.step != 10 {
		t.Fatalf("step = %d, want 10", s.step)
	}
}

func TestProgressSamplerUploadMilestones(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		session string
		stage   string
		percent int
		want    bool
	}{
		{"s1", "uploading", 10, true},
		{"s1", "uploading", 10, false},
		{"s1", "uploading", 15, false},
		{"s1", "uploading", 20, true},
		{"s1", "removing-background", 30, true},
		{"s1", "classifying", 70, true},
		{"s1", "classifying", 70, false},
		{"s1", "done", 100, true},
		{"s2", "uploading", 10, true},
		{"s2", "failed", 0, true},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.session, step.stage, step.percent); got != step.want {
			t.Fatalf("step %d (%s %s %d): got %v, want %v", i, step.session, step.stage, step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog("s1", "uploading", 10)
	if s.ShouldLog("s1", "uploading", 10) {
		t.Fatal("repeat should be suppressed")
	}
	s.Reset()
	if !s.ShouldLog("s1", "uploading", 10) {
		t.Fatal("reset should forget the session")
	}
}
