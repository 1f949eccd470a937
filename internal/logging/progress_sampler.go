package logging

import (
	"strings"
	"sync"
)

// ProgressSampler picks which upload progress reports deserve a log line: the
// first report of a session, the first report of each stage, and reports that
// move forward by at least step percent. Backward moves (a session clearing
// to idle) are dropped.
type ProgressSampler struct {
	step int

	mu      sync.Mutex
	session string
	stage   string
	percent int
}

// NewProgressSampler returns a sampler; step defaults to 10.
func NewProgressSampler(step int) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step, percent: -1}
}

// ShouldLog reports whether the report should be logged. A nil sampler logs
// everything.
func (s *ProgressSampler) ShouldLog(session, stage string, percent int) bool {
	if s == nil {
		return true
	}
	stage = strings.TrimSpace(stage)

	s.mu.Lock()
	defer s.mu.Unlock()
	if session != s.session {
		s.session, s.stage, s.percent = session, stage, percent
		return true
	}
	if stage != "" && stage != s.stage {
		s.stage = stage
		if percent > s.percent {
			s.percent = percent
		}
		return true
	}
	if percent >= s.percent+s.step {
		s.percent = percent
		return true
	}
	return false
}

// Reset forgets the current session.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session, s.stage, s.percent = "", "", -1
}
