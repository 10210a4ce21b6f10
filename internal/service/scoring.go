package service

import "sync/atomic"

// ScoringPolicy holds the grading knobs that can change under config
// hot-reload while request goroutines read them.
type ScoringPolicy struct {
	examXPPerPoint atomic.Int64
}

func NewScoringPolicy(examXPPerPoint int) *ScoringPolicy {
	p := &ScoringPolicy{}
	p.examXPPerPoint.Store(int64(examXPPerPoint))
	return p
}

// ExamXPPerPoint is the XP multiplier applied to each raw point of a
// passed mock attempt.
func (p *ScoringPolicy) ExamXPPerPoint() int {
	return int(p.examXPPerPoint.Load())
}

func (p *ScoringPolicy) SetExamXPPerPoint(v int) {
	p.examXPPerPoint.Store(int64(v))
}
