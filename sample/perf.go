package sample

import (
	"log/slog"
	"time"
)

// Phase names for a sampling run.
const (
	PhaseLoad     = "load"
	PhaseBuild    = "build"
	PhaseEvaluate = "evaluate"
	PhaseVerify   = "verify"
	PhaseWrite    = "write"
)

// phaseOrder fixes the order phases are reported in.
var phaseOrder = []string{PhaseLoad, PhaseBuild, PhaseEvaluate, PhaseVerify, PhaseWrite}

// PerfCollector times the phases of a single run.
type PerfCollector struct {
	start      time.Time
	phaseStart time.Time
	lastPhase  string
	phases     map[string]time.Duration
}

// NewPerfCollector creates a collector and starts the run clock.
func NewPerfCollector() *PerfCollector {
	return &PerfCollector{
		start:  time.Now(),
		phases: make(map[string]time.Duration),
	}
}

// StartPhase ends the previous phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// Stop ends the current phase and returns the aggregated timings.
func (p *PerfCollector) Stop(points int) PerfStats {
	now := time.Now()
	if p.lastPhase != "" {
		p.phases[p.lastPhase] += now.Sub(p.phaseStart)
		p.lastPhase = ""
	}
	s := PerfStats{Total: now.Sub(p.start), Points: points, Phases: make(map[string]time.Duration, len(p.phases))}
	for k, v := range p.phases {
		s.Phases[k] = v
	}
	if ev := s.Phases[PhaseEvaluate]; ev > 0 {
		s.PointsPerSecond = float64(points) / ev.Seconds()
	}
	return s
}

// PerfStats holds timings for a completed run.
type PerfStats struct {
	Total           time.Duration
	Points          int
	PointsPerSecond float64
	Phases          map[string]time.Duration
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("total_us", s.Total.Microseconds()),
		slog.Int("points", s.Points),
		slog.Float64("points_per_sec", s.PointsPerSecond),
	}
	for _, phase := range phaseOrder {
		if d, ok := s.Phases[phase]; ok {
			attrs = append(attrs, slog.Int64(phase+"_us", d.Microseconds()))
		}
	}
	return slog.GroupValue(attrs...)
}
