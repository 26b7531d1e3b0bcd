package recovery

import "time"

// Stage is one phase of the recovery machine: how often it ticks and how
// many failed attempts it absorbs before handing over to the next stage.
type Stage struct {
	Interval    time.Duration
	MaxAttempts int
}

// RetryPolicy is the staged retry schedule, decoupled from any specific
// I/O call. Exhausting the last stage escalates.
type RetryPolicy struct {
	Stages []Stage
}

// DefaultPolicy polls quickly at first, then backs off: most delayed
// payments clear within minutes, bank transfers can take hours.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		Stages: []Stage{
			{Interval: 2 * time.Minute, MaxAttempts: 5},
			{Interval: 10 * time.Minute, MaxAttempts: 6},
			{Interval: 30 * time.Minute, MaxAttempts: 4},
		},
	}
}

// StageFor returns the 1-based stage definition.
func (p RetryPolicy) StageFor(stage int) (Stage, bool) {
	if stage < 1 || stage > len(p.Stages) {
		return Stage{}, false
	}
	return p.Stages[stage-1], true
}

// LastStage returns the number of the final stage.
func (p RetryPolicy) LastStage() int {
	return len(p.Stages)
}
