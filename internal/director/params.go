// Package director drives the per-tick pipeline: it turns a host frame and
// the previous snapshot into the next snapshot, publishes a report for it
// and hands spawn requests to the executor.
package director

import (
	"fmt"
	"time"

	"github.com/udisondev/tankrun/internal/group"
	"github.com/udisondev/tankrun/internal/model"
	"github.com/udisondev/tankrun/internal/spawn"
)

// Params is the immutable tuning of a director run. It is built once and
// shared by value.
type Params struct {
	TickInterval    time.Duration
	Tuning          model.Tuning
	SpreadRadius    float64
	GoalFrequency   time.Duration
	StressThreshold float64
	AntagonistLimit int
}

// DefaultParams returns the stock tuning for a 100ms tick.
func DefaultParams() Params {
	return Params{
		TickInterval:    100 * time.Millisecond,
		Tuning:          model.DefaultTuning(),
		SpreadRadius:    group.DefaultSpreadRadius,
		GoalFrequency:   5 * time.Second,
		StressThreshold: spawn.DefaultStressThreshold,
		AntagonistLimit: spawn.DefaultLimit,
	}
}

// NewParams derives sample counts from window durations.
func NewParams(tick, motionWindow, behaviorWindow time.Duration) (Params, error) {
	if tick <= 0 {
		return Params{}, fmt.Errorf("tick interval must be positive, got %s", tick)
	}

	p := DefaultParams()
	p.TickInterval = tick
	p.Tuning.MinAge = tick
	p.Tuning.MotionSamples = int(motionWindow / tick)
	p.Tuning.BehaviorSamples = int(behaviorWindow / tick)

	if p.Tuning.MotionSamples <= 0 {
		return Params{}, fmt.Errorf("motion window %s is shorter than one tick", motionWindow)
	}
	if p.Tuning.BehaviorSamples <= 0 {
		return Params{}, fmt.Errorf("behavior window %s is shorter than one tick", behaviorWindow)
	}
	return p, nil
}

// Policy returns the stress bounds policy for these params.
func (p Params) Policy() spawn.Policy {
	return spawn.Policy{Goal: p.GoalFrequency, Threshold: p.StressThreshold}
}
