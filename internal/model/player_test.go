package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tankrun/internal/window"
)

const tick = 100 * time.Millisecond

func testEnv(now time.Duration) Env {
	return Env{
		Now:             now,
		RouteLength:     10000,
		EligiblePlayers: 4,
		Tuning: Tuning{
			MotionSamples:   3,
			BehaviorSamples: 10,
			MinAge:          tick,
			SafeDistance:    1000,
		},
	}
}

func playerAt(id ActorID, x, progress float64) Actor {
	return Actor{Kind: KindPlayer, ID: id, Location: NewLocation(x, 0, 0), Progress: progress}
}

func newTestPlayer(t *testing.T, a Actor) *Player {
	t.Helper()
	p, err := NewPlayer(a, testEnv(0))
	require.NoError(t, err, "NewPlayer(%d)", a.ID)
	return p
}

func tags(letters string) []Slice {
	out := make([]Slice, 0, len(letters))
	for _, c := range letters {
		switch c {
		case 'R':
			out = append(out, SliceRush)
		case 'D':
			out = append(out, SliceDefend)
		case 'B':
			out = append(out, SliceBack)
		}
	}
	return out
}

func repeat(s string, n int) string {
	out := ""
	for range n {
		out += s
	}
	return out
}

func TestNewPlayer_WrongKind(t *testing.T) {
	a := playerAt(1, 0, 0)
	a.Kind = KindAntagonist

	p, err := NewPlayer(a, testEnv(0))
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, ErrWrongKind))
}

func TestNewPlayer_InvalidWindow(t *testing.T) {
	env := testEnv(0)
	env.Tuning.MotionSamples = 0

	p, err := NewPlayer(playerAt(1, 0, 0), env)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, window.ErrCapacity))
}

func TestNewPlayer_Defaults(t *testing.T) {
	p := newTestPlayer(t, playerAt(7, 10, 20))

	assert.Equal(t, ActorID(7), p.ID())
	assert.Equal(t, SliceRush, p.Slice())
	assert.Equal(t, StatusRush, p.Status())
	assert.Equal(t, LogicRush, p.Logic())
	assert.Len(t, p.MotionWindow(), 1)
	assert.Equal(t, tags(repeat("R", 10)), p.BehaviorWindow())
}

func TestPlayer_UpdateRejected(t *testing.T) {
	p := newTestPlayer(t, playerAt(1, 0, 0))

	t.Run("identity mismatch", func(t *testing.T) {
		assert.False(t, p.Update(playerAt(2, 500, 500), testEnv(tick)))
		assert.Equal(t, 0.0, p.Progress())
	})

	t.Run("record too young", func(t *testing.T) {
		assert.False(t, p.Update(playerAt(1, 500, 500), testEnv(tick/2)))
		assert.Equal(t, 0.0, p.Progress())
		assert.Len(t, p.MotionWindow(), 1)
	})

	t.Run("accepted after one tick", func(t *testing.T) {
		assert.True(t, p.Update(playerAt(1, 500, 500), testEnv(tick)))
		assert.Equal(t, 500.0, p.Progress())
	})
}

func TestDisplacement(t *testing.T) {
	sample := func(x, progress float64) MotionSample {
		return MotionSample{Location: NewLocation(x, 0, 0), Progress: progress}
	}

	tests := []struct {
		name    string
		samples []MotionSample
		want    float64
	}{
		{"window not full", []MotionSample{sample(0, 0), sample(400, 400)}, 0},
		{"forward", []MotionSample{sample(0, 0), sample(100, 100), sample(400, 400)}, 400},
		{"backward", []MotionSample{sample(400, 400), sample(100, 100), sample(0, 0)}, -400},
		{"progress below bound", []MotionSample{sample(0, 0), sample(0, 0), sample(900, 110)}, 0},
		{"progress just above bound", []MotionSample{sample(0, 0), sample(0, 0), sample(250, 111)}, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Displacement(tt.samples, 3), 1e-9)
		})
	}
}

func TestNextSlice_PureFunctionOfWindow(t *testing.T) {
	forward := []MotionSample{
		{NewLocation(0, 0, 0), 0},
		{NewLocation(200, 0, 0), 200},
		{NewLocation(400, 0, 0), 400},
	}
	still := []MotionSample{
		{NewLocation(0, 0, 0), 0},
		{NewLocation(0, 0, 0), 0},
		{NewLocation(0, 0, 0), 0},
	}
	backward := []MotionSample{
		{NewLocation(400, 0, 0), 400},
		{NewLocation(200, 0, 0), 200},
		{NewLocation(0, 0, 0), 0},
	}

	for _, prev := range []Slice{SliceRush, SliceDefend, SliceBack} {
		assert.Equal(t, SliceRush, NextSlice(prev, forward, 3))
		assert.Equal(t, SliceDefend, NextSlice(prev, still, 3))
		assert.Equal(t, SliceBack, NextSlice(prev, backward, 3))
	}
}

func TestNextSlice_HoldsPreviousInDeadBand(t *testing.T) {
	// displacement +200: above the defend band, below the rush bound
	samples := []MotionSample{
		{NewLocation(0, 0, 0), 0},
		{NewLocation(100, 0, 0), 100},
		{NewLocation(200, 0, 0), 200},
	}

	assert.Equal(t, SliceBack, NextSlice(SliceBack, samples, 3))
	assert.Equal(t, SliceDefend, NextSlice(SliceDefend, samples, 3))
	assert.Equal(t, SliceRush, NextSlice(Slice(9), samples, 3), "corrupted previous slice resets to rush")
}

func TestNextSlice_NotFullKeepsPrevious(t *testing.T) {
	samples := []MotionSample{{NewLocation(0, 0, 0), 0}}
	assert.Equal(t, SliceRush, NextSlice(SliceRush, samples, 3))
	assert.Equal(t, SliceBack, NextSlice(SliceBack, samples, 3))
}

func TestClassifyBehavior(t *testing.T) {
	tests := []struct {
		name string
		tags []Slice
		want Status
	}{
		{"all rush", tags(repeat("R", 100)), StatusRush},
		{"60 percent rush", tags(repeat("R", 60) + repeat("D", 40)), StatusRush},
		{"59 rush spread out", tags(repeat("RD", 40) + repeat("D", 1) + repeat("R", 19)), StatusDefend},
		{"rush tail", tags(repeat("D", 70) + repeat("R", 30)), StatusRush},
		{"rush tail one short", tags(repeat("D", 71) + repeat("R", 29)), StatusDefend},
		{"60 percent back", tags(repeat("B", 60) + repeat("D", 40)), StatusBack},
		{"back tail", tags(repeat("D", 70) + repeat("B", 30)), StatusBack},
		{"rush beats back", tags(repeat("B", 40) + repeat("R", 60)), StatusRush},
		{"all defend", tags(repeat("D", 100)), StatusDefend},
		{"defend majority still falls back", tags(repeat("D", 90) + repeat("B", 10)), StatusDefend},
		{"empty", nil, StatusRush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBehavior(tt.tags))
		})
	}
}

func TestPlayer_SlicesFollowMovement(t *testing.T) {
	p := newTestPlayer(t, playerAt(1, 0, 0))

	// forward 200 per tick: window full after two updates, displacement +400
	require.True(t, p.Update(playerAt(1, 200, 200), testEnv(1*tick)))
	assert.Equal(t, SliceRush, p.Slice(), "window not full yet")
	require.True(t, p.Update(playerAt(1, 400, 400), testEnv(2*tick)))
	assert.Equal(t, SliceRush, p.Slice())

	// stand still until the window only sees the same point
	require.True(t, p.Update(playerAt(1, 400, 400), testEnv(3*tick)))
	require.True(t, p.Update(playerAt(1, 400, 400), testEnv(4*tick)))
	assert.Equal(t, SliceDefend, p.Slice())

	// retreat
	require.True(t, p.Update(playerAt(1, 200, 200), testEnv(5*tick)))
	require.True(t, p.Update(playerAt(1, 0, 0), testEnv(6*tick)))
	assert.Equal(t, SliceBack, p.Slice())

	assert.Equal(t, tags("RRRRRRRDDB"), p.BehaviorWindow())
}

func TestPlayer_IncapacitatedOverridesEverything(t *testing.T) {
	p := newTestPlayer(t, playerAt(1, 0, 9500))
	p.SetMarkedSafe(true)

	down := playerAt(1, 0, 9500)
	down.Incapacitated = true
	require.True(t, p.Update(down, testEnv(tick)))
	assert.Equal(t, StatusIncapacitated, p.Status())

	hanging := playerAt(1, 0, 9500)
	hanging.LedgeHanging = true
	require.True(t, p.Update(hanging, testEnv(2*tick)))
	assert.Equal(t, StatusIncapacitated, p.Status())
	assert.True(t, p.Incapacitated())
}

func TestPlayer_SelfSafe(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		inZone   bool
		eligible int
		want     Status
	}{
		{"in final area near end", 9500, true, 2, StatusSafe},
		{"alone", 9500, true, 1, StatusRush},
		{"outside final area", 9500, false, 2, StatusRush},
		{"too far from end", 8000, true, 2, StatusRush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlayer(t, playerAt(1, 0, tt.progress))
			a := playerAt(1, 0, tt.progress)
			a.InFinalSafeZone = tt.inZone

			env := testEnv(tick)
			env.EligiblePlayers = tt.eligible
			require.True(t, p.Update(a, env))
			assert.Equal(t, tt.want, p.Status())
		})
	}
}

func TestPlayer_SafeFlagOnlyClearedExternally(t *testing.T) {
	p := newTestPlayer(t, playerAt(1, 0, 9500))

	a := playerAt(1, 0, 9500)
	a.InFinalSafeZone = true
	require.True(t, p.Update(a, testEnv(tick)))
	require.Equal(t, StatusSafe, p.Status())

	// leaving the safe area does not clear the flag
	require.True(t, p.Update(playerAt(1, 0, 9500), testEnv(2*tick)))
	assert.Equal(t, StatusSafe, p.Status())
	assert.True(t, p.MarkedSafe())

	p.SetMarkedSafe(false)
	assert.Equal(t, StatusRush, p.EvaluateStatus())
}

func TestPlayer_EvaluateStatusResetsCorruptedValue(t *testing.T) {
	p := newTestPlayer(t, playerAt(1, 0, 0))
	p.status = Status(42)

	assert.Equal(t, StatusRush, p.EvaluateStatus())
}

func TestAntagonist(t *testing.T) {
	a := Actor{Kind: KindAntagonist, ID: 50, Location: NewLocation(1, 2, 3), Progress: 300, Target: 1}

	n, err := NewAntagonist(a, testEnv(0))
	require.NoError(t, err)

	target, ok := n.Target()
	assert.True(t, ok)
	assert.Equal(t, ActorID(1), target)

	a.Target = NoTarget
	assert.False(t, n.Update(a, testEnv(tick/2)), "too young")
	assert.True(t, n.Update(a, testEnv(tick)))
	_, ok = n.Target()
	assert.False(t, ok)

	a.ID = 51
	assert.False(t, n.Update(a, testEnv(2*tick)))

	_, err = NewAntagonist(playerAt(1, 0, 0), testEnv(0))
	assert.True(t, errors.Is(err, ErrWrongKind))
}
