// Package cadence regulates how often a group may ask for an antagonist.
// It exposes the bounds as mutation hooks; the policy that moves them
// lives with the caller.
package cadence

import (
	"time"
)

// Source draws uniform floats in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Bounds is the [Left, Right] range the next spawn interval is drawn from.
type Bounds struct {
	Left  time.Duration `json:"left"`
	Right time.Duration `json:"right"`
}

// StandardBounds returns [0, 2*goal].
func StandardBounds(goal time.Duration) Bounds {
	return Bounds{Left: 0, Right: 2 * goal}
}

// Shift returns the bounds moved later by d.
func (b Bounds) Shift(d time.Duration) Bounds {
	return Bounds{Left: b.Left + d, Right: b.Right + d}
}

func (b Bounds) normalized() Bounds {
	if b.Left < 0 {
		b.Left = 0
	}
	if b.Right < b.Left {
		b.Left, b.Right = b.Right, b.Left
		if b.Left < 0 {
			b.Left = 0
		}
	}
	return b
}

// Draw picks a uniform interval within the bounds, both ends included.
func (b Bounds) Draw(src Source) time.Duration {
	b = b.normalized()
	span := b.Right - b.Left
	if span <= 0 {
		return b.Left
	}
	return b.Left + time.Duration(src.Float64()*float64(span+1))
}

// Cadence is the per-group spawn bookkeeping. It is a plain value, so copying
// a group copies its cadence.
type Cadence struct {
	bounds     Bounds
	interval   time.Duration
	lastSpawn  time.Duration
	requesting bool
}

// New starts a cadence at now with a freshly drawn interval.
func New(b Bounds, now time.Duration, src Source) Cadence {
	b = b.normalized()
	return Cadence{
		bounds:    b,
		interval:  b.Draw(src),
		lastSpawn: now,
	}
}

// Bounds returns the current interval bounds.
func (c Cadence) Bounds() Bounds { return c.bounds }

// SetBounds replaces the bounds; they take effect on the next draw.
func (c *Cadence) SetBounds(b Bounds) { c.bounds = b.normalized() }

// Interval returns the current randomized interval.
func (c Cadence) Interval() time.Duration { return c.interval }

// LastSpawn returns the clock reading of the last spawn (or creation).
func (c Cadence) LastSpawn() time.Duration { return c.lastSpawn }

// Elapsed returns the time since the last spawn.
func (c Cadence) Elapsed(now time.Duration) time.Duration { return now - c.lastSpawn }

// Due reports whether the current interval has elapsed.
func (c Cadence) Due(now time.Duration) bool { return c.Elapsed(now) >= c.interval }

// Requesting reports whether the group is currently asking for a spawn.
func (c Cadence) Requesting() bool { return c.requesting }

// SetRequesting records whether the group is asking for a spawn.
func (c *Cadence) SetRequesting(v bool) { c.requesting = v }

// Redraw picks a new interval from the current bounds.
func (c *Cadence) Redraw(src Source) { c.interval = c.bounds.Draw(src) }

// MarkSpawned resets the clock to now and draws the next interval.
func (c *Cadence) MarkSpawned(now time.Duration, src Source) {
	c.lastSpawn = now
	c.requesting = false
	c.Redraw(src)
}
