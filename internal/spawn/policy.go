package spawn

import (
	"time"

	"github.com/udisondev/tankrun/internal/cadence"
	"github.com/udisondev/tankrun/internal/group"
)

// DefaultStressThreshold is the representative stress at which a group's
// spawn window is pushed back.
const DefaultStressThreshold = 600

// Policy moves cadence bounds according to group stress. A group at or above
// the threshold draws its next interval one goal period later; once its
// stress drops below half the threshold it returns to the standard bounds.
type Policy struct {
	Goal      time.Duration
	Threshold float64
}

// Standard returns the unshifted bounds.
func (p Policy) Standard() cadence.Bounds {
	return cadence.StandardBounds(p.Goal)
}

// Relaxed returns the bounds used while a group is under pressure.
func (p Policy) Relaxed() cadence.Bounds {
	return p.Standard().Shift(p.Goal)
}

// Apply updates the bounds of every group. It returns the number of groups
// whose bounds changed.
func (p Policy) Apply(groups []*group.Group) int {
	changed := 0
	for _, g := range groups {
		c := g.Cadence()
		cur := c.Bounds()

		next := cur
		switch s := g.Stress(); {
		case s >= p.Threshold:
			next = p.Relaxed()
		case s < p.Threshold/2:
			next = p.Standard()
		}

		if next != cur {
			c.SetBounds(next)
			changed++
		}
	}
	return changed
}
