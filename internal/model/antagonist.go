package model

import (
	"fmt"
	"time"
)

// Antagonist tracks one antagonist across ticks.
type Antagonist struct {
	id        ActorID
	createdAt time.Duration

	location Location
	progress float64
	target   ActorID
}

// NewAntagonist creates a record from an antagonist observation.
func NewAntagonist(a Actor, env Env) (*Antagonist, error) {
	if a.Kind != KindAntagonist {
		return nil, fmt.Errorf("new antagonist %d from %s actor: %w", a.ID, a.Kind, ErrWrongKind)
	}
	return &Antagonist{
		id:        a.ID,
		createdAt: env.Now,
		location:  a.Location,
		progress:  a.Progress,
		target:    a.Target,
	}, nil
}

// ID returns the antagonist identity.
func (n *Antagonist) ID() ActorID { return n.id }

// Location returns the current position.
func (n *Antagonist) Location() Location { return n.location }

// Progress returns the current route progress.
func (n *Antagonist) Progress() float64 { return n.progress }

// Target returns the current aggro target, if any.
func (n *Antagonist) Target() (ActorID, bool) {
	return n.target, n.target != NoTarget
}

// Update refreshes the record from a new observation. It returns false and
// leaves the record untouched when the identity does not match or the record
// was created less than one tick ago.
func (n *Antagonist) Update(a Actor, env Env) bool {
	if a.ID != n.id || a.Kind != KindAntagonist {
		return false
	}
	if env.Now-n.createdAt < env.Tuning.MinAge {
		return false
	}

	n.location = a.Location
	n.progress = a.Progress
	n.target = a.Target
	return true
}
