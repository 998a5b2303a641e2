// Package tracker reconciles each tick's raw actor observations with the
// records tracked on the previous tick.
package tracker

import (
	"fmt"

	"github.com/udisondev/tankrun/internal/model"
)

// Record is a tracked actor that can absorb a new observation.
type Record interface {
	ID() model.ActorID
	Update(a model.Actor, env model.Env) bool
}

// Constructor builds a record for an actor seen for the first time.
type Constructor[R Record] func(a model.Actor, env model.Env) (R, error)

// Reconcile returns this tick's records, one per observation and in the same
// order. Observations matching a previous record by identity update it in
// place; the rest get a new record. Previous records without an observation
// are dropped. A constructor error aborts the tick.
func Reconcile[R Record](observed []model.Actor, prev []R, create Constructor[R], env model.Env) ([]R, error) {
	if len(observed) == 0 {
		return nil, nil
	}

	out := make([]R, 0, len(observed))
	for _, a := range observed {
		rec, found := find(prev, a.ID)
		if found {
			// a rejected update keeps the record as it was
			rec.Update(a, env)
			out = append(out, rec)
			continue
		}

		rec, err := create(a, env)
		if err != nil {
			return nil, fmt.Errorf("tracking actor %d: %w", a.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func find[R Record](records []R, id model.ActorID) (R, bool) {
	for _, r := range records {
		if r.ID() == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// Players reconciles player observations.
func Players(observed []model.Actor, prev []*model.Player, env model.Env) ([]*model.Player, error) {
	return Reconcile(observed, prev, model.NewPlayer, env)
}

// Antagonists reconciles antagonist observations.
func Antagonists(observed []model.Actor, prev []*model.Antagonist, env model.Env) ([]*model.Antagonist, error) {
	return Reconcile(observed, prev, model.NewAntagonist, env)
}
