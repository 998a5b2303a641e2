// Package spawn owns everything between a group asking for an antagonist and
// the host placing one: the pending-spawn queue, the executor boundary and
// the stress-driven cadence policy.
package spawn

import (
	"sync"
	"time"
)

// DefaultLimit is the live antagonist ceiling.
const DefaultLimit = 22

// Queue counts antagonists waiting to be placed. One entry is added every
// goal period; entries are consumed only while the live antagonist count is
// under the limit.
type Queue struct {
	mu sync.Mutex

	goal  time.Duration
	limit int

	pending    int
	lastRefill time.Duration
}

// NewQueue creates an empty queue whose refill clock starts at now.
func NewQueue(goal time.Duration, limit int, now time.Duration) *Queue {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Queue{
		goal:       goal,
		limit:      limit,
		lastRefill: now,
	}
}

// Refill adds one pending entry per goal period elapsed since the previous
// refill and returns how many were added. Pending entries never exceed the
// limit.
func (q *Queue) Refill(now time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.goal <= 0 {
		return 0
	}

	added := 0
	for now-q.lastRefill >= q.goal {
		q.lastRefill += q.goal
		if q.pending < q.limit {
			q.pending++
			added++
		}
	}
	return added
}

// Take consumes one entry if any is pending and live is under the limit.
func (q *Queue) Take(live int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending == 0 || live >= q.limit {
		return false
	}
	q.pending--
	return true
}

// Return puts back an entry whose dispatch failed.
func (q *Queue) Return() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending < q.limit {
		q.pending++
	}
}

// Pending returns the number of waiting entries.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Limit returns the live antagonist ceiling.
func (q *Queue) Limit() int { return q.limit }
