package director

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tankrun/internal/model"
	"github.com/udisondev/tankrun/internal/spawn"
	"github.com/udisondev/tankrun/internal/window"
)

type scriptedHost struct {
	frames []Frame
	next   int
	loop   bool
}

func (h *scriptedHost) Frame(context.Context) (Frame, error) {
	if h.next >= len(h.frames) {
		if !h.loop {
			return Frame{}, ErrEndOfRun
		}
		last := h.frames[len(h.frames)-1]
		last.Clock += time.Duration(h.next-len(h.frames)+1) * tick
		h.next++
		return last, nil
	}
	f := h.frames[h.next]
	h.next++
	return f, nil
}

type collector struct {
	mu      sync.Mutex
	reports []Report
	err     error
}

func (c *collector) Publish(_ context.Context, r Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
	return c.err
}

func (c *collector) all() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Report(nil), c.reports...)
}

func clocks(n int, step time.Duration, actors ...model.Actor) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = frame(time.Duration(i)*step, actors...)
	}
	return frames
}

func TestRunner_Replay(t *testing.T) {
	host := &scriptedHost{frames: clocks(5, tick, player(1, 0, 100), player(2, 5000, 50))}
	sink := &collector{}

	r := NewRunner(NewEngine(DefaultParams(), fixed(0.5)), host, nil, "run-1", sink)
	require.NoError(t, r.Replay(context.Background()))

	reports := sink.all()
	require.Len(t, reports, 5)
	for i, rep := range reports {
		assert.Equal(t, uint64(i+1), rep.Tick)
		assert.Equal(t, "run-1", rep.RunID)
		assert.Len(t, rep.Groups, 2)
	}
	assert.Equal(t, uint64(5), r.Ticks())
	require.NotNil(t, r.Last())
	assert.Equal(t, uint64(5), r.Last().Tick)
}

func TestRunner_DispatchesFromQueue(t *testing.T) {
	params := DefaultParams()
	params.GoalFrequency = time.Second

	var calls []spawn.Request
	exec := spawn.ExecutorFunc(func(_ context.Context, req spawn.Request) error {
		calls = append(calls, req)
		return nil
	})
	queue := spawn.NewQueue(params.GoalFrequency, params.AntagonistLimit, 0)
	d := spawn.NewDispatcher(queue, exec, fixed(0))

	host := &scriptedHost{frames: clocks(4, 500*time.Millisecond, player(1, 0, 100))}
	sink := &collector{}

	r := NewRunner(NewEngine(params, fixed(0)), host, d, "", sink)
	require.NoError(t, r.Replay(context.Background()))

	reports := sink.all()
	require.Len(t, reports, 4)
	assert.Empty(t, reports[0].Spawned)
	assert.Empty(t, reports[1].Spawned)
	require.Len(t, reports[2].Spawned, 1, "first refill lands at 1s")
	assert.Empty(t, reports[3].Spawned, "queue drained")

	require.Len(t, calls, 1)
	assert.Equal(t, model.ActorID(1), calls[0].Group)
	assert.Equal(t, 0, reports[3].Pending)
}

func TestRunner_StepErrorHalts(t *testing.T) {
	params := DefaultParams()
	params.Tuning.BehaviorSamples = 0

	host := &scriptedHost{frames: clocks(3, tick, player(1, 0, 0))}
	sink := &collector{}
	r := NewRunner(NewEngine(params, fixed(0.5)), host, nil, "", sink)

	err := r.Replay(context.Background())
	assert.True(t, errors.Is(err, window.ErrCapacity))
	assert.Empty(t, sink.all())
	assert.Equal(t, uint64(0), r.Ticks())
}

func TestRunner_SinkErrorIsNotFatal(t *testing.T) {
	host := &scriptedHost{frames: clocks(3, tick, player(1, 0, 0))}
	failing := &collector{err: errors.New("disk full")}
	ok := &collector{}

	r := NewRunner(NewEngine(DefaultParams(), fixed(0.5)), host, nil, "", failing, ok)
	require.NoError(t, r.Replay(context.Background()))

	assert.Len(t, failing.all(), 3)
	assert.Len(t, ok.all(), 3)
}

func TestRunner_StartEndsWithHost(t *testing.T) {
	params := DefaultParams()
	params.TickInterval = time.Millisecond

	host := &scriptedHost{frames: clocks(3, tick, player(1, 0, 0))}
	sink := &collector{}
	r := NewRunner(NewEngine(params, fixed(0.5)), host, nil, "", sink)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, r.Start(ctx))
	assert.Len(t, sink.all(), 3)
}

func TestRunner_Stop(t *testing.T) {
	params := DefaultParams()
	params.TickInterval = time.Millisecond

	host := &scriptedHost{frames: clocks(1, tick, player(1, 0, 0)), loop: true}
	r := NewRunner(NewEngine(params, fixed(0.5)), host, nil, "")

	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()

	require.Eventually(t, func() bool { return r.Ticks() >= 3 }, 5*time.Second, time.Millisecond)
	r.Stop()
	r.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_ContextCanceled(t *testing.T) {
	host := &scriptedHost{frames: clocks(1, tick, player(1, 0, 0)), loop: true}
	r := NewRunner(NewEngine(DefaultParams(), fixed(0.5)), host, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, errors.Is(r.Start(ctx), context.Canceled))
	assert.True(t, errors.Is(r.Replay(ctx), context.Canceled))
}
