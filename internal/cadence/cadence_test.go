package cadence

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixed float64

func (f fixed) Float64() float64 { return float64(f) }

func TestStandardBounds(t *testing.T) {
	b := StandardBounds(5 * time.Second)
	assert.Equal(t, Bounds{Left: 0, Right: 10 * time.Second}, b)
	assert.Equal(t, Bounds{Left: 5 * time.Second, Right: 15 * time.Second}, b.Shift(5*time.Second))
}

func TestBounds_Draw(t *testing.T) {
	b := Bounds{Left: 2 * time.Second, Right: 4 * time.Second}

	assert.Equal(t, 2*time.Second, b.Draw(fixed(0)))
	assert.Equal(t, 3*time.Second, b.Draw(fixed(0.5)).Round(time.Millisecond))

	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		d := b.Draw(rng)
		assert.GreaterOrEqual(t, d, b.Left)
		assert.LessOrEqual(t, d, b.Right)
	}
}

func TestBounds_DrawDegenerate(t *testing.T) {
	assert.Equal(t, time.Second, Bounds{Left: time.Second, Right: time.Second}.Draw(fixed(0.9)))

	swapped := Bounds{Left: 4 * time.Second, Right: 2 * time.Second}
	assert.Equal(t, 2*time.Second, swapped.Draw(fixed(0)))

	negative := Bounds{Left: -time.Second, Right: 0}
	assert.Equal(t, time.Duration(0), negative.Draw(fixed(0.5)))
}

func TestCadence_Due(t *testing.T) {
	c := New(Bounds{Left: 3 * time.Second, Right: 3 * time.Second}, 10*time.Second, fixed(0))

	assert.Equal(t, 3*time.Second, c.Interval())
	assert.Equal(t, 10*time.Second, c.LastSpawn())
	assert.False(t, c.Due(12*time.Second))
	assert.True(t, c.Due(13*time.Second))
	assert.Equal(t, 4*time.Second, c.Elapsed(14*time.Second))
}

func TestCadence_MarkSpawned(t *testing.T) {
	c := New(Bounds{Left: time.Second, Right: time.Second}, 0, fixed(0))
	c.SetRequesting(true)
	c.SetBounds(Bounds{Left: 5 * time.Second, Right: 5 * time.Second})

	assert.Equal(t, time.Second, c.Interval(), "bounds apply on the next draw")

	c.MarkSpawned(20*time.Second, fixed(0))
	assert.Equal(t, 20*time.Second, c.LastSpawn())
	assert.Equal(t, 5*time.Second, c.Interval())
	assert.False(t, c.Requesting())
}

func TestCadence_CopyIsIndependent(t *testing.T) {
	a := New(StandardBounds(5*time.Second), 0, fixed(0.5))
	b := a
	b.MarkSpawned(7*time.Second, fixed(0))

	assert.Equal(t, time.Duration(0), a.LastSpawn())
	assert.Equal(t, 7*time.Second, b.LastSpawn())
}
