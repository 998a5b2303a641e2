package testutil

// FixedRand is a random source that always returns the same value in [0, 1).
type FixedRand float64

// Float64 returns f.
func (f FixedRand) Float64() float64 { return float64(f) }

// SeqRand replays values in order and then repeats the last one.
type SeqRand struct {
	Values []float64
	next   int
}

// Float64 returns the next value, 0 when Values is empty.
func (s *SeqRand) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[min(s.next, len(s.Values)-1)]
	s.next++
	return v
}
