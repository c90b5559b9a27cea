// Package prng is the deterministic random source shared by every consumer in
// the simulation. It is a plain xorshift64: a pure function of its seed, with
// the full generator state part of the serialized snapshot. The algorithm is
// swappable, but the contract is fixed — seeded, uniform integers in [0,n),
// and a strict draw order dictated by the tick's update sequence.
package prng

type Source struct {
	state uint64
}

func New(seed uint64) *Source {
	if seed == 0 {
		seed = 1
	}
	return &Source{state: seed}
}

func (s *Source) Next() uint64 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return x
}

// Intn returns a uniform integer in [0,n). n <= 0 returns 0 so callers never
// need to branch on degenerate ranges.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Next() % uint64(n))
}

// Chance rolls one draw and reports true with probability num/den. It always
// consumes exactly one draw regardless of outcome.
func (s *Source) Chance(num, den int) bool {
	if den <= 0 {
		return false
	}
	return s.Intn(den) < num
}

// State exposes the raw generator state for snapshotting.
func (s *Source) State() uint64 { return s.state }

// SetState restores the generator to a snapshotted state.
func (s *Source) SetState(v uint64) {
	if v == 0 {
		v = 1
	}
	s.state = v
}
