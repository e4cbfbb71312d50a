// Package rng provides the seeded pseudo-random stream every generation step draws from.
//
// The stream is a mulberry32 generator over a 32-bit state. Next is a pure function of
// the state, so two streams built from the same seed always yield the same sequence.
// Sub-streams are derived by hashing "seed|purpose|key", which keeps unrelated draws
// independent: re-keying one vendor never shifts the numbers another vendor sees.
package rng

import (
	"hash/fnv"
	"strings"
)

// State is the complete state of a stream.
type State uint32

// Seed hashes an arbitrary seed value into an initial state.
func Seed(value string) State {
	h := fnv.New32a()
	h.Write([]byte(value))

	return State(h.Sum32())
}

// Next advances the state and returns a float in [0,1) along with the new state.
func Next(s State) (float64, State) {
	s += 0x6D2B79F5

	t := uint32(s)
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	t ^= t >> 14

	return float64(t) / 4294967296.0, s
}

// Stream is a convenience wrapper that threads a State through successive draws.
// A Stream is not safe for concurrent use; each generation run owns its own.
type Stream struct {
	state State
}

// New returns a stream seeded from value.
func New(value string) *Stream {
	return &Stream{state: Seed(value)}
}

// FromState returns a stream positioned at s.
func FromState(s State) *Stream {
	return &Stream{state: s}
}

// Derive returns an independent stream for the given purpose and key.
func Derive(seed, purpose, key string) *Stream {
	return New(strings.Join([]string{seed, purpose, key}, "|"))
}

// State returns the current position of the stream.
func (s *Stream) State() State {
	return s.state
}

// Float returns the next value in [0,1).
func (s *Stream) Float() float64 {
	v, next := Next(s.state)
	s.state = next

	return v
}

// Int returns a uniform integer in [min, max] inclusive.
// If max < min the bounds are swapped.
func (s *Stream) Int(min, max int) int {
	if max < min {
		min, max = max, min
	}

	return int(s.Float()*float64(max-min+1)) + min
}

// Int64 is Int over int64 bounds, used for amounts in cents.
func (s *Stream) Int64(min, max int64) int64 {
	if max < min {
		min, max = max, min
	}

	return int64(s.Float()*float64(max-min+1)) + min
}

// Bool returns true with probability p.
func (s *Stream) Bool(p float64) bool {
	return s.Float() < p
}

// Pick returns a uniformly chosen element of list. It panics on an empty list.
func Pick[T any](s *Stream, list []T) T {
	return list[s.Int(0, len(list)-1)]
}

// Shuffle permutes list in place with Fisher–Yates driven by s.
func Shuffle[T any](s *Stream, list []T) {
	for i := len(list) - 1; i > 0; i-- {
		j := s.Int(0, i)
		list[i], list[j] = list[j], list[i]
	}
}

// Shuffled returns a shuffled copy of list, leaving list untouched.
func Shuffled[T any](s *Stream, list []T) []T {
	out := append([]T(nil), list...)
	Shuffle(s, out)

	return out
}
