// Package randomtest provides a scripted random.Source for deterministic tests.
package randomtest

import "fmt"

// Sequence replays queued values in order. Each value must fall inside the
// range requested by the caller, which catches tests scripted against the
// wrong draw order.
type Sequence struct {
	values []int
	next   int
	Calls  [][2]int
}

// NewSequence returns a Sequence that yields values in order.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// UniformInt returns the next scripted value. It panics when the script is
// exhausted or the value lies outside [min, max].
func (s *Sequence) UniformInt(min, max int) int {
	s.Calls = append(s.Calls, [2]int{min, max})
	if s.next >= len(s.values) {
		panic(fmt.Sprintf("randomtest: sequence exhausted at draw %d for [%d,%d]", s.next+1, min, max))
	}
	v := s.values[s.next]
	s.next++
	if v < min || v > max {
		panic(fmt.Sprintf("randomtest: value %d outside [%d,%d] at draw %d", v, min, max, s.next))
	}
	return v
}

// Remaining reports how many scripted values have not been consumed.
func (s *Sequence) Remaining() int {
	return len(s.values) - s.next
}
