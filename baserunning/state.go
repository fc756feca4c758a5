// Package baserunning implements the 24-state base/out machine that turns a
// plate appearance outcome into runner movement, runs and outs.
//
// Every handler is a pure function of the current state. The returned state
// reports the true out count, capped at 3; when it reaches 3 the runners are
// left where they stood so the caller can count them as left on base, and the
// caller is responsible for starting the next half-inning from NewState.
package baserunning

import (
	"fmt"

	"github.com/baseball-sim/sim-engine/models"
)

// OutsPerInning is the out count that ends a half-inning
const OutsPerInning = 3

// Base names a place a runner can come from or move to
type Base int

const (
	Bench Base = iota // the batter before the play
	First
	Second
	Third
	Home
	Dugout // put out on the bases; reserved, not emitted yet
)

var baseNames = map[Base]string{
	Bench:  "bench",
	First:  "first",
	Second: "second",
	Third:  "third",
	Home:   "home",
	Dugout: "dugout",
}

func (b Base) String() string {
	if name, ok := baseNames[b]; ok {
		return name
	}
	return fmt.Sprintf("base(%d)", int(b))
}

// MarshalText encodes the base by name so events read well in JSON
func (b Base) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a base name
func (b *Base) UnmarshalText(text []byte) error {
	for base, name := range baseNames {
		if name == string(text) {
			*b = base
			return nil
		}
	}
	return fmt.Errorf("unknown base %q", string(text))
}

// bit returns the occupancy bit of a base, or 0 for non-bag positions
func (b Base) bit() uint8 {
	switch b {
	case First:
		return models.OnFirst
	case Second:
		return models.OnSecond
	case Third:
		return models.OnThird
	}
	return 0
}

// Runners holds the identity of the runner on each base; "" means empty
type Runners struct {
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
	Third  string `json:"third,omitempty"`
}

// At returns the runner standing on base b
func (r Runners) At(b Base) string {
	switch b {
	case First:
		return r.First
	case Second:
		return r.Second
	case Third:
		return r.Third
	}
	return ""
}

func (r *Runners) set(b Base, id string) {
	switch b {
	case First:
		r.First = id
	case Second:
		r.Second = id
	case Third:
		r.Third = id
	}
}

// Occupancy returns the 3-bit summary of non-empty bases
func (r Runners) Occupancy() uint8 {
	var bases uint8
	for _, b := range []Base{First, Second, Third} {
		if r.At(b) != "" {
			bases |= b.bit()
		}
	}
	return bases
}

// State is the outs and runners of the current half-inning
type State struct {
	Outs    int     `json:"outs"`
	Bases   uint8   `json:"bases"`
	Runners Runners `json:"runners"`
}

// NewState returns the empty, no-out state that starts every half-inning
func NewState() State {
	return State{}
}

// NewStateWith builds a state from outs and runner identities, deriving Bases
func NewStateWith(outs int, runners Runners) State {
	return State{
		Outs:    outs,
		Bases:   runners.Occupancy(),
		Runners: runners,
	}
}

// Occupied reports whether a runner stands on base b
func (s State) Occupied(b Base) bool {
	return s.Runners.At(b) != ""
}

// Consistent reports whether Bases matches the runner identities
func (s State) Consistent() bool {
	return s.Bases == s.Runners.Occupancy()
}

// RunnerCount returns the number of runners on base
func (s State) RunnerCount() int {
	count := 0
	for _, b := range []Base{First, Second, Third} {
		if s.Occupied(b) {
			count++
		}
	}
	return count
}

// IsEmpty checks if all bases are empty
func (s State) IsEmpty() bool {
	return s.RunnerCount() == 0
}

// LeadRunner returns the base of the runner furthest advanced, or Bench
// when nobody is on.
func (s State) LeadRunner() Base {
	for _, b := range []Base{Third, Second, First} {
		if s.Occupied(b) {
			return b
		}
	}
	return Bench
}

// IsInningOver checks if the half-inning has ended
func (s State) IsInningOver() bool {
	return s.Outs >= OutsPerInning
}

// RunnersInScoringPosition reports a runner on second or third
func (s State) RunnersInScoringPosition() bool {
	return s.Occupied(Second) || s.Occupied(Third)
}

// Event records one runner moving during a play
type Event struct {
	RunnerID string `json:"runner_id"`
	From     Base   `json:"from"`
	To       Base   `json:"to"`
}

// AllStates enumerates the 24 reachable base/out states (0-2 outs, 8
// occupancies) using placeholder runner identities r1, r2 and r3.
func AllStates() []State {
	states := make([]State, 0, 24)
	for outs := 0; outs < OutsPerInning; outs++ {
		for bases := uint8(0); bases < 8; bases++ {
			var runners Runners
			if bases&models.OnFirst != 0 {
				runners.First = "r1"
			}
			if bases&models.OnSecond != 0 {
				runners.Second = "r2"
			}
			if bases&models.OnThird != 0 {
				runners.Third = "r3"
			}
			states = append(states, NewStateWith(outs, runners))
		}
	}
	return states
}
