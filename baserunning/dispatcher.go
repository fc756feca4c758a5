package baserunning

import (
	"errors"
	"fmt"

	"github.com/baseball-sim/sim-engine/models"
)

// ErrUnknownOutcome is returned by Transition for an outcome outside the
// closed enumeration.
var ErrUnknownOutcome = errors.New("unknown outcome")

// Result is the uniform shape every handler returns
type Result struct {
	Next        State    `json:"next"`
	RunsScored  int      `json:"runs_scored"`
	ScorerIDs   []string `json:"scorer_ids,omitempty"`
	Advancement []Event  `json:"advancement,omitempty"`
	OutRunnerID string   `json:"out_runner_id,omitempty"`
}

type handler func(current State, batterID string) Result

var handlers = map[models.Outcome]handler{
	models.Single:              single,
	models.Double:              double,
	models.Triple:              triple,
	models.HomeRun:             homeRun,
	models.Walk:                walk,
	models.IntentionalWalk:     walk,
	models.HitByPitch:          hitByPitch,
	models.Strikeout:           strikeout,
	models.GroundOut:           groundOut,
	models.FlyOut:              flyOut,
	models.LineOut:             lineOut,
	models.PopOut:              popOut,
	models.SacrificeFly:        sacrificeFly,
	models.SacrificeBunt:       sacrificeBunt,
	models.FieldersChoice:      fieldersChoice,
	models.ReachedOnError:      reachedOnError,
	models.CatcherInterference: catcherInterference,
}

// Transition applies outcome to the current state and returns the resulting
// state, runs and runner movements. The current state is never modified.
func Transition(current State, outcome models.Outcome, batterID string) (Result, error) {
	h, ok := handlers[outcome]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	return h(current, batterID), nil
}

// play accumulates one transition. Every mutation goes through its
// methods so Bases stays in sync with the runner identities.
type play struct {
	next   State
	result Result
}

func newPlay(current State) *play {
	// State is a value type; copying it copies the runners too
	return &play{next: current}
}

// advanceRunner moves whoever is on from to the base to.
// An empty origin is a no-op.
func (p *play) advanceRunner(from, to Base) {
	if to == Home {
		p.scoreRunner(from)
		return
	}
	id := p.next.Runners.At(from)
	if id == "" {
		return
	}
	p.next.Runners.set(from, "")
	p.next.Runners.set(to, id)
	p.event(id, from, to)
}

// scoreRunner sends whoever is on from home
func (p *play) scoreRunner(from Base) {
	id := p.next.Runners.At(from)
	if id == "" {
		return
	}
	p.next.Runners.set(from, "")
	p.score(id, from)
}

// placeBatter puts the batter on base to, or scores them for Home
func (p *play) placeBatter(batterID string, to Base) {
	if to == Home {
		p.score(batterID, Bench)
		return
	}
	p.next.Runners.set(to, batterID)
	p.event(batterID, Bench, to)
}

// retire removes the runner on from as an out
func (p *play) retire(from Base) {
	id := p.next.Runners.At(from)
	if id == "" {
		return
	}
	p.next.Runners.set(from, "")
	p.result.OutRunnerID = id
	p.recordOut()
}

// recordOut adds one out, never past three
func (p *play) recordOut() {
	if p.next.Outs < OutsPerInning {
		p.next.Outs++
	}
	p.sync()
}

// endInning sets the third out without moving anybody
func (p *play) endInning() {
	p.next.Outs = OutsPerInning
	p.sync()
}

func (p *play) score(id string, from Base) {
	p.result.RunsScored++
	p.result.ScorerIDs = append(p.result.ScorerIDs, id)
	p.event(id, from, Home)
}

func (p *play) event(id string, from, to Base) {
	p.result.Advancement = append(p.result.Advancement, Event{RunnerID: id, From: from, To: to})
	p.sync()
}

func (p *play) sync() {
	p.next.Bases = p.next.Runners.Occupancy()
}

func (p *play) finish() Result {
	p.sync()
	p.result.Next = p.next
	return p.result
}
