package baserunning

import (
	"testing"

	"github.com/baseball-sim/sim-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTransition(t *testing.T, s State, o models.Outcome, batter string) Result {
	t.Helper()
	res, err := Transition(s, o, batter)
	require.NoError(t, err)
	return res
}

func runnerIDs(s State) []string {
	var ids []string
	for _, b := range []Base{First, Second, Third} {
		if id := s.Runners.At(b); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// TestTransitionInvariants checks every outcome from every base/out state
func TestTransitionInvariants(t *testing.T) {
	states := AllStates()
	require.Len(t, states, 24)

	for _, s := range states {
		for _, o := range models.AllOutcomes {
			before := s
			res := mustTransition(t, s, o, "batter")

			assert.Equal(t, before, s, "current state mutated by %s", o)
			assert.True(t, res.Next.Consistent(), "bases out of sync after %s from %+v", o, s)
			assert.LessOrEqual(t, res.Next.Outs, OutsPerInning)
			assert.Contains(t, []int{s.Outs, s.Outs + 1}, res.Next.Outs, "%s from %+v", o, s)
			assert.Equal(t, res.RunsScored, len(res.ScorerIDs))

			// no runner stands on two bases
			seen := make(map[string]bool)
			for _, id := range runnerIDs(res.Next) {
				assert.False(t, seen[id], "%s duplicated after %s", id, o)
				seen[id] = true
			}

			// everyone is accounted for: on base, scored, or put out
			outs := res.Next.Outs - s.Outs
			assert.Equal(t, s.RunnerCount()+1, res.Next.RunnerCount()+res.RunsScored+outs,
				"runner conservation for %s from %+v", o, s)
		}
	}
}

func TestTransitionUnknownOutcome(t *testing.T) {
	_, err := Transition(NewState(), models.Outcome("balk"), "b")
	assert.ErrorIs(t, err, ErrUnknownOutcome)
}

func TestWalkBasesLoaded(t *testing.T) {
	s := NewStateWith(1, Runners{First: "r1", Second: "r2", Third: "r3"})
	res := mustTransition(t, s, models.Walk, "b")

	assert.Equal(t, 1, res.RunsScored)
	assert.Equal(t, []string{"r3"}, res.ScorerIDs)
	assert.Equal(t, Runners{First: "b", Second: "r1", Third: "r2"}, res.Next.Runners)
	assert.Equal(t, models.Loaded, res.Next.Bases)
	assert.Equal(t, 1, res.Next.Outs)
}

func TestWalkForceOnly(t *testing.T) {
	tests := []struct {
		name    string
		runners Runners
		want    Runners
	}{
		{"empty", Runners{}, Runners{First: "b"}},
		{"runner on second holds", Runners{Second: "r2"}, Runners{First: "b", Second: "r2"}},
		{"runner on third holds", Runners{Third: "r3"}, Runners{First: "b", Third: "r3"}},
		{"first and third", Runners{First: "r1", Third: "r3"}, Runners{First: "b", Second: "r1", Third: "r3"}},
		{"first and second", Runners{First: "r1", Second: "r2"}, Runners{First: "b", Second: "r1", Third: "r2"}},
	}

	for _, o := range []models.Outcome{models.Walk, models.IntentionalWalk, models.HitByPitch, models.CatcherInterference} {
		for _, tt := range tests {
			t.Run(string(o)+"/"+tt.name, func(t *testing.T) {
				res := mustTransition(t, NewStateWith(0, tt.runners), o, "b")
				assert.Equal(t, tt.want, res.Next.Runners)
				assert.Zero(t, res.RunsScored)
				assert.Zero(t, res.Next.Outs)
			})
		}
	}
}

func TestHits(t *testing.T) {
	loaded := Runners{First: "r1", Second: "r2", Third: "r3"}
	tests := []struct {
		outcome models.Outcome
		want    Runners
		runs    int
	}{
		{models.Single, Runners{First: "b", Second: "r1"}, 2},
		{models.Double, Runners{Second: "b", Third: "r1"}, 2},
		{models.Triple, Runners{Third: "b"}, 3},
		{models.HomeRun, Runners{}, 4},
		{models.ReachedOnError, Runners{First: "b", Second: "r1"}, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			res := mustTransition(t, NewStateWith(2, loaded), tt.outcome, "b")
			assert.Equal(t, tt.want, res.Next.Runners)
			assert.Equal(t, tt.runs, res.RunsScored)
			assert.Equal(t, 2, res.Next.Outs)
		})
	}
}

func TestHitProcessingOrder(t *testing.T) {
	s := NewStateWith(0, Runners{First: "r1", Second: "r2", Third: "r3"})
	res := mustTransition(t, s, models.Single, "b")

	require.Len(t, res.Advancement, 4)
	assert.Equal(t, Event{RunnerID: "r3", From: Third, To: Home}, res.Advancement[0])
	assert.Equal(t, Event{RunnerID: "r2", From: Second, To: Home}, res.Advancement[1])
	assert.Equal(t, Event{RunnerID: "r1", From: First, To: Second}, res.Advancement[2])
	assert.Equal(t, Event{RunnerID: "b", From: Bench, To: First}, res.Advancement[3])
}

func TestHomeRunScoresBatter(t *testing.T) {
	res := mustTransition(t, NewState(), models.HomeRun, "b")
	assert.Equal(t, 1, res.RunsScored)
	assert.Equal(t, []string{"b"}, res.ScorerIDs)
	assert.True(t, res.Next.IsEmpty())
}

func TestStrikeout(t *testing.T) {
	s := NewStateWith(1, Runners{Second: "r2"})
	res := mustTransition(t, s, models.Strikeout, "b")
	assert.Equal(t, 2, res.Next.Outs)
	assert.Equal(t, s.Runners, res.Next.Runners)
	assert.Empty(t, res.Advancement)
}

func TestBallInPlayOuts(t *testing.T) {
	runners := Runners{First: "r1", Third: "r3"}
	for _, o := range []models.Outcome{models.GroundOut, models.FlyOut, models.LineOut, models.PopOut} {
		t.Run(string(o), func(t *testing.T) {
			res := mustTransition(t, NewStateWith(0, runners), o, "b")
			assert.Equal(t, 1, res.Next.Outs)
			assert.Equal(t, runners, res.Next.Runners)
			assert.Zero(t, res.RunsScored)

			res = mustTransition(t, NewStateWith(2, runners), o, "b")
			assert.True(t, res.Next.IsInningOver())
			assert.Equal(t, runners, res.Next.Runners, "runners stay for left-on-base")
		})
	}
}

func TestSacrificeFly(t *testing.T) {
	s := NewStateWith(1, Runners{First: "r1", Third: "r3"})
	res := mustTransition(t, s, models.SacrificeFly, "b")
	assert.Equal(t, 1, res.RunsScored)
	assert.Equal(t, []string{"r3"}, res.ScorerIDs)
	assert.Equal(t, 2, res.Next.Outs)
	assert.Equal(t, Runners{First: "r1"}, res.Next.Runners)

	res = mustTransition(t, NewStateWith(2, Runners{Third: "r3"}), models.SacrificeFly, "b")
	assert.Zero(t, res.RunsScored)
	assert.Equal(t, 3, res.Next.Outs)
}

func TestSacrificeBunt(t *testing.T) {
	s := NewStateWith(0, Runners{First: "r1", Second: "r2", Third: "r3"})
	res := mustTransition(t, s, models.SacrificeBunt, "b")
	assert.Equal(t, 1, res.RunsScored)
	assert.Equal(t, Runners{Second: "r1", Third: "r2"}, res.Next.Runners)
	assert.Equal(t, 1, res.Next.Outs)

	res = mustTransition(t, NewStateWith(2, Runners{First: "r1"}), models.SacrificeBunt, "b")
	assert.Equal(t, 3, res.Next.Outs)
	assert.Equal(t, Runners{First: "r1"}, res.Next.Runners)
}

func TestFieldersChoice(t *testing.T) {
	tests := []struct {
		name    string
		runners Runners
		outs    int
		want    Runners
		retired string
		addOut  bool
	}{
		{"bases empty", Runners{}, 0, Runners{First: "b"}, "", false},
		{"runner on first", Runners{First: "r1"}, 0, Runners{First: "b"}, "r1", true},
		{"first and second", Runners{First: "r1", Second: "r2"}, 1, Runners{First: "b", Second: "r1"}, "r2", true},
		{"first and third", Runners{First: "r1", Third: "r3"}, 0, Runners{First: "b", Second: "r1"}, "r3", true},
		{"second only holds", Runners{Second: "r2", Third: "r3"}, 0, Runners{First: "b", Second: "r2"}, "r3", true},
		{"two out ends inning", Runners{First: "r1"}, 2, Runners{First: "b"}, "r1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustTransition(t, NewStateWith(tt.outs, tt.runners), models.FieldersChoice, "b")
			assert.Equal(t, tt.want, res.Next.Runners)
			assert.Equal(t, tt.retired, res.OutRunnerID)
			assert.Zero(t, res.RunsScored)
			if tt.addOut {
				assert.Equal(t, tt.outs+1, res.Next.Outs)
			} else {
				assert.Equal(t, tt.outs, res.Next.Outs)
			}
		})
	}
}

func TestBaseText(t *testing.T) {
	text, err := Third.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "third", string(text))

	var b Base
	require.NoError(t, b.UnmarshalText([]byte("home")))
	assert.Equal(t, Home, b)
	assert.Error(t, b.UnmarshalText([]byte("shortstop")))
}
