package baserunning

import "github.com/baseball-sim/sim-engine/models"

// hitAdvance is where each runner ends up on a clean hit. Runners never take
// an extra base on speed.
type hitAdvance struct {
	fromThird  Base
	fromSecond Base
	fromFirst  Base
	batter     Base
}

var hitTable = map[models.Outcome]hitAdvance{
	models.Single:  {fromThird: Home, fromSecond: Home, fromFirst: Second, batter: First},
	models.Double:  {fromThird: Home, fromSecond: Home, fromFirst: Third, batter: Second},
	models.Triple:  {fromThird: Home, fromSecond: Home, fromFirst: Home, batter: Third},
	models.HomeRun: {fromThird: Home, fromSecond: Home, fromFirst: Home, batter: Home},
}

func hit(current State, batterID string, adv hitAdvance) Result {
	p := newPlay(current)
	p.advanceRunner(Third, adv.fromThird)
	p.advanceRunner(Second, adv.fromSecond)
	p.advanceRunner(First, adv.fromFirst)
	p.placeBatter(batterID, adv.batter)
	return p.finish()
}

func single(current State, batterID string) Result {
	return hit(current, batterID, hitTable[models.Single])
}

func double(current State, batterID string) Result {
	return hit(current, batterID, hitTable[models.Double])
}

func triple(current State, batterID string) Result {
	return hit(current, batterID, hitTable[models.Triple])
}

func homeRun(current State, batterID string) Result {
	return hit(current, batterID, hitTable[models.HomeRun])
}

// reachedOnError moves everyone like a single; nobody is put out
func reachedOnError(current State, batterID string) Result {
	return hit(current, batterID, hitTable[models.Single])
}

// forceAdvance pushes runners ahead of a batter taking first. A runner moves
// only when every base behind them is occupied; with the bases loaded the
// runner on third is forced home.
func forceAdvance(p *play) {
	forcedFromFirst := p.next.Occupied(First)
	forcedFromSecond := forcedFromFirst && p.next.Occupied(Second)
	forcedFromThird := forcedFromSecond && p.next.Occupied(Third)

	if forcedFromThird {
		p.scoreRunner(Third)
	}
	if forcedFromSecond {
		p.advanceRunner(Second, Third)
	}
	if forcedFromFirst {
		p.advanceRunner(First, Second)
	}
}

func walk(current State, batterID string) Result {
	p := newPlay(current)
	forceAdvance(p)
	p.placeBatter(batterID, First)
	return p.finish()
}

func hitByPitch(current State, batterID string) Result {
	return walk(current, batterID)
}

// catcherInterference awards first exactly like a walk
func catcherInterference(current State, batterID string) Result {
	return walk(current, batterID)
}

func strikeout(current State, _ string) Result {
	p := newPlay(current)
	p.recordOut()
	return p.finish()
}
