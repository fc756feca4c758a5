package baserunning

// batterOut retires the batter and holds every runner. With two out
// already the play ends the half-inning.
func batterOut(current State) Result {
	p := newPlay(current)
	if current.Outs >= OutsPerInning-1 {
		p.endInning()
		return p.finish()
	}
	p.recordOut()
	return p.finish()
}

func groundOut(current State, _ string) Result {
	return batterOut(current)
}

// flyOut holds all runners; no tag-ups
func flyOut(current State, _ string) Result {
	return batterOut(current)
}

func lineOut(current State, _ string) Result {
	return batterOut(current)
}

func popOut(current State, _ string) Result {
	return batterOut(current)
}

// sacrificeFly scores the runner on third when there were fewer than two
// out. Everyone else holds.
func sacrificeFly(current State, _ string) Result {
	p := newPlay(current)
	if current.Outs >= OutsPerInning-1 {
		p.endInning()
		return p.finish()
	}
	p.recordOut()
	p.scoreRunner(Third)
	return p.finish()
}

// sacrificeBunt moves every runner up exactly one base
func sacrificeBunt(current State, _ string) Result {
	p := newPlay(current)
	if current.Outs >= OutsPerInning-1 {
		p.endInning()
		return p.finish()
	}
	p.recordOut()
	p.scoreRunner(Third)
	p.advanceRunner(Second, Third)
	p.advanceRunner(First, Second)
	return p.finish()
}

// fieldersChoice retires the lead runner and puts the batter on first.
// Trailing runners move only when the batter forces them. With nobody on
// there is no one to retire and the batter simply reaches.
func fieldersChoice(current State, batterID string) Result {
	p := newPlay(current)
	if current.IsEmpty() {
		p.placeBatter(batterID, First)
		return p.finish()
	}

	p.retire(current.LeadRunner())
	forceAdvance(p)
	p.placeBatter(batterID, First)
	return p.finish()
}
