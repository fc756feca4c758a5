package simulation

import "github.com/baseball-sim/sim-engine/models"

// BatterLine is one batter's line in the box score
type BatterLine struct {
	PlayerID string `json:"player_id"`
	PA       int    `json:"pa"`
	AB       int    `json:"ab"`
	H        int    `json:"h"`
	HR       int    `json:"hr"`
	BB       int    `json:"bb"`
	SO       int    `json:"so"`
	RBI      int    `json:"rbi"`
	R        int    `json:"r"`
}

// PitcherLine is one pitcher's line in the box score
type PitcherLine struct {
	PlayerID string `json:"player_id"`
	BF       int    `json:"bf"`
	H        int    `json:"h"`
	BB       int    `json:"bb"`
	SO       int    `json:"so"`
	R        int    `json:"r"`
	Pitches  int    `json:"pitches"`
}

// TeamBox is one team's half of the box score
type TeamBox struct {
	TeamID     string        `json:"team_id"`
	LineScore  []int         `json:"line_score"`
	Runs       int           `json:"runs"`
	Hits       int           `json:"hits"`
	LeftOnBase int           `json:"left_on_base"`
	Batting    []BatterLine  `json:"batting"`
	Pitching   []PitcherLine `json:"pitching"`
}

// PlateAppearances totals the team's plate appearances
func (t TeamBox) PlateAppearances() int {
	total := 0
	for _, b := range t.Batting {
		total += b.PA
	}
	return total
}

// BoxScore summarises a game by team
type BoxScore struct {
	Home TeamBox `json:"home"`
	Away TeamBox `json:"away"`
}

// boxBuilder keeps lines in order of first appearance
type boxBuilder struct {
	box      *TeamBox
	batters  map[string]int
	pitchers map[string]int
}

func newBoxBuilder(box *TeamBox) *boxBuilder {
	return &boxBuilder{box: box, batters: make(map[string]int), pitchers: make(map[string]int)}
}

func (b *boxBuilder) batter(id string) *BatterLine {
	i, ok := b.batters[id]
	if !ok {
		i = len(b.box.Batting)
		b.batters[id] = i
		b.box.Batting = append(b.box.Batting, BatterLine{PlayerID: id})
	}
	return &b.box.Batting[i]
}

func (b *boxBuilder) pitcher(id string) *PitcherLine {
	i, ok := b.pitchers[id]
	if !ok {
		i = len(b.box.Pitching)
		b.pitchers[id] = i
		b.box.Pitching = append(b.box.Pitching, PitcherLine{PlayerID: id})
	}
	return &b.box.Pitching[i]
}

func (b *boxBuilder) inning(n int) {
	for len(b.box.LineScore) < n {
		b.box.LineScore = append(b.box.LineScore, 0)
	}
}

// NewBoxScore derives the box score from the play-by-play
func NewBoxScore(homeID, awayID string, events []PlayEvent) BoxScore {
	box := BoxScore{
		Home: TeamBox{TeamID: homeID},
		Away: TeamBox{TeamID: awayID},
	}
	home, away := newBoxBuilder(&box.Home), newBoxBuilder(&box.Away)

	for _, ev := range events {
		batting, fielding := away, home
		if ev.Half == models.Bottom {
			batting, fielding = home, away
		}
		batting.inning(ev.Inning)

		line := batting.batter(ev.BatterID)
		line.PA++
		if ev.Outcome.IsAtBat() {
			line.AB++
		}
		if ev.Outcome.IsHit() {
			line.H++
			batting.box.Hits++
		}
		switch ev.Outcome {
		case models.HomeRun:
			line.HR++
		case models.Walk, models.IntentionalWalk:
			line.BB++
		case models.Strikeout:
			line.SO++
		}
		if ev.Outcome != models.ReachedOnError {
			line.RBI += ev.RunsScored
		}
		for _, id := range ev.ScorerIDs {
			batting.batter(id).R++
		}

		batting.box.LineScore[ev.Inning-1] += ev.RunsScored
		batting.box.Runs += ev.RunsScored
		if ev.OutsAfter >= 3 {
			batting.box.LeftOnBase += ev.After.RunnerCount()
		}

		p := fielding.pitcher(ev.PitcherID)
		p.BF++
		p.Pitches += ev.Pitches
		p.R += ev.RunsScored
		if ev.Outcome.IsHit() {
			p.H++
		}
		if ev.Outcome.IsWalk() || ev.Outcome == models.HitByPitch {
			p.BB++
		}
		if ev.Outcome == models.Strikeout {
			p.SO++
		}
	}

	// a skipped bottom half still shows in the line score
	for len(box.Home.LineScore) < len(box.Away.LineScore) {
		box.Home.LineScore = append(box.Home.LineScore, 0)
	}
	return box
}
