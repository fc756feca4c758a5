package models

// Hand is a batting or throwing side
type Hand string

const (
	Left   Hand = "L"
	Right  Hand = "R"
	Switch Hand = "S" // batters only
)

// Opposite returns the other side. Switch has no opposite and maps to Right.
func (h Hand) Opposite() Hand {
	if h == Left {
		return Right
	}
	return Left
}

// SplitRates holds outcome rates conditioned on the opponent's hand.
// For batters and the league table the split is by pitcher throwing hand;
// for pitchers it is by batter side.
type SplitRates struct {
	VsLeft  EventRates `json:"vs_left" yaml:"vs_left"`
	VsRight EventRates `json:"vs_right" yaml:"vs_right"`
}

// For returns the split that applies against an opponent using hand
func (s SplitRates) For(hand Hand) EventRates {
	if hand == Left {
		return s.VsLeft
	}
	return s.VsRight
}

// BatterProfile carries what the matchup model needs about a hitter
type BatterProfile struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Bats Hand   `json:"bats" yaml:"bats"`
	PA   int    `json:"pa" yaml:"pa"`

	SplitRates `yaml:",inline"`
}

// EffectiveHand resolves which side the batter hits from against a pitcher.
// Switch hitters bat opposite the pitcher's throwing hand.
func (b BatterProfile) EffectiveHand(pitcherThrows Hand) Hand {
	if b.Bats == Switch {
		return pitcherThrows.Opposite()
	}
	if b.Bats == Left {
		return Left
	}
	return Right
}

// PitcherProfile carries a pitcher's rates and usage metadata
type PitcherProfile struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Throws Hand   `json:"throws" yaml:"throws"`

	SplitRates `yaml:",inline"`

	// Usage metadata feeding the fatigue thresholds
	AvgBattersFacedAsStarter  float64 `json:"avg_bf_starter" yaml:"avg_bf_starter"`
	AvgBattersFacedAsReliever float64 `json:"avg_bf_reliever" yaml:"avg_bf_reliever"`
	Workhorse                 bool    `json:"workhorse" yaml:"workhorse"`
}

// LeagueProfile holds league-average rates split by pitcher throwing hand
type LeagueProfile struct {
	SplitRates `yaml:",inline"`
}

// Matchup is one batter facing one pitcher in a given league context
type Matchup struct {
	Batter  BatterProfile
	Pitcher PitcherProfile
	League  LeagueProfile
	Park    *ParkFactors      // optional
	Umpire  *UmpireTendencies // optional
}

// BatterHand returns the side the batter hits from in this matchup
func (m Matchup) BatterHand() Hand {
	return m.Batter.EffectiveHand(m.pitcherHand())
}

// BatterRates returns the batter's split against this pitcher
func (m Matchup) BatterRates() EventRates {
	return m.Batter.For(m.pitcherHand())
}

// PitcherRates returns the pitcher's split against this batter
func (m Matchup) PitcherRates() EventRates {
	return m.Pitcher.For(m.BatterHand())
}

// LeagueRates returns the league split against this pitcher's hand
func (m Matchup) LeagueRates() EventRates {
	return m.League.For(m.pitcherHand())
}

func (m Matchup) pitcherHand() Hand {
	if m.Pitcher.Throws == Left {
		return Left
	}
	return Right
}
