// Package season holds the per-season rate tables the simulator consumes:
// player split rates, league averages, team rosters and parks.
package season

import (
	"errors"
	"fmt"

	"github.com/baseball-sim/sim-engine/matchup"
	"github.com/baseball-sim/sim-engine/models"
)

// LineupSize is the number of batters in a batting order
const LineupSize = 9

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrSeasonNotFound = errors.New("season not found")
	ErrInvalidSeason  = errors.New("invalid season name")
)

// Team is a roster as the season package describes it. Every entry refers
// to a batter or pitcher id in the same package.
type Team struct {
	ID         string             `json:"id" yaml:"id"`
	Name       string             `json:"name" yaml:"name"`
	Lineup     []string           `json:"lineup" yaml:"lineup"`
	Rotation   []string           `json:"rotation" yaml:"rotation"`
	Relievers  []string           `json:"relievers" yaml:"relievers"`
	Setup      []string           `json:"setup,omitempty" yaml:"setup"`
	LongRelief []string           `json:"long_relief,omitempty" yaml:"long_relief"`
	Closer     string             `json:"closer,omitempty" yaml:"closer"`
	Park       models.ParkFactors `json:"park" yaml:"park"`
}

// Package is one season's worth of simulation inputs
type Package struct {
	Season   string                  `json:"season" yaml:"season"`
	League   models.LeagueProfile    `json:"league" yaml:"league"`
	Batters  []models.BatterProfile  `json:"batters" yaml:"batters"`
	Pitchers []models.PitcherProfile `json:"pitchers" yaml:"pitchers"`
	Teams    []Team                  `json:"teams" yaml:"teams"`
}

// Batter looks up a batter by id
func (p *Package) Batter(id string) (models.BatterProfile, error) {
	for _, b := range p.Batters {
		if b.ID == id {
			return b, nil
		}
	}
	return models.BatterProfile{}, fmt.Errorf("batter %s: %w", id, ErrPlayerNotFound)
}

// Pitcher looks up a pitcher by id
func (p *Package) Pitcher(id string) (models.PitcherProfile, error) {
	for _, pp := range p.Pitchers {
		if pp.ID == id {
			return pp, nil
		}
	}
	return models.PitcherProfile{}, fmt.Errorf("pitcher %s: %w", id, ErrPlayerNotFound)
}

// Team looks up a team by id
func (p *Package) Team(id string) (Team, error) {
	for _, t := range p.Teams {
		if t.ID == id {
			return t, nil
		}
	}
	return Team{}, fmt.Errorf("team %s: %w", id, ErrTeamNotFound)
}

// Validate checks every rate vector and every roster reference. All
// problems are reported together.
func (p *Package) Validate() error {
	var errs []error

	for _, side := range []struct {
		name  string
		rates models.EventRates
	}{
		{"vs_left", p.League.VsLeft},
		{"vs_right", p.League.VsRight},
	} {
		if err := matchup.ValidateRates(matchup.SideLeague, side.rates); err != nil {
			errs = append(errs, fmt.Errorf("league %s: %w", side.name, err))
		}
	}

	for _, b := range p.Batters {
		errs = append(errs, validateSplits(matchup.SideBatter, b.ID, b.SplitRates)...)
	}
	for _, pp := range p.Pitchers {
		errs = append(errs, validateSplits(matchup.SidePitcher, pp.ID, pp.SplitRates)...)
	}

	for _, t := range p.Teams {
		errs = append(errs, p.validateTeam(t)...)
	}

	return errors.Join(errs...)
}

func validateSplits(side matchup.Side, id string, rates models.SplitRates) []error {
	var errs []error
	if err := matchup.ValidateRates(side, rates.VsLeft); err != nil {
		errs = append(errs, fmt.Errorf("%s %s vs_left: %w", side, id, err))
	}
	if err := matchup.ValidateRates(side, rates.VsRight); err != nil {
		errs = append(errs, fmt.Errorf("%s %s vs_right: %w", side, id, err))
	}
	return errs
}

func (p *Package) validateTeam(t Team) []error {
	var errs []error

	if len(t.Lineup) != LineupSize {
		errs = append(errs, fmt.Errorf("team %s: lineup has %d batters, want %d", t.ID, len(t.Lineup), LineupSize))
	}
	for _, id := range t.Lineup {
		if _, err := p.Batter(id); err != nil {
			errs = append(errs, fmt.Errorf("team %s lineup: %w", t.ID, err))
		}
	}

	if len(t.Rotation) == 0 {
		errs = append(errs, fmt.Errorf("team %s: empty rotation", t.ID))
	}

	staff := append(append(append(append([]string{}, t.Rotation...), t.Relievers...), t.Setup...), t.LongRelief...)
	if t.Closer != "" {
		staff = append(staff, t.Closer)
	}
	for _, id := range staff {
		if _, err := p.Pitcher(id); err != nil {
			errs = append(errs, fmt.Errorf("team %s staff: %w", t.ID, err))
		}
	}

	return errs
}
