package simulation

import (
	"fmt"

	"github.com/baseball-sim/sim-engine/matchup"
	"github.com/baseball-sim/sim-engine/models"
	"github.com/baseball-sim/sim-engine/season"
)

// Team is an immutable game-ready roster. Every game builds its own
// bullpen from it, so one Team can be shared by concurrent games.
type Team struct {
	ID     string
	Name   string
	Lineup []models.BatterProfile
	Park   models.ParkFactors

	Rotation   []models.PitcherProfile
	Relievers  []models.PitcherProfile
	Setup      []models.PitcherProfile
	LongRelief []models.PitcherProfile
	Closer     *models.PitcherProfile

	pitchers map[string]models.PitcherProfile
}

// BuildTeam resolves a season team into profiles. Batter rates are
// regressed toward the league by plate appearances.
func BuildTeam(pkg *season.Package, teamID string, regressionThreshold int) (*Team, error) {
	st, err := pkg.Team(teamID)
	if err != nil {
		return nil, err
	}

	team := &Team{
		ID:       st.ID,
		Name:     st.Name,
		Park:     st.Park,
		pitchers: make(map[string]models.PitcherProfile),
	}

	for _, id := range st.Lineup {
		b, err := pkg.Batter(id)
		if err != nil {
			return nil, fmt.Errorf("team %s lineup: %w", teamID, err)
		}
		team.Lineup = append(team.Lineup, regressBatter(b, pkg.League, regressionThreshold))
	}
	if len(team.Lineup) == 0 {
		return nil, fmt.Errorf("team %s: empty lineup", teamID)
	}

	resolve := func(ids []string) ([]models.PitcherProfile, error) {
		var out []models.PitcherProfile
		for _, id := range ids {
			p, err := pkg.Pitcher(id)
			if err != nil {
				return nil, fmt.Errorf("team %s staff: %w", teamID, err)
			}
			team.pitchers[p.ID] = p
			out = append(out, p)
		}
		return out, nil
	}

	if team.Rotation, err = resolve(st.Rotation); err != nil {
		return nil, err
	}
	if len(team.Rotation) == 0 {
		return nil, fmt.Errorf("team %s: empty rotation", teamID)
	}
	if team.Relievers, err = resolve(st.Relievers); err != nil {
		return nil, err
	}
	if team.Setup, err = resolve(st.Setup); err != nil {
		return nil, err
	}
	if team.LongRelief, err = resolve(st.LongRelief); err != nil {
		return nil, err
	}
	if st.Closer != "" {
		closer, err := resolve([]string{st.Closer})
		if err != nil {
			return nil, err
		}
		team.Closer = &closer[0]
	}

	return team, nil
}

func regressBatter(b models.BatterProfile, league models.LeagueProfile, threshold int) models.BatterProfile {
	b.SplitRates = models.SplitRates{
		VsLeft:  matchup.RegressRates(b.VsLeft, league.VsLeft, b.PA, threshold),
		VsRight: matchup.RegressRates(b.VsRight, league.VsRight, b.PA, threshold),
	}
	return b
}

// StartingPitcher returns the rotation turn for a given game number
func (t *Team) StartingPitcher(gameNumber int) models.PitcherProfile {
	i := gameNumber % len(t.Rotation)
	if i < 0 {
		i = -i
	}
	return t.Rotation[i]
}

// Pitcher looks up a staff member by id
func (t *Team) Pitcher(id string) (models.PitcherProfile, bool) {
	p, ok := t.pitchers[id]
	return p, ok
}

// NewBullpen builds a fresh, game-owned bullpen around starter. The rest
// of the rotation is not available in relief.
func (t *Team) NewBullpen(starter models.PitcherProfile) *models.BullpenState {
	roles := func(profiles []models.PitcherProfile) []models.PitcherRole {
		out := make([]models.PitcherRole, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, models.NewPitcherRole(p, models.RoleReliever))
		}
		return out
	}

	bullpen := &models.BullpenState{
		Starter:    models.NewPitcherRole(starter, models.RoleStarter),
		Relievers:  roles(t.Relievers),
		Setup:      roles(t.Setup),
		LongRelief: roles(t.LongRelief),
	}
	if t.Closer != nil {
		closer := models.NewPitcherRole(*t.Closer, models.RoleCloser)
		bullpen.Closer = &closer
	}
	bullpen.MarkUsed(starter.ID)
	return bullpen
}
