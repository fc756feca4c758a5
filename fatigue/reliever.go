package fatigue

import "github.com/baseball-sim/sim-engine/models"

// Situation thresholds for reliever selection
const (
	BlowoutMargin      = 5
	LateInningLeverage = 1.2
	EarlyInnings       = 5
)

// SelectReliever picks the next pitcher out of the bullpen. It returns false
// when nobody eligible is left; that is a normal result, not an error.
func SelectReliever(gs models.GameSituation, bullpen *models.BullpenState, excludeID string) (models.PitcherRole, bool) {
	if bullpen == nil {
		return models.PitcherRole{}, false
	}

	arms := newPool(bullpen, excludeID)
	if arms.empty() {
		return models.PitcherRole{}, false
	}

	diff := gs.ScoreDiff()
	var order [][]models.PitcherRole

	switch {
	case abs(diff) >= BlowoutMargin:
		// save high-leverage arms
		order = [][]models.PitcherRole{arms.generic, arms.longRelief, arms.setup, arms.closer}
	case gs.IsSaveSituation():
		order = [][]models.PitcherRole{arms.closer, arms.setup, arms.generic, arms.longRelief}
	case gs.Inning >= 7 && gs.Inning <= 8 && CalculateLeverageIndex(gs) >= LateInningLeverage:
		order = [][]models.PitcherRole{arms.setup, arms.generic, arms.longRelief, arms.closer}
	case gs.Inning <= EarlyInnings:
		order = [][]models.PitcherRole{arms.longRelief, arms.generic, arms.setup, arms.closer}
	default:
		order = [][]models.PitcherRole{arms.generic, arms.longRelief, arms.setup, arms.closer}
	}

	for _, group := range order {
		if len(group) > 0 {
			return entering(group[0], bullpen), true
		}
	}
	return models.PitcherRole{}, false
}

// pool splits the available arms into the groups selection works with
type pool struct {
	generic    []models.PitcherRole
	setup      []models.PitcherRole
	longRelief []models.PitcherRole
	closer     []models.PitcherRole
}

func newPool(b *models.BullpenState, excludeID string) pool {
	var p pool
	isLong := make(map[string]bool)
	for _, r := range b.LongRelief {
		isLong[r.PitcherID] = true
	}

	for _, r := range b.Available() {
		if r.PitcherID == excludeID {
			continue
		}
		switch {
		case b.IsCloser(r.PitcherID):
			p.closer = append(p.closer, r)
		case b.IsSetup(r.PitcherID):
			p.setup = append(p.setup, r)
		case isLong[r.PitcherID]:
			p.longRelief = append(p.longRelief, r)
		default:
			p.generic = append(p.generic, r)
		}
	}
	return p
}

func (p pool) empty() bool {
	return len(p.generic)+len(p.setup)+len(p.longRelief)+len(p.closer) == 0
}

func entering(r models.PitcherRole, b *models.BullpenState) models.PitcherRole {
	r.Role = models.RoleReliever
	if b.IsCloser(r.PitcherID) {
		r.Role = models.RoleCloser
	}
	if r.Stamina <= 0 {
		r.Stamina = models.FullStamina
	}
	return r
}
