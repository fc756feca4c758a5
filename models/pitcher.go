package models

// Role is how a pitcher is being used in the current game
type Role string

const (
	RoleStarter  Role = "starter"
	RoleReliever Role = "reliever"
	RoleCloser   Role = "closer"
)

// FullStamina is the stamina of a fresh pitcher
const FullStamina = 100.0

// PitcherRole tracks one pitcher's workload within a single game. The role
// is fixed when the pitcher enters; the counters change every plate appearance.
type PitcherRole struct {
	PitcherID                 string  `json:"pitcher_id"`
	Role                      Role    `json:"role"`
	Stamina                   float64 `json:"stamina"` // 0-100
	BattersFaced              int     `json:"batters_faced"`
	PitchCount                int     `json:"pitch_count"`
	AvgBattersFacedAsStarter  float64 `json:"avg_batters_faced_as_starter"`
	AvgBattersFacedAsReliever float64 `json:"avg_batters_faced_as_reliever"`
	HitsAllowed               int     `json:"hits_allowed"`
	WalksAllowed              int     `json:"walks_allowed"`
	RunsAllowed               int     `json:"runs_allowed"`
}

// NewPitcherRole creates a fresh pitcher entering the game in the given role
func NewPitcherRole(p PitcherProfile, role Role) PitcherRole {
	return PitcherRole{
		PitcherID:                 p.ID,
		Role:                      role,
		Stamina:                   FullStamina,
		AvgBattersFacedAsStarter:  p.AvgBattersFacedAsStarter,
		AvgBattersFacedAsReliever: p.AvgBattersFacedAsReliever,
	}
}

// IsRelief reports whether the pitcher came out of the bullpen
func (p PitcherRole) IsRelief() bool {
	return p.Role != RoleStarter
}

// BullpenState is one team's available arms for the current game.
// Relievers, Setup and LongRelief are ordered best-first. The same pitcher
// may appear in Relievers and in one of the specialised lists.
type BullpenState struct {
	Starter    PitcherRole   `json:"starter"`
	Relievers  []PitcherRole `json:"relievers"`
	Closer     *PitcherRole  `json:"closer,omitempty"`
	Setup      []PitcherRole `json:"setup,omitempty"`
	LongRelief []PitcherRole `json:"long_relief,omitempty"`

	used map[string]bool
}

// MarkUsed records that a pitcher has appeared and may not re-enter
func (b *BullpenState) MarkUsed(pitcherID string) {
	if b.used == nil {
		b.used = make(map[string]bool)
	}
	b.used[pitcherID] = true
}

// IsUsed reports whether the pitcher already appeared in this game
func (b *BullpenState) IsUsed(pitcherID string) bool {
	return b.used[pitcherID]
}

// IsCloser reports whether id belongs to the designated closer
func (b *BullpenState) IsCloser(pitcherID string) bool {
	return b.Closer != nil && b.Closer.PitcherID == pitcherID
}

// IsSetup reports whether id is one of the setup pitchers
func (b *BullpenState) IsSetup(pitcherID string) bool {
	for _, p := range b.Setup {
		if p.PitcherID == pitcherID {
			return true
		}
	}
	return false
}

// HasArms reports whether anyone besides the starter is listed at all
func (b *BullpenState) HasArms() bool {
	return len(b.Relievers) > 0 || b.Closer != nil || len(b.Setup) > 0 || len(b.LongRelief) > 0
}

// Available returns every listed reliever that has not pitched yet,
// in best-first order without duplicates.
func (b *BullpenState) Available() []PitcherRole {
	seen := make(map[string]bool)
	var out []PitcherRole

	add := func(p PitcherRole) {
		if seen[p.PitcherID] || b.IsUsed(p.PitcherID) || p.PitcherID == b.Starter.PitcherID {
			return
		}
		seen[p.PitcherID] = true
		out = append(out, p)
	}

	for _, p := range b.Relievers {
		add(p)
	}
	for _, p := range b.Setup {
		add(p)
	}
	for _, p := range b.LongRelief {
		add(p)
	}
	if b.Closer != nil {
		add(*b.Closer)
	}

	return out
}
