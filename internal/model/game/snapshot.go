package game

// RoundView is a RoundRecord as shown to the player. The AI balance is nil
// until the game is complete.
type RoundView struct {
	RoundNumber       int    `json:"round"`
	Multiplier        int    `json:"multiplier"`
	HumanContribution int    `json:"humanContribution"`
	AIContribution    Hidden `json:"aiContribution"`
	HumanBalanceAfter int    `json:"humanBalanceAfter"`
	AIBalanceAfter    *int   `json:"aiBalanceAfter,omitempty"`
	Winner            Winner `json:"winner"`
}

// Snapshot is the read-only state presentation layers render.
type Snapshot struct {
	GameID       string      `json:"gameId,omitempty"`
	AccountLabel string      `json:"account,omitempty"`
	Persona      string      `json:"persona"`
	Phase        Phase       `json:"phase"`
	Role         Role        `json:"role,omitempty"`
	Round        int         `json:"round"`
	TotalRounds  int         `json:"totalRounds"`
	HumanBalance int         `json:"humanBalance"`
	AIBalance    *int        `json:"aiBalance,omitempty"`
	Log          []RoundView `json:"log"`
	FinalWinner  Winner      `json:"finalWinner,omitempty"`
}

// View converts a record, revealing the AI balance only when asked to.
func (r RoundRecord) View(reveal bool) RoundView {
	v := RoundView{
		RoundNumber:       r.RoundNumber,
		Multiplier:        r.Multiplier,
		HumanContribution: r.HumanContribution,
		HumanBalanceAfter: r.HumanBalanceAfter,
		Winner:            r.Winner,
	}
	if reveal {
		ai := r.AIBalanceAfter
		v.AIBalanceAfter = &ai
	}
	return v
}

// EventType names what changed in a game.
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventRole     EventType = "role"
	EventRound    EventType = "round"
	EventComplete EventType = "complete"
	EventReset    EventType = "reset"
)

// Event is published to subscribers after every state change.
type Event struct {
	Type     EventType  `json:"type"`
	GameID   string     `json:"gameId"`
	Round    *RoundView `json:"record,omitempty"`
	Snapshot Snapshot   `json:"snapshot"`
}
