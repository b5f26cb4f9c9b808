package game

import (
	"fmt"
	"strings"
	"time"
)

// Rounds is the fixed length of a game.
const Rounds = 5

// StartingBalance is what both parties hold before round one.
const StartingBalance = 100

// Role is the human player's side of the exchange for the whole game.
type Role string

const (
	RoleUnset   Role = ""
	RoleTrustor Role = "Trustor"
	RoleTrustee Role = "Trustee"
)

// ParseRole accepts either role name, case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trustor":
		return RoleTrustor, nil
	case "trustee":
		return RoleTrustee, nil
	default:
		return RoleUnset, fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether r names a playable role.
func (r Role) Valid() bool {
	return r == RoleTrustor || r == RoleTrustee
}

// Winner names who is ahead after a round or at the end of a game.
type Winner string

const (
	WinnerHuman Winner = "Human"
	WinnerAI    Winner = "AI"
	WinnerTie   Winner = "Tie"
)

// Compare decides the winner from two balances.
func Compare(humanBalance, aiBalance int) Winner {
	switch {
	case humanBalance > aiBalance:
		return WinnerHuman
	case humanBalance < aiBalance:
		return WinnerAI
	default:
		return WinnerTie
	}
}

// Phase is the state tag of a game session.
type Phase string

const (
	PhaseAwaitingRole Phase = "awaiting_role"
	PhaseInProgress   Phase = "in_progress"
	PhaseComplete     Phase = "complete"
)

// Hidden stands in for the AI's contribution, which players never see.
type Hidden struct{}

// MarshalText renders the marker shown in place of the amount.
func (Hidden) MarshalText() ([]byte, error) {
	return []byte("Hidden"), nil
}

func (Hidden) String() string { return "Hidden" }

// RoundRecord is one immutable entry of the round log.
type RoundRecord struct {
	RoundNumber       int    `json:"round"`
	Multiplier        int    `json:"multiplier"`
	HumanContribution int    `json:"humanContribution"`
	AIContribution    Hidden `json:"aiContribution"`
	HumanBalanceAfter int    `json:"humanBalanceAfter"`
	AIBalanceAfter    int    `json:"aiBalanceAfter"`
	Winner            Winner `json:"winner"`
}

// Game binds a session to the account that created it.
type Game struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}
