// Package engine implements the trust game rules: round resolution and the
// five-round session state machine.
package engine

import (
	"errors"
	"fmt"

	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/persona"
	"github.com/zhouzirui/trust-tavern/backend/internal/random"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the session's current phase. The session is left untouched.
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidRole       = errors.New("invalid role")
)

// Session is one player's game against a single persona. It is not safe for
// concurrent use.
type Session struct {
	persona persona.Persona
	src     random.Source

	phase        game.Phase
	role         game.Role
	round        int
	humanBalance int
	aiBalance    int
	log          []game.RoundRecord
}

// NewSession starts a game awaiting a role choice. The persona stays fixed
// for the session's lifetime, resets included.
func NewSession(p persona.Persona, src random.Source) *Session {
	s := &Session{persona: p, src: src}
	s.Reset()
	return s
}

// ChooseRole assigns the human's role and starts round one.
func (s *Session) ChooseRole(role game.Role) error {
	if s.phase != game.PhaseAwaitingRole {
		return transitionError("choose role", s.phase)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	s.role = role
	s.phase = game.PhaseInProgress
	return nil
}

// SubmitRound plays the current round with raw player input. See
// SanitizeContribution for how input is read.
func (s *Session) SubmitRound(raw string) (game.RoundRecord, error) {
	return s.play(SanitizeContribution(raw))
}

// SubmitAmount plays the current round with a numeric contribution, clamped
// to [0, MaxContribution].
func (s *Session) SubmitAmount(amount int) (game.RoundRecord, error) {
	return s.play(ClampContribution(amount))
}

func (s *Session) play(contribution int) (game.RoundRecord, error) {
	if s.phase != game.PhaseInProgress {
		return game.RoundRecord{}, transitionError("submit round", s.phase)
	}

	aiContribution := s.persona.Contribute(s.src)
	out := ResolveRound(s.role, contribution, aiContribution, s.humanBalance, s.aiBalance, s.src)

	record := game.RoundRecord{
		RoundNumber:       s.round,
		Multiplier:        out.Multiplier,
		HumanContribution: out.HumanContribution,
		HumanBalanceAfter: out.HumanBalance,
		AIBalanceAfter:    out.AIBalance,
		Winner:            out.Winner,
	}
	s.log = append(s.log, record)
	s.humanBalance = out.HumanBalance
	s.aiBalance = out.AIBalance

	if s.round >= game.Rounds {
		s.phase = game.PhaseComplete
	} else {
		s.round++
	}
	return record, nil
}

// Reset returns the session to the role choice with fresh balances and an
// empty log. It is valid in every phase.
func (s *Session) Reset() {
	s.phase = game.PhaseAwaitingRole
	s.role = game.RoleUnset
	s.round = 1
	s.humanBalance = game.StartingBalance
	s.aiBalance = game.StartingBalance
	s.log = nil
}

func (s *Session) Persona() persona.Persona { return s.persona }
func (s *Session) Phase() game.Phase { return s.phase }
func (s *Session) Role() game.Role { return s.role }
func (s *Session) Round() int { return s.round }
func (s *Session) HumanBalance() int { return s.humanBalance }

// Terminated reports whether all rounds have been played.
func (s *Session) Terminated() bool { return s.phase == game.PhaseComplete }

// AIBalance is only revealed once the game is complete.
func (s *Session) AIBalance() (int, bool) {
	if !s.Terminated() {
		return 0, false
	}
	return s.aiBalance, true
}

// Winner compares the final balances once the game is complete.
func (s *Session) Winner() (game.Winner, bool) {
	if !s.Terminated() {
		return "", false
	}
	return game.Compare(s.humanBalance, s.aiBalance), true
}

// Log returns a copy of the round records played so far.
func (s *Session) Log() []game.RoundRecord {
	return append([]game.RoundRecord(nil), s.log...)
}

// Snapshot renders the player-visible state.
func (s *Session) Snapshot() game.Snapshot {
	done := s.Terminated()
	snap := game.Snapshot{
		Persona:      s.persona.Name,
		Phase:        s.phase,
		Role:         s.role,
		Round:        s.round,
		TotalRounds:  game.Rounds,
		HumanBalance: s.humanBalance,
		Log:          make([]game.RoundView, 0, len(s.log)),
	}
	for _, rec := range s.log {
		snap.Log = append(snap.Log, rec.View(done))
	}
	if done {
		ai := s.aiBalance
		snap.AIBalance = &ai
		snap.FinalWinner = game.Compare(s.humanBalance, s.aiBalance)
	}
	return snap
}

func transitionError(op string, phase game.Phase) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, phase)
}

