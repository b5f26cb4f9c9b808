package game

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/trust-tavern/backend/internal/engine"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/persona"
	"github.com/zhouzirui/trust-tavern/backend/internal/random"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/identity"
)

var (
	ErrAccountRequired = errors.New("connected account is required")
	ErrGameNotFound    = errors.New("game not found")
	ErrNoPersonas      = errors.New("persona catalog is empty")
)

const subscriberBuffer = 16

// SourceFactory creates the random source a new game draws from.
type SourceFactory func() (random.Source, error)

// Option customises a Service.
type Option func(*Service)

// WithSourceFactory overrides how per-game random sources are built.
func WithSourceFactory(f SourceFactory) Option {
	return func(s *Service) { s.newSource = f }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service keeps every running game in memory, one engine session per game.
type Service struct {
	mu        sync.RWMutex
	games     map[string]*entry
	personas  persona.Store
	newSource SourceFactory
	now       func() time.Time
}

type entry struct {
	mu          sync.Mutex
	game        game.Game
	label       string
	session     *engine.Session
	subscribers map[int]chan game.Event
	nextSub     int
}

// NewService bootstraps the in-memory game service.
func NewService(personas persona.Store, opts ...Option) *Service {
	s := &Service{
		games:    make(map[string]*entry),
		personas: personas,
		newSource: func() (random.Source, error) {
			return random.New()
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGame starts a game for a connected account against a persona drawn
// at random from the catalog.
func (s *Service) CreateGame(_ context.Context, account identity.Account) (game.Game, game.Snapshot, error) {
	if account.ID == "" {
		return game.Game{}, game.Snapshot{}, ErrAccountRequired
	}

	src, err := s.newSource()
	if err != nil {
		return game.Game{}, game.Snapshot{}, err
	}
	p, ok := persona.Select(src, s.personas.List())
	if !ok {
		return game.Game{}, game.Snapshot{}, ErrNoPersonas
	}

	e := &entry{
		game: game.Game{
			ID:        uuid.NewString(),
			AccountID: account.ID,
			PersonaID: p.ID,
			CreatedAt: s.now().UTC(),
		},
		label:       account.ShortAddress,
		session:     engine.NewSession(p, src),
		subscribers: make(map[int]chan game.Event),
	}

	snap := e.snapshot()

	s.mu.Lock()
	s.games[e.game.ID] = e
	s.mu.Unlock()

	log.Printf("[game] created game=%s account=%s persona=%s", e.game.ID, account.ID, p.ID)
	return e.game, snap, nil
}

// GetGame returns the metadata of a game owned by accountID.
func (s *Service) GetGame(_ context.Context, accountID, gameID string) (game.Game, error) {
	e, err := s.lookup(accountID, gameID)
	if err != nil {
		return game.Game{}, err
	}
	return e.game, nil
}

// ListGames returns the account's games, oldest first.
func (s *Service) ListGames(_ context.Context, accountID string) []game.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]game.Game, 0)
	for _, e := range s.games {
		if e.game.AccountID == accountID {
			games = append(games, e.game)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})
	return games
}

// Persona returns the opponent bound to a game.
func (s *Service) Persona(_ context.Context, accountID, gameID string) (persona.Persona, error) {
	e, err := s.lookup(accountID, gameID)
	if err != nil {
		return persona.Persona{}, err
	}
	return e.session.Persona(), nil
}

// Snapshot returns the player-visible state of a game.
func (s *Service) Snapshot(_ context.Context, accountID, gameID string) (game.Snapshot, error) {
	e, err := s.lookup(accountID, gameID)
	if err != nil {
		return game.Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(), nil
}

// ChooseRole fixes the player's role for the game.
func (s *Service) ChooseRole(_ context.Context, accountID, gameID string, role game.Role) (game.Snapshot, error) {
	e, err := s.lookup(accountID, gameID)
	if err != nil {
		return game.Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.session.ChooseRole(role); err != nil {
		return game.Snapshot{}, err
	}
	snap := e.snapshot()
	e.publish(game.Event{Type: game.EventRole, GameID: gameID, Snapshot: snap})

	log.Printf("[game] game=%s role=%s", gameID, role)
	return snap, nil
}

// SubmitRound plays the current round with raw player input.
func (s *Service) SubmitRound(_ context.Context, accountID, gameID, raw string) (game.RoundRecord, game.Snapshot, error) {
	e, err := s.lookup(accountID, gameID)
	if err != nil {
		return game.RoundRecord{}, game.Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	record, err := e.session.SubmitRound(raw)
	if err != nil {
		return game.RoundRecord{}, game.Snapshot{}, err
	}

	snap := e.snapshot()
	done := e.session.Terminated()
	view := record.View(done)
	e.publish(game.Event{Type: game.EventRound, GameID: gameID, Round: &view, Snapshot: snap})
	if done {
		e.publish(game.Event{Type: game.EventComplete, GameID: gameID, Snapshot: snap})
	}

	log.Printf("[game] game=%s round=%d sent=%d multiplier=x%d winner=%s", gameID, record.RoundNumber, record.HumanContribution, record.Multiplier, record.Winner)
	if done {
		log.Printf("[game] game=%s complete final=%s", gameID, snap.FinalWinner)
	}
	return record, snap, nil
}

// Reset sends the game back to role selection.
func (s *Service) Reset(_ context.Context, accountID, gameID string) (game.Snapshot, error) {
	e, err := s.lookup(accountID, gameID)
	if err != nil {
		return game.Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.Reset()
	snap := e.snapshot()
	e.publish(game.Event{Type: game.EventReset, GameID: gameID, Snapshot: snap})

	log.Printf("[game] game=%s reset", gameID)
	return snap, nil
}

// Subscribe streams the game's events until cancel is called. Slow readers
// miss events rather than block play.
func (s *Service) Subscribe(_ context.Context, accountID, gameID string) (<-chan game.Event, func(), error) {
	e, err := s.lookup(accountID, gameID)
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	ch := make(chan game.Event, subscriberBuffer)
	e.subscribers[id] = ch
	e.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subscribers, id)
			close(ch)
			e.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

func (s *Service) lookup(accountID, gameID string) (*entry, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}

	s.mu.RLock()
	e, ok := s.games[gameID]
	s.mu.RUnlock()

	// Games owned by someone else are reported as missing.
	if !ok || e.game.AccountID != accountID {
		return nil, ErrGameNotFound
	}
	return e, nil
}

// snapshot and publish expect e.mu to be held.
func (e *entry) snapshot() game.Snapshot {
	snap := e.session.Snapshot()
	snap.GameID = e.game.ID
	snap.AccountLabel = e.label
	return snap
}

func (e *entry) publish(event game.Event) {
	for id, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("[game] dropping %s event for slow subscriber %d on game=%s", event.Type, id, event.GameID)
		}
	}
}
