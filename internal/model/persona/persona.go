package persona

import "github.com/zhouzirui/trust-tavern/backend/internal/random"

// Strategy tags the contribution distribution an AI persona plays with.
type Strategy int

const (
	StrategyCautious Strategy = iota + 1
	StrategyChaotic
	StrategyGreedy
	StrategyAltruistic
	StrategyAdaptive
)

// Bounds returns the closed interval a strategy contributes from.
func (s Strategy) Bounds() (min, max int) {
	switch s {
	case StrategyCautious:
		return 5, 24
	case StrategyChaotic:
		return 0, 99
	case StrategyGreedy:
		return 0, 9
	case StrategyAltruistic:
		return 25, 74
	case StrategyAdaptive:
		return 10, 39
	default:
		return 0, 0
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyCautious:
		return "Cautious"
	case StrategyChaotic:
		return "Chaotic"
	case StrategyGreedy:
		return "Greedy"
	case StrategyAltruistic:
		return "Altruistic"
	case StrategyAdaptive:
		return "Adaptive"
	default:
		return "Unknown"
	}
}

// Persona captures an AI opponent exposed to the frontend. The strategy is
// kept out of the JSON payload so players only learn the persona's name.
type Persona struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Tone        string   `json:"tone"`
	OpeningLine string   `json:"openingLine"`
	Description string   `json:"description,omitempty"`
	Traits      []string `json:"traits,omitempty"`
	Strategy    Strategy `json:"-"`
}

// Contribute draws this round's contribution from the persona's interval.
func (p Persona) Contribute(src random.Source) int {
	min, max := p.Strategy.Bounds()
	return src.UniformInt(min, max)
}

// Select picks one persona uniformly at random. It returns false for an
// empty catalog.
func Select(src random.Source, catalog []Persona) (Persona, bool) {
	if len(catalog) == 0 {
		return Persona{}, false
	}
	return catalog[src.UniformInt(0, len(catalog)-1)], true
}

// Seed provides the fixed catalog of five opponents.
func Seed() []Persona {
	return []Persona{
		{
			ID:          "cautious",
			Name:        "Cautious",
			Title:       "The Careful Broker",
			Tone:        "measured, polite, hedging",
			OpeningLine: "Let's not rush into anything. Small steps build trust.",
			Description: "Never stakes much, never stakes nothing.",
			Traits:      []string{"prudent", "steady"},
			Strategy:    StrategyCautious,
		},
		{
			ID:          "chaotic",
			Name:        "Chaotic",
			Title:       "The Wild Card",
			Tone:        "playful, erratic, theatrical",
			OpeningLine: "Heads or tails? I haven't decided which one I am yet.",
			Description: "Anything from nothing to nearly everything.",
			Traits:      []string{"unpredictable", "bold"},
			Strategy:    StrategyChaotic,
		},
		{
			ID:          "greedy",
			Name:        "Greedy",
			Title:       "The Tight Fist",
			Tone:        "smug, transactional",
			OpeningLine: "Trust is expensive. I prefer to keep my tokens where I can see them.",
			Description: "Parts with as little as possible.",
			Traits:      []string{"selfish", "calculating"},
			Strategy:    StrategyGreedy,
		},
		{
			ID:          "altruistic",
			Name:        "Altruistic",
			Title:       "The Open Hand",
			Tone:        "warm, generous, earnest",
			OpeningLine: "I believe in you. Let's both walk away richer.",
			Description: "Gives freely and hopes for the best.",
			Traits:      []string{"generous", "optimistic"},
			Strategy:    StrategyAltruistic,
		},
		{
			ID:          "adaptive",
			Name:        "Adaptive",
			Title:       "The Reader",
			Tone:        "curious, analytical",
			OpeningLine: "Show me how you play and I'll meet you halfway.",
			Description: "Stays in a moderate middle band.",
			Traits:      []string{"observant", "pragmatic"},
			Strategy:    StrategyAdaptive,
		},
	}
}
