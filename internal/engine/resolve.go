package engine

import (
	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/random"
)

// Multiplier bounds applied to the investor's contribution.
const (
	MinMultiplier = 2
	MaxMultiplier = 5
)

// Outcome is the full result of one round, including the amounts the
// round log never shows.
type Outcome struct {
	Multiplier        int
	HumanContribution int
	Total             int
	Returned          int
	HumanBalance      int
	AIBalance         int
	Winner            game.Winner
}

// ResolveRound settles one exchange. The Trustor's contribution is
// multiplied, a random share of the product goes back to the Trustor and the
// rest to the Trustee. Both parties pay their own contribution first.
//
// Draws from src: the multiplier, then the returned share.
func ResolveRound(role game.Role, humanContribution, aiContribution, humanBalance, aiBalance int, src random.Source) Outcome {
	humanContribution = ClampContribution(humanContribution)
	multiplier := src.UniformInt(MinMultiplier, MaxMultiplier)

	humanBalance -= humanContribution
	aiBalance -= aiContribution

	var total, returned int
	if role == game.RoleTrustor {
		total = humanContribution * multiplier
		returned = src.UniformInt(0, total)
		humanBalance += returned
		aiBalance += total - returned
	} else {
		total = aiContribution * multiplier
		returned = src.UniformInt(0, total)
		aiBalance += returned
		humanBalance += total - returned
	}

	return Outcome{
		Multiplier:        multiplier,
		HumanContribution: humanContribution,
		Total:             total,
		Returned:          returned,
		HumanBalance:      humanBalance,
		AIBalance:         aiBalance,
		Winner:            game.Compare(humanBalance, aiBalance),
	}
}
