package engine

import (
	"testing"

	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/random"
	"github.com/zhouzirui/trust-tavern/backend/internal/random/randomtest"
)

func TestResolveRoundTrustorMaxReturn(t *testing.T) {
	seq := randomtest.NewSequence(3, 60)

	out := ResolveRound(game.RoleTrustor, 20, 10, 100, 100, seq)

	if out.Multiplier != 3 || out.Total != 60 || out.Returned != 60 {
		t.Fatalf("unexpected draws: %+v", out)
	}
	if out.HumanBalance != 140 {
		t.Fatalf("expected human 140, got %d", out.HumanBalance)
	}
	if out.AIBalance != 90 {
		t.Fatalf("expected ai 90, got %d", out.AIBalance)
	}
	if out.Winner != game.WinnerHuman {
		t.Fatalf("expected Human, got %s", out.Winner)
	}
	if seq.Calls[1] != [2]int{0, 60} {
		t.Fatalf("reciprocation drawn over %v, want [0,60]", seq.Calls[1])
	}
}

func TestResolveRoundTrusteeMultipliesAIContribution(t *testing.T) {
	seq := randomtest.NewSequence(4, 25)

	out := ResolveRound(game.RoleTrustee, 30, 20, 100, 100, seq)

	if out.Total != 80 {
		t.Fatalf("expected total 80, got %d", out.Total)
	}
	if out.AIBalance != 105 {
		t.Fatalf("expected ai 100-20+25=105, got %d", out.AIBalance)
	}
	if out.HumanBalance != 125 {
		t.Fatalf("expected human 100-30+55=125, got %d", out.HumanBalance)
	}
	if seq.Calls[0] != [2]int{MinMultiplier, MaxMultiplier} {
		t.Fatalf("multiplier drawn over %v", seq.Calls[0])
	}
}

func TestResolveRoundClampsHumanContribution(t *testing.T) {
	seq := randomtest.NewSequence(2, 0)

	out := ResolveRound(game.RoleTrustor, 150, 5, 100, 100, seq)

	if out.HumanContribution != 100 {
		t.Fatalf("expected clamp to 100, got %d", out.HumanContribution)
	}
	if out.HumanBalance != 0 || out.AIBalance != 295 {
		t.Fatalf("unexpected balances: human=%d ai=%d", out.HumanBalance, out.AIBalance)
	}
	if out.Winner != game.WinnerAI {
		t.Fatalf("expected AI, got %s", out.Winner)
	}
}

func TestResolveRoundZeroInvestmentDrawsDegenerateRange(t *testing.T) {
	seq := randomtest.NewSequence(5, 0)

	out := ResolveRound(game.RoleTrustor, 0, 0, 100, 100, seq)

	if seq.Calls[1] != [2]int{0, 0} {
		t.Fatalf("expected [0,0] reciprocation range, got %v", seq.Calls[1])
	}
	if out.Winner != game.WinnerTie {
		t.Fatalf("expected Tie, got %s", out.Winner)
	}
}

func TestResolveRoundAllowsNegativeBalances(t *testing.T) {
	seq := randomtest.NewSequence(2, 0)

	out := ResolveRound(game.RoleTrustor, 100, 0, 40, 0, seq)

	if out.HumanBalance != -60 {
		t.Fatalf("expected -60, got %d", out.HumanBalance)
	}
}

func TestResolveRoundProperties(t *testing.T) {
	src := random.NewSeeded(2024)
	for i := 0; i < 1000; i++ {
		role := game.RoleTrustor
		if i%2 == 1 {
			role = game.RoleTrustee
		}
		human := src.UniformInt(-20, 130)
		ai := src.UniformInt(0, 99)

		out := ResolveRound(role, human, ai, 100, 100, src)

		if out.Multiplier < MinMultiplier || out.Multiplier > MaxMultiplier {
			t.Fatalf("multiplier %d out of range", out.Multiplier)
		}
		investor := out.HumanContribution
		if role == game.RoleTrustee {
			investor = ai
		}
		if out.Total != investor*out.Multiplier {
			t.Fatalf("total %d != %d*%d", out.Total, investor, out.Multiplier)
		}
		if out.Returned < 0 || out.Returned > out.Total {
			t.Fatalf("returned %d outside [0,%d]", out.Returned, out.Total)
		}
		if sum := out.HumanBalance + out.AIBalance; sum != 200-out.HumanContribution-ai+out.Total {
			t.Fatalf("tokens not conserved: %+v", out)
		}
		if out.Winner != game.Compare(out.HumanBalance, out.AIBalance) {
			t.Fatalf("winner %s inconsistent with balances", out.Winner)
		}
	}
}
