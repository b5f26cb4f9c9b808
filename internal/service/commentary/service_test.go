package commentary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/persona"
)

func TestDisabledWithoutModel(t *testing.T) {
	svc, err := NewService(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	if svc.Enabled() {
		t.Fatal("expected disabled service")
	}
	if _, err := svc.Comment(context.Background(), persona.Seed()[0], game.RoleTrustor, game.RoundRecord{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	var nilSvc *Service
	if nilSvc.Enabled() {
		t.Fatal("nil service must report disabled")
	}
}

func TestRoundPromptOmitsAIState(t *testing.T) {
	rec := game.RoundRecord{
		RoundNumber:       3,
		Multiplier:        4,
		HumanContribution: 25,
		HumanBalanceAfter: 131,
		AIBalanceAfter:    987,
		Winner:            game.WinnerAI,
	}

	prompt := RoundPrompt(game.RoleTrustee, rec)

	for _, want := range []string{"Round 3 of 5", "player is the Trustee", "you are the Trustor", "x4", "sent 25 tokens", "you are ahead"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt %q missing %q", prompt, want)
		}
	}
	if strings.Contains(prompt, "987") {
		t.Fatalf("prompt leaked the AI balance: %q", prompt)
	}
}

func TestSystemPromptUsesPersona(t *testing.T) {
	p := persona.Seed()[2]
	prompt := SystemPrompt(p)

	if !strings.Contains(prompt, p.Name) || !strings.Contains(prompt, p.Title) {
		t.Fatalf("prompt missing persona identity: %q", prompt)
	}
	if strings.ContainsAny(prompt, "{}") {
		t.Fatalf("prompt must not contain template braces: %q", prompt)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
	if got := truncate("ok", 10); got != "ok" {
		t.Fatalf("expected untouched string, got %q", got)
	}
}
