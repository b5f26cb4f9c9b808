// Package commentary lets the AI persona remark on a finished round through
// an LLM chain. It only ever sees what the player can see.
package commentary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/persona"
)

// ErrDisabled is returned when no chat model is configured.
var ErrDisabled = errors.New("commentary disabled")

const (
	commentTimeout = 8 * time.Second
	maxCommentLen  = 280
)

// Service wraps a compiled prompt → chat model chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the commentary chain. A nil chat model yields a
// disabled service.
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	if chatModel == nil {
		return &Service{}, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile commentary chain: %w", err)
	}
	return &Service{chain: runnable}, nil
}

// Enabled reports whether comments can be generated.
func (s *Service) Enabled() bool {
	return s != nil && s.chain != nil
}

// Comment asks the persona for a one-line reaction to a round.
func (s *Service) Comment(ctx context.Context, p persona.Persona, role game.Role, rec game.RoundRecord) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, commentTimeout)
	defer cancel()

	msg, err := s.chain.Invoke(ctx, map[string]any{
		"system": SystemPrompt(p),
		"query":  RoundPrompt(role, rec),
	})
	if err != nil {
		return "", fmt.Errorf("failed to run commentary chain: %w", err)
	}
	if msg == nil {
		return "", nil
	}

	comment := truncate(strings.TrimSpace(msg.Content), maxCommentLen)
	log.Printf("[commentary] persona=%s round=%d length=%d", p.ID, rec.RoundNumber, len(comment))
	return comment, nil
}

// SystemPrompt describes the persona the model plays.
func SystemPrompt(p persona.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s, sitting across the table in a five-round trust game.\n", p.Name, p.Title)
	if p.Tone != "" {
		fmt.Fprintf(&b, "Your tone is %s.\n", p.Tone)
	}
	if len(p.Traits) > 0 {
		fmt.Fprintf(&b, "Your traits: %s.\n", strings.Join(p.Traits, ", "))
	}
	b.WriteString("Reply with one short sentence in character. Never state how many tokens you sent or how many you hold.")
	return b.String()
}

// RoundPrompt summarises the public facts of a round. It never includes the
// AI's own contribution or balance.
func RoundPrompt(role game.Role, rec game.RoundRecord) string {
	opponent := game.RoleTrustee
	if role == game.RoleTrustee {
		opponent = game.RoleTrustor
	}

	var outcome string
	switch rec.Winner {
	case game.WinnerHuman:
		outcome = "the player is ahead"
	case game.WinnerAI:
		outcome = "you are ahead"
	default:
		outcome = "you are level"
	}

	return fmt.Sprintf(
		"Round %d of %d. The player is the %s and you are the %s. The pot multiplier was x%d. The player sent %d tokens. After the round %s.",
		rec.RoundNumber, game.Rounds, role, opponent, rec.Multiplier, rec.HumanContribution, outcome,
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
