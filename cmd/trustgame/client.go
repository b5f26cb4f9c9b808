package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gameModel "github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/identity"
)

const connectFailed = "wallet connection rejected or failed"

// client drives one player through games on a terminal.
type client struct {
	in       *bufio.Scanner
	out      io.Writer
	identity identity.Provider
	games    *game.Service
}

func newClient(in io.Reader, out io.Writer, provider identity.Provider, games *game.Service) *client {
	return &client{in: bufio.NewScanner(in), out: out, identity: provider, games: games}
}

func (c *client) run(ctx context.Context, address string) error {
	if address == "" {
		line, ok := c.prompt("Wallet address: ")
		if !ok {
			return nil
		}
		address = line
	}

	account, err := c.identity.Connect(ctx, address)
	if err != nil {
		fmt.Fprintln(c.out, connectFailed)
		return nil
	}

	g, snap, err := c.games.CreateGame(ctx, account)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Connected as %s\n", account.ShortAddress)

	for {
		fmt.Fprintf(c.out, "Your opponent: %s\n", snap.Persona)
		done, err := c.playOnce(ctx, account.ID, g.ID)
		if err != nil || done {
			return err
		}

		answer, ok := c.prompt("Play again? [y/N]: ")
		if !ok || !strings.EqualFold(answer, "y") {
			return nil
		}
		if snap, err = c.games.Reset(ctx, account.ID, g.ID); err != nil {
			return err
		}
	}
}

// playOnce plays a full game. done reports that input ran out.
func (c *client) playOnce(ctx context.Context, accountID, gameID string) (bool, error) {
	for {
		line, ok := c.prompt("Choose your role [Trustor/Trustee]: ")
		if !ok {
			return true, nil
		}
		role, err := gameModel.ParseRole(line)
		if err != nil {
			fmt.Fprintln(c.out, "Please type Trustor or Trustee.")
			continue
		}
		if _, err := c.games.ChooseRole(ctx, accountID, gameID, role); err != nil {
			return false, err
		}
		break
	}

	for {
		snap, err := c.games.Snapshot(ctx, accountID, gameID)
		if err != nil {
			return false, err
		}
		if snap.Phase == gameModel.PhaseComplete {
			c.printSummary(snap)
			return false, nil
		}

		line, ok := c.prompt(fmt.Sprintf("Round %d/%d, your balance %d. Contribution (0-100): ", snap.Round, snap.TotalRounds, snap.HumanBalance))
		if !ok {
			return true, nil
		}
		record, _, err := c.games.SubmitRound(ctx, accountID, gameID, line)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "  sent %d, multiplier x%d, you now have %d, leader: %s\n",
			record.HumanContribution, record.Multiplier, record.HumanBalanceAfter, record.Winner)
	}
}

func (c *client) printSummary(snap gameModel.Snapshot) {
	fmt.Fprintln(c.out, "Round  Mult  You sent  AI sent  You   AI    Leader")
	for _, r := range snap.Log {
		ai := "-"
		if r.AIBalanceAfter != nil {
			ai = fmt.Sprint(*r.AIBalanceAfter)
		}
		fmt.Fprintf(c.out, "%-6d x%-4d %-9d %-8s %-5d %-5s %s\n",
			r.RoundNumber, r.Multiplier, r.HumanContribution, r.AIContribution, r.HumanBalanceAfter, ai, r.Winner)
	}

	aiBalance := 0
	if snap.AIBalance != nil {
		aiBalance = *snap.AIBalance
	}
	fmt.Fprintf(c.out, "Final: %s %d vs %s %d. %s\n", snap.AccountLabel, snap.HumanBalance, snap.Persona, aiBalance, verdict(snap.FinalWinner))
}

func verdict(w gameModel.Winner) string {
	switch w {
	case gameModel.WinnerHuman:
		return "You win!"
	case gameModel.WinnerAI:
		return "The AI wins."
	default:
		return "It's a tie."
	}
}

// prompt returns false once input is exhausted.
func (c *client) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(c.out, "\nread error: %v\n", err)
		}
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}
