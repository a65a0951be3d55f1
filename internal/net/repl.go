package net

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/seresheim/penquest-pkgs/internal/model"
)

// REPL drives a session from a terminal: it waits for the next required
// decision, renders the relevant state, and reads the player's answer.
type REPL struct {
	client *Client
	in     *bufio.Reader
	out    io.Writer

	// Lobby choices made on the command line, applied when the session
	// asks for them.
	CreateScenarioID string
	JoinCode         string
	BotType          int
}

// NewREPL returns a REPL reading from in and writing to out.
func NewREPL(client *Client, in io.Reader, out io.Writer) *REPL {
	return &REPL{client: client, in: bufio.NewReader(in), out: out}
}

// Run loops over the session's interactions until the game ends.
func (r *REPL) Run(ctx context.Context) error {
	sess := r.client.Session
	if err := sess.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	for {
		in, err := sess.NextInteraction(ctx)
		if err != nil {
			return err
		}
		switch in {
		case model.InteractionCreateOrJoinLobby:
			if err := r.createOrJoin(ctx); err != nil {
				return err
			}
		case model.InteractionChangeLobbyProperties:
			r.renderLobby()
			if r.BotType > 0 {
				if err := sess.AddBot(ctx, r.BotType); err != nil {
					fmt.Fprintf(r.out, "add bot: %v\n", err)
				}
			}
		case model.InteractionPlayerReady:
			if r.JoinCode == "" && r.BotType == 0 {
				fmt.Fprint(r.out, "\nWaiting for an opponent to join...\n")
				if err := sess.WaitForPlayers(ctx, 1, 0); err != nil {
					return err
				}
			}
			fmt.Fprint(r.out, "\nPress enter when ready to start.")
			r.readLine()
			if err := sess.SetReady(ctx, true); err != nil {
				fmt.Fprintf(r.out, "ready: %v\n", err)
			}
		case model.InteractionShoppingPhase:
			if err := r.shop(ctx); err != nil {
				return err
			}
		case model.InteractionPlayCard:
			if err := r.playCard(ctx); err != nil {
				return err
			}
		case model.InteractionChooseAction:
			if err := r.chooseActions(ctx); err != nil {
				return err
			}
		case model.InteractionEnd:
			r.renderGameOver()
			return nil
		}
	}
}

func (r *REPL) createOrJoin(ctx context.Context) error {
	sess := r.client.Session
	if r.JoinCode != "" {
		return sess.JoinGame(ctx, r.JoinCode)
	}
	if err := sess.CreateLobby(ctx, r.CreateScenarioID, nil); err != nil {
		return err
	}
	if lobby := sess.Lobby(); lobby != nil {
		fmt.Fprintf(r.out, "\nLobby created. Code: %s\n", lobby.Code)
	}
	return nil
}

func (r *REPL) shop(ctx context.Context) error {
	sess := r.client.Session
	st := sess.State()
	if st == nil || len(st.Shop) == 0 {
		return sess.FinishShopping(ctx)
	}

	fmt.Fprintln(r.out, "\nShop:")
	for i, tpl := range st.Shop {
		fmt.Fprintf(r.out, "  %d) %s (%.0f credits)\n", i+1, tpl.Name, tpl.Price)
	}
	fmt.Fprint(r.out, "Buy (space-separated item ids, empty to skip): ")
	ids := r.readInts()
	if len(ids) == 0 {
		return sess.FinishShopping(ctx)
	}
	return sess.BuyEquipment(ctx, ids)
}

func (r *REPL) playCard(ctx context.Context) error {
	sess := r.client.Session
	options, err := sess.PlayableActions(ctx)
	if err != nil {
		return err
	}
	if len(options) == 0 {
		fmt.Fprintln(r.out, "\nNothing playable; surrendered.")
		return nil
	}

	st := sess.State()
	r.renderState(st)
	views := BuildOptionViews(st, options)
	fmt.Fprintln(r.out, "\nPlayable actions:")
	for _, v := range views {
		line := fmt.Sprintf("  %d) %s -> asset %d mask %s", v.Index+1, v.Action, v.TargetAssetID, v.AttackMask)
		if v.Support != "" {
			line += " + " + v.Support
		}
		if v.Equipment != "" {
			line += " using " + v.Equipment
		}
		fmt.Fprintln(r.out, line)
	}

	choice := r.readChoice(len(options))
	ok, action, err := sess.PlayAction(ctx, options[choice].Request(st))
	if err != nil {
		return err
	}
	name := ""
	if action != nil {
		name = action.Name
	}
	if ok {
		fmt.Fprintf(r.out, "%s succeeded.\n", name)
	} else {
		fmt.Fprintf(r.out, "%s failed.\n", name)
	}
	return nil
}

func (r *REPL) chooseActions(ctx context.Context) error {
	sess := r.client.Session
	amount, choices, err := sess.Selection()
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\nDraw %d of:\n", amount)
	for _, c := range BuildCardViews(choices) {
		fmt.Fprintf(r.out, "  [%d] %s: %s\n", c.ID, c.Name, c.Description)
	}
	fmt.Fprintf(r.out, "Action ids (%d, space-separated): ", amount)
	ids := r.readInts()
	return sess.SelectActions(ctx, ids)
}

func (r *REPL) renderLobby() {
	view := BuildLobbyView(r.client.Session.Lobby())
	if view == nil {
		return
	}
	fmt.Fprintf(r.out, "\nLobby %s", view.Code)
	if view.Scenario != "" {
		fmt.Fprintf(r.out, " (%s)", view.Scenario)
	}
	fmt.Fprintln(r.out)
	for _, p := range view.Players {
		fmt.Fprintf(r.out, "  %s\n", p)
	}
}

func (r *REPL) renderState(st *model.GameState) {
	if st == nil {
		return
	}
	fmt.Fprintf(r.out, "\nTurn %d | %s\n", st.Turn, st.ExternalPhase)
	if role := r.client.Session.Role(); role != nil {
		fmt.Fprintf(r.out, "%s: credits %.0f, soph %d, det %d, ins %d\n",
			role.Name, role.Credits, role.Soph, role.Det, role.Ins)
	}
	fmt.Fprintln(r.out, "Board:")
	for _, a := range st.Board {
		fmt.Fprintf(r.out, "  [%d] %s (stage %d)\n", a.ID, a.Name, a.AttackStage)
	}
	if len(st.Hand) > 0 {
		fmt.Fprint(r.out, "Hand: ")
		for i, a := range st.Hand {
			fmt.Fprintf(r.out, "[%d] %s  ", i+1, a.Name)
		}
		fmt.Fprintln(r.out)
	}
}

func (r *REPL) renderGameOver() {
	fmt.Fprintln(r.out, "\n═══════════════════════")
	fmt.Fprintln(r.out, "       GAME OVER")
	fmt.Fprintln(r.out, "═══════════════════════")
	if st := r.client.Session.State(); st != nil && st.EndState != 0 {
		fmt.Fprintln(r.out, st.EndState)
	}
}

func (r *REPL) readLine() string {
	line, _ := r.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// readChoice reads a 1-based choice and returns it 0-based.
func (r *REPL) readChoice(count int) int {
	for {
		fmt.Fprint(r.out, "> ")
		n, err := strconv.Atoi(r.readLine())
		if err == nil && n >= 1 && n <= count {
			return n - 1
		}
		fmt.Fprintf(r.out, "Enter a number between 1 and %d.\n", count)
	}
}

func (r *REPL) readInts() []int {
	var ids []int
	for _, field := range strings.Fields(r.readLine()) {
		if n, err := strconv.Atoi(field); err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}
