// Package mcp exposes a PenQuest game session as MCP tools so an agent can
// play a game over stdio. One process drives one session at a time.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	pqnet "github.com/seresheim/penquest-pkgs/internal/net"

	"github.com/seresheim/penquest-pkgs/internal/model"
	"github.com/seresheim/penquest-pkgs/internal/session"
)

// DecisionType identifies what kind of decision the game is waiting for.
type DecisionType string

const (
	DecisionShop          DecisionType = "shop"
	DecisionPlayCard      DecisionType = "play_card"
	DecisionChooseActions DecisionType = "choose_actions"
	DecisionGameOver      DecisionType = "game_over"
)

// PendingDecision represents a decision the game is waiting for.
type PendingDecision struct {
	Type    DecisionType       `json:"type"`
	Options []pqnet.OptionView `json:"options,omitempty"`
	Choices []pqnet.CardView   `json:"choices,omitempty"`
	Amount  int                `json:"amount,omitempty"`
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Lobby    *pqnet.LobbyView `json:"lobby,omitempty"`
	State    *pqnet.StateView `json:"state,omitempty"`
	Pending  *PendingDecision `json:"pending,omitempty"`
	Played   string           `json:"played,omitempty"`
	Success  *bool            `json:"success,omitempty"`
	GameOver bool             `json:"game_over"`
	Result   string           `json:"result,omitempty"`
}

// GameSession holds the state of a single MCP game session.
type GameSession struct {
	client *pqnet.Client
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  *PendingDecision
	options  []session.PlayOption
	gameOver bool
}

// NewGameSession dials the gateway and establishes a connection. Creating or
// joining a lobby is left to the start tools.
func NewGameSession(ctx context.Context, gatewayURL string, opts session.Options, log *zap.Logger) (*GameSession, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	client, err := pqnet.Dial(ctx, gatewayURL, opts, log)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dial gateway: %w", err)
	}
	client.Start(runCtx)

	if err := client.Session.Connect(ctx); err != nil {
		client.Close()
		cancel()
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &GameSession{client: client, cancel: cancel}, nil
}

func (s *GameSession) close() {
	s.client.Close()
	s.cancel()
}

// waitForPending blocks until the game needs a decision from the agent, then
// builds a ToolResponse carrying the current state and the pending decision.
// Lobby interactions are skipped, the start tools handle the lobby before
// anyone waits here.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	sess := s.client.Session
	for {
		in, err := sess.NextInteraction(ctx)
		if err != nil {
			return nil, err
		}
		switch in {
		case model.InteractionCreateOrJoinLobby,
			model.InteractionChangeLobbyProperties,
			model.InteractionPlayerReady:
			continue

		case model.InteractionShoppingPhase:
			return s.setPending(&PendingDecision{Type: DecisionShop}), nil

		case model.InteractionPlayCard:
			options, err := sess.PlayableActions(ctx)
			if err != nil {
				return nil, err
			}
			if len(options) == 0 {
				// Nothing playable triggers a surrender; the end
				// interaction follows.
				continue
			}
			s.mu.Lock()
			s.options = options
			s.mu.Unlock()
			return s.setPending(&PendingDecision{
				Type:    DecisionPlayCard,
				Options: pqnet.BuildOptionViews(sess.State(), options),
			}), nil

		case model.InteractionChooseAction:
			amount, choices, err := sess.Selection()
			if err != nil {
				return nil, err
			}
			return s.setPending(&PendingDecision{
				Type:    DecisionChooseActions,
				Choices: pqnet.BuildCardViews(choices),
				Amount:  amount,
			}), nil

		case model.InteractionEnd:
			s.mu.Lock()
			s.gameOver = true
			s.mu.Unlock()
			resp := s.setPending(&PendingDecision{Type: DecisionGameOver})
			resp.GameOver = true
			if st := sess.State(); st != nil && st.EndState != 0 {
				resp.Result = st.EndState.String()
			}
			return resp, nil
		}
	}
}

func (s *GameSession) setPending(p *PendingDecision) *ToolResponse {
	s.mu.Lock()
	s.pending = p
	s.mu.Unlock()
	return &ToolResponse{
		State:   pqnet.BuildStateView(s.client.Session),
		Pending: p,
	}
}

func (s *GameSession) currentPending() *PendingDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *GameSession) playOptions() []session.PlayOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

func (s *GameSession) isOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameOver
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
