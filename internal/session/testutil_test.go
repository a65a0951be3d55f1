package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seresheim/penquest-pkgs/internal/bus"
	"github.com/seresheim/penquest-pkgs/internal/model"
	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

const (
	selfConn = "conn-self"
	oppConn  = "conn-opp"
)

func newTestSession(t *testing.T) (*Session, *bus.Bus, *frameRecorder) {
	t.Helper()
	b := bus.New()
	rec := recordFrames(b)
	s := New(b, zap.NewNop(), Options{
		AwaitTimeout:       2 * time.Second,
		InteractionTimeout: 2 * time.Second,
	})
	return s, b, rec
}

// frameRecorder captures every frame the session publishes for sending.
type frameRecorder struct {
	mu     sync.Mutex
	frames []protocol.Outgoing
}

func recordFrames(b *bus.Bus) *frameRecorder {
	rec := &frameRecorder{}
	b.Subscribe(func(event string, payload any) (bool, any) {
		if event != EventSend {
			return false, nil
		}
		out, ok := payload.(protocol.Outgoing)
		if !ok {
			return false, nil
		}
		rec.mu.Lock()
		rec.frames = append(rec.frames, out)
		rec.mu.Unlock()
		return true, nil
	})
	return rec
}

// wait blocks until a frame with the given command name was recorded.
func (r *frameRecorder) wait(t *testing.T, event string) protocol.Outgoing {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		for _, f := range r.frames {
			if f.Event == event {
				r.mu.Unlock()
				return f
			}
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %q frame recorded", event)
	return protocol.Outgoing{}
}

func (r *frameRecorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.frames {
		if f.Event == event {
			return true
		}
	}
	return false
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never held: %s", what)
}

func testPlayer(id int, conn, name string) *model.Player {
	return &model.Player{ID: id, ConnectionID: conn, Name: name, Online: true, UserID: name}
}

func testLobby(shopMode int) *model.Lobby {
	self := testPlayer(1, selfConn, "self")
	return &model.Lobby{
		Admin: self,
		Code:  "LOBBY1",
		Players: map[int]*model.Player{
			1: self,
			2: testPlayer(2, oppConn, "opp"),
		},
		Scenario: &model.ScenarioTeaser{ID: "scn-1", Name: "Breach"},
		Options:  &model.GameOptions{EquipmentShopMode: shopMode},
		AvailableGoals: []*model.GoalDesc{
			{ID: "g-1", Description: "exfiltrate", IsDefault: true},
		},
	}
}

func testGame(actorType string) *model.Game {
	oppType := model.ActorTypeDefender
	if actorType == model.ActorTypeDefender {
		oppType = model.ActorTypeAttacker
	}
	return &model.Game{
		ScenarioID: "scn-1",
		Turn:       1,
		Players:    []*model.Player{testPlayer(1, selfConn, "self"), testPlayer(2, oppConn, "opp")},
		Roles: map[string]*model.Actor{
			selfConn: {
				ID: "actor-self", Type: actorType, Name: "self", ConnectionID: selfConn,
				VisibleAssets: []*model.Asset{{ID: 1, Name: "workstation"}},
				Assets:        []*model.Asset{{ID: 2, Name: "server"}},
				Actions:       []*model.Action{{ID: 10, Name: "Phishing", CardType: "main"}},
				Equipment:     []*model.Equipment{{ID: 20, Name: "Exploit Kit", Type: "SingleUse"}},
			},
			oppConn: {ID: "actor-opp", Type: oppType, Name: "opp", ConnectionID: oppConn},
		},
		Shop: []*model.EquipmentTemplate{{ID: "eq-shop-1", Name: "Firewall"}},
	}
}

// handle applies one inbound message and fails the test on a handler error.
func handle(t *testing.T, s *Session, msg any) {
	t.Helper()
	if err := s.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle(%T): %v", msg, err)
	}
}

// lobbySession returns a session sitting in a lobby with two players.
func lobbySession(t *testing.T, shopMode int) (*Session, *bus.Bus, *frameRecorder) {
	t.Helper()
	s, b, rec := newTestSession(t)
	handle(t, s, &protocol.NewConnectionID{ConnectionID: selfConn})
	handle(t, s, &protocol.LobbyInfo{Lobby: testLobby(shopMode)})
	if s.Phase() != model.PhaseLobby {
		t.Fatalf("phase = %v, want Lobby", s.Phase())
	}
	return s, b, rec
}

// runningSession returns a session inside a started game playing actorType.
func runningSession(t *testing.T, actorType string, shopMode int) (*Session, *bus.Bus, *frameRecorder) {
	t.Helper()
	s, b, rec := lobbySession(t, shopMode)
	handle(t, s, &protocol.GameStarted{Game: testGame(actorType)})
	if s.Phase() != model.PhaseRunning {
		t.Fatalf("phase = %v, want Running", s.Phase())
	}
	return s, b, rec
}

// drainInteractions pops queued interactions until the queue is empty.
func drainInteractions(t *testing.T, s *Session) []model.Interaction {
	t.Helper()
	var out []model.Interaction
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		in, err := s.interactions.pop(ctx, 0)
		cancel()
		if err != nil {
			return out
		}
		out = append(out, in)
	}
}
