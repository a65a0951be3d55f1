package session

import (
	"context"
	"errors"
	"testing"

	"github.com/seresheim/penquest-pkgs/internal/model"
	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

func TestStartGameBuildsState(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeDefender, 0)

	st := s.State()
	if st == nil {
		t.Fatal("state is nil after game start")
	}
	if st.Name != "LOBBY1" || st.ScenarioID != "scn-1" {
		t.Errorf("state = %q %q", st.Name, st.ScenarioID)
	}
	if st.Turn != 1 {
		t.Errorf("turn = %d, want 1", st.Turn)
	}
	// The defender sees its visible assets plus its own assets.
	if len(st.Board) != 2 {
		t.Errorf("board = %v, want 2 assets", st.Board)
	}
	if len(st.Hand) != 1 || st.Hand[0].Name != "Phishing" {
		t.Errorf("hand = %v", st.Hand)
	}
	if len(st.Equipment) != 1 {
		t.Errorf("equipment = %v", st.Equipment)
	}
	role := s.Role()
	if role == nil || role.Type != model.ActorTypeDefender {
		t.Errorf("role = %+v", role)
	}
}

func TestStartGameAttackerBoardOmitsOwnAssets(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	// Attackers only see what the scenario exposes.
	if st := s.State(); len(st.Board) != 1 || st.Board[0].ID != 1 {
		t.Errorf("board = %v, want the visible asset only", st.Board)
	}
}

func TestStartGameScenarioMismatch(t *testing.T) {
	s, _, _ := lobbySession(t, 0)
	game := testGame(model.ActorTypeAttacker)
	game.ScenarioID = "scn-other"
	err := s.Handle(context.Background(), &protocol.GameStarted{Game: game})
	if !errors.Is(err, ErrScenarioMismatch) {
		t.Errorf("Handle = %v, want ErrScenarioMismatch", err)
	}
	if s.Phase() != model.PhaseLobby {
		t.Errorf("phase = %v, want Lobby still", s.Phase())
	}
}

func TestStartGameWithoutRole(t *testing.T) {
	s, _, _ := lobbySession(t, 0)
	game := testGame(model.ActorTypeAttacker)
	delete(game.Roles, selfConn)
	err := s.Handle(context.Background(), &protocol.GameStarted{Game: game})
	if !errors.Is(err, ErrNoRole) {
		t.Errorf("Handle = %v, want ErrNoRole", err)
	}
}

func TestGamePhaseInteractions(t *testing.T) {
	for _, tc := range []struct {
		name     string
		actor    string
		shopMode int
		turn     int
		phase    string
		want     []model.Interaction
		internal model.InternalPhase
	}{
		{"init draw", model.ActorTypeAttacker, 0, 1, "InitDraw",
			[]model.Interaction{model.InteractionChooseAction}, model.InternalIdle},
		{"first turn with shop", model.ActorTypeAttacker, 1, 1, "Attack",
			[]model.Interaction{model.InteractionShoppingPhase}, model.InternalShopping},
		{"first turn without shop", model.ActorTypeAttacker, 0, 1, "Attack",
			[]model.Interaction{model.InteractionPlayCard}, model.InternalShopping},
		{"later turn", model.ActorTypeAttacker, 1, 3, "Attack",
			[]model.Interaction{model.InteractionChooseAction}, model.InternalShopping},
		{"not my turn", model.ActorTypeAttacker, 1, 1, "Defense",
			nil, model.InternalIdle},
		{"defender turn", model.ActorTypeDefender, 1, 2, "Defense",
			[]model.Interaction{model.InteractionChooseAction}, model.InternalShopping},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, _, _ := runningSession(t, tc.actor, tc.shopMode)
			if tc.turn != 1 {
				handle(t, s, &protocol.GameTurnChanged{CurrentTurn: tc.turn})
			}
			drainInteractions(t, s)

			handle(t, s, &protocol.GamePhaseChanged{GamePhase: tc.phase})

			ins := drainInteractions(t, s)
			if len(ins) != len(tc.want) {
				t.Fatalf("interactions = %v, want %v", ins, tc.want)
			}
			for i := range tc.want {
				if ins[i] != tc.want[i] {
					t.Errorf("interactions[%d] = %v, want %v", i, ins[i], tc.want[i])
				}
			}
			if got := s.State().InternalPhase; got != tc.internal {
				t.Errorf("internal phase = %v, want %v", got, tc.internal)
			}
		})
	}
}

func TestUnknownGamePhase(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	err := s.Handle(context.Background(), &protocol.GamePhaseChanged{GamePhase: "Twilight"})
	if !errors.Is(err, ErrUnknownPhase) {
		t.Errorf("Handle = %v, want ErrUnknownPhase", err)
	}
}

func TestActorAttributeChanges(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)

	handle(t, s, &protocol.AttributeChanged{Attribute: "credits", Value: 12.5})
	handle(t, s, &protocol.AttributeChanged{Attribute: "soph", Value: 3})
	role := s.Role()
	if role.Credits != 12.5 || role.Soph != 3 {
		t.Errorf("role = credits %v soph %d", role.Credits, role.Soph)
	}

	err := s.Handle(context.Background(), &protocol.AttributeChanged{Attribute: "luck", Value: 1})
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("unknown attribute = %v, want ErrUnknownAttribute", err)
	}
}

func TestChangedSlots(t *testing.T) {
	s, _, _ := lobbySession(t, 0)

	handle(t, s, &protocol.ChangedSlots{OldSlot: 2, NewSlot: 4})
	lobby := s.Lobby()
	if lobby.Players[4] == nil || lobby.Players[4].Name != "opp" {
		t.Errorf("players = %v, want opp in slot 4", lobby.Players)
	}
	if _, still := lobby.Players[2]; still {
		t.Error("slot 2 should be vacated")
	}

	// A move out of an empty slot must not plant a nil player.
	err := s.Handle(context.Background(), &protocol.ChangedSlots{OldSlot: 9, NewSlot: 5})
	if !errors.Is(err, ErrSlotVacant) {
		t.Errorf("vacant slot = %v, want ErrSlotVacant", err)
	}
	if _, planted := s.Lobby().Players[5]; planted {
		t.Error("failed move must not touch the roster")
	}
}

func TestActorDetected(t *testing.T) {
	s, _, _ := newTestSession(t)
	handle(t, s, &protocol.NewConnectionID{ConnectionID: selfConn})
	handle(t, s, &protocol.LobbyInfo{Lobby: testLobby(0)})
	game := testGame(model.ActorTypeAttacker)
	game.Roles[selfConn].ID = "7"
	handle(t, s, &protocol.GameStarted{Game: game})

	handle(t, s, &protocol.ActorDetected{ActorID: 7})
	if !s.Role().HasBeenDetected {
		t.Error("role should be flagged as detected")
	}

	err := s.Handle(context.Background(), &protocol.ActorDetected{ActorID: 99})
	if !errors.Is(err, ErrNoRole) {
		t.Errorf("unknown actor = %v, want ErrNoRole", err)
	}
}

func TestEquipmentPurchaseUpdatesShop(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 1)
	if len(s.State().Shop) != 1 {
		t.Fatalf("shop = %v, want the scenario assortment", s.State().Shop)
	}

	handle(t, s, &protocol.EquipmentReceived{Equipment: []*model.Equipment{
		{ID: 30, TemplateID: "eq-shop-1", Name: "Firewall"},
	}})

	st := s.State()
	if len(st.Equipment) != 2 {
		t.Errorf("equipment = %v, want 2", st.Equipment)
	}
	if len(st.Shop) != 0 {
		t.Errorf("shop = %v, want the bought template removed", st.Shop)
	}
}

func TestAssortmentReplacesShop(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 1)
	handle(t, s, &protocol.AssortmentReceived{Equipment: []*model.EquipmentTemplate{
		{ID: "eq-a"}, {ID: "eq-b"},
	}})
	if st := s.State(); len(st.Shop) != 2 {
		t.Errorf("shop = %v, want 2 templates", st.Shop)
	}
}

func TestRemoveEquipmentFromShop(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 1)
	handle(t, s, &protocol.RemoveEquipmentFromShop{EquipmentIDs: []string{"eq-shop-1"}})
	if st := s.State(); len(st.Shop) != 0 {
		t.Errorf("shop = %v, want empty", st.Shop)
	}
}

func TestActionsReceivedQueuesTurnInteraction(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	handle(t, s, &protocol.GamePhaseChanged{GamePhase: "Attack"})
	drainInteractions(t, s)

	handle(t, s, &protocol.ActionsReceived{NewActions: []*model.Action{
		{ID: 11, Name: "Scan", CardType: "main"},
	}})

	if st := s.State(); len(st.Hand) != 2 {
		t.Errorf("hand = %v, want 2", st.Hand)
	}
	ins := drainInteractions(t, s)
	if len(ins) != 1 || ins[0] != model.InteractionPlayCard {
		t.Errorf("interactions = %v, want PlayCard", ins)
	}
}

func TestActionsReceivedOffTurnQueuesNothing(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	handle(t, s, &protocol.GamePhaseChanged{GamePhase: "Defense"})
	drainInteractions(t, s)

	handle(t, s, &protocol.ActionsReceived{NewActions: []*model.Action{
		{ID: 11, Name: "Scan", CardType: "main"},
	}})
	if ins := drainInteractions(t, s); len(ins) != 0 {
		t.Errorf("interactions = %v, want none", ins)
	}
}

func TestRemoveCards(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	handle(t, s, &protocol.RemoveCards{ActionIDs: []int{10}, EquipmentIDs: []int{20}})
	st := s.State()
	if len(st.Hand) != 0 || len(st.Equipment) != 0 {
		t.Errorf("hand = %v, equipment = %v, want both empty", st.Hand, st.Equipment)
	}
}

func TestAssetUpdates(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeDefender, 0)

	handle(t, s, &protocol.AssetChanged{Asset: &model.Asset{ID: 1, Name: "workstation", AttackStage: 2}})
	st := s.State()
	if st.Board[0].AttackStage != 2 {
		t.Errorf("asset stage = %d, want 2", st.Board[0].AttackStage)
	}

	handle(t, s, &protocol.AssetsChanged{Changes: &model.AssetChanges{
		Revealed: []*model.Asset{{ID: 9, Name: "backup"}},
		Hidden:   []int{2},
	}})
	st = s.State()
	if len(st.Board) != 2 {
		t.Fatalf("board = %v, want 2 assets", st.Board)
	}
	for _, a := range st.Board {
		if a.ID == 2 {
			t.Error("hidden asset still on the board")
		}
	}

	err := s.Handle(context.Background(), &protocol.AssetsChanged{Changes: &model.AssetChanges{
		Hidden: []int{404},
	}})
	if !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("hiding unknown asset = %v, want ErrAssetNotFound", err)
	}
}

func TestDetectedActionsAccumulate(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeDefender, 0)
	handle(t, s, &protocol.ActionsDetected{Actions: []*model.Action{{ID: 50, Name: "Bruteforce"}}})
	handle(t, s, &protocol.ActionsDetected{Actions: []*model.Action{{ID: 51, Name: "Exfil"}}})

	batches := s.DetectedActions()
	if len(batches) != 2 || len(batches[0]) != 1 || batches[1][0].ID != 51 {
		t.Errorf("detected = %v", batches)
	}
}

func TestTurnChangedResetsOfferFlag(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	handle(t, s, &protocol.OfferSelection{
		Actions:         []*model.ActionTemplate{{ID: "tpl-1"}},
		AmountSelection: 1,
	})
	handle(t, s, &protocol.GameTurnChanged{CurrentTurn: 2})

	s.mu.Lock()
	received := s.offerReceived
	s.mu.Unlock()
	if received {
		t.Error("offer flag survived the turn change")
	}
	if st := s.State(); st.Turn != 2 {
		t.Errorf("turn = %d, want 2", st.Turn)
	}
}

func TestGamePlayerChangedSwapsConnection(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	replacement := testPlayer(3, "conn-new", "self-reconnected")
	handle(t, s, &protocol.GamePlayerChanged{
		OldConnectionID: selfConn,
		NewConnectionID: "conn-new",
		Player:          replacement,
	})

	if s.ConnectionID() != "conn-new" {
		t.Errorf("ConnectionID = %q, want conn-new", s.ConnectionID())
	}
	st := s.State()
	if len(st.Players) != 2 || st.Players[0].ConnectionID != "conn-new" {
		t.Errorf("players = %v", st.Players)
	}
}

func TestReplaceGameStateResync(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	game := testGame(model.ActorTypeAttacker)
	game.Turn = 5
	game.Phase = "Defense"
	game.ScenarioName = "Breach"
	handle(t, s, &protocol.GameState{Game: game})

	st := s.State()
	if st.Turn != 5 || st.ExternalPhase != model.ExternalDefender {
		t.Errorf("state = turn %d phase %v", st.Turn, st.ExternalPhase)
	}
	if st.Name != "LOBBY1" {
		t.Errorf("name = %q, want the pre-resync name kept", st.Name)
	}
	if len(st.Board) != 2 {
		t.Errorf("board = %v, want visible plus own assets", st.Board)
	}
}

func TestGameEnded(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	drainInteractions(t, s)

	handle(t, s, &protocol.GameEnded{
		EndState: model.EndLost,
		Message:  "defender prevailed",
		Summary:  &model.PostGameSummary{EndState: model.EndLost},
	})

	if !s.IsOver() {
		t.Error("IsOver = false after game end")
	}
	st := s.State()
	if st.EndState != model.EndLost || st.Summary == nil {
		t.Errorf("end state = %v, summary = %v", st.EndState, st.Summary)
	}
	ins := drainInteractions(t, s)
	if len(ins) != 1 || ins[0] != model.InteractionEnd {
		t.Errorf("interactions = %v, want End", ins)
	}
}

func TestServerErrorBacksOutOfGame(t *testing.T) {
	s, _, rec := runningSession(t, model.ActorTypeAttacker, 0)
	handle(t, s, &model.ServerErrors{ErrorID: 7, ErrorMessage: "illegal move"})

	rec.wait(t, protocol.CmdLeaveGame)
	eventually(t, "close frame sent", func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		for _, f := range rec.frames {
			if f.Close {
				return true
			}
		}
		return false
	})
}

func TestServerErrorBeforeGameIsLoggedOnly(t *testing.T) {
	s, _, rec := newTestSession(t)
	handle(t, s, &model.ServerErrors{ErrorID: []int{1, 2}, ErrorMessage: []string{"a", "b"}})
	if rec.count() != 0 {
		t.Errorf("frames = %d, want none in the start phase", rec.count())
	}
}

func TestLobbyLeftForSelfClosesSession(t *testing.T) {
	s, _, rec := lobbySession(t, 0)
	drainInteractions(t, s)
	handle(t, s, &protocol.LobbyLeft{Player: testPlayer(1, selfConn, "self")})

	eventually(t, "close frame sent", func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		for _, f := range rec.frames {
			if f.Close {
				return true
			}
		}
		return false
	})
	ins := drainInteractions(t, s)
	if len(ins) != 1 || ins[0] != model.InteractionEnd {
		t.Errorf("interactions = %v, want End", ins)
	}
}

func TestLobbyLeftForOtherPlayerIsIgnored(t *testing.T) {
	s, _, rec := lobbySession(t, 0)
	before := rec.count()
	handle(t, s, &protocol.LobbyLeft{Player: testPlayer(2, oppConn, "opp")})
	if rec.count() != before {
		t.Error("another player leaving produced frames")
	}
}

func TestEventLogUpdated(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	handle(t, s, &protocol.EventLogUpdated{Events: []*model.EventEntry{{ID: 1, Type: 3}}})
	if st := s.State(); len(st.EventLog) != 1 || st.EventLog[0].Type != 3 {
		t.Errorf("event log = %v", st.EventLog)
	}
}
