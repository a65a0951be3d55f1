package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seresheim/penquest-pkgs/internal/model"
	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

func TestNewSessionQueuesCreateOrJoin(t *testing.T) {
	s, _, _ := newTestSession(t)
	in, err := s.NextInteraction(context.Background())
	if err != nil {
		t.Fatalf("NextInteraction: %v", err)
	}
	if in != model.InteractionCreateOrJoinLobby {
		t.Errorf("interaction = %v, want CreateOrJoinLobby", in)
	}
	if s.Phase() != model.PhaseStart {
		t.Errorf("phase = %v, want Start", s.Phase())
	}
}

func TestConnect(t *testing.T) {
	s, _, rec := newTestSession(t)

	done := make(chan error, 1)
	go func() { done <- s.Connect(context.Background()) }()

	frame := rec.wait(t, "")
	if frame.Kind != protocol.KindConnect {
		t.Errorf("frame kind = %v, want connect", frame.Kind)
	}
	handle(t, s, &protocol.NewConnectionID{ConnectionID: selfConn})

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Connect: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Connect never returned")
	}
	if s.ConnectionID() != selfConn {
		t.Errorf("ConnectionID = %q, want %q", s.ConnectionID(), selfConn)
	}
	if err := s.Connect(context.Background()); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect = %v, want ErrAlreadyConnected", err)
	}
}

func TestCreateLobby(t *testing.T) {
	s, _, rec := newTestSession(t)
	handle(t, s, &protocol.NewConnectionID{ConnectionID: selfConn})

	done := make(chan error, 1)
	go func() { done <- s.CreateLobby(context.Background(), "", nil) }()

	frame := rec.wait(t, protocol.CmdCreateNewGameLobby)
	if frame.Kind != protocol.KindSetup {
		t.Errorf("frame kind = %v, want setup", frame.Kind)
	}

	// Answer the create request until the session has picked it up.
	for {
		handle(t, s, &protocol.LobbyInfo{Lobby: testLobby(0)})
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("CreateLobby: %v", err)
			}
			if s.Phase() != model.PhaseLobby {
				t.Errorf("phase = %v, want Lobby", s.Phase())
			}
			if lobby := s.Lobby(); lobby == nil || lobby.Code != "LOBBY1" {
				t.Errorf("lobby = %+v", lobby)
			}
			ins := drainInteractions(t, s)
			want := []model.Interaction{
				model.InteractionCreateOrJoinLobby,
				model.InteractionChangeLobbyProperties,
				model.InteractionPlayerReady,
			}
			if len(ins) != len(want) {
				t.Fatalf("interactions = %v, want %v", ins, want)
			}
			for i := range want {
				if ins[i] != want[i] {
					t.Errorf("interactions[%d] = %v, want %v", i, ins[i], want[i])
				}
			}
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCreateLobbyWrongPhase(t *testing.T) {
	s, _, _ := lobbySession(t, 0)
	if err := s.CreateLobby(context.Background(), "", nil); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("CreateLobby in lobby phase = %v, want ErrWrongPhase", err)
	}
}

func TestJoinGame(t *testing.T) {
	s, _, rec := newTestSession(t)
	if err := s.JoinGame(context.Background(), "LOBBY1"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	frame := rec.wait(t, protocol.CmdJoinLobby)
	if frame.Kind != protocol.KindJoin {
		t.Errorf("frame kind = %v, want join", frame.Kind)
	}
	if cmd := frame.Data.(protocol.JoinLobbyCmd); cmd.Code != "LOBBY1" {
		t.Errorf("join code = %q, want LOBBY1", cmd.Code)
	}

	ins := drainInteractions(t, s)
	want := []model.Interaction{
		model.InteractionCreateOrJoinLobby,
		model.InteractionChangeLobbyProperties,
		model.InteractionPlayerReady,
	}
	if len(ins) != len(want) {
		t.Fatalf("interactions = %v, want %v", ins, want)
	}
}

func TestLobbyCommands(t *testing.T) {
	s, _, rec := lobbySession(t, 0)
	ctx := context.Background()

	if err := s.SetSeed(ctx, 42); err != nil {
		t.Fatalf("SetSeed: %v", err)
	}
	if cmd := rec.wait(t, protocol.CmdSetSeed).Data.(protocol.SetSeedCmd); cmd.Seed != 42 {
		t.Errorf("seed = %d, want 42", cmd.Seed)
	}

	if err := s.SelectGoal(ctx, 0); !errors.Is(err, ErrGoalOutOfRange) {
		t.Errorf("SelectGoal(0) = %v, want ErrGoalOutOfRange", err)
	}
	if err := s.SelectGoal(ctx, 1); err != nil {
		t.Fatalf("SelectGoal: %v", err)
	}
	if cmd := rec.wait(t, protocol.CmdSelectGoal).Data.(protocol.SetGoalCmd); cmd.GoalID != "g-1" {
		t.Errorf("goal id = %q, want g-1", cmd.GoalID)
	}

	// Slots 1 and 2 are taken, the bot goes to 3.
	if err := s.AddBot(ctx, 1); err != nil {
		t.Fatalf("AddBot: %v", err)
	}
	if cmd := rec.wait(t, protocol.CmdAddBot).Data.(protocol.AddBotCmd); cmd.Slot != 3 {
		t.Errorf("bot slot = %d, want 3", cmd.Slot)
	}

	if err := s.SetReady(ctx, true); err != nil {
		t.Fatalf("SetReady: %v", err)
	}
	if cmd := rec.wait(t, protocol.CmdPlayerReady).Data.(protocol.PlayerReadyCmd); !cmd.Ready {
		t.Error("ready = false, want true")
	}
}

func TestUpdateOptions(t *testing.T) {
	s, _, rec := lobbySession(t, 0)
	opts := &model.GameOptions{EquipmentShopMode: 1}

	done := make(chan error, 1)
	go func() { done <- s.UpdateOptions(context.Background(), opts) }()

	cmd := rec.wait(t, protocol.CmdUpdateGameOptions).Data.(protocol.UpdateGameOptionsCmd)
	if cmd.Options.EquipmentShopMode != 1 {
		t.Errorf("shop mode = %d, want 1", cmd.Options.EquipmentShopMode)
	}
	for {
		handle(t, s, &protocol.GameOptionsChanged{NewOptions: opts})
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("UpdateOptions: %v", err)
			}
			if s.Lobby().Options.EquipmentShopMode != 1 {
				t.Errorf("lobby options not updated: %+v", s.Lobby().Options)
			}
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSetReadyNeedsTwoPlayers(t *testing.T) {
	s, _, _ := newTestSession(t)
	lobby := testLobby(0)
	delete(lobby.Players, 2)
	handle(t, s, &protocol.NewConnectionID{ConnectionID: selfConn})
	handle(t, s, &protocol.LobbyInfo{Lobby: lobby})

	if err := s.SetReady(context.Background(), true); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("SetReady alone = %v, want ErrWrongPhase", err)
	}
}

func TestLobbyCommandsOutsideLobby(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()
	if err := s.SetSeed(ctx, 1); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("SetSeed = %v, want ErrWrongPhase", err)
	}
	if err := s.AddBot(ctx, 1); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("AddBot = %v, want ErrWrongPhase", err)
	}
}

func TestWaitForPlayers(t *testing.T) {
	s, _, _ := newTestSession(t)
	lobby := testLobby(0)
	delete(lobby.Players, 2)
	handle(t, s, &protocol.NewConnectionID{ConnectionID: selfConn})
	handle(t, s, &protocol.LobbyInfo{Lobby: lobby})

	done := make(chan error, 1)
	go func() {
		done <- s.WaitForPlayers(context.Background(), 1, 2*time.Second)
	}()

	for {
		handle(t, s, &protocol.PlayerEntered{Player: testPlayer(2, oppConn, "opp"), Slot: 2})
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("WaitForPlayers: %v", err)
			}
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBuyEquipment(t *testing.T) {
	s, _, rec := runningSession(t, model.ActorTypeAttacker, 1)
	handle(t, s, &protocol.GamePhaseChanged{GamePhase: "Attack"})
	eventually(t, "internal shopping phase", func() bool {
		return s.State().InternalPhase == model.InternalShopping
	})

	// Buying nothing sends nothing.
	before := rec.count()
	if err := s.BuyEquipment(context.Background(), nil); err != nil {
		t.Fatalf("BuyEquipment(nil): %v", err)
	}
	if rec.count() != before {
		t.Error("empty purchase sent a frame")
	}

	if err := s.BuyEquipment(context.Background(), []int{7}); err != nil {
		t.Fatalf("BuyEquipment: %v", err)
	}
	cmd := rec.wait(t, protocol.CmdBuyEquipment).Data.(protocol.BuyEquipmentCmd)
	if len(cmd.Equipment) != 1 || cmd.Equipment[0] != 7 || !cmd.EndShopping {
		t.Errorf("buy command = %+v", cmd)
	}
	if s.State().InternalPhase != model.InternalPlaying {
		t.Errorf("internal phase = %v, want Playing", s.State().InternalPhase)
	}

	ins := drainInteractions(t, s)
	if len(ins) == 0 || ins[len(ins)-1] != model.InteractionPlayCard {
		t.Errorf("interactions = %v, want PlayCard last", ins)
	}
}

func TestFinishShopping(t *testing.T) {
	s, _, rec := runningSession(t, model.ActorTypeAttacker, 1)
	handle(t, s, &protocol.GamePhaseChanged{GamePhase: "Attack"})
	eventually(t, "internal shopping phase", func() bool {
		return s.State().InternalPhase == model.InternalShopping
	})

	if err := s.FinishShopping(context.Background()); err != nil {
		t.Fatalf("FinishShopping: %v", err)
	}
	rec.wait(t, protocol.CmdShoppingFinished)
	if s.State().InternalPhase != model.InternalPlaying {
		t.Errorf("internal phase = %v, want Playing", s.State().InternalPhase)
	}
}

func TestShoppingOutsideShoppingPhase(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 1)
	if err := s.FinishShopping(context.Background()); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("FinishShopping while idle = %v, want ErrWrongPhase", err)
	}
	if err := s.BuyEquipment(context.Background(), []int{1}); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("BuyEquipment while idle = %v, want ErrWrongPhase", err)
	}
}

func TestPlayActionRejectsBadMask(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	_, _, err := s.PlayAction(context.Background(), PlayRequest{ActionID: 10, AttackMask: "X"})
	if !errors.Is(err, ErrBadAttackMask) {
		t.Errorf("PlayAction = %v, want ErrBadAttackMask", err)
	}
}

func TestPlayActionNormalizesSuccess(t *testing.T) {
	for _, tc := range []struct {
		name       string
		successful any
		want       bool
	}{
		{"scalar true", true, true},
		{"scalar false", false, false},
		{"list", []bool{true, false}, true},
		{"empty list means no target hit", []bool{}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, b, rec := runningSession(t, model.ActorTypeAttacker, 0)

			type result struct {
				ok     bool
				action *model.Action
				err    error
			}
			done := make(chan result, 1)
			go func() {
				ok, action, err := s.PlayAction(context.Background(), PlayRequest{
					ActionID:      10,
					TargetAssetID: 1,
					AttackMask:    "CIA",
				})
				done <- result{ok, action, err}
			}()

			cmd := rec.wait(t, protocol.CmdPlayAction).Data.(protocol.PlayActionCmd)
			if cmd.ActionID != 10 || cmd.AttackMask != "CIA" {
				t.Errorf("play command = %+v", cmd)
			}
			if cmd.SupportActionIDs == nil || cmd.EquipmentIDs == nil {
				t.Error("nil id lists were not normalized to empty")
			}

			reply := &protocol.ActionSuccess{
				Action:     &model.Action{ID: 10, Name: "Phishing"},
				Successful: tc.successful,
			}
			for {
				b.Publish(EventPlayActionReply, reply)
				select {
				case r := <-done:
					if r.err != nil {
						t.Fatalf("PlayAction: %v", r.err)
					}
					if r.ok != tc.want {
						t.Errorf("success = %v, want %v", r.ok, tc.want)
					}
					if r.action == nil || r.action.ID != 10 {
						t.Errorf("action = %+v", r.action)
					}
					return
				case <-time.After(10 * time.Millisecond):
				}
			}
		})
	}
}

func TestSelectionFlow(t *testing.T) {
	s, _, rec := runningSession(t, model.ActorTypeAttacker, 0)

	if _, err := s.HasToSelect(); err != nil {
		t.Fatalf("HasToSelect: %v", err)
	}
	if _, _, err := s.Selection(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Selection without offer = %v, want ErrNoSelection", err)
	}

	handle(t, s, &protocol.OfferSelection{
		Actions: []*model.ActionTemplate{
			{ID: "tpl-1", Name: "Recon"},
			{ID: "tpl-2", Name: "Exploit"},
			{ID: "tpl-3", Name: "Pivot"},
		},
		AmountSelection: 2,
	})

	must, err := s.HasToSelect()
	if err != nil || !must {
		t.Fatalf("HasToSelect = %v, %v, want true", must, err)
	}
	amount, choices, err := s.Selection()
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	if amount != 2 || len(choices) != 3 {
		t.Errorf("selection = %d of %d choices, want 2 of 3", amount, len(choices))
	}

	turnBefore := s.State().Turn
	if err := s.SelectActions(context.Background(), []int{1, 2}); err != nil {
		t.Fatalf("SelectActions: %v", err)
	}
	cmd := rec.wait(t, protocol.CmdSelectActions).Data.(protocol.SelectActionsCmd)
	if len(cmd.ActionIDs) != 2 {
		t.Errorf("selected ids = %v", cmd.ActionIDs)
	}
	if got := s.State().Turn; got != turnBefore+1 {
		t.Errorf("turn = %d, want %d", got, turnBefore+1)
	}
	if err := s.SelectActions(context.Background(), []int{1}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("second SelectActions = %v, want ErrNoSelection", err)
	}
}

func TestNextInteractionWaitsForOffer(t *testing.T) {
	s, _, _ := runningSession(t, model.ActorTypeAttacker, 0)
	drainInteractions(t, s)
	s.interactions.push(model.InteractionChooseAction)

	done := make(chan model.Interaction, 1)
	go func() {
		in, err := s.NextInteraction(context.Background())
		if err != nil {
			return
		}
		done <- in
	}()

	select {
	case in := <-done:
		t.Fatalf("NextInteraction returned %v before the offer arrived", in)
	case <-time.After(50 * time.Millisecond):
	}

	handle(t, s, &protocol.OfferSelection{
		Actions:         []*model.ActionTemplate{{ID: "tpl-1"}},
		AmountSelection: 1,
	})
	select {
	case in := <-done:
		if in != model.InteractionChooseAction {
			t.Errorf("interaction = %v, want ChooseAction", in)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("NextInteraction never returned after the offer")
	}
}

func TestLeaveGame(t *testing.T) {
	s, _, rec := runningSession(t, model.ActorTypeAttacker, 0)

	done := make(chan error, 1)
	go func() { done <- s.LeaveGame(context.Background()) }()

	rec.wait(t, protocol.CmdLeaveGame)
	for {
		handle(t, s, &protocol.GameLeft{})
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("LeaveGame: %v", err)
			}
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSurrender(t *testing.T) {
	s, _, rec := runningSession(t, model.ActorTypeAttacker, 0)

	done := make(chan error, 1)
	go func() { done <- s.Surrender(context.Background()) }()

	rec.wait(t, protocol.CmdSurrender)
	rec.wait(t, protocol.CmdLeaveGame)
	for {
		handle(t, s, &protocol.GameLeft{})
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Surrender: %v", err)
			}
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSurrenderOutsideGame(t *testing.T) {
	s, _, _ := lobbySession(t, 0)
	if err := s.Surrender(context.Background()); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Surrender = %v, want ErrWrongPhase", err)
	}
}

func TestLeaveGameWithNothingToLeave(t *testing.T) {
	s, _, _ := newTestSession(t)
	if err := s.LeaveGame(context.Background()); !errors.Is(err, ErrNothingToLeave) {
		t.Errorf("LeaveGame = %v, want ErrNothingToLeave", err)
	}
}

func TestCloseSendsCloseFrameAndEndInteraction(t *testing.T) {
	s, _, rec := newTestSession(t)
	drainInteractions(t, s)
	s.Close()

	eventually(t, "close frame recorded", func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		for _, f := range rec.frames {
			if f.Close {
				return true
			}
		}
		return false
	})
	in, err := s.NextInteraction(context.Background())
	if err != nil {
		t.Fatalf("NextInteraction: %v", err)
	}
	if in != model.InteractionEnd {
		t.Errorf("interaction = %v, want End", in)
	}
}
