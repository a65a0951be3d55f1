// Package session drives one client's participation in a game: it keeps the
// lobby and game state up to date from inbound gateway messages, exposes the
// command surface the player uses, and signals the caller through an
// interaction queue whenever a decision is needed.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seresheim/penquest-pkgs/internal/bus"
	"github.com/seresheim/penquest-pkgs/internal/model"
	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

// Options tune the session's waiting behavior.
type Options struct {
	// AwaitTimeout bounds internal waits for single reply events.
	AwaitTimeout time.Duration
	// InteractionTimeout bounds NextInteraction.
	InteractionTimeout time.Duration
}

const (
	defaultAwaitTimeout       = 30 * time.Second
	defaultInteractionTimeout = 240 * time.Second
)

// Session is safe for concurrent use: inbound handlers run on interpreter
// goroutines while the caller drives the command surface.
type Session struct {
	bus *bus.Bus
	log *zap.Logger

	awaitTimeout       time.Duration
	interactionTimeout time.Duration

	mu            sync.Mutex
	phase         model.SessionPhase
	lobby         *model.Lobby
	connectionID  string
	state         *model.GameState
	offerReceived bool
	detected      [][]*model.Action

	interactions *interactionQueue
}

// New returns a session in the start phase with a create-or-join interaction
// already queued.
func New(b *bus.Bus, log *zap.Logger, opts Options) *Session {
	if opts.AwaitTimeout <= 0 {
		opts.AwaitTimeout = defaultAwaitTimeout
	}
	if opts.InteractionTimeout <= 0 {
		opts.InteractionTimeout = defaultInteractionTimeout
	}
	s := &Session{
		bus:                b,
		log:                log,
		awaitTimeout:       opts.AwaitTimeout,
		interactionTimeout: opts.InteractionTimeout,
		phase:              model.PhaseStart,
		interactions:       newInteractionQueue(),
	}
	s.interactions.push(model.InteractionCreateOrJoinLobby)
	return s
}

// Bus returns the event bus the session publishes on.
func (s *Session) Bus() *bus.Bus { return s.bus }

// Phase returns the current session phase.
func (s *Session) Phase() model.SessionPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// ConnectionID returns the id the gateway assigned to this client, or "".
func (s *Session) ConnectionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectionID
}

// Lobby returns a copy of the current lobby, or nil.
func (s *Session) Lobby() *model.Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lobby.Clone()
}

// State returns a copy of the current game state, or nil before game start.
func (s *Session) State() *model.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// DetectedActions returns the history of detected opponent action batches.
func (s *Session) DetectedActions() [][]*model.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]*model.Action, len(s.detected))
	copy(out, s.detected)
	return out
}

// IsOver reports whether the game has ended.
func (s *Session) IsOver() bool {
	return s.Phase() == model.PhaseEnded
}

// Role returns the actor this client controls, or nil.
func (s *Session) Role() *model.Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roleLocked()
}

func (s *Session) roleLocked() *model.Actor {
	if s.state == nil {
		return nil
	}
	return s.state.Role(s.connectionID)
}

// myTurnLocked reports whether the given phase is this client's turn.
func (s *Session) myTurnLocked(phase model.ExternalPhase) bool {
	role := s.roleLocked()
	if role == nil {
		return false
	}
	switch phase {
	case model.ExternalAttacker:
		return role.Type == model.ActorTypeAttacker
	case model.ExternalDefender:
		return role.Type == model.ActorTypeDefender
	}
	return false
}

// send publishes one outgoing frame on the bus; the outbound interpreter
// claims it and writes it to the transport.
func (s *Session) send(kind protocol.MessageKind, event string, data any) {
	s.bus.Publish(EventSend, protocol.Outgoing{Kind: kind, Event: event, Data: data})
}

// command sends a plain command frame.
func (s *Session) command(event string, data any) {
	s.send(protocol.KindCommand, event, data)
}

// await blocks for one of the given bus events using the session's reply
// timeout.
func (s *Session) await(ctx context.Context, events ...string) (bus.Delivery, error) {
	return s.bus.Await(ctx, s.awaitTimeout, events...)
}

// awaitSessionPhase blocks until the session phase is one of want. Inbound
// handlers use it to park messages that arrive ahead of the phase change
// they depend on.
func (s *Session) awaitSessionPhase(ctx context.Context, want ...model.SessionPhase) error {
	deadline := time.Now().Add(s.awaitTimeout)
	for {
		ch, cancel := s.bus.Listen(EventPhaseChanged)
		s.mu.Lock()
		current := s.phase
		s.mu.Unlock()
		for _, p := range want {
			if current == p {
				cancel()
				return nil
			}
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			cancel()
			return fmt.Errorf("%w: in phase %v, want one of %v", ErrWrongPhase, current, want)
		}
		t := time.NewTimer(remaining)
		select {
		case <-ch:
		case <-t.C:
			cancel()
			return fmt.Errorf("%w: in phase %v, want one of %v", ErrWrongPhase, current, want)
		case <-ctx.Done():
			t.Stop()
			cancel()
			return ctx.Err()
		}
		t.Stop()
		cancel()
	}
}

// Connect requests a connection id from the gateway and waits until it is
// assigned.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.connectionID != "" {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.mu.Unlock()

	s.send(protocol.KindConnect, "", struct{}{})
	s.log.Debug("connection id requested")
	_, err := s.await(ctx, EventConnectionIDReceived)
	return err
}

// JoinGame joins an existing lobby by its code and queues the lobby
// interactions for the caller.
func (s *Session) JoinGame(ctx context.Context, code string) error {
	if p := s.Phase(); p != model.PhaseStart {
		return fmt.Errorf("%w: cannot join game in phase %v", ErrWrongPhase, p)
	}
	s.send(protocol.KindJoin, protocol.CmdJoinLobby, protocol.JoinLobbyCmd{Code: code})

	s.interactions.push(model.InteractionChangeLobbyProperties)
	s.interactions.push(model.InteractionPlayerReady)
	return nil
}

// CreateLobby creates a new lobby, optionally selecting a scenario and
// setting game options, and queues the lobby interactions for the caller.
func (s *Session) CreateLobby(ctx context.Context, scenarioID string, options *model.GameOptions) error {
	if p := s.Phase(); p != model.PhaseStart {
		return fmt.Errorf("%w: cannot create lobby in phase %v", ErrWrongPhase, p)
	}

	s.send(protocol.KindSetup, protocol.CmdCreateNewGameLobby, nil)
	if _, err := s.await(ctx, EventLobbyChanged); err != nil {
		return fmt.Errorf("create lobby: %w", err)
	}

	if scenarioID != "" {
		s.command(protocol.CmdSelectScenario, protocol.SelectScenarioCmd{ScenarioID: scenarioID})
		if _, err := s.await(ctx, EventScenarioChanged); err != nil {
			return fmt.Errorf("select scenario: %w", err)
		}
	}
	if options != nil {
		s.command(protocol.CmdUpdateGameOptions, protocol.UpdateGameOptionsCmd{Options: options})
		if _, err := s.await(ctx, EventGameOptionsChanged); err != nil {
			return fmt.Errorf("update game options: %w", err)
		}
	}

	s.mu.Lock()
	s.phase = model.PhaseLobby
	s.mu.Unlock()
	s.bus.Publish(EventPhaseChanged, model.PhaseLobby)

	s.interactions.push(model.InteractionChangeLobbyProperties)
	s.interactions.push(model.InteractionPlayerReady)
	return nil
}

func (s *Session) requireLobby() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != model.PhaseLobby {
		return fmt.Errorf("%w: not in lobby phase", ErrWrongPhase)
	}
	if s.lobby == nil {
		return ErrNoLobby
	}
	return nil
}

// SetSeed fixes the server-side RNG seed for the upcoming game.
func (s *Session) SetSeed(ctx context.Context, seed int) error {
	if err := s.requireLobby(); err != nil {
		return err
	}
	s.command(protocol.CmdSetSeed, protocol.SetSeedCmd{Seed: seed})
	return nil
}

// SelectGoal picks a scenario goal by its 1-based index into the lobby's
// available goals.
func (s *Session) SelectGoal(ctx context.Context, goalIdx int) error {
	if err := s.requireLobby(); err != nil {
		return err
	}
	s.mu.Lock()
	goals := s.lobby.AvailableGoals
	if goalIdx < 1 || goalIdx > len(goals) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d of %d", ErrGoalOutOfRange, goalIdx, len(goals))
	}
	goalID := goals[goalIdx-1].ID
	s.mu.Unlock()

	s.command(protocol.CmdSelectGoal, protocol.SetGoalCmd{GoalID: goalID})
	return nil
}

// UpdateOptions changes the game options of the lobby and waits for the
// gateway to confirm them.
func (s *Session) UpdateOptions(ctx context.Context, options *model.GameOptions) error {
	if err := s.requireLobby(); err != nil {
		return err
	}
	s.command(protocol.CmdUpdateGameOptions, protocol.UpdateGameOptionsCmd{Options: options})
	if _, err := s.await(ctx, EventGameOptionsChanged); err != nil {
		return fmt.Errorf("update game options: %w", err)
	}
	return nil
}

// AddBot fills the first free slot with a bot of the given type.
func (s *Session) AddBot(ctx context.Context, botType int) error {
	if err := s.requireLobby(); err != nil {
		return err
	}
	s.mu.Lock()
	slot := 1
	for _, ok := s.lobby.Players[slot]; ok; _, ok = s.lobby.Players[slot] {
		slot++
	}
	s.mu.Unlock()

	s.command(protocol.CmdAddBot, protocol.AddBotCmd{Slot: slot, Type: botType})
	return nil
}

// WaitForPlayers blocks until at least amount other players sit in the
// lobby.
func (s *Session) WaitForPlayers(ctx context.Context, amount int, timeout time.Duration) error {
	if err := s.requireLobby(); err != nil {
		return err
	}
	if amount <= 0 {
		return nil
	}
	for {
		s.mu.Lock()
		enough := len(s.lobby.Players)-1 >= amount
		s.mu.Unlock()
		if enough {
			return nil
		}
		if _, err := s.bus.Await(ctx, timeout, EventPlayersChanged); err != nil {
			return err
		}
	}
}

// SetReady reports this player's readiness. The game starts once everyone
// is ready.
func (s *Session) SetReady(ctx context.Context, ready bool) error {
	if err := s.requireLobby(); err != nil {
		return err
	}
	s.mu.Lock()
	n := len(s.lobby.Players)
	s.mu.Unlock()
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 players in the lobby", ErrWrongPhase)
	}
	s.command(protocol.CmdPlayerReady, protocol.PlayerReadyCmd{Ready: ready})
	return nil
}

// ChangeSlot moves this player to another lobby slot and waits for the
// roster update.
func (s *Session) ChangeSlot(ctx context.Context, newSlot int) error {
	if p := s.Phase(); p != model.PhaseLobby {
		return fmt.Errorf("%w: cannot change slot in phase %v", ErrWrongPhase, p)
	}
	s.command(protocol.CmdChangeSlot, protocol.ChangeSlotCmd{NewSlot: newSlot})
	_, err := s.await(ctx, EventPlayersChanged)
	return err
}

func (s *Session) requireShoppingLocked() error {
	if s.phase != model.PhaseRunning {
		return fmt.Errorf("%w: game is not running", ErrWrongPhase)
	}
	if s.state == nil {
		return ErrNoGame
	}
	if s.state.InternalPhase != model.InternalShopping {
		return fmt.Errorf("%w: not in the shopping phase", ErrWrongPhase)
	}
	return nil
}

// BuyEquipment purchases the given shop items and moves on to playing a
// card. Buying nothing is a no-op.
func (s *Session) BuyEquipment(ctx context.Context, equipmentIDs []int) error {
	s.mu.Lock()
	if err := s.requireShoppingLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(equipmentIDs) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.command(protocol.CmdBuyEquipment, protocol.BuyEquipmentCmd{
		Equipment:   equipmentIDs,
		EndShopping: true,
	})

	s.mu.Lock()
	st := s.state.Clone()
	st.InternalPhase = model.InternalPlaying
	s.state = st
	s.mu.Unlock()
	s.interactions.push(model.InteractionPlayCard)
	return nil
}

// FinishShopping ends the shopping phase without buying and moves on to
// playing a card.
func (s *Session) FinishShopping(ctx context.Context) error {
	s.mu.Lock()
	if err := s.requireShoppingLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.command(protocol.CmdShoppingFinished, nil)

	s.mu.Lock()
	st := s.state.Clone()
	st.InternalPhase = model.InternalPlaying
	s.state = st
	s.mu.Unlock()
	s.interactions.push(model.InteractionPlayCard)
	return nil
}

// PlayRequest is one action play: the action id, its target, and the
// optional extras sent along with it.
type PlayRequest struct {
	ActionID         int
	TargetAssetID    int
	AttackMask       string
	SupportActionIDs []int
	EquipmentIDs     []int
	ResponseTargetID int
}

// PlayAction plays one action and waits for the gateway's verdict. It
// returns whether the action succeeded together with the resolved action.
func (s *Session) PlayAction(ctx context.Context, req PlayRequest) (bool, *model.Action, error) {
	if !protocol.ValidAttackMask(req.AttackMask) {
		return false, nil, fmt.Errorf("%w: %q", ErrBadAttackMask, req.AttackMask)
	}
	if req.SupportActionIDs == nil {
		req.SupportActionIDs = []int{}
	}
	if req.EquipmentIDs == nil {
		req.EquipmentIDs = []int{}
	}

	s.command(protocol.CmdPlayAction, protocol.PlayActionCmd{
		ActionID:         req.ActionID,
		TargetAssetID:    req.TargetAssetID,
		AttackMask:       req.AttackMask,
		SupportActionIDs: req.SupportActionIDs,
		EquipmentIDs:     req.EquipmentIDs,
		ResponseTargetID: req.ResponseTargetID,
	})

	d, err := s.await(ctx, EventPlayActionReply)
	if err != nil {
		return false, nil, err
	}
	reply, ok := d.Payload.(*protocol.ActionSuccess)
	if !ok {
		return false, nil, fmt.Errorf("unexpected play reply payload %T", d.Payload)
	}
	return normalizeSuccess(reply.Successful), reply.Action, nil
}

// normalizeSuccess flattens the gateway's bool-or-list success flag. A
// multi-target action that found no target answers with an empty list,
// which counts as failure.
func normalizeSuccess(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case []bool:
		if len(t) == 0 {
			return false
		}
		return t[0]
	}
	return false
}

// HasToSelect reports whether an action selection offer is pending.
func (s *Session) HasToSelect() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != model.PhaseRunning {
		return false, fmt.Errorf("%w: game is not running", ErrWrongPhase)
	}
	if s.state == nil {
		return false, ErrNoGame
	}
	return s.state.SelectionAmount > 0 && len(s.state.SelectionChoices) > 0, nil
}

// Selection returns the pending offer: how many actions to pick and the
// choices.
func (s *Session) Selection() (int, []*model.ActionTemplate, error) {
	must, err := s.HasToSelect()
	if err != nil {
		return 0, nil, err
	}
	if !must {
		return 0, nil, ErrNoSelection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectionAmount, append([]*model.ActionTemplate(nil), s.state.SelectionChoices...), nil
}

// SelectActions answers a pending offer with the chosen action ids and
// advances the turn counter.
func (s *Session) SelectActions(ctx context.Context, actionIDs []int) error {
	must, err := s.HasToSelect()
	if err != nil {
		return err
	}
	if !must {
		return ErrNoSelection
	}

	s.command(protocol.CmdSelectActions, protocol.SelectActionsCmd{ActionIDs: actionIDs})

	s.mu.Lock()
	st := s.state.Clone()
	st.SelectionAmount = 0
	st.SelectionChoices = nil
	st.Turn++
	s.state = st
	s.mu.Unlock()
	return nil
}

// Surrender gives up the running game and leaves it.
func (s *Session) Surrender(ctx context.Context) error {
	s.mu.Lock()
	running := s.phase == model.PhaseRunning && s.state != nil
	s.mu.Unlock()
	if !running {
		return fmt.Errorf("%w: no game to surrender", ErrWrongPhase)
	}
	s.command(protocol.CmdSurrender, nil)
	return s.LeaveGame(ctx)
}

// LeaveGame leaves the current lobby or game and waits for the gateway's
// confirmation.
func (s *Session) LeaveGame(ctx context.Context) error {
	s.mu.Lock()
	nothing := s.lobby == nil && s.state == nil
	s.mu.Unlock()
	if nothing {
		return ErrNothingToLeave
	}
	s.command(protocol.CmdLeaveGame, nil)
	_, err := s.await(ctx, EventGameLeft)
	return err
}

// Close tells the transport to shut down and unblocks the caller's
// interaction loop with a final end interaction.
func (s *Session) Close() {
	s.log.Info("closing session", zap.String("connection_id", s.ConnectionID()))
	s.bus.Publish(EventSend, protocol.Outgoing{Kind: protocol.KindCommand, Close: true})
	s.interactions.push(model.InteractionEnd)
}

// NextInteraction blocks until the game needs a decision from the caller.
// For a choose-action interaction it additionally waits until the offer to
// choose from has arrived.
func (s *Session) NextInteraction(ctx context.Context) (model.Interaction, error) {
	in, err := s.interactions.pop(ctx, s.interactionTimeout)
	if err != nil {
		return 0, err
	}
	if in == model.InteractionChooseAction {
		s.mu.Lock()
		received := s.offerReceived
		s.mu.Unlock()
		if !received {
			if _, err := s.await(ctx, EventSelectionOffer); err != nil {
				return 0, err
			}
		}
	}
	return in, nil
}
