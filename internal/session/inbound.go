package session

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/seresheim/penquest-pkgs/internal/model"
	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

// Handle applies one parsed inbound message to the session. The inbound
// interpreter calls it once per frame, each on its own goroutine, so a
// handler may block waiting for the phase another message establishes.
func (s *Session) Handle(ctx context.Context, msg any) error {
	switch m := msg.(type) {
	case *protocol.NewConnectionID:
		return s.setConnectionID(m.ConnectionID)
	case *protocol.LobbyInfo:
		return s.setLobbyInfo(m.Lobby)
	case *protocol.PlayerEntered:
		return s.addLobbyPlayer(m.Player, m.Slot)
	case *protocol.PlayerLeft:
		return s.removeLobbyPlayer(m.Slot)
	case *protocol.ScenarioChanged:
		return s.setScenario(m.Scenario)
	case *protocol.GameOptionsChanged:
		return s.updateGameOptions(m.NewOptions)
	case *protocol.ChangedSlots:
		return s.changedSlots(m.OldSlot, m.NewSlot)
	case *protocol.UpdatePlayer:
		return s.updatePlayer(m.Player)
	case *protocol.LobbyLeft:
		return s.lobbyLeft(m.Player)
	case *protocol.GotKicked:
		s.log.Warn("kicked from lobby")
		s.Close()
		return nil
	case *protocol.GameCrashed:
		return s.gameCrashed(ctx, m.Code, m.Reason)

	case *protocol.GameStarted:
		return s.startGame(m.Game)
	case *protocol.GamePhaseChanged:
		return s.setGamePhase(ctx, m.GamePhase)
	case *protocol.AttributeChanged:
		return s.setActorAttribute(ctx, m.Attribute, m.Value)
	case *protocol.AssortmentReceived:
		return s.setAssortment(ctx, m.Equipment)
	case *protocol.EquipmentReceived:
		return s.addEquipment(ctx, m.Equipment)
	case *protocol.ActionsReceived:
		return s.addActionsToHand(ctx, m.NewActions)
	case *protocol.AllActionsPlayable:
		return s.allActionsPlayable(ctx, m)
	case *protocol.ActionSuccess:
		return s.playActionReply(ctx, m)
	case *protocol.ActionsDetected:
		return s.addDetectedActions(ctx, m.Actions)
	case *protocol.AssetChanged:
		return s.updateAsset(ctx, m.Asset)
	case *protocol.AssetsChanged:
		return s.updateAssets(ctx, m.Changes)
	case *protocol.OfferSelection:
		return s.setReceivedOffer(ctx, m.Actions, m.AmountSelection)
	case *protocol.RemoveCards:
		return s.removeCards(m.ActionIDs, m.EquipmentIDs)
	case *protocol.GameTurnChanged:
		return s.turnChanged(ctx, m.CurrentTurn)
	case *protocol.GamePlayerChanged:
		return s.gamePlayerChanged(m)
	case *protocol.GameState:
		return s.replaceGameState(ctx, m.Game)
	case *protocol.GameEnded:
		return s.gameEnded(m)
	case *protocol.GameLeft:
		s.bus.Publish(EventGameLeft, nil)
		return nil
	case *protocol.EventLogUpdated:
		return s.updateEventLog(m.Events)
	case *protocol.RemoveEquipmentFromShop:
		return s.removeEquipmentFromShop(m.EquipmentIDs)

	case *protocol.ActorDetected:
		return s.actorDetected(ctx, m.ActorID)

	case *model.ServerErrors:
		return s.serverError(ctx, m)

	// Informational events the session tracks nowhere; logged and dropped.
	case *protocol.Scenarios, *protocol.PlayerReadyChanged, *protocol.GamePlayers,
		*protocol.ActionPlayable:
		s.log.Debug("ignoring informational message", zap.String("type", fmt.Sprintf("%T", msg)))
		return nil
	}
	return fmt.Errorf("unhandled message type %T", msg)
}

func (s *Session) setConnectionID(id string) error {
	s.mu.Lock()
	s.connectionID = id
	if s.state != nil {
		st := s.state.Clone()
		st.ConnectionID = id
		s.state = st
	}
	s.mu.Unlock()

	s.log.Debug("connection id assigned", zap.String("connection_id", id))
	s.bus.Publish(EventConnectionIDReceived, id)
	return nil
}

func (s *Session) setLobbyInfo(lobby *model.Lobby) error {
	s.mu.Lock()
	if s.phase != model.PhaseStart && s.phase != model.PhaseLobby {
		s.mu.Unlock()
		return fmt.Errorf("%w: lobby info outside start or lobby phase", ErrWrongPhase)
	}
	scenarioChanged := s.lobby != nil && !sameScenario(s.lobby.Scenario, lobby.Scenario)
	phaseChanged := s.phase != model.PhaseLobby
	s.lobby = lobby
	if lobby.Players == nil {
		s.lobby.Players = make(map[int]*model.Player)
	}
	s.phase = model.PhaseLobby
	s.mu.Unlock()

	s.bus.Publish(EventLobbyChanged, lobby)
	// Published only on an actual transition. Safe against lost wakeups
	// because awaitSessionPhase registers its claim before re-checking the
	// phase; a waiter arriving after this point sees PhaseLobby directly.
	if phaseChanged {
		s.bus.Publish(EventPhaseChanged, model.PhaseLobby)
	}
	if scenarioChanged {
		s.bus.Publish(EventScenarioChanged, lobby.Scenario)
	}
	return nil
}

func sameScenario(a, b *model.ScenarioTeaser) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func (s *Session) addLobbyPlayer(p *model.Player, slot int) error {
	s.mu.Lock()
	if s.phase != model.PhaseLobby || s.lobby == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: player entered outside lobby phase", ErrWrongPhase)
	}
	if slot < 1 {
		s.mu.Unlock()
		return ErrSlotOutOfRange
	}
	lobby := s.lobby.Clone()
	lobby.Players[slot] = p
	s.lobby = lobby
	players := lobby.Players
	s.mu.Unlock()

	s.bus.Publish(EventPlayersChanged, players)
	return nil
}

func (s *Session) removeLobbyPlayer(slot int) error {
	s.mu.Lock()
	if s.lobby == nil {
		s.mu.Unlock()
		return ErrNoLobby
	}
	if slot < 1 {
		s.mu.Unlock()
		return ErrSlotOutOfRange
	}
	lobby := s.lobby.Clone()
	delete(lobby.Players, slot)
	s.lobby = lobby
	s.mu.Unlock()
	return nil
}

func (s *Session) setScenario(scenario *model.ScenarioTeaser) error {
	s.mu.Lock()
	if s.phase != model.PhaseLobby || s.lobby == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: scenario change outside lobby phase", ErrWrongPhase)
	}
	lobby := s.lobby.Clone()
	lobby.Scenario = scenario
	s.lobby = lobby
	s.mu.Unlock()

	s.bus.Publish(EventScenarioChanged, scenario)
	return nil
}

func (s *Session) updateGameOptions(opts *model.GameOptions) error {
	s.mu.Lock()
	if s.phase != model.PhaseLobby || s.lobby == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: game options change outside lobby phase", ErrWrongPhase)
	}
	lobby := s.lobby.Clone()
	lobby.Options = opts
	s.lobby = lobby
	s.mu.Unlock()

	s.bus.Publish(EventGameOptionsChanged, opts)
	return nil
}

func (s *Session) changedSlots(oldSlot, newSlot int) error {
	s.mu.Lock()
	if s.phase != model.PhaseLobby || s.lobby == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: slot change outside lobby phase", ErrWrongPhase)
	}
	lobby := s.lobby.Clone()
	p, ok := lobby.Players[oldSlot]
	if !ok || p == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: slot %d", ErrSlotVacant, oldSlot)
	}
	lobby.Players[newSlot] = p
	delete(lobby.Players, oldSlot)
	s.lobby = lobby
	players := lobby.Players
	s.mu.Unlock()

	s.bus.Publish(EventPlayersChanged, players)
	return nil
}

func (s *Session) updatePlayer(p *model.Player) error {
	s.mu.Lock()
	s.connectionID = p.ConnectionID
	var players map[int]*model.Player
	if s.lobby != nil {
		for slot, existing := range s.lobby.Players {
			if existing.ID == p.ID && existing.ConnectionID == p.ConnectionID {
				lobby := s.lobby.Clone()
				lobby.Players[slot] = p
				s.lobby = lobby
				players = lobby.Players
				break
			}
		}
	}
	s.mu.Unlock()

	if players != nil {
		s.bus.Publish(EventPlayersChanged, players)
	}
	return nil
}

func (s *Session) lobbyLeft(p *model.Player) error {
	if p == nil {
		return nil
	}
	s.log.Info("player left the lobby",
		zap.String("name", p.Name), zap.Int("id", p.ID))
	if p.ConnectionID == s.ConnectionID() {
		s.Close()
	}
	return nil
}

func (s *Session) gameCrashed(ctx context.Context, code int, reason string) error {
	s.log.Error("game crashed", zap.Int("code", code), zap.String("reason", reason))
	if err := s.LeaveGame(ctx); err != nil {
		s.log.Warn("leaving crashed game", zap.Error(err))
	}
	s.Close()
	return nil
}

func (s *Session) startGame(game *model.Game) error {
	s.mu.Lock()
	if s.phase != model.PhaseLobby {
		s.mu.Unlock()
		return fmt.Errorf("%w: game started outside lobby phase", ErrWrongPhase)
	}
	if s.lobby == nil {
		s.mu.Unlock()
		return ErrNoLobby
	}
	if s.lobby.Scenario == nil || s.lobby.Scenario.ID != game.ScenarioID {
		s.mu.Unlock()
		return ErrScenarioMismatch
	}
	if s.connectionID == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: no connection id at game start", ErrNoRole)
	}
	if _, ok := game.Roles[s.connectionID]; !ok {
		s.mu.Unlock()
		return ErrNoRole
	}

	s.state = &model.GameState{
		Name:            s.lobby.Code,
		Scenario:        s.lobby.Scenario,
		ScenarioID:      game.ScenarioID,
		ConnectionID:    s.connectionID,
		Turn:            game.Turn,
		Shop:            game.Shop,
		SelectionAmount: game.AmountSelection,
		ExternalPhase:   model.ExternalStarting,
	}
	if s.lobby.Options != nil {
		s.state.Options = *s.lobby.Options
	}
	s.phase = model.PhaseRunning
	s.mu.Unlock()

	s.bus.Publish(EventPhaseChanged, model.PhaseRunning)
	if err := s.setPlayersAndRoles(game.Players, game.Roles); err != nil {
		return err
	}
	s.bus.Publish(EventGameStarted, nil)
	return nil
}

// setPlayersAndRoles installs the role map and derives board, hand and
// equipment from this client's role.
func (s *Session) setPlayersAndRoles(players []*model.Player, roles map[string]*model.Actor) error {
	s.mu.Lock()
	if s.phase != model.PhaseRunning || s.state == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: roles outside a running game", ErrWrongPhase)
	}
	role, ok := roles[s.state.ConnectionID]
	if !ok || role == nil {
		s.mu.Unlock()
		return ErrNoRole
	}

	st := s.state.Clone()
	st.Players = players
	st.Roles = roles
	for _, asset := range role.VisibleAssets {
		st.Board = appendAsset(st.Board, asset)
	}
	if role.Type == model.ActorTypeDefender {
		for _, asset := range role.Assets {
			st.Board = appendAsset(st.Board, asset)
		}
	}
	st.Hand = append(st.Hand, role.Actions...)
	st.Equipment = append(st.Equipment, role.Equipment...)
	s.state = st
	s.mu.Unlock()

	s.bus.Publish(EventBoardChanged, st.Board)
	s.bus.Publish(EventHandChanged, st.Hand)
	s.bus.Publish(EventEquipmentChanged, st.Equipment)
	s.bus.Publish(EventRoleChanged, role)
	return nil
}

func appendAsset(board []*model.Asset, asset *model.Asset) []*model.Asset {
	for _, a := range board {
		if a.ID == asset.ID {
			return board
		}
	}
	return append(board, asset)
}

// actorSetters assigns one attribute value on an actor. Unknown attributes
// are rejected rather than set dynamically.
var actorSetters = map[string]func(*model.Actor, float64){
	"soph":          func(a *model.Actor, v float64) { a.Soph = int(v) },
	"det":           func(a *model.Actor, v float64) { a.Det = int(v) },
	"wealth":        func(a *model.Actor, v float64) { a.Wealth = int(v) },
	"ini":           func(a *model.Actor, v float64) { a.Ini = int(v) },
	"ins":           func(a *model.Actor, v float64) { a.Ins = int(v) },
	"credits":       func(a *model.Actor, v float64) { a.Credits = v },
	"insightShield": func(a *model.Actor, v float64) { a.InsightShield = int(v) },
}

func (s *Session) setActorAttribute(ctx context.Context, attribute string, value float64) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	set, ok := actorSetters[attribute]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, attribute)
	}

	s.mu.Lock()
	role := s.roleLocked()
	if role == nil {
		s.mu.Unlock()
		return ErrNoRole
	}
	updated := *role
	set(&updated, value)
	st := s.state.Clone()
	st.Roles[st.ConnectionID] = &updated
	s.state = st
	s.mu.Unlock()

	s.bus.Publish(EventAttributeChanged, map[string]any{
		"attribute": attribute,
		"value":     value,
	})
	return nil
}

func (s *Session) setGamePhase(ctx context.Context, phase string) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning, model.PhaseEnded); err != nil {
		return err
	}
	external, ok := model.ParseExternalPhase(phase)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
	}

	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	myTurn := s.myTurnLocked(external)
	internal := model.InternalIdle
	if myTurn {
		internal = model.InternalShopping
	}
	st := s.state.Clone()
	st.ExternalPhase = external
	st.InternalPhase = internal
	s.state = st
	turn := st.Turn
	shopMode := st.Options.EquipmentShopMode
	s.mu.Unlock()

	s.bus.Publish(EventGamePhaseChanged, external)

	// Each turn starts by redrawing an action; only the very first turn
	// goes straight to shopping or playing.
	var next model.Interaction
	switch {
	case external == model.ExternalInitDraw:
		next = model.InteractionChooseAction
	case myTurn && turn == 1 && shopMode > 0:
		next = model.InteractionShoppingPhase
	case myTurn && turn == 1:
		next = model.InteractionPlayCard
	case myTurn:
		next = model.InteractionChooseAction
	default:
		return nil
	}
	s.interactions.push(next)
	return nil
}

func (s *Session) setAssortment(ctx context.Context, equipment []*model.EquipmentTemplate) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()
	st.Shop = equipment
	s.state = st
	s.mu.Unlock()

	s.bus.Publish(EventShopChanged, equipment)
	return nil
}

func (s *Session) addEquipment(ctx context.Context, equipment []*model.Equipment) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()
	st.Equipment = append(st.Equipment, equipment...)

	// Purchases leave the shop.
	bought := make(map[string]bool, len(equipment))
	for _, eq := range equipment {
		bought[eq.TemplateID] = true
	}
	shop := st.Shop[:0:0]
	for _, tpl := range st.Shop {
		if !bought[tpl.ID] {
			shop = append(shop, tpl)
		}
	}
	st.Shop = shop
	s.state = st
	s.mu.Unlock()

	s.bus.Publish(EventEquipmentChanged, equipment)
	s.bus.Publish(EventShopChanged, shop)
	return nil
}

func (s *Session) addActionsToHand(ctx context.Context, actions []*model.Action) error {
	// At game end the phase change may overtake the final draw, so an ended
	// session still accepts new actions.
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning, model.PhaseEnded); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()
	st.Hand = append(st.Hand, actions...)
	s.state = st
	hand := st.Hand
	myTurn := s.myTurnLocked(st.ExternalPhase)
	shopMode := st.Options.EquipmentShopMode
	s.mu.Unlock()

	s.bus.Publish(EventHandChanged, hand)
	if myTurn {
		if shopMode > 0 {
			s.interactions.push(model.InteractionShoppingPhase)
		} else {
			s.interactions.push(model.InteractionPlayCard)
		}
	}
	return nil
}

func (s *Session) allActionsPlayable(ctx context.Context, m *protocol.AllActionsPlayable) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.bus.Publish(EventAllActionsPlayable, m)
	return nil
}

func (s *Session) playActionReply(ctx context.Context, m *protocol.ActionSuccess) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.bus.Publish(EventPlayActionReply, m)
	return nil
}

func (s *Session) addDetectedActions(ctx context.Context, actions []*model.Action) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.mu.Lock()
	s.detected = append(s.detected, actions)
	s.mu.Unlock()
	return nil
}

func (s *Session) actorDetected(ctx context.Context, actorID int) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	id := strconv.Itoa(actorID)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.Clone()
	for conn, role := range st.Roles {
		if role == nil || role.ID != id {
			continue
		}
		updated := *role
		updated.HasBeenDetected = true
		st.Roles[conn] = &updated
		s.state = st
		return nil
	}
	return fmt.Errorf("%w: actor %d", ErrNoRole, actorID)
}

func (s *Session) updateAsset(ctx context.Context, asset *model.Asset) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning, model.PhaseEnded); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()
	replaced := false
	for i, a := range st.Board {
		if a.ID == asset.ID {
			st.Board[i] = asset
			replaced = true
			break
		}
	}
	if replaced {
		s.state = st
	}
	s.mu.Unlock()

	if replaced {
		s.bus.Publish(EventBoardChanged, st.Board)
	}
	return nil
}

func (s *Session) updateAssets(ctx context.Context, changes *model.AssetChanges) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()
	for _, asset := range changes.Revealed {
		st.Board = appendAsset(st.Board, asset)
	}
	for _, id := range changes.Hidden {
		idx := -1
		for i, a := range st.Board {
			if a.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			s.mu.Unlock()
			return fmt.Errorf("%w: id %d", ErrAssetNotFound, id)
		}
		st.Board = append(st.Board[:idx], st.Board[idx+1:]...)
	}
	s.state = st
	s.mu.Unlock()

	s.bus.Publish(EventBoardChanged, st.Board)
	return nil
}

func (s *Session) setReceivedOffer(ctx context.Context, actions []*model.ActionTemplate, amount int) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()
	st.SelectionAmount = amount
	st.SelectionChoices = actions
	s.state = st
	s.offerReceived = true
	s.mu.Unlock()

	s.bus.Publish(EventSelectionOffer, map[string]any{
		"actions":          actions,
		"amount_selection": amount,
	})
	return nil
}

func (s *Session) removeCards(actionIDs, equipmentIDs []int) error {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()

	dropActions := make(map[int]bool, len(actionIDs))
	for _, id := range actionIDs {
		dropActions[id] = true
	}
	hand := st.Hand[:0:0]
	for _, a := range st.Hand {
		if !dropActions[a.ID] {
			hand = append(hand, a)
		}
	}
	st.Hand = hand

	dropEquipment := make(map[int]bool, len(equipmentIDs))
	for _, id := range equipmentIDs {
		dropEquipment[id] = true
	}
	equipment := st.Equipment[:0:0]
	for _, eq := range st.Equipment {
		if !dropEquipment[eq.ID] {
			equipment = append(equipment, eq)
		}
	}
	st.Equipment = equipment

	s.state = st
	s.mu.Unlock()
	return nil
}

func (s *Session) turnChanged(ctx context.Context, turn int) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()
	st.Turn = turn
	s.state = st
	s.offerReceived = false
	s.mu.Unlock()
	return nil
}

func (s *Session) gamePlayerChanged(m *protocol.GamePlayerChanged) error {
	s.mu.Lock()
	if s.connectionID == m.OldConnectionID {
		s.connectionID = m.NewConnectionID
	}
	if s.state != nil {
		st := s.state.Clone()
		idx := len(st.Players)
		for i, p := range st.Players {
			if p.ConnectionID == m.OldConnectionID {
				st.Players = append(st.Players[:i], st.Players[i+1:]...)
				idx = i
				break
			}
		}
		st.Players = append(st.Players[:idx], append([]*model.Player{m.Player}, st.Players[idx:]...)...)
		s.state = st
	}
	s.mu.Unlock()
	return nil
}

// replaceGameState rebuilds the whole game state from a full resync.
func (s *Session) replaceGameState(ctx context.Context, game *model.Game) error {
	if err := s.awaitSessionPhase(ctx, model.PhaseRunning); err != nil {
		return err
	}
	s.mu.Lock()
	self, ok := game.Roles[s.connectionID]
	if !ok || self == nil {
		s.mu.Unlock()
		return ErrNoRole
	}
	external, _ := model.ParseExternalPhase(game.Phase)
	st := &model.GameState{
		ConnectionID:        s.connectionID,
		ScenarioID:          game.ScenarioID,
		ScenarioName:        game.ScenarioName,
		ScenarioDescription: game.ScenarioDescription,
		Turn:                game.Turn,
		ExternalPhase:       external,
		Players:             game.Players,
		Roles:               game.Roles,
		Hand:                self.Actions,
		Equipment:           self.Equipment,
		Shop:                game.Shop,
		SelectionAmount:     game.AmountSelection,
	}
	if s.state != nil {
		st.Name = s.state.Name
		st.Scenario = s.state.Scenario
		st.Options = s.state.Options
		st.InternalPhase = s.state.InternalPhase
	}
	for _, asset := range self.VisibleAssets {
		st.Board = appendAsset(st.Board, asset)
	}
	for _, asset := range self.Assets {
		st.Board = appendAsset(st.Board, asset)
	}
	s.state = st
	s.mu.Unlock()
	return nil
}

func (s *Session) gameEnded(m *protocol.GameEnded) error {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	s.phase = model.PhaseEnded
	st := s.state.Clone()
	st.EndState = m.EndState
	st.Summary = m.Summary
	s.state = st
	role := s.roleLocked()
	turn := st.Turn
	s.mu.Unlock()

	s.bus.Publish(EventPhaseChanged, model.PhaseEnded)
	s.bus.Publish(EventGameEnded, map[string]any{
		"role":    role,
		"result":  m.EndState,
		"message": m.Message,
		"turn":    turn,
	})
	s.interactions.push(model.InteractionEnd)
	return nil
}

func (s *Session) updateEventLog(events []*model.EventEntry) error {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	st := s.state.Clone()
	st.EventLog = events
	s.state = st
	s.mu.Unlock()
	return nil
}

func (s *Session) removeEquipmentFromShop(templateIDs []string) error {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNoGame
	}
	drop := make(map[string]bool, len(templateIDs))
	for _, id := range templateIDs {
		drop[id] = true
	}
	st := s.state.Clone()
	shop := st.Shop[:0:0]
	for _, tpl := range st.Shop {
		if !drop[tpl.ID] {
			shop = append(shop, tpl)
		}
	}
	st.Shop = shop
	s.state = st
	s.mu.Unlock()

	s.bus.Publish(EventShopChanged, shop)
	return nil
}

// serverError logs every reported error and backs out of the game.
func (s *Session) serverError(ctx context.Context, m *model.ServerErrors) error {
	ids, messages := flattenErrors(m)
	for i, id := range ids {
		msg := ""
		if i < len(messages) {
			msg = messages[i]
		}
		s.log.Error("server error", zap.Int("error_id", id), zap.String("message", msg))
	}
	if s.Phase() != model.PhaseStart {
		// Fire and forget: a confirmation may never come after an error.
		s.command(protocol.CmdLeaveGame, nil)
		s.Close()
	}
	return nil
}

func flattenErrors(m *model.ServerErrors) ([]int, []string) {
	var ids []int
	switch v := m.ErrorID.(type) {
	case int:
		ids = []int{v}
	case []int:
		ids = v
	}
	var messages []string
	switch v := m.ErrorMessage.(type) {
	case string:
		messages = []string{v}
	case []string:
		messages = v
	}
	return ids, messages
}
