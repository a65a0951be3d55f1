package protocol

import "github.com/seresheim/penquest-pkgs/internal/model"

// Inbound message payloads, one struct per gateway event. Parse returns a
// pointer to one of these for every event listed in names.go and the
// interpreter type-switches on it.

type LobbyInfo struct {
	Lobby *model.Lobby
}

type Scenarios struct {
	Scenarios []*model.ScenarioTeaser
}

type ScenarioChanged struct {
	Scenario *model.ScenarioTeaser
}

type UpdatePlayer struct {
	Player *model.Player
}

type PlayerReadyChanged struct {
	ConnectionID string
	Slot         int
	Ready        bool
	Player       *model.Player
}

type GameOptionsChanged struct {
	NewOptions *model.GameOptions
}

type ChangedSlots struct {
	ConnectionID string
	NewSlot      int
	OldSlot      int
}

type PlayerEntered struct {
	Player *model.Player
	Slot   int
}

type PlayerLeft struct {
	Player *model.Player
	Slot   int
}

type GotKicked struct{}

type LobbyLeft struct {
	Player *model.Player
}

type GameCrashed struct {
	Reason string
	Code   int
}

type NewConnectionID struct {
	ConnectionID string
}

type GamePlayerChanged struct {
	NewConnectionID string
	NewPlayerID     int
	OldConnectionID string
	OldPlayerID     int
	Player          *model.Player
}

type GameStarted struct {
	Game *model.Game
}

type GameState struct {
	Game *model.Game
}

type GamePhaseChanged struct {
	GamePhase string
}

type GamePlayers struct{}

type AttributeChanged struct {
	Attribute string
	Value     float64
}

type AssortmentReceived struct {
	Equipment []*model.EquipmentTemplate
}

type EquipmentReceived struct {
	Equipment []*model.Equipment
}

type ActionPlayable struct {
	DetectionModifier []*model.ActionChanceModifier
	DetectionChance   float64
	Errors            *model.ServerErrors
	Playable          bool
	ResponseTargetIDs []int
	SuccessModifier   []*model.ActionChanceModifier
	SuccessChance     float64
}

type RemoveCards struct {
	ActionIDs    []int
	EquipmentIDs []int
}

type ActionsDetected struct {
	Actions []*model.Action
}

// ActionSuccess is the play_action reply. Successful is normally a bool but
// multi-target actions answer with a list of bools, so it stays untyped here
// and the session normalizes it.
type ActionSuccess struct {
	Action     *model.Action
	Successful any
}

type OfferSelection struct {
	Actions         []*model.ActionTemplate
	AmountSelection int
}

type ActionsReceived struct {
	NewActions []*model.Action
}

type AssetChanged struct {
	Asset *model.Asset
}

type AssetsChanged struct {
	Changes *model.AssetChanges
}

type GameEnded struct {
	EndState model.EndState
	Message  string
	Summary  *model.PostGameSummary
}

type AllActionsPlayable struct {
	Results map[int]*model.Playable
}

type GameTurnChanged struct {
	CurrentTurn int
}

type EventLogUpdated struct {
	Events []*model.EventEntry
}

type RemoveEquipmentFromShop struct {
	EquipmentIDs []string
}

type ActorDetected struct {
	ActorID int
}

type GameLeft struct{}

func init() {
	std.Register(EvNewConnectionID, NewConnectionID{},
		req("connectionId", "ConnectionID", Prim{KindString}),
	)

	std.Register(EvLobbyInfo, LobbyInfo{},
		req("lobby", "Lobby", Ref{"Lobby"}),
	)
	std.Register(EvScenarios, Scenarios{},
		req("scenarios", "Scenarios", List{Ref{"ScenarioTeaser"}}),
	)
	std.Register(EvScenarioChanged, ScenarioChanged{},
		req("scenario", "Scenario", Ref{"ScenarioTeaser"}),
	)
	std.Register(EvUpdatePlayer, UpdatePlayer{},
		req("player", "Player", Ref{"Player"}),
	)
	std.Register(EvPlayerReadyChanged, PlayerReadyChanged{},
		req("connection_id", "ConnectionID", Prim{KindString}),
		req("slot", "Slot", Prim{KindInt}),
		req("ready", "Ready", Prim{KindBool}),
		req("player", "Player", Ref{"Player"}),
	)
	std.Register(EvGameOptionsChanged, GameOptionsChanged{},
		req("new_game_options", "NewOptions", Ref{"GameOptions"}),
	)
	std.Register(EvChangedSlots, ChangedSlots{},
		req("connection_id", "ConnectionID", Prim{KindString}),
		req("new_slot", "NewSlot", Prim{KindInt}),
		req("old_slot", "OldSlot", Prim{KindInt}),
	)
	std.Register(EvPlayerEntered, PlayerEntered{},
		req("player", "Player", Ref{"Player"}),
		req("slot", "Slot", Prim{KindInt}),
	)
	std.Register(EvPlayerLeft, PlayerLeft{},
		req("player", "Player", Ref{"Player"}),
		req("slot", "Slot", Prim{KindInt}),
	)
	std.Register(EvGotKicked, GotKicked{})
	std.Register(EvLobbyLeft, LobbyLeft{},
		opt("player", "Player", Ref{"Player"}),
	)
	std.Register(EvGameCrashed, GameCrashed{},
		req("reason", "Reason", Prim{KindString}),
		req("code", "Code", Prim{KindInt}),
	)

	std.Register(EvGamePlayerChanged, GamePlayerChanged{},
		req("new_connection_id", "NewConnectionID", Prim{KindString}),
		optn("new_player_id", "NewPlayerID", Prim{KindInt}),
		req("old_connection_id", "OldConnectionID", Prim{KindString}),
		optn("old_player_id", "OldPlayerID", Prim{KindInt}),
		req("player", "Player", Ref{"Player"}),
	)
	std.Register(EvGameStarted, GameStarted{},
		req("game", "Game", Ref{"Game"}),
	)
	std.Register(EvGameState, GameState{},
		req("game", "Game", Ref{"Game"}),
	)
	std.Register(EvGamePhaseChanged, GamePhaseChanged{},
		req("game_phase", "GamePhase", Prim{KindString}),
	)
	std.Register(EvGamePlayers, GamePlayers{})
	std.Register(EvAssortmentReceived, AssortmentReceived{},
		req("equipment", "Equipment", List{Ref{"EquipmentTemplate"}}),
	)
	std.Register(EvAttributeChanged, AttributeChanged{},
		req("attribute", "Attribute", Prim{KindString}),
		req("value", "Value", Prim{KindFloat}),
	)
	std.Register(EvEquipmentReceived, EquipmentReceived{},
		req("equipment", "Equipment", List{Ref{"Equipment"}}),
	)
	std.Register(EvActionPlayable, ActionPlayable{},
		req("detectionModifier", "DetectionModifier", List{Ref{"ActionChanceModifier"}}),
		req("detection_chance", "DetectionChance", Prim{KindFloat}),
		opt("errors", "Errors", Ref{"ServerErrors"}),
		req("playable", "Playable", Prim{KindBool}),
		req("response_target_ids", "ResponseTargetIDs", List{Prim{KindInt}}),
		req("successModifier", "SuccessModifier", List{Ref{"ActionChanceModifier"}}),
		req("success_chance", "SuccessChance", Prim{KindFloat}),
	)
	std.Register(EvRemoveCards, RemoveCards{},
		req("actionIds", "ActionIDs", List{Prim{KindInt}}),
		req("equipmentIds", "EquipmentIDs", List{Prim{KindInt}}),
	)
	std.Register(EvActionsDetected, ActionsDetected{},
		req("actions", "Actions", List{Ref{"Action"}}),
	)
	std.Register(EvActionSuccess, ActionSuccess{},
		req("action", "Action", Ref{"Action"}),
		req("successful", "Successful",
			OneOf{[]Type{Prim{KindBool}, List{Prim{KindBool}}}}),
	)
	std.Register(EvOfferSelection, OfferSelection{},
		req("actions", "Actions", List{Ref{"ActionTemplate"}}),
		req("amount_selection", "AmountSelection", Prim{KindInt}),
	)
	std.Register(EvActionsReceived, ActionsReceived{},
		req("new_actions", "NewActions", List{Ref{"Action"}}),
	)
	std.Register(EvAssetChanged, AssetChanged{},
		req("asset", "Asset", Ref{"Asset"}),
	)
	std.Register(EvAssetChanges, AssetsChanged{},
		req("asset_changes", "Changes", Ref{"AssetChanges"}),
	)
	std.Register(EvGameEnded, GameEnded{},
		req("endState", "EndState", Prim{KindInt}),
		req("endMessage", "Message", Prim{KindString}),
		req("postGameSummary", "Summary", Ref{"PostGameSummary"}),
	)
	std.Register(EvAllActionsPlayable, AllActionsPlayable{},
		req("playable_results", "Results", Map{KindInt, Ref{"Playable"}}),
	)
	std.Register(EvGameTurnChanged, GameTurnChanged{},
		req("currentTurn", "CurrentTurn", Prim{KindInt}),
	)
	std.Register(EvEventlogUpdated, EventLogUpdated{},
		reqn("events", "Events", List{Ref{"EventEntry"}}),
	)
	std.Register(EvRemoveEquipmentFromShop, RemoveEquipmentFromShop{},
		req("equipmentIds", "EquipmentIDs", List{Prim{KindString}}),
	)
	std.Register(EvActorDetected, ActorDetected{},
		req("actorId", "ActorID", Prim{KindInt}),
	)
	std.Register(EvGameLeft, GameLeft{})

	// The error event carries the error model directly, not a wrapper.
	std.Register(EvError, model.ServerErrors{},
		req("error_id", "ErrorID",
			OneOf{[]Type{Prim{KindInt}, List{Prim{KindInt}}}}),
		req("error_message", "ErrorMessage",
			OneOf{[]Type{Prim{KindString}, List{Prim{KindString}}}}),
		req("multiple_errors", "MultipleErrors", Prim{KindBool}),
	)
}
