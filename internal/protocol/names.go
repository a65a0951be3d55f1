package protocol

// Inbound event names as sent by the gateway.
const (
	EvNewConnectionID = "new_connection_id"

	EvLobbyInfo          = "lobby_info"
	EvPlayerEntered      = "player_entered"
	EvPlayerLeft         = "player_left"
	EvScenarios          = "scenarios"
	EvScenarioChanged    = "scenario_changed"
	EvGameOptionsChanged = "game_options_changed"
	EvPlayerReadyChanged = "player_ready_changed"
	EvChangedSlots       = "changed_slots"
	EvGotKicked          = "got_kicked"
	EvLobbyLeft          = "lobby_left"
	EvGameCrashed        = "game_crashed"

	EvGameStarted             = "game_started"
	EvGamePhaseChanged        = "game_phase_changed"
	EvGameEnded               = "game_ended"
	EvGamePlayers             = "game_players"
	EvAttributeChanged        = "attribute_changed"
	EvAssortmentReceived      = "assortment_received"
	EvEquipmentReceived       = "equipment_received"
	EvActionPlayable          = "action_playable"
	EvRemoveCards             = "remove_cards"
	EvActionsDetected         = "actions_detected"
	EvActionSuccess           = "action_success"
	EvOfferSelection          = "offer_selection"
	EvActionsReceived         = "actions_received"
	EvAssetChanged            = "asset_changed"
	EvAssetChanges            = "asset_changes"
	EvUpdatePlayer            = "update_player"
	EvGamePlayerChanged       = "game_player_changed"
	EvGameState               = "game_state"
	EvGameTurnChanged         = "game_turn_changed"
	EvGameLeft                = "game_left"
	EvEventlogUpdated         = "eventlog_updated"
	EvRemoveEquipmentFromShop = "remove_equipment_from_shop"
	EvActorDetected           = "actor_detected"
	EvAllActionsPlayable      = "all_actions_playable"

	EvError = "error"
)

// Outbound command names understood by the gateway.
const (
	CmdCreateNewGameLobby = "create_new_game_lobby"
	CmdJoinLobby          = "join_lobby"
	CmdSelectScenario     = "select_scenario"
	CmdSelectGoal         = "select_scenario_goal"
	CmdSetSeed            = "set_seed"
	CmdUpdateGameOptions  = "update_game_options"
	CmdAddBot             = "add_bot"
	CmdPlayerReady        = "player_ready"
	CmdChangeSlot         = "change_slot"

	CmdShoppingFinished = "shopping_finished"
	CmdBuyEquipment     = "buy_equipment"
	CmdSelectActions    = "select_actions"
	CmdGetValidActions  = "get_valid_actions"
	CmdPlayAction       = "play_action"
	CmdSurrender        = "game_surrender"

	CmdLeaveGame = "leave_game"
)

// ValidAttackMasks are the accepted CIA attack mask strings, in the order
// the gateway documents them.
var ValidAttackMasks = []string{"C", "I", "A", "CI", "CA", "IA", "CIA"}

// ValidAttackMask reports whether mask is one of ValidAttackMasks.
func ValidAttackMask(mask string) bool {
	for _, m := range ValidAttackMasks {
		if m == mask {
			return true
		}
	}
	return false
}
