package session

// Bus event names published by the session. External callers can Await
// these on the session bus; the outbound interpreter listens for EventSend.
const (
	EventConnectionIDReceived = "connection_id_received"

	EventPhaseChanged       = "session_phase_changed"
	EventGamePhaseChanged   = "game_phase_changed"
	EventLobbyChanged       = "lobby_changed"
	EventScenarioChanged    = "scenario_changed"
	EventBoardChanged       = "board_changed"
	EventSelectionOffer     = "selection_offer_changed"
	EventHandChanged        = "hand_changed"
	EventShopChanged        = "shop_changed"
	EventEquipmentChanged   = "equipment_changed"
	EventPlayersChanged     = "players_changed"
	EventRoleChanged        = "player_role_changed"
	EventAttributeChanged   = "player_attribute_changed"
	EventGameOptionsChanged = "game_options_changed"

	EventGameStarted = "game_started"
	EventGameEnded   = "game_ended"

	EventAllActionsPlayable = "all_actions_playable"
	EventSend               = "send"

	EventPlayActionReply = "play_action_reply"
	EventGameLeft        = "game_left"
)
