package protocol

import (
	"errors"
	"testing"

	"github.com/seresheim/penquest-pkgs/internal/model"
)

// Decoding any schema forces the registry to seal, so a single bad field
// binding would fail every event here, not just its own.
func TestEverySchemaSealsAndDecodes(t *testing.T) {
	for name := range std.schemas {
		_, err := std.Decode(name, map[string]any{})
		if err != nil && !errors.Is(err, ErrMissingField) {
			t.Errorf("Decode(%q, {}) = %v", name, err)
		}
	}
}

func TestParseNewConnectionID(t *testing.T) {
	got, err := Parse(EvNewConnectionID, unmarshal(t, `{"connectionId": "abc"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	msg, ok := got.(*NewConnectionID)
	if !ok || msg.ConnectionID != "abc" {
		t.Errorf("Parse = %#v, want connection id abc", got)
	}
}

func TestParseGameTurnChanged(t *testing.T) {
	got, err := Parse(EvGameTurnChanged, unmarshal(t, `{"currentTurn": 4}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if msg := got.(*GameTurnChanged); msg.CurrentTurn != 4 {
		t.Errorf("CurrentTurn = %d, want 4", msg.CurrentTurn)
	}
}

func TestParseServerErrorForms(t *testing.T) {
	got, err := Parse(EvError, unmarshal(t,
		`{"error_id": 12, "error_message": "boom", "multiple_errors": false}`))
	if err != nil {
		t.Fatalf("single form: %v", err)
	}
	se := got.(*model.ServerErrors)
	if id, ok := se.ErrorID.(int); !ok || id != 12 {
		t.Errorf("single error_id = %v (%T), want 12", se.ErrorID, se.ErrorID)
	}

	got, err = Parse(EvError, unmarshal(t,
		`{"error_id": [1, 2], "error_message": ["a", "b"], "multiple_errors": true}`))
	if err != nil {
		t.Fatalf("list form: %v", err)
	}
	se = got.(*model.ServerErrors)
	ids, ok := se.ErrorID.([]int)
	if !ok || len(ids) != 2 || ids[1] != 2 {
		t.Errorf("list error_id = %v (%T), want [1 2]", se.ErrorID, se.ErrorID)
	}
}

const actionJSON = `{
	"id": 10, "template_id": "a-phish", "name": "Phishing",
	"short_description": "s", "long_description": "l",
	"effects": [], "impact": [1, 0, 0], "soph_requirement": 1,
	"requiresAdmin": false, "requiredEquipment": [],
	"asset_categories": [2], "attack_stage": 1, "oses": [0],
	"card_type": "attack", "actor_type": "attacker",
	"deflectedDamage": null
}`

// The successful flag is a bool for single targets and a bool list for
// multi-target actions.
func TestParseActionSuccessForms(t *testing.T) {
	got, err := Parse(EvActionSuccess, unmarshal(t,
		`{"action": `+actionJSON+`, "successful": true}`))
	if err != nil {
		t.Fatalf("scalar form: %v", err)
	}
	msg := got.(*ActionSuccess)
	if msg.Action == nil || msg.Action.Name != "Phishing" {
		t.Errorf("action = %+v", msg.Action)
	}
	if b, ok := msg.Successful.(bool); !ok || !b {
		t.Errorf("scalar Successful = %v (%T), want true", msg.Successful, msg.Successful)
	}

	got, err = Parse(EvActionSuccess, unmarshal(t,
		`{"action": `+actionJSON+`, "successful": [true, false]}`))
	if err != nil {
		t.Fatalf("list form: %v", err)
	}
	msg = got.(*ActionSuccess)
	bs, ok := msg.Successful.([]bool)
	if !ok || len(bs) != 2 || !bs[0] || bs[1] {
		t.Errorf("list Successful = %v (%T), want [true false]", msg.Successful, msg.Successful)
	}
}

const playerJSON = `{
	"id": 1, "connection_id": "c1", "avatar_id": null,
	"name": "alice", "online": true, "user_id": "u1"
}`

const gameOptionsJSON = `{
	"action_detection_mode": 0, "action_shop_mode": 1, "action_success_mode": 0,
	"initial_action_mode": 0, "initial_asset_stage": 0, "manual_def_type_mode": 0,
	"support_actions_mode": 0, "equipment_shop_mode": 1, "infiniteShields": 0,
	"multiTargetSuccess": 0, "defenderActionsDetectable": 0, "availabilityPenalty": 0
}`

const gameOptionLocksJSON = `{
	"action_detection_mode": false, "action_shop_mode": false, "action_success_mode": false,
	"initial_action_mode": false, "initial_asset_stage": false, "manual_def_type_mode": false,
	"support_actions_mode": false, "equipment_shop_mode": false, "infiniteShields": false,
	"multiTargetSuccess": false, "defenderActionsDetectable": false, "availabilityPenalty": false
}`

func TestParseLobbyInfo(t *testing.T) {
	got, err := Parse(EvLobbyInfo, unmarshal(t, `{"lobby": {
		"admin": `+playerJSON+`,
		"code": "QX7",
		"players": {"0": `+playerJSON+`, "1": null},
		"scenario": null,
		"game_options": `+gameOptionsJSON+`,
		"gameOptionLocks": `+gameOptionLocksJSON+`,
		"availableGoals": [{"id": "g1", "description": "win", "isDefault": true}]
	}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lobby := got.(*LobbyInfo).Lobby
	if lobby == nil {
		t.Fatal("lobby is nil")
	}
	if lobby.Code != "QX7" || lobby.Admin == nil || lobby.Admin.Name != "alice" {
		t.Errorf("lobby = %+v", lobby)
	}
	if len(lobby.Players) != 1 || lobby.Players[0] == nil {
		t.Errorf("players = %v, want one occupied slot", lobby.Players)
	}
	if lobby.Scenario != nil {
		t.Errorf("scenario = %+v, want nil", lobby.Scenario)
	}
	if len(lobby.AvailableGoals) != 1 || !lobby.AvailableGoals[0].IsDefault {
		t.Errorf("goals = %v", lobby.AvailableGoals)
	}
	if lobby.Options == nil || lobby.Options.ActionShopMode != 1 {
		t.Errorf("options = %+v", lobby.Options)
	}
}

func TestKnownEvents(t *testing.T) {
	for _, ev := range []string{EvLobbyInfo, EvGameStarted, EvGameEnded, EvError} {
		if !Known(ev) {
			t.Errorf("Known(%q) = false", ev)
		}
	}
	if Known("definitely_not_an_event") {
		t.Error("Known accepted an unregistered event")
	}
}
