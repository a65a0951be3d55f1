package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/seresheim/penquest-pkgs/internal/model"
)

// MessageKind is the outer tag of an outgoing frame. The gateway routes
// connect, setup and join frames before a game exists; everything else is a
// plain command.
type MessageKind string

const (
	KindConnect MessageKind = "connect"
	KindSetup   MessageKind = "setup"
	KindJoin    MessageKind = "join"
	KindCommand MessageKind = "command"
)

// Outgoing is one frame to the gateway. On the wire it is the two-element
// array [kind, {"event": ..., "data": ...}]. A frame with Close set
// serializes as [kind, null], which tells the gateway the client is done.
type Outgoing struct {
	Kind  MessageKind
	Event string
	Data  any
	Close bool
}

type outgoingBody struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (o Outgoing) MarshalJSON() ([]byte, error) {
	if o.Close {
		return json.Marshal([2]any{o.Kind, nil})
	}
	data := o.Data
	if data == nil {
		data = struct{}{}
	}
	return json.Marshal([2]any{o.Kind, outgoingBody{Event: o.Event, Data: data}})
}

func (o *Outgoing) UnmarshalJSON(b []byte) error {
	var parts [2]json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if err := json.Unmarshal(parts[0], &o.Kind); err != nil {
		return fmt.Errorf("%w: bad kind: %v", ErrBadEnvelope, err)
	}
	if string(parts[1]) == "null" || len(parts[1]) == 0 {
		o.Close = true
		return nil
	}
	var body outgoingBody
	if err := json.Unmarshal(parts[1], &body); err != nil {
		return fmt.Errorf("%w: bad body: %v", ErrBadEnvelope, err)
	}
	o.Event = body.Event
	o.Data = body.Data
	return nil
}

// Incoming is one frame from the gateway: a JSON object with the event name
// and an event-specific payload.
type Incoming struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Command payloads. These are marshalled with encoding/json, so the tags
// carry the gateway's field names.

type JoinLobbyCmd struct {
	Code string `json:"code"`
}

type SetSeedCmd struct {
	Seed int `json:"seed"`
}

type SetGoalCmd struct {
	GoalID string `json:"goalId"`
}

type SelectScenarioCmd struct {
	ScenarioID string `json:"scenario_id"`
}

type UpdateGameOptionsCmd struct {
	Options *model.GameOptions `json:"game_options"`
}

type AddBotCmd struct {
	Slot int `json:"slot"`
	Type int `json:"type"`
}

type PlayerReadyCmd struct {
	Ready bool `json:"ready"`
}

type ChangeSlotCmd struct {
	NewSlot int `json:"new_slot"`
}

// ActionCandidate is one entry of a get_valid_actions request.
type ActionCandidate struct {
	ActionID         int   `json:"action_id"`
	SupportActionIDs []int `json:"support_action_ids"`
	EquipmentIDs     []int `json:"equipment_ids"`
}

type GetValidActionsCmd struct {
	Actions []ActionCandidate `json:"actions"`
}

type SelectActionsCmd struct {
	ActionIDs []int `json:"action_ids"`
}

type PlayActionCmd struct {
	ActionID         int    `json:"action_id"`
	TargetAssetID    int    `json:"target_asset_id"`
	AttackMask       string `json:"attack_mask"`
	SupportActionIDs []int  `json:"support_action_ids"`
	EquipmentIDs     []int  `json:"equipment_ids"`
	ResponseTargetID int    `json:"response_target_id"`
}

type BuyEquipmentCmd struct {
	Equipment   []int `json:"equipment"`
	EndShopping bool  `json:"endShopping"`
}
