package net

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/seresheim/penquest-pkgs/internal/model"
	"github.com/seresheim/penquest-pkgs/internal/protocol"
	"github.com/seresheim/penquest-pkgs/internal/session"
)

// View types shared by the terminal client and the MCP tools. They flatten
// the session state into plain JSON-friendly structs.

// StateView is the running game from this client's perspective.
type StateView struct {
	Scenario   string          `json:"scenario"`
	Turn       int             `json:"turn"`
	Phase      string          `json:"phase"`
	IsYourTurn bool            `json:"is_your_turn"`
	You        *ActorView      `json:"you,omitempty"`
	Board      []AssetView     `json:"board"`
	Hand       []CardView      `json:"hand"`
	Equipment  []EquipmentView `json:"equipment"`
	Shop       []ShopItemView  `json:"shop,omitempty"`
	Result     string          `json:"result,omitempty"`
}

// ActorView shows this client's attacker or defender attributes.
type ActorView struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Credits        float64 `json:"credits"`
	Sophistication int     `json:"sophistication"`
	Determination  int     `json:"determination"`
	Wealth         int     `json:"wealth"`
	Initiative     int     `json:"initiative"`
	Insight        int     `json:"insight"`
}

// AssetView is one asset on the board.
type AssetView struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category int    `json:"category"`
	Stage    int    `json:"attack_stage"`
	Offline  bool   `json:"offline,omitempty"`
}

// CardView is one action card in hand or offered for selection. ID is the
// numeric template id sent back when picking offered cards; zero for cards
// already in hand.
type CardView struct {
	Index       int    `json:"index"`
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// EquipmentView is one owned equipment item.
type EquipmentView struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Price float64 `json:"price,omitempty"`
}

// ShopItemView is one equipment template on offer.
type ShopItemView struct {
	Index int     `json:"index"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OptionView is one fully specified playable action.
type OptionView struct {
	Index          int    `json:"index"`
	Action         string `json:"action"`
	TargetAssetID  int    `json:"target_asset_id"`
	AttackMask     string `json:"attack_mask"`
	Support        string `json:"support,omitempty"`
	Equipment      string `json:"equipment,omitempty"`
	ResponseTarget int    `json:"response_target_id,omitempty"`
}

// LobbyView is the waiting room roster.
type LobbyView struct {
	Code     string   `json:"code"`
	Scenario string   `json:"scenario,omitempty"`
	Players  []string `json:"players"`
	Goals    []string `json:"goals,omitempty"`
}

// BuildStateView flattens a game state. A nil state yields nil.
func BuildStateView(s *session.Session) *StateView {
	st := s.State()
	if st == nil {
		return nil
	}
	role := s.Role()
	view := &StateView{
		Scenario:  scenarioName(st),
		Turn:      st.Turn,
		Phase:     st.ExternalPhase.String(),
		Board:     []AssetView{},
		Hand:      []CardView{},
		Equipment: []EquipmentView{},
	}
	if role != nil {
		view.You = &ActorView{
			Name:           role.Name,
			Type:           role.Type,
			Credits:        role.Credits,
			Sophistication: role.Soph,
			Determination:  role.Det,
			Wealth:         role.Wealth,
			Initiative:     role.Ini,
			Insight:        role.Ins,
		}
		switch st.ExternalPhase {
		case model.ExternalAttacker:
			view.IsYourTurn = role.Type == model.ActorTypeAttacker
		case model.ExternalDefender:
			view.IsYourTurn = role.Type == model.ActorTypeDefender
		}
	}
	for _, a := range st.Board {
		view.Board = append(view.Board, AssetView{
			ID:       a.ID,
			Name:     a.Name,
			Category: a.Category,
			Stage:    a.AttackStage,
			Offline:  a.IsOffline,
		})
	}
	for i, a := range st.Hand {
		view.Hand = append(view.Hand, CardView{
			Index:       i,
			Name:        a.Name,
			Type:        a.CardType,
			Description: a.ShortDescription,
		})
	}
	for i, eq := range st.Equipment {
		view.Equipment = append(view.Equipment, EquipmentView{
			Index: i, Name: eq.Name, Type: eq.Type, Price: eq.Price,
		})
	}
	for i, tpl := range st.Shop {
		view.Shop = append(view.Shop, ShopItemView{
			Index: i, ID: tpl.ID, Name: tpl.Name, Price: tpl.Price,
		})
	}
	if st.EndState != 0 {
		view.Result = st.EndState.String()
	}
	return view
}

func scenarioName(st *model.GameState) string {
	if st.Scenario != nil {
		return st.Scenario.Name
	}
	return st.ScenarioName
}

// BuildLobbyView flattens the lobby roster. A nil lobby yields nil.
func BuildLobbyView(lobby *model.Lobby) *LobbyView {
	if lobby == nil {
		return nil
	}
	view := &LobbyView{Code: lobby.Code, Players: []string{}}
	if lobby.Scenario != nil {
		view.Scenario = lobby.Scenario.Name
	}
	slots := make([]int, 0, len(lobby.Players))
	for slot := range lobby.Players {
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	for _, slot := range slots {
		view.Players = append(view.Players, fmt.Sprintf("%d: %s", slot, lobby.Players[slot].Name))
	}
	for _, g := range lobby.AvailableGoals {
		view.Goals = append(view.Goals, g.Description)
	}
	return view
}

// BuildOptionViews flattens playable options against the given state.
func BuildOptionViews(st *model.GameState, options []session.PlayOption) []OptionView {
	views := make([]OptionView, 0, len(options))
	for i, o := range options {
		v := OptionView{
			Index:          i,
			Action:         st.Hand[o.HandIndex].Name,
			TargetAssetID:  o.TargetAssetID,
			AttackMask:     protocol.ValidAttackMasks[o.AttackMaskIndex],
			ResponseTarget: o.ResponseTargetID,
		}
		if o.SupportIndex > 0 {
			v.Support = st.Hand[o.SupportIndex-1].Name
		}
		if o.EquipmentIndex > 0 {
			v.Equipment = st.Equipment[o.EquipmentIndex-1].Name
		}
		views = append(views, v)
	}
	return views
}

// BuildCardViews flattens selection choices.
func BuildCardViews(templates []*model.ActionTemplate) []CardView {
	views := make([]CardView, 0, len(templates))
	for i, tpl := range templates {
		id, _ := strconv.Atoi(tpl.ID)
		views = append(views, CardView{
			Index:       i,
			ID:          id,
			Name:        tpl.Name,
			Description: tpl.ShortDescription,
		})
	}
	return views
}
