package session

import (
	"context"
	"fmt"

	"github.com/seresheim/penquest-pkgs/internal/model"
	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

// PlayOption is one fully specified way to play a card this turn. Indexes
// refer to the current hand and equipment; support and equipment indexes are
// 1-based with 0 meaning none, mirroring the wire protocol's candidate
// encoding.
type PlayOption struct {
	HandIndex        int
	TargetAssetID    int
	AttackMaskIndex  int
	SupportIndex     int
	EquipmentIndex   int
	ResponseTargetID int
}

// Action resolves the option's main action from the given state.
func (o PlayOption) Action(st *model.GameState) *model.Action {
	return st.Hand[o.HandIndex]
}

// Request builds the play command for this option.
func (o PlayOption) Request(st *model.GameState) PlayRequest {
	req := PlayRequest{
		ActionID:         st.Hand[o.HandIndex].ID,
		TargetAssetID:    o.TargetAssetID,
		AttackMask:       protocol.ValidAttackMasks[o.AttackMaskIndex],
		ResponseTargetID: o.ResponseTargetID,
	}
	if o.SupportIndex > 0 {
		req.SupportActionIDs = []int{st.Hand[o.SupportIndex-1].ID}
	}
	if o.EquipmentIndex > 0 {
		req.EquipmentIDs = []int{st.Equipment[o.EquipmentIndex-1].ID}
	}
	return req
}

// Equipment types that stay in play permanently and are excluded from play
// candidates.
var permanentEquipmentTypes = map[string]bool{
	"AttackTool":                      true,
	"SecuritySystem":                  true,
	"GlobalSingleUseDefenseEquipment": true,
	"GlobalSingleUseAttackEquipment":  true,
}

// actionCombination is one (main action, support, equipment) index triple
// submitted for validation. Support and equipment are 1-based, 0 for none.
type actionCombination struct {
	handIndex      int
	supportIndex   int
	equipmentIndex int
}

func allActionCombinations(st *model.GameState) []actionCombination {
	var mains []int
	for i, a := range st.Hand {
		if a.CardType == "main" {
			mains = append(mains, i)
		}
	}
	supports := []int{}
	for i, a := range st.Hand {
		if a.CardType == "support" {
			supports = append(supports, i+1)
		}
	}
	supports = append(supports, 0)
	equipment := []int{}
	for i, eq := range st.Equipment {
		if !permanentEquipmentTypes[eq.Type] {
			equipment = append(equipment, i+1)
		}
	}
	equipment = append(equipment, 0)

	var combos []actionCombination
	for _, m := range mains {
		for _, sup := range supports {
			for _, eq := range equipment {
				combos = append(combos, actionCombination{m, sup, eq})
			}
		}
	}
	return combos
}

// PlayableActions submits every hand combination to the gateway for
// validation and expands the playable ones into concrete play options. If
// nothing is playable the session surrenders and leaves the game, returning
// an empty slice.
func (s *Session) PlayableActions(ctx context.Context) ([]PlayOption, error) {
	s.mu.Lock()
	if s.phase != model.PhaseRunning {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: game is not running", ErrWrongPhase)
	}
	if s.state == nil {
		s.mu.Unlock()
		return nil, ErrNoGame
	}
	if !s.myTurnLocked(s.state.ExternalPhase) {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	st := s.state.Clone()
	s.mu.Unlock()

	combos := allActionCombinations(st)
	candidates := make([]protocol.ActionCandidate, len(combos))
	for i, c := range combos {
		candidate := protocol.ActionCandidate{
			ActionID:         st.Hand[c.handIndex].ID,
			SupportActionIDs: []int{},
			EquipmentIDs:     []int{},
		}
		if c.supportIndex > 0 {
			candidate.SupportActionIDs = []int{st.Hand[c.supportIndex-1].ID}
		}
		if c.equipmentIndex > 0 {
			candidate.EquipmentIDs = []int{st.Equipment[c.equipmentIndex-1].ID}
		}
		candidates[i] = candidate
	}

	s.command(protocol.CmdGetValidActions, protocol.GetValidActionsCmd{Actions: candidates})
	d, err := s.await(ctx, EventAllActionsPlayable)
	if err != nil {
		return nil, err
	}
	reply, ok := d.Payload.(*protocol.AllActionsPlayable)
	if !ok {
		return nil, fmt.Errorf("unexpected playable reply payload %T", d.Payload)
	}

	var options []PlayOption
	for i, combo := range combos {
		result, ok := reply.Results[i]
		if !ok || result == nil || !result.Playable {
			continue
		}
		action := st.Hand[combo.handIndex]

		targets := []int{0}
		if action.TargetType == "single" {
			targets = result.PossibleTargets
		}
		maskIndexes := []int{0}
		if action.RequiresAttackMask {
			maskIndexes = []int{1, 2, 3}
		}
		for _, target := range targets {
			responses := result.PossibleResponseTargetIDs[target]
			if len(responses) == 0 {
				responses = []int{0}
			}
			for _, mask := range maskIndexes {
				for _, response := range responses {
					options = append(options, PlayOption{
						HandIndex:        combo.handIndex,
						TargetAssetID:    target,
						AttackMaskIndex:  mask,
						SupportIndex:     combo.supportIndex,
						EquipmentIndex:   combo.equipmentIndex,
						ResponseTargetID: response,
					})
				}
			}
		}
	}

	if len(options) == 0 {
		s.log.Error("no playable action available")
		s.command(protocol.CmdSurrender, nil)
		s.command(protocol.CmdLeaveGame, nil)
	}
	return options, nil
}
