package model

import (
	"maps"
	"slices"
)

// GameState is the client-side view of one running game. The session owns
// the live copy under its lock and hands out clones, so a GameState obtained
// from the session is safe to read without further locking.
type GameState struct {
	Name                string
	Scenario            *ScenarioTeaser
	ScenarioID          string
	ScenarioName        string
	ScenarioDescription string
	Options             GameOptions
	ConnectionID        string

	Turn          int
	ExternalPhase ExternalPhase
	InternalPhase InternalPhase
	EndState      EndState

	Players []*Player
	Roles   map[string]*Actor

	Hand      []*Action
	Equipment []*Equipment
	Board     []*Asset
	Shop      []*EquipmentTemplate

	SelectionAmount  int
	SelectionChoices []*ActionTemplate

	Summary  *PostGameSummary
	EventLog []*EventEntry
}

// Clone copies the state one level deep. Contained entities are shared;
// handlers replace entities instead of mutating them in place, so sharing
// is safe.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Players = slices.Clone(s.Players)
	c.Roles = maps.Clone(s.Roles)
	c.Hand = slices.Clone(s.Hand)
	c.Equipment = slices.Clone(s.Equipment)
	c.Board = slices.Clone(s.Board)
	c.Shop = slices.Clone(s.Shop)
	c.SelectionChoices = slices.Clone(s.SelectionChoices)
	c.EventLog = slices.Clone(s.EventLog)
	return &c
}

// Role returns the actor bound to the given connection id, or nil.
func (s *GameState) Role(connectionID string) *Actor {
	if s == nil || s.Roles == nil {
		return nil
	}
	return s.Roles[connectionID]
}

// Self returns the actor this client controls, or nil before roles arrive.
func (s *GameState) Self() *Actor {
	return s.Role(s.ConnectionID)
}
