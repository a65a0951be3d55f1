package session

import "errors"

var (
	ErrWrongPhase       = errors.New("wrong session phase")
	ErrNoLobby          = errors.New("no lobby")
	ErrNoGame           = errors.New("no running game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNoSelection      = errors.New("no pending selection")
	ErrNoRole           = errors.New("player role not found in game")
	ErrAssetNotFound    = errors.New("asset not found on board")
	ErrSlotOutOfRange   = errors.New("slot index starts at 1")
	ErrSlotVacant       = errors.New("no player in that slot")
	ErrGoalOutOfRange   = errors.New("goal index out of range")
	ErrBadAttackMask    = errors.New("invalid attack mask")
	ErrAlreadyConnected = errors.New("connection id already assigned")
	ErrScenarioMismatch = errors.New("scenario of lobby does not match game")
	ErrUnknownAttribute = errors.New("unknown actor attribute")
	ErrUnknownPhase     = errors.New("unknown game phase")
	ErrNothingToLeave   = errors.New("nothing to leave")
	ErrClosed           = errors.New("session closed")
)
