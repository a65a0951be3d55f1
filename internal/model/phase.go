package model

// SessionPhase is the coarse lifecycle phase of a session. It is monotonic:
// Start → Lobby → Running → Ended, and Ended is terminal. A fresh Session is
// required to play again.
type SessionPhase int

const (
	PhaseStart SessionPhase = iota
	PhaseLobby
	PhaseRunning
	PhaseEnded
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseStart:
		return "Start"
	case PhaseLobby:
		return "Lobby"
	case PhaseRunning:
		return "Running"
	case PhaseEnded:
		return "Ended"
	}
	return "Unknown"
}

// ExternalPhase mirrors the server's turn phase inside a running game.
type ExternalPhase int

const (
	ExternalStarting ExternalPhase = iota
	ExternalInitDraw
	ExternalShopping
	ExternalAttacker
	ExternalDefender
	ExternalEnded
)

func (p ExternalPhase) String() string {
	switch p {
	case ExternalStarting:
		return "Starting"
	case ExternalInitDraw:
		return "InitDraw"
	case ExternalShopping:
		return "Shopping"
	case ExternalAttacker:
		return "Attack"
	case ExternalDefender:
		return "Defense"
	case ExternalEnded:
		return "Ended"
	}
	return "Unknown"
}

// ParseExternalPhase maps the wire phase string to an ExternalPhase.
func ParseExternalPhase(s string) (ExternalPhase, bool) {
	switch s {
	case "Starting":
		return ExternalStarting, true
	case "InitDraw":
		return ExternalInitDraw, true
	case "Shopping":
		return ExternalShopping, true
	case "Attack":
		return ExternalAttacker, true
	case "Defense":
		return ExternalDefender, true
	case "Ended":
		return ExternalEnded, true
	}
	return ExternalStarting, false
}

// InternalPhase is derived locally from the external phase and whose turn it
// is; it is never set independently.
type InternalPhase int

const (
	InternalIdle InternalPhase = iota
	InternalShopping
	InternalPlaying
)

func (p InternalPhase) String() string {
	switch p {
	case InternalIdle:
		return "Idle"
	case InternalShopping:
		return "Shopping"
	case InternalPlaying:
		return "Playing"
	}
	return "Unknown"
}

// EndState is the result a game ended with. Zero means the game has not
// ended.
type EndState int

const (
	EndWon EndState = iota + 1
	EndLost
	EndDraw
	EndSurrendered
)

func (s EndState) String() string {
	switch s {
	case EndWon:
		return "Won"
	case EndLost:
		return "Lost"
	case EndDraw:
		return "Draw"
	case EndSurrendered:
		return "Surrendered"
	}
	return "Unknown"
}
