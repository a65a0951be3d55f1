package model

// Interaction tells the external decision-maker what kind of input the
// session needs next. Interactions are consumed in FIFO order, exactly once.
type Interaction int

const (
	InteractionCreateOrJoinLobby Interaction = iota
	InteractionChangeLobbyProperties
	InteractionPlayerReady
	InteractionShoppingPhase
	InteractionPlayCard
	InteractionChooseAction
	InteractionEnd
)

func (i Interaction) String() string {
	switch i {
	case InteractionCreateOrJoinLobby:
		return "CreateOrJoinLobby"
	case InteractionChangeLobbyProperties:
		return "ChangeLobbyProperties"
	case InteractionPlayerReady:
		return "PlayerReady"
	case InteractionShoppingPhase:
		return "ShoppingPhase"
	case InteractionPlayCard:
		return "PlayCard"
	case InteractionChooseAction:
		return "ChooseAction"
	case InteractionEnd:
		return "End"
	}
	return "Unknown"
}
