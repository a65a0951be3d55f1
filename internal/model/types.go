package model

// Entities shared between the wire protocol and the session state. JSON tags
// match the gateway's field names so values re-serialize the way they
// arrived.

// Player identifies one human or bot participant in a lobby or game.
type Player struct {
	ID           int    `json:"id"`
	ConnectionID string `json:"connection_id"`
	AvatarID     int    `json:"avatar_id"`
	Name         string `json:"name"`
	Online       bool   `json:"online"`
	UserID       string `json:"user_id"`
}

// GameOptions are the host-configurable rule switches of a game.
type GameOptions struct {
	ActionDetectionMode       int `json:"action_detection_mode"`
	ActionShopMode            int `json:"action_shop_mode"`
	ActionSuccessMode         int `json:"action_success_mode"`
	InitialActionMode         int `json:"initial_action_mode"`
	InitialAssetStage         int `json:"initial_asset_stage"`
	ManualDefTypeMode         int `json:"manual_def_type_mode"`
	SupportActionsMode        int `json:"support_actions_mode"`
	EquipmentShopMode         int `json:"equipment_shop_mode"`
	InfiniteShields           int `json:"infiniteShields"`
	MultiTargetSuccess        int `json:"multiTargetSuccess"`
	DefenderActionsDetectable int `json:"defenderActionsDetectable"`
	AvailabilityPenalty       int `json:"availabilityPenalty"`
}

// GameOptionLocks marks which options the host has frozen.
type GameOptionLocks struct {
	ActionDetectionMode       bool `json:"action_detection_mode"`
	ActionShopMode            bool `json:"action_shop_mode"`
	ActionSuccessMode         bool `json:"action_success_mode"`
	InitialActionMode         bool `json:"initial_action_mode"`
	InitialAssetStage         bool `json:"initial_asset_stage"`
	ManualDefTypeMode         bool `json:"manual_def_type_mode"`
	SupportActionsMode        bool `json:"support_actions_mode"`
	EquipmentShopMode         bool `json:"equipment_shop_mode"`
	InfiniteShields           bool `json:"infiniteShields"`
	MultiTargetSuccess        bool `json:"multiTargetSuccess"`
	DefenderActionsDetectable bool `json:"defenderActionsDetectable"`
	AvailabilityPenalty       bool `json:"availabilityPenalty"`
}

// SlotInfo describes one joinable seat of a scenario.
type SlotInfo struct {
	SlotID  int    `json:"slotId"`
	Name    string `json:"name"`
	Type    int    `json:"type"`
	IsReady bool   `json:"isReady"`
}

// ScenarioTeaser is the short scenario listing shown in a lobby.
type ScenarioTeaser struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	AvailableSlots []*SlotInfo `json:"availableSlots"`
}

// GoalDesc is a selectable scenario goal.
type GoalDesc struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
}

// Lobby is the pre-game waiting room. Slot keys start at 1.
type Lobby struct {
	Admin          *Player          `json:"admin"`
	Code           string           `json:"code"`
	Players        map[int]*Player  `json:"players"`
	Scenario       *ScenarioTeaser  `json:"scenario"`
	Options        *GameOptions     `json:"game_options"`
	OptionLocks    *GameOptionLocks `json:"gameOptionLocks"`
	AvailableGoals []*GoalDesc      `json:"availableGoals"`
}

// Clone copies the lobby one level deep.
func (l *Lobby) Clone() *Lobby {
	if l == nil {
		return nil
	}
	c := *l
	c.Players = make(map[int]*Player, len(l.Players))
	for slot, p := range l.Players {
		c.Players[slot] = p
	}
	c.AvailableGoals = append([]*GoalDesc(nil), l.AvailableGoals...)
	return &c
}

// Effect is a modifier attached to actions, equipment or assets.
type Effect struct {
	ID          int                  `json:"id"`
	Type        string               `json:"type"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	OwnerID     int                  `json:"owner_id"`
	Scope       string               `json:"scope"`
	Active      bool                 `json:"active"`
	Attributes  []string             `json:"attributes"`
	Equipment   []*EquipmentTemplate `json:"equipment"`
	NumEffects  int                  `json:"num_effects"`
	Probability float64              `json:"probability"`
	Turns       int                  `json:"turns"`
	Value       float64              `json:"value"`
	IsPermanent bool                 `json:"isPermanent"`
	EffectType  int                  `json:"effectType"`
}

// Equipment is an owned equipment card instance.
type Equipment struct {
	ID                 int       `json:"id"`
	TemplateID         string    `json:"template_id"`
	Type               string    `json:"type"`
	Name               string    `json:"name"`
	ShortDescription   string    `json:"short_description"`
	LongDescription    string    `json:"long_description"`
	Impact             []int     `json:"impact"`
	Effects            []*Effect `json:"effects"`
	TransferEffects    []*Effect `json:"transfer_effects"`
	Price              float64   `json:"price"`
	Active             bool      `json:"active"`
	EquiptOnAction     int       `json:"equipt_on_action"`
	EquiptOnAsset      int       `json:"equipt_on_asset"`
	IsPassiveEquipment bool      `json:"isPassiveEquipment"`
	IsSingleUse        bool      `json:"isSingleUse"`
	PossibleActions    []string  `json:"possible_actions"`
	UsedOnAction       int       `json:"used_on_action"`
	UsedOnAsset        int       `json:"used_on_asset"`
	Owner              int       `json:"owner"`
}

// EquipmentTemplate is a purchasable shop offering.
type EquipmentTemplate struct {
	ID                 string    `json:"id"`
	Type               string    `json:"type"`
	Name               string    `json:"name"`
	ShortDescription   string    `json:"short_description"`
	LongDescription    string    `json:"long_description"`
	Impact             []int     `json:"impact"`
	Effects            []*Effect `json:"effects"`
	TransferEffects    []*Effect `json:"transfer_effects"`
	Price              float64   `json:"price"`
	IsPassiveEquipment bool      `json:"isPassiveEquipment"`
	IsSingleUse        bool      `json:"isSingleUse"`
	PossibleActions    []string  `json:"possible_actions"`
}

// ActionEvent records what happened when an action resolved.
type ActionEvent struct {
	TurnDetected            int               `json:"turn_detected"`
	Succeeded               bool              `json:"succeeded"`
	Deflected               int               `json:"deflected"`
	DeflectedBy             []*ActionTemplate `json:"deflectedBy"`
	DeflectedDamage         []int             `json:"deflectedDamage"`
	Asset                   int               `json:"asset"`
	CurrentAssetDamage      []int             `json:"current_asset_damage"`
	AppliedDependencyDamage []int             `json:"applied_dependency_damage"`
	DamageDealt             []int             `json:"damage_dealt"`
	ActiveDamage            []int             `json:"active_damage"`
	Countered               []int             `json:"countered"`
	FullyCountered          bool              `json:"fully_countered"`
	Counters                int               `json:"counters"`
	IsCounterable           bool              `json:"isCounterable"`
	LastTurnToCounter       int               `json:"lastTurnToCounter"`
}

// ActionTemplate is the catalog form of an action card.
type ActionTemplate struct {
	ID                    string               `json:"id"`
	Name                  string               `json:"name"`
	ShortDescription      string               `json:"short_description"`
	LongDescription       string               `json:"long_description"`
	Effects               []*Effect            `json:"effects"`
	Impact                []int                `json:"impact"`
	SophRequirement       int                  `json:"soph_requirement"`
	RequiresAdmin         bool                 `json:"requiresAdmin"`
	RequiredEquipment     []*EquipmentTemplate `json:"requiredEquipment"`
	AssetCategories       []int                `json:"asset_categories"`
	AttackStage           int                  `json:"attack_stage"`
	OSes                  []int                `json:"oses"`
	CardType              string               `json:"card_type"`
	ActorType             string               `json:"actor_type"`
	TransferEffects       []*Effect            `json:"transfer_effects"`
	SuccessChance         float64              `json:"success_chance"`
	DetectionChance       float64              `json:"detection_chance"`
	DetectionChanceFailed float64              `json:"detection_chance_failed"`
	TargetType            string               `json:"target_type"`
	PredefinedAttackMask  string               `json:"predefined_attack_mask"`
	RequiresAttackMask    bool                 `json:"requires_attack_mask"`
	DefType               int                  `json:"def_type"`
	PossibleActions       []string             `json:"possible_actions"`
}

// Action is an action card instance in a hand or on the board.
// EquipmentPlayedWith varies on the wire between a list of equipment ids and
// a list of full equipment objects; it is kept as decoded.
type Action struct {
	ID                    int                  `json:"id"`
	TemplateID            string               `json:"template_id"`
	Name                  string               `json:"name"`
	ShortDescription      string               `json:"short_description"`
	LongDescription       string               `json:"long_description"`
	Effects               []*Effect            `json:"effects"`
	Impact                []int                `json:"impact"`
	SophRequirement       int                  `json:"soph_requirement"`
	RequiresAdmin         bool                 `json:"requiresAdmin"`
	RequiredEquipment     []*EquipmentTemplate `json:"requiredEquipment"`
	AssetCategories       []int                `json:"asset_categories"`
	AttackStage           int                  `json:"attack_stage"`
	OSes                  []int                `json:"oses"`
	CardType              string               `json:"card_type"`
	ActorType             string               `json:"actor_type"`
	SuccessChance         float64              `json:"success_chance"`
	DetectionChance       float64              `json:"detection_chance"`
	DetectionChanceFailed float64              `json:"detection_chance_failed"`
	TargetType            string               `json:"target_type"`
	PredefinedAttackMask  string               `json:"predefined_attack_mask"`
	TransferEffects       []*Effect            `json:"transfer_effects"`
	DefType               int                  `json:"def_type"`
	Actor                 int                  `json:"actor"`
	AttackMaskUsed        string               `json:"attack_mask_used"`
	EquipmentPlayedWith   any                  `json:"equipment_played_with"`
	Events                []*ActionEvent       `json:"events"`
	PossibleActions       []string             `json:"possible_actions"`
	RequiresAttackMask    bool                 `json:"requires_attack_mask"`
	SupportedBy           []*Action            `json:"supported_by"`
	DeflectedDamage       []int                `json:"deflectedDamage"`
}

// Asset is a board entity. Inside a Goal it may arrive nearly empty, carrying
// only an id, which is why most fields tolerate null.
type Asset struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	InitiallyExposed bool         `json:"initially_exposed"`
	Category         int          `json:"category"`
	OS               int          `json:"os"`
	AttackStage      int          `json:"attack_stage"`
	ParentAsset      int          `json:"parent_asset"`
	ChildAssets      []int        `json:"child_assets"`
	Exposed          []bool       `json:"exposed"`
	Damage           []int        `json:"damage"`
	AttackVectors    []int        `json:"attack_vectors"`
	Dependencies     []int        `json:"dependencies"`
	ActiveExploits   []*Equipment `json:"active_exploits"`
	PermanentEffects []*Effect    `json:"permanent_effects"`
	HasAdminRights   bool         `json:"hasAdminRights"`
	HasBeenSeen      bool         `json:"hasBeenSeen"`
	IsOffline        bool         `json:"isOffline"`
	PlayedActions    []*Action    `json:"played_actions"`
	Shield           bool         `json:"shield"`
}

// Goal is one winning condition of a role.
type Goal struct {
	Type        string  `json:"type"`
	Asset       *Asset  `json:"asset"`
	AttackStage string  `json:"attack_stage"`
	Credits     float64 `json:"credits"`
	Damage      []int   `json:"damage"`
	Defender    int     `json:"defender"`
	Exposed     []bool  `json:"exposed"`
	Ins         int     `json:"ins"`
}

// Actor is a game-side participant record (attacker or defender) bound to
// one connection.
type Actor struct {
	ID                 string       `json:"id"`
	Type               string       `json:"type"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	Soph               int          `json:"soph"`
	Det                int          `json:"det"`
	Wealth             int          `json:"wealth"`
	Ini                int          `json:"ini"`
	Ins                int          `json:"ins"`
	Credits            float64      `json:"credits"`
	Online             bool         `json:"online"`
	UserID             string       `json:"user_id"`
	ConnectionID       string       `json:"connection_id"`
	AvatarID           string       `json:"avatar_id"`
	VisibleAssets      []*Asset     `json:"visible_assets"`
	MissionDescription string       `json:"mission_description"`
	GoalDescriptions   []string     `json:"goal_descriptions"`
	Actions            []*Action    `json:"actions"`
	Goals              []*Goal      `json:"goals"`
	Assets             []*Asset     `json:"assets"`
	Equipment          []*Equipment `json:"equipment"`
	HasBeenDetected    bool         `json:"hasBeenDetected"`
	InsightShield      int          `json:"insightShield"`
}

// ActorTypeAttacker and ActorTypeDefender are the two role types.
const (
	ActorTypeAttacker = "attacker"
	ActorTypeDefender = "defender"
)

// Game is the full game payload sent on game start and full resync.
type Game struct {
	ActionsOffered      []*ActionTemplate    `json:"actions_offered"`
	AmountSelection     int                  `json:"amount_selection"`
	Phase               string               `json:"phase"`
	Players             []*Player            `json:"players"`
	Roles               map[string]*Actor    `json:"roles"`
	ScenarioDescription string               `json:"scenarioDescription"`
	ScenarioName        string               `json:"scenarioName"`
	ScenarioID          string               `json:"scenario_id"`
	Shop                []*EquipmentTemplate `json:"shop"`
	Turn                int                  `json:"turn"`
}

// ServerErrors is the error event payload. The server sends either a single
// id/message pair or two parallel lists.
type ServerErrors struct {
	ErrorID        any  `json:"error_id"`
	ErrorMessage   any  `json:"error_message"`
	MultipleErrors bool `json:"multiple_errors"`
}

// ActionChanceModifier explains one bonus applied to a chance value.
type ActionChanceModifier struct {
	Bonus  float64 `json:"bonus"`
	Reason int     `json:"reason"`
}

// AssetChanges batches board reveals and hides.
type AssetChanges struct {
	Hidden   []int    `json:"hidden"`
	Revealed []*Asset `json:"revealed"`
}

// PostGameSummary is the statistics block attached to a game-ended event.
type PostGameSummary struct {
	EndState                EndState `json:"endState"`
	TurnsPlayed             int      `json:"turnsPlayed"`
	AttackerUndetectedTurns int      `json:"attackerUndetectedTurns"`
	ActionsDetected         int      `json:"actionsDetected"`
	DamageDealt             int      `json:"damageDealt"`
	DamageHealed            int      `json:"damageHealed"`
	EquipmentPurchased      int      `json:"equipmentPurchased"`
	CreditsSpent            float64  `json:"creditsSpent"`
	ActionsSucceeded        int      `json:"actionsSucceeded"`
	CreditsSpentTotal       float64  `json:"creditsSpentTotal"`
}

// Playable is the server's verdict for one submitted action candidate.
type Playable struct {
	Playable                  bool          `json:"playable"`
	SuccessChance             float64       `json:"success_chance"`
	DetectionChance           float64       `json:"detection_chance"`
	Errors                    []string      `json:"errors"`
	PossibleResponseTargetIDs map[int][]int `json:"possible_response_target_ids"`
	PossibleTargets           []int         `json:"possible_targets"`
	ActionID                  int           `json:"action_id"`
	SupportActionIDs          []int         `json:"support_action_ids"`
	EquipmentIDs              []int         `json:"equipment_ids"`
}

// EventEntry is one line of the server-side event log.
type EventEntry struct {
	ID      int    `json:"id"`
	Created string `json:"created"`
	Type    int    `json:"type"`
}
