package protocol

import "github.com/seresheim/penquest-pkgs/internal/model"

// std holds every schema of the gateway protocol. Model schemas are
// registered here; the per-event message schemas live in messages.go.
var std = NewRegistry()

// Parse decodes one event payload against the schema registered for the
// event name.
func Parse(event string, data any) (any, error) {
	return std.Decode(event, data)
}

// Known reports whether an inbound event name has a registered schema.
func Known(event string) bool {
	return std.Has(event)
}

func init() {
	std.Register("Player", model.Player{},
		req("id", "ID", Prim{KindInt}),
		req("connection_id", "ConnectionID", Prim{KindString}),
		reqn("avatar_id", "AvatarID", Prim{KindInt}),
		req("name", "Name", Prim{KindString}),
		req("online", "Online", Prim{KindBool}),
		req("user_id", "UserID", Prim{KindString}),
	)

	std.Register("GameOptions", model.GameOptions{},
		req("action_detection_mode", "ActionDetectionMode", Prim{KindInt}),
		req("action_shop_mode", "ActionShopMode", Prim{KindInt}),
		req("action_success_mode", "ActionSuccessMode", Prim{KindInt}),
		req("initial_action_mode", "InitialActionMode", Prim{KindInt}),
		req("initial_asset_stage", "InitialAssetStage", Prim{KindInt}),
		req("manual_def_type_mode", "ManualDefTypeMode", Prim{KindInt}),
		req("support_actions_mode", "SupportActionsMode", Prim{KindInt}),
		req("equipment_shop_mode", "EquipmentShopMode", Prim{KindInt}),
		req("infiniteShields", "InfiniteShields", Prim{KindInt}),
		req("multiTargetSuccess", "MultiTargetSuccess", Prim{KindInt}),
		req("defenderActionsDetectable", "DefenderActionsDetectable", Prim{KindInt}),
		req("availabilityPenalty", "AvailabilityPenalty", Prim{KindInt}),
	)

	std.Register("GameOptionLocks", model.GameOptionLocks{},
		req("action_detection_mode", "ActionDetectionMode", Prim{KindBool}),
		req("action_shop_mode", "ActionShopMode", Prim{KindBool}),
		req("action_success_mode", "ActionSuccessMode", Prim{KindBool}),
		req("initial_action_mode", "InitialActionMode", Prim{KindBool}),
		req("initial_asset_stage", "InitialAssetStage", Prim{KindBool}),
		req("manual_def_type_mode", "ManualDefTypeMode", Prim{KindBool}),
		req("support_actions_mode", "SupportActionsMode", Prim{KindBool}),
		req("equipment_shop_mode", "EquipmentShopMode", Prim{KindBool}),
		req("infiniteShields", "InfiniteShields", Prim{KindBool}),
		req("multiTargetSuccess", "MultiTargetSuccess", Prim{KindBool}),
		req("defenderActionsDetectable", "DefenderActionsDetectable", Prim{KindBool}),
		req("availabilityPenalty", "AvailabilityPenalty", Prim{KindBool}),
	)

	std.Register("SlotInfo", model.SlotInfo{},
		req("slotId", "SlotID", Prim{KindInt}),
		req("name", "Name", Prim{KindString}),
		req("type", "Type", Prim{KindInt}),
		req("isReady", "IsReady", Prim{KindBool}),
	)

	std.Register("ScenarioTeaser", model.ScenarioTeaser{},
		req("id", "ID", Prim{KindString}),
		req("name", "Name", Prim{KindString}),
		req("description", "Description", Prim{KindString}),
		req("availableSlots", "AvailableSlots", List{Ref{"SlotInfo"}}),
	)

	std.Register("GoalDesc", model.GoalDesc{},
		req("id", "ID", Prim{KindString}),
		req("description", "Description", Prim{KindString}),
		req("isDefault", "IsDefault", Prim{KindBool}),
	)

	std.Register("Lobby", model.Lobby{},
		req("admin", "Admin", Ref{"Player"}),
		req("code", "Code", Prim{KindString}),
		reqn("players", "Players", Map{KindInt, Ref{"Player"}}),
		reqn("scenario", "Scenario", Ref{"ScenarioTeaser"}),
		req("game_options", "Options", Ref{"GameOptions"}),
		req("gameOptionLocks", "OptionLocks", Ref{"GameOptionLocks"}),
		reqn("availableGoals", "AvailableGoals", List{Ref{"GoalDesc"}}),
	)

	std.Register("Effect", model.Effect{},
		req("id", "ID", Prim{KindInt}),
		req("type", "Type", Prim{KindString}),
		req("name", "Name", Prim{KindString}),
		req("description", "Description", Prim{KindString}),
		reqn("owner_id", "OwnerID", Prim{KindInt}),
		reqn("scope", "Scope", Prim{KindString}),
		optn("active", "Active", Prim{KindBool}),
		optn("attributes", "Attributes", List{Prim{KindString}}),
		optn("equipment", "Equipment", List{Ref{"EquipmentTemplate"}}),
		optn("num_effects", "NumEffects", Prim{KindInt}),
		optn("probability", "Probability", Prim{KindFloat}),
		optn("turns", "Turns", Prim{KindInt}),
		optn("value", "Value", Prim{KindFloat}),
		req("isPermanent", "IsPermanent", Prim{KindBool}),
		req("effectType", "EffectType", Prim{KindInt}),
	)

	std.Register("Equipment", model.Equipment{},
		req("id", "ID", Prim{KindInt}),
		opt("template_id", "TemplateID", Prim{KindString}),
		req("type", "Type", Prim{KindString}),
		req("name", "Name", Prim{KindString}),
		req("short_description", "ShortDescription", Prim{KindString}),
		req("long_description", "LongDescription", Prim{KindString}),
		reqn("impact", "Impact", List{Prim{KindInt}}),
		reqn("effects", "Effects", List{Ref{"Effect"}}),
		reqn("transfer_effects", "TransferEffects", List{Ref{"Effect"}}),
		req("price", "Price", Prim{KindFloat}),
		optn("active", "Active", Prim{KindBool}),
		reqn("equipt_on_action", "EquiptOnAction", Prim{KindInt}),
		reqn("equipt_on_asset", "EquiptOnAsset", Prim{KindInt}),
		req("isPassiveEquipment", "IsPassiveEquipment", Prim{KindBool}),
		req("isSingleUse", "IsSingleUse", Prim{KindBool}),
		reqn("possible_actions", "PossibleActions", List{Prim{KindString}}),
		reqn("used_on_action", "UsedOnAction", Prim{KindInt}),
		reqn("used_on_asset", "UsedOnAsset", Prim{KindInt}),
		reqn("owner", "Owner", Prim{KindInt}),
	)

	std.Register("EquipmentTemplate", model.EquipmentTemplate{},
		req("id", "ID", Prim{KindString}),
		req("type", "Type", Prim{KindString}),
		req("name", "Name", Prim{KindString}),
		req("short_description", "ShortDescription", Prim{KindString}),
		req("long_description", "LongDescription", Prim{KindString}),
		reqn("impact", "Impact", List{Prim{KindInt}}),
		reqn("effects", "Effects", List{Ref{"Effect"}}),
		reqn("transfer_effects", "TransferEffects", List{Ref{"Effect"}}),
		req("price", "Price", Prim{KindFloat}),
		req("isPassiveEquipment", "IsPassiveEquipment", Prim{KindBool}),
		req("isSingleUse", "IsSingleUse", Prim{KindBool}),
		reqn("possible_actions", "PossibleActions", List{Prim{KindString}}),
	)

	std.Register("ActionEvent", model.ActionEvent{},
		req("turn_detected", "TurnDetected", Prim{KindInt}),
		req("succeeded", "Succeeded", Prim{KindBool}),
		req("deflected", "Deflected", Prim{KindInt}),
		req("deflectedBy", "DeflectedBy", List{Ref{"ActionTemplate"}}),
		req("deflectedDamage", "DeflectedDamage", List{Prim{KindInt}}),
		optn("asset", "Asset", Prim{KindInt}),
		optn("current_asset_damage", "CurrentAssetDamage", List{Prim{KindInt}}),
		optn("applied_dependency_damage", "AppliedDependencyDamage", List{Prim{KindInt}}),
		optn("damage_dealt", "DamageDealt", List{Prim{KindInt}}),
		optn("active_damage", "ActiveDamage", List{Prim{KindInt}}),
		optn("countered", "Countered", List{Prim{KindInt}}),
		optn("fully_countered", "FullyCountered", Prim{KindBool}),
		optn("counters", "Counters", Prim{KindInt}),
		reqn("isCounterable", "IsCounterable", Prim{KindBool}),
		reqn("lastTurnToCounter", "LastTurnToCounter", Prim{KindInt}),
	)

	std.Register("ActionTemplate", model.ActionTemplate{},
		req("id", "ID", Prim{KindString}),
		req("name", "Name", Prim{KindString}),
		req("short_description", "ShortDescription", Prim{KindString}),
		req("long_description", "LongDescription", Prim{KindString}),
		req("effects", "Effects", List{Ref{"Effect"}}),
		req("impact", "Impact", List{Prim{KindInt}}),
		req("soph_requirement", "SophRequirement", Prim{KindInt}),
		req("requiresAdmin", "RequiresAdmin", Prim{KindBool}),
		req("requiredEquipment", "RequiredEquipment", List{Ref{"EquipmentTemplate"}}),
		req("asset_categories", "AssetCategories", List{Prim{KindInt}}),
		req("attack_stage", "AttackStage", Prim{KindInt}),
		req("oses", "OSes", List{Prim{KindInt}}),
		req("card_type", "CardType", Prim{KindString}),
		req("actor_type", "ActorType", Prim{KindString}),
		optn("transfer_effects", "TransferEffects", List{Ref{"Effect"}}),
		optn("success_chance", "SuccessChance", Prim{KindFloat}),
		optn("detection_chance", "DetectionChance", Prim{KindFloat}),
		optn("detection_chance_failed", "DetectionChanceFailed", Prim{KindFloat}),
		optn("target_type", "TargetType", Prim{KindString}),
		optn("predefined_attack_mask", "PredefinedAttackMask", Prim{KindString}),
		optn("requires_attack_mask", "RequiresAttackMask", Prim{KindBool}),
		optn("def_type", "DefType", Prim{KindInt}),
		optn("possible_actions", "PossibleActions", List{Prim{KindString}}),
	)

	std.Register("Action", model.Action{},
		req("id", "ID", Prim{KindInt}),
		req("template_id", "TemplateID", Prim{KindString}),
		req("name", "Name", Prim{KindString}),
		req("short_description", "ShortDescription", Prim{KindString}),
		req("long_description", "LongDescription", Prim{KindString}),
		req("effects", "Effects", List{Ref{"Effect"}}),
		req("impact", "Impact", List{Prim{KindInt}}),
		req("soph_requirement", "SophRequirement", Prim{KindInt}),
		req("requiresAdmin", "RequiresAdmin", Prim{KindBool}),
		req("requiredEquipment", "RequiredEquipment", List{Ref{"EquipmentTemplate"}}),
		req("asset_categories", "AssetCategories", List{Prim{KindInt}}),
		req("attack_stage", "AttackStage", Prim{KindInt}),
		req("oses", "OSes", List{Prim{KindInt}}),
		req("card_type", "CardType", Prim{KindString}),
		req("actor_type", "ActorType", Prim{KindString}),
		optn("success_chance", "SuccessChance", Prim{KindFloat}),
		optn("detection_chance", "DetectionChance", Prim{KindFloat}),
		optn("detection_chance_failed", "DetectionChanceFailed", Prim{KindFloat}),
		optn("target_type", "TargetType", Prim{KindString}),
		optn("predefined_attack_mask", "PredefinedAttackMask", Prim{KindString}),
		optn("transfer_effects", "TransferEffects", List{Ref{"Effect"}}),
		optn("def_type", "DefType", Prim{KindInt}),
		optn("actor", "Actor", Prim{KindInt}),
		optn("attack_mask_used", "AttackMaskUsed", Prim{KindString}),
		optn("equipment_played_with", "EquipmentPlayedWith",
			OneOf{[]Type{List{Prim{KindInt}}, List{Ref{"Equipment"}}}}),
		optn("events", "Events", List{Ref{"ActionEvent"}}),
		optn("possible_actions", "PossibleActions", List{Prim{KindString}}),
		optn("requires_attack_mask", "RequiresAttackMask", Prim{KindBool}),
		optn("supported_by", "SupportedBy", List{Ref{"Action"}}),
		reqn("deflectedDamage", "DeflectedDamage", List{Prim{KindInt}}),
	)

	std.Register("Asset", model.Asset{},
		req("id", "ID", Prim{KindInt}),
		req("name", "Name", Prim{KindString}),
		reqn("description", "Description", Prim{KindString}),
		reqn("initially_exposed", "InitiallyExposed", Prim{KindBool}),
		req("category", "Category", Prim{KindInt}),
		reqn("os", "OS", Prim{KindInt}),
		req("attack_stage", "AttackStage", Prim{KindInt}),
		reqn("parent_asset", "ParentAsset", Prim{KindInt}),
		reqn("child_assets", "ChildAssets", List{Prim{KindInt}}),
		reqn("exposed", "Exposed", List{Prim{KindBool}}),
		reqn("damage", "Damage", List{Prim{KindInt}}),
		reqn("attack_vectors", "AttackVectors", List{Prim{KindInt}}),
		reqn("dependencies", "Dependencies", List{Prim{KindInt}}),
		req("active_exploits", "ActiveExploits", List{Ref{"Equipment"}}),
		reqn("permanent_effects", "PermanentEffects", List{Ref{"Effect"}}),
		req("hasAdminRights", "HasAdminRights", Prim{KindBool}),
		reqn("hasBeenSeen", "HasBeenSeen", Prim{KindBool}),
		req("isOffline", "IsOffline", Prim{KindBool}),
		reqn("played_actions", "PlayedActions", List{Ref{"Action"}}),
		reqn("shield", "Shield", Prim{KindBool}),
	)

	std.Register("Goal", model.Goal{},
		req("type", "Type", Prim{KindString}),
		opt("asset", "Asset", Ref{"Asset"}),
		optn("attack_stage", "AttackStage", Prim{KindString}),
		optn("credits", "Credits", Prim{KindFloat}),
		opt("damage", "Damage", List{Prim{KindInt}}),
		optn("defender", "Defender", Prim{KindInt}),
		optn("exposed", "Exposed", List{Prim{KindBool}}),
		optn("ins", "Ins", Prim{KindInt}),
	)

	std.Register("Actor", model.Actor{},
		req("id", "ID", Prim{KindString}),
		req("type", "Type", Prim{KindString}),
		req("name", "Name", Prim{KindString}),
		reqn("description", "Description", Prim{KindString}),
		reqn("soph", "Soph", Prim{KindInt}),
		reqn("det", "Det", Prim{KindInt}),
		reqn("wealth", "Wealth", Prim{KindInt}),
		reqn("ini", "Ini", Prim{KindInt}),
		reqn("ins", "Ins", Prim{KindInt}),
		reqn("credits", "Credits", Prim{KindFloat}),
		opt("online", "Online", Prim{KindBool}),
		opt("user_id", "UserID", Prim{KindString}),
		req("connection_id", "ConnectionID", Prim{KindString}),
		reqn("avatar_id", "AvatarID", Prim{KindString}),
		reqn("visible_assets", "VisibleAssets", List{Ref{"Asset"}}),
		reqn("mission_description", "MissionDescription", Prim{KindString}),
		reqn("goal_descriptions", "GoalDescriptions", List{Prim{KindString}}),
		reqn("actions", "Actions", List{Ref{"Action"}}),
		optn("goals", "Goals", List{Ref{"Goal"}}),
		optn("assets", "Assets", List{Ref{"Asset"}}),
		reqn("equipment", "Equipment", List{Ref{"Equipment"}}),
		reqn("hasBeenDetected", "HasBeenDetected", Prim{KindBool}),
		reqn("insightShield", "InsightShield", Prim{KindInt}),
	)

	std.Register("Game", model.Game{},
		req("actions_offered", "ActionsOffered", List{Ref{"ActionTemplate"}}),
		req("amount_selection", "AmountSelection", Prim{KindInt}),
		req("phase", "Phase", Prim{KindString}),
		req("players", "Players", List{Ref{"Player"}}),
		req("roles", "Roles", Map{KindString, Ref{"Actor"}}),
		req("scenarioDescription", "ScenarioDescription", Prim{KindString}),
		req("scenarioName", "ScenarioName", Prim{KindString}),
		req("scenario_id", "ScenarioID", Prim{KindString}),
		req("shop", "Shop", List{Ref{"EquipmentTemplate"}}),
		req("turn", "Turn", Prim{KindInt}),
	)

	std.Register("ServerErrors", model.ServerErrors{},
		req("error_id", "ErrorID",
			OneOf{[]Type{Prim{KindInt}, List{Prim{KindInt}}}}),
		req("error_message", "ErrorMessage",
			OneOf{[]Type{Prim{KindString}, List{Prim{KindString}}}}),
		req("multiple_errors", "MultipleErrors", Prim{KindBool}),
	)

	std.Register("ActionChanceModifier", model.ActionChanceModifier{},
		req("bonus", "Bonus", Prim{KindFloat}),
		req("reason", "Reason", Prim{KindInt}),
	)

	std.Register("AssetChanges", model.AssetChanges{},
		req("hidden", "Hidden", List{Prim{KindInt}}),
		req("revealed", "Revealed", List{Ref{"Asset"}}),
	)

	std.Register("PostGameSummary", model.PostGameSummary{},
		req("endState", "EndState", Prim{KindInt}),
		req("turnsPlayed", "TurnsPlayed", Prim{KindInt}),
		reqn("attackerUndetectedTurns", "AttackerUndetectedTurns", Prim{KindInt}),
		req("actionsDetected", "ActionsDetected", Prim{KindInt}),
		req("damageDealt", "DamageDealt", Prim{KindInt}),
		req("damageHealed", "DamageHealed", Prim{KindInt}),
		req("equipmentPurchased", "EquipmentPurchased", Prim{KindInt}),
		req("creditsSpent", "CreditsSpent", Prim{KindFloat}),
		req("actionsSucceeded", "ActionsSucceeded", Prim{KindInt}),
		req("creditsSpentTotal", "CreditsSpentTotal", Prim{KindFloat}),
	)

	std.Register("Playable", model.Playable{},
		req("playable", "Playable", Prim{KindBool}),
		req("success_chance", "SuccessChance", Prim{KindFloat}),
		req("detection_chance", "DetectionChance", Prim{KindFloat}),
		optn("errors", "Errors", List{Prim{KindString}}),
		reqn("possible_response_target_ids", "PossibleResponseTargetIDs",
			Map{KindInt, List{Prim{KindInt}}}),
		reqn("possible_targets", "PossibleTargets", List{Prim{KindInt}}),
		req("action_id", "ActionID", Prim{KindInt}),
		req("support_action_ids", "SupportActionIDs", List{Prim{KindInt}}),
		req("equipment_ids", "EquipmentIDs", List{Prim{KindInt}}),
	)

	std.Register("EventEntry", model.EventEntry{},
		req("id", "ID", Prim{KindInt}),
		req("created", "Created", Prim{KindString}),
		req("type", "Type", Prim{KindInt}),
	)
}
