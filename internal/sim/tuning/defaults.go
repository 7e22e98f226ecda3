package tuning

import "strings"

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         5,
		SnapshotEveryTicks: 3000,
		StatusEveryTicks:   3,
		Economy: Economy{
			Currency:        "Coins",
			AdminTag:        "admin",
			StartingBalance: 0,
			LeaderboardSize: 10,
		},
		Land: Land{
			PlotRadius:      25,
			WeeklyRent:      1000,
			RentDays:        7,
			EarlyPayMaxDays: 6.9,
			BunkerHalfWidth: 7,
			BunkerDepthY:    -52,
			BunkerFloorY:    -60,
		},
		Clans: Clans{
			CreateCost:       5000,
			LevelBaseCost:    500,
			MaxMembers:       5,
			MinDeposit:       100,
			NameMin:          3,
			NameMax:          10,
			FoundMaxDistance: 2,
			Colors:           []string{"red", "blue", "green", "yellow", "purple", "aqua", "gray"},
			EditColors:       []string{"red", "blue", "green", "yellow", "purple", "aqua", "gray", "white"},
			KitCooldownHours: 24,
			EffectRentDays:   7,
			InviteTTLSeconds: 120,
		},
		Session: Session{
			MaxWaypoints:         4,
			WarpCooldownSeconds:  30,
			HUDPauseMs:           2500,
			EscrowTimeoutSeconds: 300,
			InventorySlots:       36,
			StackSize:            64,
		},
		RateLimits: RateLimits{
			SayWindowTicks:        50,
			SayMax:                5,
			OfferTradeWindowTicks: 50,
			OfferTradeMax:         3,
		},
		MobXP: map[string]int64{
			"zombie": 20, "skeleton": 20, "creeper": 35, "spider": 25,
			"enderman": 100, "witch": 40, "slime": 15, "phantom": 30,
			"silverfish": 10, "cave_spider": 30, "drowned": 30, "husk": 25,
			"stray": 25, "bogged": 30, "pillager": 40, "vindicator": 60,
			"evoker": 150, "ravager": 300, "vex": 20, "blaze": 50,
			"ghast": 80, "magma_cube": 20, "wither_skeleton": 70, "hoglin": 60,
			"piglin_brute": 120, "zoglin": 50, "guardian": 60, "elder_guardian": 1000,
			"shulker": 80, "warden": 2000, "wither": 5000, "ender_dragon": 10000,
			"breeze": 100, "player": 300,
		},
		Effects: []EffectDef{
			{ID: "night_vision", Amplifier: 0, Level: 10, Price: 10000, Rent: 1000},
			{ID: "water_breathing", Amplifier: 0, Level: 25, Price: 15000, Rent: 1500},
			{ID: "jump_boost", Amplifier: 1, Level: 40, Price: 25000, Rent: 2500},
			{ID: "speed", Amplifier: 0, Level: 55, Price: 40000, Rent: 4000},
			{ID: "haste", Amplifier: 1, Level: 70, Price: 70000, Rent: 7000},
			{ID: "resistance", Amplifier: 0, Level: 85, Price: 100000, Rent: 10000},
			{ID: "strength", Amplifier: 0, Level: 100, Price: 250000, Rent: 25000},
		},
		Kits: []KitTier{
			{Level: 1, Items: map[string]int{"minecraft:bread": 16, "minecraft:coal": 8}},
			{Level: 10, Items: map[string]int{"minecraft:cooked_porkchop": 16, "minecraft:iron_ingot": 4}},
			{Level: 25, Items: map[string]int{"minecraft:gold_ingot": 4}},
			{Level: 40, Items: map[string]int{"minecraft:golden_carrot": 16, "minecraft:diamond": 1}},
			{Level: 55, Items: map[string]int{"minecraft:diamond": 2}},
			{Level: 70, Items: map[string]int{"minecraft:emerald": 4}},
			{Level: 85, Items: map[string]int{"minecraft:netherite_scrap": 1}},
			{Level: 100, Items: map[string]int{"minecraft:golden_apple": 1}},
		},
		Ranks: []RankTier{
			{Level: 1, Name: "Vagrant"},
			{Level: 10, Name: "Squire"},
			{Level: 25, Name: "Warrior"},
			{Level: 40, Name: "Knight"},
			{Level: 55, Name: "Paladin"},
			{Level: 70, Name: "Warlord"},
			{Level: 85, Name: "Conqueror"},
			{Level: 100, Name: "Emperor"},
		},
	}
}

// Admin-adjustable variable keys. Mob XP is addressed as "xp_<mob>".
const (
	VarClanCreateCost = "clan_create_cost"
	VarLevelBaseCost  = "level_base_cost"
	VarMaxMembers     = "max_members"
	VarWeeklyRent     = "weekly_rent"
	VarClaimCost      = "claim_cost"
	VarMaxWaypoints   = "max_waypoints"

	XPVarPrefix = "xp_"
)

// Var is the tuning-level value of an admin-adjustable variable, before any
// stored override is applied.
func (t Tuning) Var(key string) (int64, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if mob, ok := strings.CutPrefix(key, XPVarPrefix); ok {
		v, found := t.MobXP[mob]
		return v, found
	}
	switch key {
	case VarClanCreateCost:
		return t.Clans.CreateCost, true
	case VarLevelBaseCost:
		return t.Clans.LevelBaseCost, true
	case VarMaxMembers:
		return int64(t.Clans.MaxMembers), true
	case VarWeeklyRent:
		return t.Land.WeeklyRent, true
	case VarClaimCost:
		return t.ClaimCost(), true
	case VarMaxWaypoints:
		return int64(t.Session.MaxWaypoints), true
	}
	return 0, false
}

// IsVar reports whether key names an adjustable variable (known mob or constant).
func IsVar(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if strings.HasPrefix(key, XPVarPrefix) {
		return len(key) > len(XPVarPrefix)
	}
	switch key {
	case VarClanCreateCost, VarLevelBaseCost, VarMaxMembers, VarWeeklyRent, VarClaimCost, VarMaxWaypoints:
		return true
	}
	return false
}
