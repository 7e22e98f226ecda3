package protocol

// ACT (host -> server): actions a player performed or requested.
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	Player          string       `json:"player"`
	Instants        []InstantReq `json:"instants,omitempty"`
}

type InstantReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// Block/position reports.
	Pos   *[3]int `json:"pos,omitempty"`
	Pos2  *[3]int `json:"pos2,omitempty"`
	Dim   string  `json:"dim,omitempty"`
	Block string  `json:"block,omitempty"`

	Target string `json:"target,omitempty"`
	Amount int64  `json:"amount,omitempty"`
	Op     string `json:"op,omitempty"`

	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
	Text  string `json:"text,omitempty"`

	Item  string `json:"item,omitempty"`
	Count int    `json:"count,omitempty"`
	Price int64  `json:"price,omitempty"`

	Inventory []ItemStack `json:"inventory,omitempty"`

	ZoneID  string          `json:"zone_id,omitempty"`
	PlotID  string          `json:"plot_id,omitempty"`
	Flags   map[string]bool `json:"flags,omitempty"`
	Effect  string          `json:"effect,omitempty"`
	Enabled *bool           `json:"enabled,omitempty"`
	Accept  *bool           `json:"accept,omitempty"`

	Index   *int `json:"index,omitempty"`
	Mode    *int `json:"mode,omitempty"`
	Minutes int  `json:"minutes,omitempty"`
	// Permanent mutes with no expiry; Minutes must then be zero.
	Permanent bool   `json:"permanent,omitempty"`
	Mob       string `json:"mob,omitempty"`
	Named     bool   `json:"named,omitempty"`
	Public    bool   `json:"public,omitempty"`
	Key       string `json:"key,omitempty"`
	Value     *int64 `json:"value,omitempty"`
}

// Instant types.
const (
	InstantMove          = "MOVE"
	InstantInventorySync = "INVENTORY_SYNC"

	InstantBreakBlock    = "BREAK_BLOCK"
	InstantPlaceBlock    = "PLACE_BLOCK"
	InstantInteractBlock = "INTERACT_BLOCK"
	InstantMobSpawn      = "MOB_SPAWN"
	InstantKill          = "KILL"

	InstantTransfer    = "TRANSFER"
	InstantLeaderboard = "LEADERBOARD"

	InstantClanCreate       = "CLAN_CREATE"
	InstantClanInvite       = "CLAN_INVITE"
	InstantClanInviteAnswer = "CLAN_INVITE_ANSWER"
	InstantClanKick         = "CLAN_KICK"
	InstantClanLeave        = "CLAN_LEAVE"
	InstantClanDissolve     = "CLAN_DISSOLVE"
	InstantClanDeposit      = "CLAN_DEPOSIT"
	InstantClanEdit         = "CLAN_EDIT"
	InstantClanLevelUp      = "CLAN_LEVEL_UP"
	InstantClanUnlockEffect = "CLAN_UNLOCK_EFFECT"
	InstantClanPayEffects   = "CLAN_PAY_EFFECT_RENT"
	InstantEffectToggle     = "EFFECT_TOGGLE"
	InstantKitClaim         = "KIT_CLAIM"

	InstantLandClaim       = "LAND_CLAIM"
	InstantLandPayRent     = "LAND_PAY_RENT"
	InstantLandGuestAdd    = "LAND_GUEST_ADD"
	InstantLandGuestRemove = "LAND_GUEST_REMOVE"
	InstantLandAbandon     = "LAND_ABANDON"

	InstantTradeOffer  = "TRADE_OFFER"
	InstantTradeAccept = "TRADE_ACCEPT"
	InstantTradeReject = "TRADE_REJECT"

	InstantWaypointAdd    = "WAYPOINT_ADD"
	InstantWaypointDelete = "WAYPOINT_DELETE"
	InstantTravel         = "TRAVEL"
	InstantSay            = "SAY"
	InstantHUDMode        = "HUD_MODE"

	InstantZoneCreate = "ZONE_CREATE"
	InstantZoneDelete = "ZONE_DELETE"
	InstantZoneEdit   = "ZONE_EDIT"

	InstantWarpAdd    = "WARP_ADD"
	InstantWarpDelete = "WARP_DELETE"

	InstantAdminBalance    = "ADMIN_BALANCE"
	InstantAdminClanLeader = "ADMIN_CLAN_SET_LEADER"
	InstantAdminClanXP     = "ADMIN_CLAN_XP"
	InstantAdminClanDelete = "ADMIN_CLAN_DELETE"
	InstantAdminLandDelete = "ADMIN_LAND_DELETE"
	InstantAdminMute       = "ADMIN_MUTE"
	InstantAdminUnmute     = "ADMIN_UNMUTE"
	InstantAdminGlobalMute = "ADMIN_GLOBAL_MUTE"
	InstantAdminConfig     = "ADMIN_CONFIG"
)
