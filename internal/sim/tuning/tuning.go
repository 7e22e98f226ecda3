package tuning

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
	StatusEveryTicks   int `yaml:"status_every_ticks"`

	// Player names granted the admin tag on join.
	Admins []string `yaml:"admins"`

	Economy    Economy    `yaml:"economy"`
	Land       Land       `yaml:"land"`
	Clans      Clans      `yaml:"clans"`
	Session    Session    `yaml:"session"`
	RateLimits RateLimits `yaml:"rate_limits"`

	MobXP   map[string]int64 `yaml:"mob_xp"`
	Effects []EffectDef      `yaml:"effects"`
	Kits    []KitTier        `yaml:"kits"`
	Ranks   []RankTier       `yaml:"ranks"`
}

type Economy struct {
	Currency        string `yaml:"currency"`
	AdminTag        string `yaml:"admin_tag"`
	StartingBalance int64  `yaml:"starting_balance"`
	LeaderboardSize int    `yaml:"leaderboard_size"`
}

type Land struct {
	PlotRadius int   `yaml:"plot_radius"`
	WeeklyRent int64 `yaml:"weekly_rent"`
	// ClaimCost <= 0 means weekly_rent/7.
	ClaimCost       int64   `yaml:"claim_cost"`
	RentDays        int     `yaml:"rent_days"`
	EarlyPayMaxDays float64 `yaml:"early_pay_max_days"`

	BunkerHalfWidth int `yaml:"bunker_half_width"`
	BunkerDepthY    int `yaml:"bunker_depth_y"`
	BunkerFloorY    int `yaml:"bunker_floor_y"`
}

type Clans struct {
	CreateCost       int64    `yaml:"create_cost"`
	LevelBaseCost    int64    `yaml:"level_base_cost"`
	MaxMembers       int      `yaml:"max_members"`
	MinDeposit       int64    `yaml:"min_deposit"`
	NameMin          int      `yaml:"name_min"`
	NameMax          int      `yaml:"name_max"`
	FoundMaxDistance float64  `yaml:"found_max_distance"`
	Colors           []string `yaml:"colors"`
	EditColors       []string `yaml:"edit_colors"`
	KitCooldownHours int      `yaml:"kit_cooldown_hours"`
	EffectRentDays   int      `yaml:"effect_rent_days"`
	InviteTTLSeconds int      `yaml:"invite_ttl_seconds"`
}

type Session struct {
	MaxWaypoints         int `yaml:"max_waypoints"`
	WarpCooldownSeconds  int `yaml:"warp_cooldown_seconds"`
	HUDPauseMs           int `yaml:"hud_pause_ms"`
	EscrowTimeoutSeconds int `yaml:"escrow_timeout_seconds"`
	InventorySlots       int `yaml:"inventory_slots"`
	StackSize            int `yaml:"stack_size"`
}

type RateLimits struct {
	SayWindowTicks        int `yaml:"say_window_ticks"`
	SayMax                int `yaml:"say_max"`
	OfferTradeWindowTicks int `yaml:"offer_trade_window_ticks"`
	OfferTradeMax         int `yaml:"offer_trade_max"`
}

type EffectDef struct {
	ID        string `yaml:"id"`
	Amplifier int    `yaml:"amplifier"`
	Level     int    `yaml:"level"`
	Price     int64  `yaml:"price"`
	Rent      int64  `yaml:"rent"`
}

type KitTier struct {
	Level int            `yaml:"level"`
	Items map[string]int `yaml:"items"`
}

type RankTier struct {
	Level int    `yaml:"level"`
	Name  string `yaml:"name"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// ApplyDefaults fills zero fields from Defaults(). Tables are replaced only when empty.
func (t *Tuning) ApplyDefaults() {
	d := Defaults()
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = d.ProtocolVersion
	}
	setInt(&t.TickRateHz, d.TickRateHz)
	setInt(&t.SnapshotEveryTicks, d.SnapshotEveryTicks)
	setInt(&t.StatusEveryTicks, d.StatusEveryTicks)

	if t.Economy.Currency == "" {
		t.Economy.Currency = d.Economy.Currency
	}
	if t.Economy.AdminTag == "" {
		t.Economy.AdminTag = d.Economy.AdminTag
	}
	setInt(&t.Economy.LeaderboardSize, d.Economy.LeaderboardSize)

	setInt(&t.Land.PlotRadius, d.Land.PlotRadius)
	setInt64(&t.Land.WeeklyRent, d.Land.WeeklyRent)
	setInt(&t.Land.RentDays, d.Land.RentDays)
	if t.Land.EarlyPayMaxDays <= 0 {
		t.Land.EarlyPayMaxDays = d.Land.EarlyPayMaxDays
	}
	setInt(&t.Land.BunkerHalfWidth, d.Land.BunkerHalfWidth)
	if t.Land.BunkerDepthY == 0 {
		t.Land.BunkerDepthY = d.Land.BunkerDepthY
	}
	if t.Land.BunkerFloorY == 0 {
		t.Land.BunkerFloorY = d.Land.BunkerFloorY
	}

	setInt64(&t.Clans.CreateCost, d.Clans.CreateCost)
	setInt64(&t.Clans.LevelBaseCost, d.Clans.LevelBaseCost)
	setInt(&t.Clans.MaxMembers, d.Clans.MaxMembers)
	setInt64(&t.Clans.MinDeposit, d.Clans.MinDeposit)
	setInt(&t.Clans.NameMin, d.Clans.NameMin)
	setInt(&t.Clans.NameMax, d.Clans.NameMax)
	if t.Clans.FoundMaxDistance <= 0 {
		t.Clans.FoundMaxDistance = d.Clans.FoundMaxDistance
	}
	if len(t.Clans.Colors) == 0 {
		t.Clans.Colors = d.Clans.Colors
	}
	if len(t.Clans.EditColors) == 0 {
		t.Clans.EditColors = d.Clans.EditColors
	}
	setInt(&t.Clans.KitCooldownHours, d.Clans.KitCooldownHours)
	setInt(&t.Clans.EffectRentDays, d.Clans.EffectRentDays)
	setInt(&t.Clans.InviteTTLSeconds, d.Clans.InviteTTLSeconds)

	setInt(&t.Session.MaxWaypoints, d.Session.MaxWaypoints)
	setInt(&t.Session.WarpCooldownSeconds, d.Session.WarpCooldownSeconds)
	setInt(&t.Session.HUDPauseMs, d.Session.HUDPauseMs)
	setInt(&t.Session.EscrowTimeoutSeconds, d.Session.EscrowTimeoutSeconds)
	setInt(&t.Session.InventorySlots, d.Session.InventorySlots)
	setInt(&t.Session.StackSize, d.Session.StackSize)

	setInt(&t.RateLimits.SayWindowTicks, d.RateLimits.SayWindowTicks)
	setInt(&t.RateLimits.SayMax, d.RateLimits.SayMax)
	setInt(&t.RateLimits.OfferTradeWindowTicks, d.RateLimits.OfferTradeWindowTicks)
	setInt(&t.RateLimits.OfferTradeMax, d.RateLimits.OfferTradeMax)

	if len(t.MobXP) == 0 {
		t.MobXP = d.MobXP
	}
	if len(t.Effects) == 0 {
		t.Effects = d.Effects
	}
	if len(t.Kits) == 0 {
		t.Kits = d.Kits
	}
	if len(t.Ranks) == 0 {
		t.Ranks = d.Ranks
	}
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 || t.TickRateHz > 100 {
		return fmt.Errorf("tick_rate_hz out of range: %d", t.TickRateHz)
	}
	if t.Land.BunkerDepthY < t.Land.BunkerFloorY {
		return fmt.Errorf("bunker_depth_y (%d) below bunker_floor_y (%d)", t.Land.BunkerDepthY, t.Land.BunkerFloorY)
	}
	if t.Clans.NameMin > t.Clans.NameMax {
		return fmt.Errorf("clan name bounds inverted: %d > %d", t.Clans.NameMin, t.Clans.NameMax)
	}
	seen := map[string]bool{}
	for _, e := range t.Effects {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return fmt.Errorf("effect with empty id")
		}
		if seen[id] {
			return fmt.Errorf("duplicate effect %q", id)
		}
		seen[id] = true
	}
	return nil
}

// ClaimCost is the one-off price of claiming a plot.
func (t Tuning) ClaimCost() int64 {
	if t.Land.ClaimCost > 0 {
		return t.Land.ClaimCost
	}
	return t.Land.WeeklyRent / 7
}

func (t Tuning) EffectByID(id string) (EffectDef, bool) {
	for _, e := range t.Effects {
		if e.ID == id {
			return e, true
		}
	}
	return EffectDef{}, false
}

// Digest identifies the effective tuning in WELCOME frames and snapshots.
func (t Tuning) Digest() string {
	b, err := yaml.Marshal(t)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func setInt(dst *int, def int) {
	if *dst <= 0 {
		*dst = def
	}
}

func setInt64(dst *int64, def int64) {
	if *dst <= 0 {
		*dst = def
	}
}
