package model

import (
	"sort"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/logic/rates"
)

const DimOverworld = "overworld"

// Player is the persisted per-identity record. Players are keyed by name;
// the record survives disconnects so balances can be ranked offline.
type Player struct {
	Name string
	Tags map[string]bool

	Balance int64

	Pos Vec3i
	Dim string

	Inventory map[string]int

	HUDMode        int
	HUDPausedUntil int64

	Waypoints     []Waypoint
	EffectToggles map[string]bool

	KitClaimedAt      int64
	WarpCooldownUntil int64

	MuteUntil      int64
	MutedPermanent bool

	FirstSeen int64

	// Events queued for the next STATUS frame. Not persisted.
	Events []protocol.Event

	rl rates.Set
}

type Waypoint struct {
	Name string
	Pos  Vec3i
	Dim  string
}

const (
	HUDOff   = 0
	HUDMoney = 1
	HUDClan  = 2
	HUDBoth  = 3
)

// NewPlayer returns a first-seen record. The HUD starts in money mode.
func NewPlayer(name string, startingBalance int64, nowMs int64) *Player {
	p := &Player{
		Name:      name,
		Balance:   startingBalance,
		HUDMode:   HUDMoney,
		FirstSeen: nowMs,
	}
	p.InitDefaults()
	return p
}

func (p *Player) InitDefaults() {
	if p.Tags == nil {
		p.Tags = map[string]bool{}
	}
	if p.Inventory == nil {
		p.Inventory = map[string]int{}
	}
	if p.EffectToggles == nil {
		p.EffectToggles = map[string]bool{}
	}
	if p.Dim == "" {
		p.Dim = DimOverworld
	}
	if p.Balance < 0 {
		p.Balance = 0
	}
	if p.HUDMode < HUDOff || p.HUDMode > HUDBoth {
		p.HUDMode = HUDMoney
	}
	if p.rl == nil {
		p.rl = rates.Set{}
	}
}

func (p *Player) HasTag(tag string) bool {
	if p == nil || tag == "" {
		return false
	}
	return p.Tags[tag]
}

func (p *Player) InventoryList() []protocol.ItemStack {
	out := make([]protocol.ItemStack, 0, len(p.Inventory))
	for item, c := range p.Inventory {
		if c <= 0 {
			continue
		}
		out = append(out, protocol.ItemStack{Item: item, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

func (p *Player) AddEvent(e protocol.Event) {
	p.Events = append(p.Events, e)
	if len(p.Events) > 256 {
		p.Events = append([]protocol.Event(nil), p.Events[len(p.Events)-256:]...)
	}
}

func (p *Player) TakeEvents() []protocol.Event {
	ev := p.Events
	p.Events = nil
	return ev
}

func (p *Player) RateLimitAllow(kind string, nowTick uint64, window uint64, max int) (ok bool, cooldownTicks uint64) {
	if p.rl == nil {
		p.rl = rates.Set{}
	}
	return p.rl.Allow(kind, nowTick, window, max)
}
