package world

import (
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/economy/inventory"
	"voxelkeep.ai/internal/sim/world/feature/economy/ledger"
	"voxelkeep.ai/internal/sim/world/feature/economy/trade"
	"voxelkeep.ai/internal/sim/world/feature/governance/claims"
	clanspkg "voxelkeep.ai/internal/sim/world/feature/governance/clans"
	"voxelkeep.ai/internal/sim/world/feature/governance/permissions"
	"voxelkeep.ai/internal/sim/world/feature/governance/zones"
)

func (w *World) newPlotID() string {
	w.markCounters()
	return claims.PlotID(w.nextPlotNum.Add(1))
}

func (w *World) newZoneID() string {
	w.markCounters()
	return zones.ZoneID(w.nextZoneNum.Add(1))
}

func (w *World) newClanID() string {
	w.markCounters()
	return clanspkg.ClanID(w.nextClanNum.Add(1))
}

func (w *World) newSaleID() string {
	w.markCounters()
	return trade.SaleID(w.nextSaleNum.Add(1))
}

func (w *World) book() ledger.Book {
	return ledger.Book{Players: w.players, Cache: w.balances}
}

// addBalance moves the ledger and marks the player for commit.
func (w *World) addBalance(name string, delta int64) int64 {
	v := w.book().Add(name, delta)
	w.markPlayer(name)
	return v
}

func (w *World) clanOf(name string) *Clan {
	return clanspkg.ClanOf(w.clans, name)
}

func (w *World) clanIDOf(name string) string {
	if c := w.clanOf(name); c != nil {
		return c.ClanID
	}
	return ""
}

func (w *World) zoneAt(pos Vec3i) *Zone {
	return zones.ZoneAt(w.zones, pos)
}

func (w *World) plotAt(pos Vec3i) *LandPlot {
	return claims.PlotAt(w.plots, pos)
}

func (w *World) capacity() inventory.Capacity {
	return inventory.Capacity{Slots: w.tun.Session.InventorySlots, StackSize: w.tun.Session.StackSize}
}

func (w *World) bunker() permissions.Bunker {
	return permissions.Bunker{HalfWidth: w.tun.Land.BunkerHalfWidth, DepthY: w.tun.Land.BunkerDepthY}
}

// takeItems removes items from the optimistic inventory and asks the host to
// do the same.
func (w *World) takeItems(p *Player, items map[string]int, nowTick uint64) {
	inventory.DeductItems(p.Inventory, items)
	w.markPlayer(p.Name)
	p.AddEvent(protocol.Event{"t": nowTick, "type": "TAKE_ITEMS", "items": inventory.MapToStacks(items)})
}

// giveItems adds items up to inventory capacity. The host drops the overflow
// at the player's feet.
func (w *World) giveItems(p *Player, items map[string]int, nowTick uint64) map[string]int {
	overflow := inventory.GiveAll(p.Inventory, items, w.capacity())
	w.markPlayer(p.Name)
	e := protocol.Event{"t": nowTick, "type": "GIVE_ITEMS", "items": inventory.MapToStacks(items)}
	if len(overflow) > 0 {
		e["overflow"] = inventory.MapToStacks(overflow)
	}
	p.AddEvent(e)
	return overflow
}

// notify queues an event for an online player; offline players miss it.
func (w *World) notify(name string, e protocol.Event) {
	if !w.online(name) {
		return
	}
	if p := w.players[name]; p != nil {
		p.AddEvent(e)
	}
}

func (w *World) chatTo(name string, nowTick uint64, channel, prefix, from, text string) {
	e := protocol.Event{"t": nowTick, "type": "CHAT", "channel": channel, "text": text}
	if prefix != "" {
		e["prefix"] = prefix
	}
	if from != "" {
		e["from"] = from
	}
	w.notify(name, e)
}

func posFromReq(p *[3]int) (Vec3i, bool) {
	if p == nil {
		return Vec3i{}, false
	}
	return Vec3i{X: p[0], Y: p[1], Z: p[2]}, true
}
