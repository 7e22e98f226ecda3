package world

import (
	"voxelkeep.ai/internal/protocol"
	clanspkg "voxelkeep.ai/internal/sim/world/feature/governance/clans"
	"voxelkeep.ai/internal/sim/world/feature/governance/maintenance"
	"voxelkeep.ai/internal/sim/world/feature/session/hud"
)

func (w *World) buildStatus(p *Player, nowTick uint64) protocol.StatusMsg {
	c := w.clanOf(p.Name)
	st := protocol.StatusMsg{
		Type:            protocol.TypeStatus,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		Player:          p.Name,
		Balance:         w.book().Balance(p.Name),
		Inventory:       p.InventoryList(),
		Location:        w.locationObs(p),
		Effects:         w.effectsFor(p),
	}
	if !hud.Paused(p, w.nowMs) {
		if lines := hud.Lines(p.HUDMode, st.Balance, w.tun.Economy.Currency, c); len(lines) > 0 {
			st.HUD = &protocol.HUDObs{Mode: p.HUDMode, Lines: lines}
		}
	}
	if c != nil {
		st.Clan = &protocol.ClanObs{
			ClanID:      c.ClanID,
			Name:        c.Name,
			Tag:         c.Tag,
			Color:       c.Color,
			Leader:      c.Leader,
			Level:       c.Level,
			Rank:        clanspkg.RankName(w.tun.Ranks, c.Level),
			XP:          c.XP,
			XPNext:      clanspkg.XPThreshold(c.Level, w.levelBaseCost()),
			Treasury:    c.Treasury,
			Members:     clanspkg.SortedMembers(c),
			EffectsRent: c.EffectRentActive(w.nowMs),
		}
	}
	st.Events = p.TakeEvents()
	if st.Events == nil {
		st.Events = []protocol.Event{}
	}
	return st
}

func (w *World) locationObs(p *Player) protocol.LocationObs {
	loc := protocol.LocationObs{Pos: p.Pos.ToArray(), Dim: p.Dim}
	if z := w.zoneAt(p.Pos); z != nil {
		loc.ZoneID = z.ZoneID
		loc.ZoneName = z.Name
		loc.ShowBorder = z.Flags.ShowBorder
		return loc
	}
	if lp := w.plotAt(p.Pos); lp != nil {
		loc.PlotID = lp.PlotID
		loc.PlotOwner = lp.Owner
		loc.RentActive = maintenance.StateOf(lp, w.nowMs).Active
		loc.ShowBorder = lp.Owner == p.Name
	}
	return loc
}
