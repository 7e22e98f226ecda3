package world

import (
	"sort"

	"voxelkeep.ai/internal/persistence/snapshot"
	"voxelkeep.ai/internal/sim/world/feature/governance/zones"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func (w *World) exportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	s := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    nowTick,
			NowMs:   w.nowMs,
		},
		TickRate:           w.tun.TickRateHz,
		SnapshotEveryTicks: w.tun.SnapshotEveryTicks,
		TuningDigest:       w.tun.Digest(),
		Players:            []snapshot.PlayerV1{},
		Clans:              []snapshot.ClanV1{},
		Plots:              []snapshot.PlotV1{},
		Zones:              []snapshot.ZoneV1{},
		Balances:           map[string]int64{},
		GlobalMute:         w.globalMute,
		Counters:           w.countersV1(),
	}
	for _, name := range sortedNames(w.players) {
		s.Players = append(s.Players, playerToV1(w.players[name]))
	}
	for _, id := range sortedNames(w.clans) {
		s.Clans = append(s.Clans, clanToV1(w.clans[id]))
	}
	for _, id := range sortedNames(w.plots) {
		s.Plots = append(s.Plots, plotToV1(w.plots[id]))
	}
	for _, z := range w.zones {
		s.Zones = append(s.Zones, zoneToV1(z))
	}
	for _, wp := range w.warps {
		s.Warps = append(s.Warps, waypointToV1(wp))
	}
	for _, buyer := range sortedNames(w.sales) {
		s.Sales = append(s.Sales, saleToV1(w.sales[buyer]))
	}
	for _, name := range sortedNames(w.invites) {
		s.Invites = append(s.Invites, inviteToV1(name, w.invites[name]))
	}
	for k, v := range w.balances {
		s.Balances[k] = v
	}
	if len(w.vars) > 0 {
		s.Vars = map[string]int64{}
		for k, v := range w.vars {
			s.Vars[k] = v
		}
	}
	return s
}

func (w *World) countersV1() snapshot.CountersV1 {
	return snapshot.CountersV1{
		NextPlot: w.nextPlotNum.Load(),
		NextZone: w.nextZoneNum.Load(),
		NextClan: w.nextClanNum.Load(),
		NextSale: w.nextSaleNum.Load(),
	}
}

func sortedNames[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func waypointToV1(wp Waypoint) snapshot.WaypointV1 {
	return snapshot.WaypointV1{Name: wp.Name, Pos: wp.Pos.ToArray(), Dim: wp.Dim}
}

func playerToV1(p *Player) snapshot.PlayerV1 {
	v := snapshot.PlayerV1{
		Name:              p.Name,
		Tags:              sortedSet(p.Tags),
		Balance:           p.Balance,
		Pos:               p.Pos.ToArray(),
		Dim:               p.Dim,
		HUDMode:           p.HUDMode,
		HUDPausedUntil:    p.HUDPausedUntil,
		KitClaimedAt:      p.KitClaimedAt,
		WarpCooldownUntil: p.WarpCooldownUntil,
		MuteUntil:         p.MuteUntil,
		MutedPermanent:    p.MutedPermanent,
		FirstSeen:         p.FirstSeen,
	}
	if len(p.Inventory) > 0 {
		v.Inventory = map[string]int{}
		for k, n := range p.Inventory {
			if n > 0 {
				v.Inventory[k] = n
			}
		}
	}
	for _, wp := range p.Waypoints {
		v.Waypoints = append(v.Waypoints, waypointToV1(wp))
	}
	if len(p.EffectToggles) > 0 {
		v.EffectToggles = map[string]bool{}
		for k, on := range p.EffectToggles {
			v.EffectToggles[k] = on
		}
	}
	return v
}

func clanToV1(c *Clan) snapshot.ClanV1 {
	return snapshot.ClanV1{
		ClanID:              c.ClanID,
		Name:                c.Name,
		Tag:                 c.Tag,
		Color:               c.Color,
		Leader:              c.Leader,
		CreatedAt:           c.CreatedAt,
		Members:             sortedSet(c.Members),
		Level:               c.Level,
		XP:                  c.XP,
		Treasury:            c.Treasury,
		Base:                c.Base.ToArray(),
		UnlockedEffects:     sortedSet(c.UnlockedEffects),
		EffectRentExpiresAt: c.EffectRentExpiresAt,
	}
}

func plotToV1(lp *LandPlot) snapshot.PlotV1 {
	return snapshot.PlotV1{
		PlotID:        lp.PlotID,
		Owner:         lp.Owner,
		Center:        lp.Center.ToArray(),
		Radius:        lp.Radius,
		RentExpiresAt: lp.RentExpiresAt,
		Guests:        sortedSet(lp.Guests),
		CreatedAt:     lp.CreatedAt,
	}
}

func zoneToV1(z *Zone) snapshot.ZoneV1 {
	return snapshot.ZoneV1{
		ZoneID:    z.ZoneID,
		Name:      z.Name,
		Min:       z.Min.ToArray(),
		Max:       z.Max.ToArray(),
		Flags:     zones.FlagMap(z.Flags),
		CreatedAt: z.CreatedAt,
	}
}

func saleToV1(s *PendingSale) snapshot.SaleV1 {
	return snapshot.SaleV1{
		SaleID:    s.SaleID,
		Buyer:     s.Buyer,
		Seller:    s.Seller,
		Item:      s.Item,
		Count:     s.Count,
		Price:     s.Price,
		CreatedAt: s.CreatedAt,
	}
}

func inviteToV1(invitee string, inv modelpkg.ClanInvite) snapshot.InviteV1 {
	return snapshot.InviteV1{Invitee: invitee, ClanID: inv.ClanID, From: inv.From, CreatedAt: inv.CreatedAt}
}
