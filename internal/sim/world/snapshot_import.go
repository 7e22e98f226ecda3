package world

import (
	"fmt"

	"voxelkeep.ai/internal/persistence/snapshot"
	"voxelkeep.ai/internal/sim/world/feature/governance/zones"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

// importSnapshotV1 replaces all persistent state. Sessions are dropped.
func (w *World) importSnapshotV1(s snapshot.SnapshotV1) error {
	if s.Header.Version != 0 && s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}

	players := map[string]*Player{}
	for _, v := range s.Players {
		if v.Name == "" {
			return fmt.Errorf("snapshot player with empty name")
		}
		players[v.Name] = playerFromV1(v)
	}
	clans := map[string]*Clan{}
	for _, v := range s.Clans {
		if v.ClanID == "" {
			return fmt.Errorf("snapshot clan with empty id")
		}
		clans[v.ClanID] = clanFromV1(v)
	}
	plots := map[string]*LandPlot{}
	for _, v := range s.Plots {
		if v.PlotID == "" {
			return fmt.Errorf("snapshot plot with empty id")
		}
		plots[v.PlotID] = plotFromV1(v)
	}
	zs := make([]*Zone, 0, len(s.Zones))
	for _, v := range s.Zones {
		z, err := zoneFromV1(v)
		if err != nil {
			return err
		}
		zs = append(zs, z)
	}
	warps := make([]Waypoint, 0, len(s.Warps))
	for _, v := range s.Warps {
		warps = append(warps, waypointFromV1(v))
	}
	sales := map[string]*PendingSale{}
	for _, v := range s.Sales {
		sales[v.Buyer] = &PendingSale{
			SaleID:    v.SaleID,
			Buyer:     v.Buyer,
			Seller:    v.Seller,
			Item:      v.Item,
			Count:     v.Count,
			Price:     v.Price,
			CreatedAt: v.CreatedAt,
		}
	}
	invites := map[string]modelpkg.ClanInvite{}
	for _, v := range s.Invites {
		invites[v.Invitee] = modelpkg.ClanInvite{ClanID: v.ClanID, From: v.From, CreatedAt: v.CreatedAt}
	}
	balances := map[string]int64{}
	for k, v := range s.Balances {
		balances[k] = v
	}
	for name, p := range players {
		balances[name] = p.Balance
	}
	vars := map[string]int64{}
	for k, v := range s.Vars {
		vars[k] = v
	}

	w.players = players
	w.clients = map[string]*clientState{}
	w.clans = clans
	w.plots = plots
	w.zones = zs
	w.warps = warps
	w.sales = sales
	w.invites = invites
	w.balances = balances
	w.vars = vars
	w.globalMute = s.GlobalMute
	w.nextPlotNum.Store(s.Counters.NextPlot)
	w.nextZoneNum.Store(s.Counters.NextZone)
	w.nextClanNum.Store(s.Counters.NextClan)
	w.nextSaleNum.Store(s.Counters.NextSale)
	if s.Header.NowMs > 0 {
		w.nowMs = s.Header.NowMs
	}
	w.dirty = newDirtySet()
	return nil
}

func waypointFromV1(v snapshot.WaypointV1) Waypoint {
	return Waypoint{Name: v.Name, Pos: modelpkg.Vec3iFromArray(v.Pos), Dim: v.Dim}
}

func setOf(keys []string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}

func playerFromV1(v snapshot.PlayerV1) *Player {
	p := &Player{
		Name:              v.Name,
		Tags:              setOf(v.Tags),
		Balance:           v.Balance,
		Pos:               modelpkg.Vec3iFromArray(v.Pos),
		Dim:               v.Dim,
		Inventory:         map[string]int{},
		HUDMode:           v.HUDMode,
		HUDPausedUntil:    v.HUDPausedUntil,
		EffectToggles:     map[string]bool{},
		KitClaimedAt:      v.KitClaimedAt,
		WarpCooldownUntil: v.WarpCooldownUntil,
		MuteUntil:         v.MuteUntil,
		MutedPermanent:    v.MutedPermanent,
		FirstSeen:         v.FirstSeen,
	}
	for k, n := range v.Inventory {
		p.Inventory[k] = n
	}
	for k, on := range v.EffectToggles {
		p.EffectToggles[k] = on
	}
	for _, wp := range v.Waypoints {
		p.Waypoints = append(p.Waypoints, waypointFromV1(wp))
	}
	p.InitDefaults()
	return p
}

func clanFromV1(v snapshot.ClanV1) *Clan {
	c := &Clan{
		ClanID:              v.ClanID,
		Name:                v.Name,
		Tag:                 v.Tag,
		Color:               v.Color,
		Leader:              v.Leader,
		CreatedAt:           v.CreatedAt,
		Members:             setOf(v.Members),
		Level:               v.Level,
		XP:                  v.XP,
		Treasury:            v.Treasury,
		Base:                modelpkg.Vec3iFromArray(v.Base),
		UnlockedEffects:     setOf(v.UnlockedEffects),
		EffectRentExpiresAt: v.EffectRentExpiresAt,
	}
	c.InitDefaults()
	return c
}

func plotFromV1(v snapshot.PlotV1) *LandPlot {
	lp := &LandPlot{
		PlotID:        v.PlotID,
		Owner:         v.Owner,
		Center:        modelpkg.Vec3iFromArray(v.Center),
		Radius:        v.Radius,
		RentExpiresAt: v.RentExpiresAt,
		Guests:        setOf(v.Guests),
		CreatedAt:     v.CreatedAt,
	}
	lp.InitDefaults()
	return lp
}

func zoneFromV1(v snapshot.ZoneV1) (*Zone, error) {
	flags, err := zones.ApplyFlags(modelpkg.DefaultZoneFlags(), v.Flags)
	if err != nil {
		return nil, fmt.Errorf("zone %s: %w", v.ZoneID, err)
	}
	return &Zone{
		ZoneID:    v.ZoneID,
		Name:      v.Name,
		Min:       modelpkg.Vec3iFromArray(v.Min),
		Max:       modelpkg.Vec3iFromArray(v.Max),
		Flags:     flags,
		CreatedAt: v.CreatedAt,
	}, nil
}
