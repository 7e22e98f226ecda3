package world

import (
	"voxelkeep.ai/internal/protocol"
	clanspkg "voxelkeep.ai/internal/sim/world/feature/governance/clans"
	"voxelkeep.ai/internal/sim/world/feature/governance/permissions"
	"voxelkeep.ai/internal/sim/world/feature/governance/zones"
	"voxelkeep.ai/internal/sim/world/feature/session/hud"
)

var mutationByInstant = map[string]permissions.Mutation{
	protocol.InstantBreakBlock:    permissions.MutBreak,
	protocol.InstantPlaceBlock:    permissions.MutPlace,
	protocol.InstantInteractBlock: permissions.MutInteract,
}

// authorize resolves a block mutation at pos for p.
func (w *World) authorize(p *Player, kind permissions.Mutation, pos Vec3i, block string) permissions.Verdict {
	in := permissions.Input{
		Actor:        p.Name,
		ActorIsAdmin: w.isAdmin(p),
		ActorClanID:  w.clanIDOf(p.Name),
		Pos:          pos,
		Kind:         kind,
		Block:        block,
		Zone:         w.zoneAt(pos),
		NowMs:        w.nowMs,
		Bunker:       w.bunker(),
	}
	if in.Zone == nil {
		in.Plot = w.plotAt(pos)
		if in.Plot != nil {
			in.OwnerClan = w.clanOf(in.Plot.Owner)
		}
	}
	return permissions.CanMutate(in)
}

// BREAK_BLOCK, PLACE_BLOCK and INTERACT_BLOCK ask for a verdict before the
// host lets the mutation through.
func handleInstantBlock(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	pos, ok := posFromReq(inst.Pos)
	if !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing pos"))
		return
	}
	kind := mutationByInstant[inst.Type]
	v := w.authorize(p, kind, pos, inst.Block)
	if v.Allowed {
		p.AddEvent(okResult(nowTick, inst.ID, "reason", v.Reason))
		return
	}

	w.counters.denials++
	hud.Pause(p, w.nowMs, w.tun.Session.HUDPauseMs)
	w.markPlayer(p.Name)
	notice := permissions.DeniedNotice(v)
	denied := protocol.Event{"t": nowTick, "type": "ACCESS_DENIED", "message": notice, "pos": pos.ToArray(), "kind": string(kind)}
	if v.ZoneName != "" {
		denied["zone"] = v.ZoneName
	}
	if v.Owner != "" {
		denied["owner"] = v.Owner
	}
	p.AddEvent(denied)
	ev := actionResult(nowTick, inst.ID, false, protocol.ErrBlocked, notice)
	ev["reason"] = v.Reason
	p.AddEvent(ev)
}

// MOB_SPAWN reports a spawn; the result says whether the host must despawn it.
func handleInstantMobSpawn(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	pos, ok := posFromReq(inst.Pos)
	if !ok || inst.Mob == "" {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing mob/pos"))
		return
	}
	z := w.zoneAt(pos)
	despawn := zones.ShouldDespawn(z, inst.Mob, inst.Named)
	ev := okResult(nowTick, inst.ID, "despawn", despawn)
	if z != nil {
		ev["zone_id"] = z.ZoneID
	}
	p.AddEvent(ev)
}

// KILL awards clan XP to the killer. Target names a player victim, Mob a
// mob type id.
func handleInstantKill(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if inst.Target == "" && inst.Mob == "" {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing target or mob"))
		return
	}
	c := w.clanOf(p.Name)
	k := clanspkg.Kill{}
	if c != nil {
		k.KillerClanID = c.ClanID
	}
	if inst.Target != "" {
		if inst.Target == p.Name {
			p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "cannot kill yourself"))
			return
		}
		k.VictimIsPlayer = true
		k.VictimClanID = w.clanIDOf(inst.Target)
		k.Reward, k.HasReward = w.mobXP("player")
	} else {
		k.Reward, k.HasReward = w.mobXP(clanspkg.MobKey(inst.Mob))
	}
	xp := clanspkg.KillXP(k)
	if xp <= 0 || c == nil {
		p.AddEvent(okResult(nowTick, inst.ID, "xp", int64(0)))
		return
	}
	c.XP += xp
	leveled := clanspkg.ApplyLevelUp(c, w.levelBaseCost())
	w.markClan(c.ClanID)
	p.AddEvent(okResult(nowTick, inst.ID, "xp", xp, "clan_level", c.Level))
	if leveled {
		w.announceLevelUp(c, nowTick)
	}
}

func (w *World) announceLevelUp(c *Clan, nowTick uint64) {
	w.audit(nowTick, "", "CLAN_LEVEL_UP", c.ClanID, nil, int64(c.Level), "", nil)
	for _, m := range clanspkg.SortedMembers(c) {
		w.notify(m, protocol.Event{
			"t": nowTick, "type": "CLAN_LEVEL_UP", "clan_id": c.ClanID, "level": c.Level,
			"rank": clanspkg.RankName(w.tun.Ranks, c.Level),
		})
	}
}
