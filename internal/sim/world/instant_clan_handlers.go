package world

import (
	"fmt"
	"strings"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/governance/claims"
	clanspkg "voxelkeep.ai/internal/sim/world/feature/governance/clans"
	"voxelkeep.ai/internal/sim/world/feature/governance/maintenance"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

// leaderClan returns p's clan when p leads it, otherwise queues the failure.
func (w *World) leaderClan(p *Player, inst protocol.InstantReq, nowTick uint64) *Clan {
	c := w.clanOf(p.Name)
	if c == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "you are not in a clan"))
		return nil
	}
	if c.Leader != p.Name {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "only the clan leader can do that"))
		return nil
	}
	return c
}

// resolveClan accepts a clan id or a clan name (any case).
func (w *World) resolveClan(ref string) *Clan {
	ref = strings.TrimSpace(ref)
	if c := w.clans[ref]; c != nil {
		return c
	}
	key := clanspkg.FoldName(ref)
	for _, id := range clanspkg.SortedIDs(w.clans) {
		if clanspkg.FoldName(w.clans[id].Name) == key {
			return w.clans[id]
		}
	}
	return nil
}

func (w *World) notifyClan(c *Clan, e protocol.Event) {
	for _, m := range clanspkg.SortedMembers(c) {
		w.notify(m, e)
	}
}

func handleInstantClanCreate(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if w.clanOf(p.Name) != nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "you are already in a clan"))
		return
	}
	plot := claims.PlotOwnedBy(w.plots, p.Name)
	if plot == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "you need a land plot to found a clan"))
		return
	}
	if modelpkg.Distance(p.Pos, plot.Center) > w.tun.Clans.FoundMaxDistance {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "stand at the center of your plot"))
		return
	}
	name := strings.TrimSpace(inst.Name)
	if ok, code, msg := clanspkg.ValidateName(name, w.tun.Clans.NameMin, w.tun.Clans.NameMax); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	if clanspkg.NameTaken(w.clans, name, "") {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "clan name already taken"))
		return
	}
	if !clanspkg.ValidColor(w.tun.Clans.Colors, inst.Color) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "invalid color"))
		return
	}
	cost := w.clanCreateCost()
	if w.book().Balance(p.Name) < cost {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoResource, fmt.Sprintf("founding a clan costs %d", cost)))
		return
	}

	w.addBalance(p.Name, -cost)
	c := &Clan{
		ClanID:    w.newClanID(),
		Name:      name,
		Tag:       clanspkg.MakeTag(name),
		Color:     strings.ToLower(strings.TrimSpace(inst.Color)),
		Leader:    p.Name,
		CreatedAt: w.nowMs,
		Level:     modelpkg.ClanMinLevel,
		Base:      Vec3i{X: plot.Center.X, Y: w.tun.Land.BunkerFloorY + 2, Z: plot.Center.Z},
	}
	c.InitDefaults()
	w.clans[c.ClanID] = c
	w.markClan(c.ClanID)
	delete(w.invites, p.Name)
	w.markInvite(p.Name)
	pos := plot.Center
	w.audit(nowTick, p.Name, "CLAN_CREATE", c.ClanID, &pos, cost, "", map[string]interface{}{"name": c.Name})
	p.AddEvent(okResult(nowTick, inst.ID, "clan_id", c.ClanID, "tag", c.Tag))
}

func handleInstantClanInvite(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.leaderClan(p, inst, nowTick)
	if c == nil {
		return
	}
	switch {
	case inst.Target == "" || inst.Target == p.Name:
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "invalid target"))
		return
	case len(c.Members) >= w.maxMembers():
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "clan is full"))
		return
	case !w.online(inst.Target):
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "target not online"))
		return
	case w.clanOf(inst.Target) != nil:
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, inst.Target+" is already in a clan"))
		return
	}
	w.invites[inst.Target] = modelpkg.ClanInvite{ClanID: c.ClanID, From: p.Name, CreatedAt: w.nowMs}
	w.markInvite(inst.Target)
	w.notify(inst.Target, protocol.Event{"t": nowTick, "type": "CLAN_INVITE", "clan_id": c.ClanID, "clan": c.Name, "from": p.Name})
	p.AddEvent(okResult(nowTick, inst.ID, "target", inst.Target))
}

func handleInstantClanInviteAnswer(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	inv, ok := w.invites[p.Name]
	if !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no pending invite"))
		return
	}
	if inst.Accept == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing accept"))
		return
	}
	delete(w.invites, p.Name)
	w.markInvite(p.Name)
	c := w.clans[inv.ClanID]
	if c == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "clan no longer exists"))
		return
	}
	if !*inst.Accept {
		w.notify(inv.From, protocol.Event{"t": nowTick, "type": "CLAN_INVITE_DECLINED", "player": p.Name})
		p.AddEvent(okResult(nowTick, inst.ID, "accepted", false))
		return
	}
	if w.clanOf(p.Name) != nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "you are already in a clan"))
		return
	}
	if len(c.Members) >= w.maxMembers() {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "clan is full"))
		return
	}
	c.Members[p.Name] = true
	w.markClan(c.ClanID)
	w.audit(nowTick, p.Name, "CLAN_JOIN", c.ClanID, nil, 0, "", nil)
	w.notifyClan(c, protocol.Event{"t": nowTick, "type": "CLAN_JOINED", "clan_id": c.ClanID, "player": p.Name})
	p.AddEvent(okResult(nowTick, inst.ID, "accepted", true, "clan_id", c.ClanID))
}

func handleInstantClanKick(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.leaderClan(p, inst, nowTick)
	if c == nil {
		return
	}
	if inst.Target == p.Name {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "use CLAN_LEAVE or CLAN_DISSOLVE"))
		return
	}
	if !c.IsMember(inst.Target) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "not a member"))
		return
	}
	delete(c.Members, inst.Target)
	w.markClan(c.ClanID)
	w.audit(nowTick, p.Name, "CLAN_KICK", inst.Target, nil, 0, "", map[string]interface{}{"clan_id": c.ClanID})
	w.notify(inst.Target, protocol.Event{"t": nowTick, "type": "CLAN_KICKED", "clan_id": c.ClanID})
	p.AddEvent(okResult(nowTick, inst.ID, "target", inst.Target))
}

// removeMember drops name from c. The last member leaving deletes the clan;
// a departing leader hands over to the next member.
func (w *World) removeMember(c *Clan, name string, nowTick uint64) {
	delete(c.Members, name)
	if len(c.Members) == 0 {
		w.deleteClan(c, nowTick, "empty")
		return
	}
	if c.Leader == name {
		c.Leader = clanspkg.SelectNextLeader(c, name)
		w.notifyClan(c, protocol.Event{"t": nowTick, "type": "CLAN_LEADER", "clan_id": c.ClanID, "leader": c.Leader})
	}
	w.markClan(c.ClanID)
}

func (w *World) deleteClan(c *Clan, nowTick uint64, reason string) {
	w.notifyClan(c, protocol.Event{"t": nowTick, "type": "CLAN_DISSOLVED", "clan_id": c.ClanID, "reason": reason})
	delete(w.clans, c.ClanID)
	w.markClan(c.ClanID)
	for _, name := range sortedNames(w.invites) {
		if w.invites[name].ClanID == c.ClanID {
			delete(w.invites, name)
			w.markInvite(name)
		}
	}
	w.audit(nowTick, "", "CLAN_DELETE", c.ClanID, nil, c.Treasury, reason, nil)
}

func handleInstantClanLeave(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.clanOf(p.Name)
	if c == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "you are not in a clan"))
		return
	}
	w.removeMember(c, p.Name, nowTick)
	w.notifyClan(c, protocol.Event{"t": nowTick, "type": "CLAN_LEFT", "clan_id": c.ClanID, "player": p.Name})
	p.AddEvent(okResult(nowTick, inst.ID, "clan_id", c.ClanID))
}

func handleInstantClanDissolve(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.leaderClan(p, inst, nowTick)
	if c == nil {
		return
	}
	w.deleteClan(c, nowTick, "dissolved")
	p.AddEvent(okResult(nowTick, inst.ID, "clan_id", c.ClanID))
}

func handleInstantClanDeposit(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.clanOf(p.Name)
	if c == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "you are not in a clan"))
		return
	}
	if inst.Amount < w.tun.Clans.MinDeposit {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, fmt.Sprintf("minimum deposit is %d", w.tun.Clans.MinDeposit)))
		return
	}
	if w.book().Balance(p.Name) < inst.Amount {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoResource, "insufficient funds"))
		return
	}
	w.addBalance(p.Name, -inst.Amount)
	c.Treasury += inst.Amount
	w.markClan(c.ClanID)
	w.audit(nowTick, p.Name, "CLAN_DEPOSIT", c.ClanID, nil, inst.Amount, "", nil)
	p.AddEvent(okResult(nowTick, inst.ID, "treasury", c.Treasury))
}

func handleInstantClanEdit(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.leaderClan(p, inst, nowTick)
	if c == nil {
		return
	}
	name := strings.TrimSpace(inst.Name)
	color := strings.TrimSpace(inst.Color)
	if name == "" && color == "" {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "nothing to change"))
		return
	}
	if name != "" {
		if ok, code, msg := clanspkg.ValidateName(name, w.tun.Clans.NameMin, w.tun.Clans.NameMax); !ok {
			p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
			return
		}
		if clanspkg.NameTaken(w.clans, name, c.ClanID) {
			p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "clan name already taken"))
			return
		}
	}
	if color != "" && !clanspkg.ValidColor(w.tun.Clans.EditColors, color) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "invalid color"))
		return
	}
	if name != "" {
		c.Name = name
		c.Tag = clanspkg.MakeTag(name)
	}
	if color != "" {
		c.Color = strings.ToLower(color)
	}
	w.markClan(c.ClanID)
	p.AddEvent(okResult(nowTick, inst.ID, "name", c.Name, "tag", c.Tag, "color", c.Color))
}

func handleInstantClanLevelUp(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.leaderClan(p, inst, nowTick)
	if c == nil {
		return
	}
	base := w.levelBaseCost()
	if ok, code, msg := clanspkg.ValidateLevelUp(c, base); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	clanspkg.ApplyLevelUp(c, base)
	w.markClan(c.ClanID)
	w.announceLevelUp(c, nowTick)
	p.AddEvent(okResult(nowTick, inst.ID, "level", c.Level))
}

func handleInstantClanUnlockEffect(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.leaderClan(p, inst, nowTick)
	if c == nil {
		return
	}
	e, known := w.tun.EffectByID(inst.Effect)
	if ok, code, msg := clanspkg.ValidateUnlock(c, e, known); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	c.Treasury -= e.Price
	c.UnlockedEffects[e.ID] = true
	w.markClan(c.ClanID)
	w.audit(nowTick, p.Name, "CLAN_UNLOCK_EFFECT", c.ClanID, nil, e.Price, e.ID, nil)
	p.AddEvent(okResult(nowTick, inst.ID, "effect", e.ID, "treasury", c.Treasury))
}

func handleInstantClanPayEffects(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.leaderClan(p, inst, nowTick)
	if c == nil {
		return
	}
	if len(c.UnlockedEffects) == 0 {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "no effects unlocked"))
		return
	}
	cost := maintenance.EffectRentCost(w.tun.Effects, c.UnlockedEffects)
	if c.Treasury < cost {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoResource, fmt.Sprintf("rent is %d", cost)))
		return
	}
	c.Treasury -= cost
	c.EffectRentExpiresAt = maintenance.ExtendEffectRent(c.EffectRentExpiresAt, w.nowMs, w.tun.Clans.EffectRentDays)
	w.markClan(c.ClanID)
	w.audit(nowTick, p.Name, "CLAN_EFFECT_RENT", c.ClanID, nil, cost, "", nil)
	p.AddEvent(okResult(nowTick, inst.ID, "expires_at", c.EffectRentExpiresAt, "treasury", c.Treasury))
}

func handleInstantKitClaim(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.clanOf(p.Name)
	if c == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "kits are for clan members"))
		return
	}
	cooldown := int64(w.tun.Clans.KitCooldownHours) * 3600 * 1000
	if p.KitClaimedAt > 0 && w.nowMs-p.KitClaimedAt < cooldown {
		ev := actionResult(nowTick, inst.ID, false, protocol.ErrCooldown, "kit already claimed")
		ev["remaining_ms"] = cooldown - (w.nowMs - p.KitClaimedAt)
		p.AddEvent(ev)
		return
	}
	kit := clanspkg.KitForLevel(w.tun.Kits, c.Level)
	p.KitClaimedAt = w.nowMs
	overflow := w.giveItems(p, kit, nowTick)
	ev := okResult(nowTick, inst.ID, "level", c.Level)
	if len(overflow) > 0 {
		ev["dropped"] = len(overflow)
	}
	p.AddEvent(ev)
}

func handleInstantAdminClanLeader(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.clanOf(inst.Target)
	if c == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "target is not in a clan"))
		return
	}
	c.Leader = inst.Target
	w.markClan(c.ClanID)
	w.audit(nowTick, p.Name, "ADMIN_CLAN_SET_LEADER", c.ClanID, nil, 0, "", map[string]interface{}{"leader": inst.Target})
	w.notifyClan(c, protocol.Event{"t": nowTick, "type": "CLAN_LEADER", "clan_id": c.ClanID, "leader": c.Leader})
	p.AddEvent(okResult(nowTick, inst.ID, "clan_id", c.ClanID, "leader", c.Leader))
}

func handleInstantAdminClanXP(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.resolveClan(inst.Name)
	if c == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "clan not found"))
		return
	}
	if ok, code, msg := clanspkg.AdjustXP(c, inst.Op, inst.Amount); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	leveled := clanspkg.ApplyLevelUp(c, w.levelBaseCost())
	w.markClan(c.ClanID)
	w.audit(nowTick, p.Name, "ADMIN_CLAN_XP", c.ClanID, nil, inst.Amount, inst.Op, nil)
	if leveled {
		w.announceLevelUp(c, nowTick)
	}
	p.AddEvent(okResult(nowTick, inst.ID, "clan_id", c.ClanID, "xp", c.XP, "level", c.Level))
}

func handleInstantAdminClanDelete(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	c := w.resolveClan(inst.Name)
	if c == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "clan not found"))
		return
	}
	w.deleteClan(c, nowTick, "admin")
	p.AddEvent(okResult(nowTick, inst.ID, "clan_id", c.ClanID))
}
