package world

import (
	"fmt"
	"strings"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/session/chat"
	"voxelkeep.ai/internal/sim/world/feature/session/waypoints"
)

func handleInstantWaypointAdd(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if ok, code, msg := waypoints.ValidateAdd(p.Waypoints, inst.Name, w.maxWaypoints(), w.isAdmin(p)); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	p.Waypoints = append(p.Waypoints, Waypoint{Name: strings.TrimSpace(inst.Name), Pos: p.Pos, Dim: p.Dim})
	w.markPlayer(p.Name)
	p.AddEvent(okResult(nowTick, inst.ID, "index", len(p.Waypoints)-1))
}

func handleInstantWaypointDelete(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if inst.Index == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing index"))
		return
	}
	list, ok := waypoints.Delete(p.Waypoints, *inst.Index)
	if !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no waypoint at index"))
		return
	}
	p.Waypoints = list
	w.markPlayer(p.Name)
	p.AddEvent(okResult(nowTick, inst.ID))
}

func handleInstantWarpAdd(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if ok, code, msg := waypoints.ValidateAdd(w.warps, inst.Name, 0, true); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	if _, dup := waypoints.FindByName(w.warps, inst.Name); dup {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "warp name already used"))
		return
	}
	w.warps = append(w.warps, Waypoint{Name: strings.TrimSpace(inst.Name), Pos: p.Pos, Dim: p.Dim})
	w.markWarps()
	pos := p.Pos
	w.audit(nowTick, p.Name, "WARP_ADD", strings.TrimSpace(inst.Name), &pos, 0, "", nil)
	p.AddEvent(okResult(nowTick, inst.ID, "index", len(w.warps)-1))
}

func handleInstantWarpDelete(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if inst.Index == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing index"))
		return
	}
	list, ok := waypoints.Delete(w.warps, *inst.Index)
	if !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no warp at index"))
		return
	}
	w.warps = list
	w.markWarps()
	w.audit(nowTick, p.Name, "WARP_DELETE", fmt.Sprint(*inst.Index), nil, 0, "", nil)
	p.AddEvent(okResult(nowTick, inst.ID))
}

// TRAVEL resolves a private waypoint, or a public warp when Public is set,
// and tells the host where to teleport.
func handleInstantTravel(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	list := p.Waypoints
	if inst.Public {
		list = w.warps
	}
	dest, ok := waypoints.Resolve(list, inst.Index, inst.Name)
	if !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "destination not found"))
		return
	}
	if ready, remaining := waypoints.TravelReady(p.WarpCooldownUntil, w.nowMs); !ready {
		ev := actionResult(nowTick, inst.ID, false, protocol.ErrCooldown, fmt.Sprintf("wait %ds", (remaining+999)/1000))
		ev["remaining_ms"] = remaining
		p.AddEvent(ev)
		return
	}
	p.WarpCooldownUntil = w.nowMs + int64(w.tun.Session.WarpCooldownSeconds)*1000
	w.markPlayer(p.Name)
	p.AddEvent(protocol.Event{"t": nowTick, "type": "TELEPORT", "name": dest.Name, "pos": dest.Pos.ToArray(), "dim": dest.Dim})
	p.AddEvent(okResult(nowTick, inst.ID, "name", dest.Name))
}

func handleInstantSay(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	text := strings.TrimSpace(inst.Text)
	if text == "" {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "empty message"))
		return
	}
	spec := chat.LimitSpec(chat.RateLimits{
		SayWindowTicks: uint64(w.tun.RateLimits.SayWindowTicks),
		SayMax:         w.tun.RateLimits.SayMax,
	})
	if ok, cd := p.RateLimitAllow(spec.Kind, nowTick, spec.Window, spec.Max); !ok {
		ev := actionResult(nowTick, inst.ID, false, protocol.ErrRateLimit, spec.RateErrMsg)
		ev["cooldown_ticks"] = cd
		p.AddEvent(ev)
		return
	}
	mc := chat.CheckMute(p, w.nowMs, w.globalMute, w.isAdmin(p))
	if mc.ClearExpired {
		p.MuteUntil = 0
		w.markPlayer(p.Name)
	}
	if mc.Reason != chat.NotMuted {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, mc.Message()))
		return
	}

	c := w.clanOf(p.Name)
	if body, private := chat.SplitClanMessage(text); private {
		if body == "" {
			p.AddEvent(okResult(nowTick, inst.ID, "delivered", 0))
			return
		}
		if c == nil {
			p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "you are not in a clan"))
			return
		}
		ds := chat.ClanRecipients(c, w.onlineNames(), w.isAdminName)
		for _, d := range ds {
			w.chatTo(d.To, nowTick, "clan", d.Prefix, p.Name, body)
		}
		p.AddEvent(okResult(nowTick, inst.ID, "delivered", len(ds)))
		return
	}

	prefix := chat.PublicPrefix(c)
	names := w.onlineNames()
	for _, name := range names {
		w.chatTo(name, nowTick, "public", prefix, p.Name, text)
	}
	p.AddEvent(okResult(nowTick, inst.ID, "delivered", len(names)))
}

func handleInstantAdminMute(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	t := w.players[inst.Target]
	if t == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "unknown player"))
		return
	}
	switch {
	case inst.Permanent && inst.Minutes == 0:
		t.MutedPermanent = true
	case inst.Permanent || inst.Minutes <= 0:
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "need minutes > 0 or permanent"))
		return
	default:
		t.MuteUntil = w.nowMs + int64(inst.Minutes)*60*1000
	}
	w.markPlayer(t.Name)
	w.audit(nowTick, p.Name, "ADMIN_MUTE", t.Name, nil, int64(inst.Minutes), "", nil)
	w.notify(t.Name, protocol.Event{"t": nowTick, "type": "MUTED", "until": t.MuteUntil, "permanent": t.MutedPermanent})
	p.AddEvent(okResult(nowTick, inst.ID, "target", t.Name))
}

func handleInstantAdminUnmute(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	t := w.players[inst.Target]
	if t == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "unknown player"))
		return
	}
	t.MuteUntil = 0
	t.MutedPermanent = false
	w.markPlayer(t.Name)
	w.audit(nowTick, p.Name, "ADMIN_UNMUTE", t.Name, nil, 0, "", nil)
	w.notify(t.Name, protocol.Event{"t": nowTick, "type": "UNMUTED"})
	p.AddEvent(okResult(nowTick, inst.ID, "target", t.Name))
}

func handleInstantAdminGlobalMute(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if inst.Enabled == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing enabled"))
		return
	}
	w.globalMute = *inst.Enabled
	w.dirty.globalMute = true
	w.audit(nowTick, p.Name, "ADMIN_GLOBAL_MUTE", "", nil, 0, fmt.Sprint(w.globalMute), nil)
	p.AddEvent(okResult(nowTick, inst.ID, "global_mute", w.globalMute))
}
