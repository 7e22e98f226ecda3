package world

import (
	"sort"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/session/lifecycle"
	resumepkg "voxelkeep.ai/internal/sim/world/feature/session/resume"
	"voxelkeep.ai/internal/sim/world/feature/session/welcome"
)

func (w *World) joinPlayer(req JoinRequest, nowTick uint64) JoinResponse {
	name, err := lifecycle.NormalizeName(req.Name)
	if err != nil {
		return JoinResponse{Err: err.Error()}
	}

	issued := w.resume[name]
	cl := w.clients[name]
	if cl != nil {
		issued = cl.ResumeToken
	}
	// A second connection may take over only with the live resume token.
	decision := resumepkg.Decide(cl != nil, issued, req.ResumeToken)
	if decision == resumepkg.Refused {
		return JoinResponse{Err: "player already connected"}
	}
	resumed := decision == resumepkg.Resumed

	p, returning := lifecycle.BuildJoinedPlayer(lifecycle.JoinInput{
		Name:            name,
		Existing:        w.players[name],
		StartingBalance: w.tun.Economy.StartingBalance,
		NowMs:           w.nowMs,
		AdminTag:        w.tun.Economy.AdminTag,
		Admins:          w.tun.Admins,
		GrantAdmin:      req.Admin,
	})
	w.players[name] = p
	w.balances[name] = p.Balance
	w.markPlayer(name)

	token := w.resume[name]
	if !resumed || token == "" {
		token = lifecycle.NewResumeToken(w.cfg.ID)
	}
	w.resume[name] = token
	cl = &clientState{Out: req.Out, SessionID: lifecycle.NewSessionID(), ResumeToken: token}
	w.clients[name] = cl

	if !returning {
		w.audit(nowTick, name, "PLAYER_FIRST_JOIN", "", nil, 0, "", nil)
	}
	if inv, ok := w.invites[name]; ok {
		if c := w.clans[inv.ClanID]; c != nil {
			p.AddEvent(protocol.Event{"t": nowTick, "type": "CLAN_INVITE", "clan_id": c.ClanID, "clan": c.Name, "from": inv.From})
		}
	}

	return JoinResponse{Welcome: welcome.Build(welcome.Input{
		SessionID:    cl.SessionID,
		PlayerName:   name,
		ResumeToken:  token,
		Admin:        w.isAdmin(p),
		Returning:    returning,
		WorldID:      w.cfg.ID,
		TickRateHz:   w.tun.TickRateHz,
		Currency:     w.tun.Economy.Currency,
		MaxWaypoints: w.maxWaypoints(),
		ClanCost:     w.clanCreateCost(),
		ClaimCost:    w.claimCost(),
		WeeklyRent:   w.weeklyRent(),
		PlotRadius:   w.tun.Land.PlotRadius,
		MaxMembers:   w.maxMembers(),
		TuningDigest: w.tun.Digest(),
	})}
}

// handleLeave drops the session. The player record and any escrow stay.
func (w *World) handleLeave(name string) {
	delete(w.clients, name)
	if p := w.players[name]; p != nil {
		p.Events = nil
	}
}

// sessionOwner maps a live session id to its player. A session replaced by
// a resumed connection no longer maps to anyone.
func (w *World) sessionOwner(sessionID string) string {
	for name, cl := range w.clients {
		if cl.SessionID == sessionID {
			return name
		}
	}
	return ""
}

func (w *World) online(name string) bool {
	_, ok := w.clients[name]
	return ok
}

func (w *World) onlineNames() []string {
	out := make([]string, 0, len(w.clients))
	for name := range w.clients {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (w *World) onlinePlayers() []*Player {
	names := w.onlineNames()
	out := make([]*Player, 0, len(names))
	for _, n := range names {
		if p := w.players[n]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (w *World) isAdmin(p *Player) bool {
	return p != nil && p.HasTag(w.tun.Economy.AdminTag)
}

func (w *World) isAdminName(name string) bool {
	return w.isAdmin(w.players[name])
}
