package world

import (
	"fmt"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/governance/claims"
	"voxelkeep.ai/internal/sim/world/feature/governance/maintenance"
)

// ownedPlot returns the plot p owns, otherwise queues the failure.
func (w *World) ownedPlot(p *Player, inst protocol.InstantReq, nowTick uint64) *LandPlot {
	lp := claims.PlotOwnedBy(w.plots, p.Name)
	if lp == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "you do not own a plot"))
	}
	return lp
}

// LAND_CLAIM centers a new plot on the player's block position.
func handleInstantLandClaim(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	center := p.Pos
	r := w.tun.Land.PlotRadius
	conflictID, _ := claims.Conflict(center.X, center.Z, r, claims.Footprints(w.plots))
	cost := w.claimCost()
	alreadyOwns := claims.PlotOwnedBy(w.plots, p.Name) != nil
	if ok, code, msg := claims.ValidateClaim(alreadyOwns, conflictID, w.book().Balance(p.Name), cost); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	w.addBalance(p.Name, -cost)
	lp := &LandPlot{
		PlotID:        w.newPlotID(),
		Owner:         p.Name,
		Center:        center,
		Radius:        r,
		RentExpiresAt: maintenance.NextRentExpiry(w.nowMs, w.tun.Land.RentDays),
		CreatedAt:     w.nowMs,
	}
	lp.InitDefaults()
	w.plots[lp.PlotID] = lp
	w.markPlot(lp.PlotID)
	w.audit(nowTick, p.Name, "LAND_CLAIM", lp.PlotID, &center, cost, "", nil)
	// The host marks the center block and draws the border.
	p.AddEvent(protocol.Event{"t": nowTick, "type": "LAND_CLAIMED", "plot_id": lp.PlotID, "center": center.ToArray(), "radius": r})
	p.AddEvent(okResult(nowTick, inst.ID, "plot_id", lp.PlotID, "rent_expires_at", lp.RentExpiresAt))
}

func handleInstantLandPayRent(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	lp := w.ownedPlot(p, inst, nowTick)
	if lp == nil {
		return
	}
	if !maintenance.CanPayEarly(lp.RentExpiresAt, w.nowMs, w.tun.Land.EarlyPayMaxDays) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "rent is already paid"))
		return
	}
	c := w.clanOf(p.Name)
	level := 0
	if c != nil {
		level = c.Level
	}
	cost := maintenance.PlotRentCost(w.weeklyRent(), level, c != nil)
	if w.book().Balance(p.Name) < cost {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoResource, fmt.Sprintf("rent is %d", cost)))
		return
	}
	w.addBalance(p.Name, -cost)
	lp.RentExpiresAt = maintenance.NextRentExpiry(w.nowMs, w.tun.Land.RentDays)
	w.markPlot(lp.PlotID)
	w.audit(nowTick, p.Name, "LAND_PAY_RENT", lp.PlotID, nil, cost, "", nil)
	p.AddEvent(okResult(nowTick, inst.ID, "cost", cost, "rent_expires_at", lp.RentExpiresAt))
}

func handleInstantLandGuestAdd(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	lp := w.ownedPlot(p, inst, nowTick)
	if lp == nil {
		return
	}
	if ok, code, msg := claims.ValidateGuestAdd(p.Name, inst.Target, lp.Guests[inst.Target], w.isAdminName(inst.Target)); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	lp.Guests[inst.Target] = true
	w.markPlot(lp.PlotID)
	w.notify(inst.Target, protocol.Event{"t": nowTick, "type": "LAND_GUEST", "plot_id": lp.PlotID, "owner": p.Name, "added": true})
	p.AddEvent(okResult(nowTick, inst.ID, "target", inst.Target))
}

func handleInstantLandGuestRemove(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	lp := w.ownedPlot(p, inst, nowTick)
	if lp == nil {
		return
	}
	if !lp.Guests[inst.Target] {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "not a guest"))
		return
	}
	delete(lp.Guests, inst.Target)
	w.markPlot(lp.PlotID)
	w.notify(inst.Target, protocol.Event{"t": nowTick, "type": "LAND_GUEST", "plot_id": lp.PlotID, "owner": p.Name, "added": false})
	p.AddEvent(okResult(nowTick, inst.ID, "target", inst.Target))
}

func (w *World) deletePlot(lp *LandPlot, actor, action string, nowTick uint64) {
	delete(w.plots, lp.PlotID)
	w.markPlot(lp.PlotID)
	center := lp.Center
	w.audit(nowTick, actor, action, lp.PlotID, &center, 0, "", map[string]interface{}{"owner": lp.Owner})
	w.notify(lp.Owner, protocol.Event{"t": nowTick, "type": "LAND_REMOVED", "plot_id": lp.PlotID, "center": center.ToArray()})
}

func handleInstantLandAbandon(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	lp := w.ownedPlot(p, inst, nowTick)
	if lp == nil {
		return
	}
	w.deletePlot(lp, p.Name, "LAND_ABANDON", nowTick)
	p.AddEvent(okResult(nowTick, inst.ID, "plot_id", lp.PlotID))
}

func handleInstantAdminLandDelete(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	lp := w.plots[inst.PlotID]
	if lp == nil && inst.Target != "" {
		lp = claims.PlotOwnedBy(w.plots, inst.Target)
	}
	if lp == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "plot not found"))
		return
	}
	w.deletePlot(lp, p.Name, "ADMIN_LAND_DELETE", nowTick)
	p.AddEvent(okResult(nowTick, inst.ID, "plot_id", lp.PlotID))
}
