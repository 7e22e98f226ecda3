package world

import (
	"strings"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/economy/inventory"
	"voxelkeep.ai/internal/sim/world/feature/session/hud"
)

// MOVE is a position report; success produces no event.
func handleInstantMove(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	pos, ok := posFromReq(inst.Pos)
	if !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing pos"))
		return
	}
	dim := strings.TrimSpace(inst.Dim)
	if pos == p.Pos && (dim == "" || dim == p.Dim) {
		return
	}
	p.Pos = pos
	if dim != "" {
		p.Dim = dim
	}
	w.markPlayer(p.Name)
}

// INVENTORY_SYNC replaces the server's view of the player's inventory.
func handleInstantInventorySync(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	p.Inventory = inventory.StacksToMap(inst.Inventory)
	w.markPlayer(p.Name)
	p.AddEvent(okResult(nowTick, inst.ID))
}

func handleInstantHUDMode(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if inst.Mode == nil || !hud.ValidMode(*inst.Mode) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "mode must be 0..3"))
		return
	}
	p.HUDMode = *inst.Mode
	w.markPlayer(p.Name)
	p.AddEvent(okResult(nowTick, inst.ID, "mode", p.HUDMode))
}

func handleInstantEffectToggle(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if _, ok := w.tun.EffectByID(inst.Effect); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "unknown effect"))
		return
	}
	if inst.Enabled == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing enabled"))
		return
	}
	if *inst.Enabled {
		// Absent means enabled.
		delete(p.EffectToggles, inst.Effect)
	} else {
		p.EffectToggles[inst.Effect] = false
	}
	w.markPlayer(p.Name)
	p.AddEvent(okResult(nowTick, inst.ID, "effect", inst.Effect, "enabled", *inst.Enabled))
}
