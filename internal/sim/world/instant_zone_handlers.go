package world

import (
	"strings"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/governance/zones"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func handleInstantZoneCreate(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if ok, code, msg := zones.ValidateZoneName(inst.Name); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	a, okA := posFromReq(inst.Pos)
	b, okB := posFromReq(inst.Pos2)
	if !okA || !okB {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "missing pos/pos2"))
		return
	}
	flags, err := zones.ApplyFlags(modelpkg.DefaultZoneFlags(), inst.Flags)
	if err != nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, err.Error()))
		return
	}
	lo, hi := zones.Normalize(a, b)
	z := &Zone{
		ZoneID:    w.newZoneID(),
		Name:      strings.TrimSpace(inst.Name),
		Min:       lo,
		Max:       hi,
		Flags:     flags,
		CreatedAt: w.nowMs,
	}
	w.zones = append(w.zones, z)
	w.markZones()
	w.audit(nowTick, p.Name, "ZONE_CREATE", z.ZoneID, &lo, 0, "", map[string]interface{}{"name": z.Name, "max": hi.ToArray()})
	p.AddEvent(okResult(nowTick, inst.ID, "zone_id", z.ZoneID))
}

func handleInstantZoneDelete(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	i := zones.IndexOf(w.zones, inst.ZoneID)
	if i < 0 {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "zone not found"))
		return
	}
	w.zones = append(w.zones[:i:i], w.zones[i+1:]...)
	w.markZones()
	w.audit(nowTick, p.Name, "ZONE_DELETE", inst.ZoneID, nil, 0, "", nil)
	p.AddEvent(okResult(nowTick, inst.ID, "zone_id", inst.ZoneID))
}

func handleInstantZoneEdit(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	i := zones.IndexOf(w.zones, inst.ZoneID)
	if i < 0 {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "zone not found"))
		return
	}
	z := w.zones[i]
	name := z.Name
	if strings.TrimSpace(inst.Name) != "" {
		if ok, code, msg := zones.ValidateZoneName(inst.Name); !ok {
			p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
			return
		}
		name = strings.TrimSpace(inst.Name)
	}
	flags, err := zones.ApplyFlags(z.Flags, inst.Flags)
	if err != nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, err.Error()))
		return
	}
	z.Name = name
	z.Flags = flags
	w.markZones()
	w.audit(nowTick, p.Name, "ZONE_EDIT", z.ZoneID, nil, 0, "", map[string]interface{}{"flags": zones.FlagMap(flags)})
	p.AddEvent(okResult(nowTick, inst.ID, "zone_id", z.ZoneID, "flags", zones.FlagMap(flags)))
}

// ADMIN_CONFIG sets an adjustable variable; a missing value restores the tuning default.
func handleInstantAdminConfig(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if inst.Value != nil && *inst.Value < 0 {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "value must be >= 0"))
		return
	}
	if !w.setVar(inst.Key, inst.Value) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "unknown variable"))
		return
	}
	key := strings.ToLower(strings.TrimSpace(inst.Key))
	v, _ := w.varValue(key)
	w.audit(nowTick, p.Name, "ADMIN_CONFIG", key, nil, v, "", nil)
	p.AddEvent(okResult(nowTick, inst.ID, "key", key, "value", v))
}
