package world

import (
	"strings"

	"voxelkeep.ai/internal/sim/tuning"
)

// varValue resolves an adjustable variable: stored override first, then tuning.
func (w *World) varValue(key string) (int64, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if v, ok := w.vars[key]; ok {
		return v, true
	}
	return w.tun.Var(key)
}

func (w *World) varOr(key string, def int64) int64 {
	if v, ok := w.varValue(key); ok {
		return v
	}
	return def
}

func (w *World) clanCreateCost() int64 {
	return w.varOr(tuning.VarClanCreateCost, w.tun.Clans.CreateCost)
}

func (w *World) levelBaseCost() int64 {
	return w.varOr(tuning.VarLevelBaseCost, w.tun.Clans.LevelBaseCost)
}

func (w *World) maxMembers() int {
	return int(w.varOr(tuning.VarMaxMembers, int64(w.tun.Clans.MaxMembers)))
}

func (w *World) weeklyRent() int64 {
	return w.varOr(tuning.VarWeeklyRent, w.tun.Land.WeeklyRent)
}

func (w *World) claimCost() int64 {
	if v, ok := w.vars[tuning.VarClaimCost]; ok {
		return v
	}
	if w.tun.Land.ClaimCost > 0 {
		return w.tun.Land.ClaimCost
	}
	return w.weeklyRent() / 7
}

func (w *World) maxWaypoints() int {
	return int(w.varOr(tuning.VarMaxWaypoints, int64(w.tun.Session.MaxWaypoints)))
}

func (w *World) mobXP(mob string) (int64, bool) {
	return w.varValue(tuning.XPVarPrefix + mob)
}

// setVar stores an override; a nil value clears it.
func (w *World) setVar(key string, v *int64) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if !tuning.IsVar(key) {
		return false
	}
	if v == nil {
		delete(w.vars, key)
	} else {
		w.vars[key] = *v
	}
	w.dirty.vars[key] = true
	return true
}

func (w *World) varsView() map[string]int64 {
	out := map[string]int64{}
	for _, k := range []string{
		tuning.VarClanCreateCost, tuning.VarLevelBaseCost, tuning.VarMaxMembers,
		tuning.VarWeeklyRent, tuning.VarClaimCost, tuning.VarMaxWaypoints,
	} {
		if v, ok := w.varValue(k); ok {
			out[k] = v
		}
	}
	out[tuning.VarClaimCost] = w.claimCost()
	for mob := range w.tun.MobXP {
		if v, ok := w.mobXP(mob); ok {
			out[tuning.XPVarPrefix+mob] = v
		}
	}
	for k, v := range w.vars {
		out[k] = v
	}
	return out
}
