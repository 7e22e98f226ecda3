package waypoints

import (
	"strings"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

const MaxNameLen = 24

// ValidateAdd enforces the per-player cap; admins have none.
func ValidateAdd(list []modelpkg.Waypoint, name string, max int, isAdmin bool) (ok bool, code string, msg string) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxNameLen {
		return false, "E_BAD_REQUEST", "waypoint name must be 1-24 characters"
	}
	if !isAdmin && max > 0 && len(list) >= max {
		return false, "E_NO_RESOURCE", "waypoint limit reached"
	}
	return true, "", ""
}

// Delete removes the waypoint at idx, preserving order.
func Delete(list []modelpkg.Waypoint, idx int) ([]modelpkg.Waypoint, bool) {
	if idx < 0 || idx >= len(list) {
		return list, false
	}
	out := make([]modelpkg.Waypoint, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out, true
}

func FindByName(list []modelpkg.Waypoint, name string) (modelpkg.Waypoint, bool) {
	for _, w := range list {
		if strings.EqualFold(w.Name, name) {
			return w, true
		}
	}
	return modelpkg.Waypoint{}, false
}

// Resolve picks a destination by index or name.
func Resolve(list []modelpkg.Waypoint, idx *int, name string) (modelpkg.Waypoint, bool) {
	if idx != nil {
		if *idx < 0 || *idx >= len(list) {
			return modelpkg.Waypoint{}, false
		}
		return list[*idx], true
	}
	return FindByName(list, name)
}

// TravelReady reports whether the travel cooldown has elapsed.
func TravelReady(cooldownUntil, nowMs int64) (bool, int64) {
	if nowMs >= cooldownUntil {
		return true, 0
	}
	return false, cooldownUntil - nowMs
}
