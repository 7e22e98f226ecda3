package claims

import (
	"fmt"
	"sort"

	"voxelkeep.ai/internal/protocol"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func PlotID(n uint64) string { return fmt.Sprintf("P%06d", n) }

// Footprint is the horizontal square a plot occupies.
type Footprint struct {
	PlotID  string
	CenterX int
	CenterZ int
	Radius  int
}

// Overlaps reports whether two square footprints would touch or intersect.
// Centers closer than r1+r2+1 on both axes are rejected.
func Overlaps(ax, az, ar, bx, bz, br int) bool {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dz := az - bz
	if dz < 0 {
		dz = -dz
	}
	limit := ar + br + 1
	return dx < limit && dz < limit
}

// Conflict returns the first existing plot a new claim at (x,z,r) would overlap.
func Conflict(x, z, r int, plots []Footprint) (string, bool) {
	for _, p := range plots {
		if p.PlotID == "" {
			continue
		}
		if Overlaps(x, z, r, p.CenterX, p.CenterZ, p.Radius) {
			return p.PlotID, true
		}
	}
	return "", false
}

func Footprints(plots map[string]*modelpkg.LandPlot) []Footprint {
	out := make([]Footprint, 0, len(plots))
	for _, id := range SortedPlotIDs(plots) {
		p := plots[id]
		out = append(out, Footprint{PlotID: id, CenterX: p.Center.X, CenterZ: p.Center.Z, Radius: p.Radius})
	}
	return out
}

// PlotAt returns the plot whose footprint contains pos. Plots never overlap,
// so the lowest id match is the only match.
func PlotAt(plots map[string]*modelpkg.LandPlot, pos modelpkg.Vec3i) *modelpkg.LandPlot {
	for _, id := range SortedPlotIDs(plots) {
		if p := plots[id]; p != nil && p.Contains(pos) {
			return p
		}
	}
	return nil
}

func PlotOwnedBy(plots map[string]*modelpkg.LandPlot, owner string) *modelpkg.LandPlot {
	if owner == "" {
		return nil
	}
	for _, id := range SortedPlotIDs(plots) {
		if p := plots[id]; p != nil && p.Owner == owner {
			return p
		}
	}
	return nil
}

func SortedPlotIDs(plots map[string]*modelpkg.LandPlot) []string {
	ids := make([]string, 0, len(plots))
	for id, p := range plots {
		if p == nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func ValidateClaim(alreadyOwns bool, conflictID string, balance, cost int64) (bool, string, string) {
	if alreadyOwns {
		return false, protocol.ErrConflict, "you already own a plot"
	}
	if conflictID != "" {
		return false, protocol.ErrConflict, "too close to plot " + conflictID
	}
	if balance < cost {
		return false, protocol.ErrNoResource, fmt.Sprintf("claiming costs %d", cost)
	}
	return true, "", ""
}

func ValidateGuestAdd(owner, target string, alreadyGuest, targetIsAdmin bool) (bool, string, string) {
	if target == "" {
		return false, protocol.ErrBadRequest, "missing target"
	}
	if target == owner {
		return false, protocol.ErrBadRequest, "cannot add yourself"
	}
	if alreadyGuest {
		return false, protocol.ErrConflict, "already a guest"
	}
	if targetIsAdmin {
		return false, protocol.ErrBadRequest, "admins already have access"
	}
	return true, "", ""
}
