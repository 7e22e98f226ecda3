package world

import (
	"context"
	"sort"
	"time"

	"voxelkeep.ai/internal/persistence/snapshot"
)

// dirtySet tracks records touched since the last successful commit. A key
// whose record no longer exists is committed as a delete.
type dirtySet struct {
	players    map[string]bool
	clans      map[string]bool
	plots      map[string]bool
	sales      map[string]bool
	invites    map[string]bool
	vars       map[string]bool
	zones      bool
	warps      bool
	globalMute bool
	counters   bool
}

func newDirtySet() dirtySet {
	return dirtySet{
		players: map[string]bool{},
		clans:   map[string]bool{},
		plots:   map[string]bool{},
		sales:   map[string]bool{},
		invites: map[string]bool{},
		vars:    map[string]bool{},
	}
}

func (w *World) markPlayer(name string) { w.dirty.players[name] = true }
func (w *World) markClan(id string)     { w.dirty.clans[id] = true }
func (w *World) markPlot(id string)     { w.dirty.plots[id] = true }
func (w *World) markSale(buyer string)  { w.dirty.sales[buyer] = true }
func (w *World) markInvite(name string) { w.dirty.invites[name] = true }
func (w *World) markZones()             { w.dirty.zones = true }
func (w *World) markWarps()             { w.dirty.warps = true }
func (w *World) markCounters()          { w.dirty.counters = true }

func (w *World) buildChangeset(nowTick uint64) snapshot.Changeset {
	cs := snapshot.Changeset{Tick: nowTick, NowMs: w.nowMs}
	for _, name := range sortedKeys(w.dirty.players) {
		p := w.players[name]
		if p == nil {
			continue
		}
		cs.Players = append(cs.Players, playerToV1(p))
		if cs.Balances == nil {
			cs.Balances = map[string]int64{}
		}
		cs.Balances[name] = p.Balance
	}
	for _, id := range sortedKeys(w.dirty.clans) {
		if c := w.clans[id]; c != nil {
			cs.Clans = append(cs.Clans, clanToV1(c))
		} else {
			cs.DeletedClans = append(cs.DeletedClans, id)
		}
	}
	for _, id := range sortedKeys(w.dirty.plots) {
		if lp := w.plots[id]; lp != nil {
			cs.Plots = append(cs.Plots, plotToV1(lp))
		} else {
			cs.DeletedPlots = append(cs.DeletedPlots, id)
		}
	}
	for _, buyer := range sortedKeys(w.dirty.sales) {
		if s := w.sales[buyer]; s != nil {
			cs.Sales = append(cs.Sales, saleToV1(s))
		} else {
			cs.DeletedSales = append(cs.DeletedSales, buyer)
		}
	}
	for _, name := range sortedKeys(w.dirty.invites) {
		if inv, ok := w.invites[name]; ok {
			cs.Invites = append(cs.Invites, inviteToV1(name, inv))
		} else {
			cs.DeletedInvites = append(cs.DeletedInvites, name)
		}
	}
	for _, k := range sortedKeys(w.dirty.vars) {
		if v, ok := w.vars[k]; ok {
			if cs.Vars == nil {
				cs.Vars = map[string]int64{}
			}
			cs.Vars[k] = v
		} else {
			cs.DeletedVars = append(cs.DeletedVars, k)
		}
	}
	if w.dirty.zones {
		cs.Zones = make([]snapshot.ZoneV1, 0, len(w.zones))
		for _, z := range w.zones {
			cs.Zones = append(cs.Zones, zoneToV1(z))
		}
	}
	if w.dirty.warps {
		cs.Warps = make([]snapshot.WaypointV1, 0, len(w.warps))
		for _, wp := range w.warps {
			cs.Warps = append(cs.Warps, waypointToV1(wp))
		}
	}
	if w.dirty.globalMute {
		m := w.globalMute
		cs.GlobalMute = &m
	}
	if w.dirty.counters {
		c := w.countersV1()
		cs.Counters = &c
	}
	return cs
}

// commit writes this tick's changes. On failure the dirty set is kept and
// merged into the next tick's changeset.
func (w *World) commit(nowTick uint64) {
	cs := w.buildChangeset(nowTick)
	if cs.Empty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.repo.Commit(ctx, cs); err != nil {
		w.counters.commitErrors++
		w.logf("commit tick=%d: %v", nowTick, err)
		return
	}
	w.counters.commits++
	w.dirty = newDirtySet()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
