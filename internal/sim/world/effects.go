package world

import "voxelkeep.ai/internal/protocol"

const (
	effectSourceClan   = "clan"
	effectSourceZone   = "zone"
	effectSourceBunker = "bunker"
)

// effectsFor lists the status effects the host should keep applied to p.
// An effect id appears at most once; the first source wins.
func (w *World) effectsFor(p *Player) []protocol.EffectObs {
	out := []protocol.EffectObs{}
	seen := map[string]bool{}
	add := func(id string, amp int, src string) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, protocol.EffectObs{Effect: id, Amplifier: amp, Source: src})
	}

	c := w.clanOf(p.Name)
	z := w.zoneAt(p.Pos)

	if z != nil && !z.Flags.PvP {
		add("resistance", 255, effectSourceZone)
		if !w.isAdmin(p) {
			add("weakness", 255, effectSourceZone)
		}
	}
	if c != nil && c.EffectRentActive(w.nowMs) && (z == nil || z.Flags.ClanEffects) {
		for _, e := range w.tun.Effects {
			if !c.UnlockedEffects[e.ID] {
				continue
			}
			if on, set := p.EffectToggles[e.ID]; set && !on {
				continue
			}
			add(e.ID, e.Amplifier, effectSourceClan)
		}
	}
	if c != nil && w.nearBunker(c, p.Pos) {
		add("night_vision", 0, effectSourceBunker)
	}
	return out
}

// nearBunker is the box around the clan base where bunker night vision applies.
func (w *World) nearBunker(c *Clan, pos Vec3i) bool {
	hw := w.tun.Land.BunkerHalfWidth
	dx := pos.X - c.Base.X
	dz := pos.Z - c.Base.Z
	dy := pos.Y - c.Base.Y
	return dx >= -hw && dx <= hw && dz >= -hw && dz <= hw && dy >= -2 && dy <= 6
}
