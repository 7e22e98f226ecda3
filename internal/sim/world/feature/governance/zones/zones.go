package zones

import (
	"fmt"
	"strings"

	"voxelkeep.ai/internal/protocol"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func ZoneID(n uint64) string { return fmt.Sprintf("Z%06d", n) }

// Normalize turns two arbitrary corners into inclusive min/max bounds.
func Normalize(a, b modelpkg.Vec3i) (lo, hi modelpkg.Vec3i) {
	lo = modelpkg.Vec3i{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
	hi = modelpkg.Vec3i{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
	return lo, hi
}

// ZoneAt returns the first zone in registration order that contains pos.
// Overlapping zones are not rejected; the earlier one wins.
func ZoneAt(zones []*modelpkg.Zone, pos modelpkg.Vec3i) *modelpkg.Zone {
	for _, z := range zones {
		if z != nil && z.Contains(pos) {
			return z
		}
	}
	return nil
}

func IndexOf(zones []*modelpkg.Zone, zoneID string) int {
	for i, z := range zones {
		if z != nil && z.ZoneID == zoneID {
			return i
		}
	}
	return -1
}

// Flag keys accepted in ZONE_CREATE / ZONE_EDIT.
const (
	FlagPvP            = "pvp"
	FlagOpenContainers = "open_containers"
	FlagUseDoors       = "use_doors"
	FlagClanEffects    = "clan_effects"
	FlagHostileMobs    = "hostile_mobs"
	FlagPassiveMobs    = "passive_mobs"
	FlagShowBorder     = "show_border"
)

// ApplyFlags overlays a partial flag map on base. Unknown keys are an error.
func ApplyFlags(base modelpkg.ZoneFlags, m map[string]bool) (modelpkg.ZoneFlags, error) {
	out := base
	for k, v := range m {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case FlagPvP:
			out.PvP = v
		case FlagOpenContainers:
			out.OpenContainers = v
		case FlagUseDoors:
			out.UseDoors = v
		case FlagClanEffects:
			out.ClanEffects = v
		case FlagHostileMobs:
			out.HostileMobs = v
		case FlagPassiveMobs:
			out.PassiveMobs = v
		case FlagShowBorder:
			out.ShowBorder = v
		default:
			return base, fmt.Errorf("unknown zone flag %q", k)
		}
	}
	return out, nil
}

func FlagMap(f modelpkg.ZoneFlags) map[string]bool {
	return map[string]bool{
		FlagPvP:            f.PvP,
		FlagOpenContainers: f.OpenContainers,
		FlagUseDoors:       f.UseDoors,
		FlagClanEffects:    f.ClanEffects,
		FlagHostileMobs:    f.HostileMobs,
		FlagPassiveMobs:    f.PassiveMobs,
		FlagShowBorder:     f.ShowBorder,
	}
}

func ValidateZoneName(name string) (bool, string, string) {
	n := strings.TrimSpace(name)
	if n == "" {
		return false, protocol.ErrBadRequest, "zone name required"
	}
	if len(n) > 32 {
		return false, protocol.ErrBadRequest, "zone name too long"
	}
	return true, "", ""
}

type BlockCategory int

const (
	BlockOther BlockCategory = iota
	BlockDoor
	BlockContainer
)

var doorLike = []string{"door", "button", "lever", "pressure_plate", "gate"}
var containerLike = []string{"chest", "shulker", "barrel", "hopper", "dropper", "dispenser"}

// Categorize classifies a block id by substring, e.g. "minecraft:oak_trapdoor" is door-like.
func Categorize(blockID string) BlockCategory {
	id := strings.ToLower(blockID)
	for _, s := range doorLike {
		if strings.Contains(id, s) {
			return BlockDoor
		}
	}
	for _, s := range containerLike {
		if strings.Contains(id, s) {
			return BlockContainer
		}
	}
	return BlockOther
}

var hostileMobs = []string{
	"zombie", "skeleton", "creeper", "spider", "phantom", "blaze", "slime", "witch",
	"drowned", "husk", "pillager", "ravager", "hoglin", "zoglin", "piglin", "ghast",
	"magma", "enderman", "vex", "vindicator", "evoker", "shulker", "wither", "warden",
}

var passiveMobs = []string{
	"cow", "pig", "sheep", "chicken", "horse", "donkey", "mule", "llama",
	"goat", "rabbit", "fox", "panda",
}

func IsHostileMob(mobID string) bool { return containsAny(strings.ToLower(mobID), hostileMobs) }
func IsPassiveMob(mobID string) bool { return containsAny(strings.ToLower(mobID), passiveMobs) }

// ShouldDespawn reports whether a mob inside z must be removed. Named mobs are kept.
func ShouldDespawn(z *modelpkg.Zone, mobID string, named bool) bool {
	if z == nil || named {
		return false
	}
	if !z.Flags.HostileMobs && IsHostileMob(mobID) {
		return true
	}
	if !z.Flags.PassiveMobs && IsPassiveMob(mobID) {
		return true
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
