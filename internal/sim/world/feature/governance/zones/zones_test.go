package zones

import (
	"testing"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func TestNormalize(t *testing.T) {
	min, max := Normalize(modelpkg.Vec3i{X: 10, Y: -5, Z: 3}, modelpkg.Vec3i{X: -2, Y: 70, Z: -9})
	if min != (modelpkg.Vec3i{X: -2, Y: -5, Z: -9}) || max != (modelpkg.Vec3i{X: 10, Y: 70, Z: 3}) {
		t.Fatalf("unexpected bounds min=%+v max=%+v", min, max)
	}
}

func TestZoneAt_FirstRegisteredWins(t *testing.T) {
	a := &modelpkg.Zone{ZoneID: "Z000001", Name: "Spawn", Min: modelpkg.Vec3i{X: 0, Y: 0, Z: 0}, Max: modelpkg.Vec3i{X: 10, Y: 10, Z: 10}}
	b := &modelpkg.Zone{ZoneID: "Z000002", Name: "Market", Min: modelpkg.Vec3i{X: 5, Y: 0, Z: 5}, Max: modelpkg.Vec3i{X: 20, Y: 10, Z: 20}}
	zs := []*modelpkg.Zone{a, b}
	if z := ZoneAt(zs, modelpkg.Vec3i{X: 7, Y: 5, Z: 7}); z != a {
		t.Fatalf("expected first zone in overlap, got %+v", z)
	}
	if z := ZoneAt(zs, modelpkg.Vec3i{X: 15, Y: 10, Z: 15}); z != b {
		t.Fatalf("expected inclusive max bound in second zone")
	}
	if z := ZoneAt(zs, modelpkg.Vec3i{X: 15, Y: 11, Z: 15}); z != nil {
		t.Fatalf("y above max must be outside")
	}
	if IndexOf(zs, "Z000002") != 1 || IndexOf(zs, "Z999999") != -1 {
		t.Fatalf("IndexOf mismatch")
	}
}

func TestApplyFlags(t *testing.T) {
	f, err := ApplyFlags(modelpkg.DefaultZoneFlags(), map[string]bool{"pvp": true, "use_doors": false})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !f.PvP || f.UseDoors || !f.ClanEffects || !f.ShowBorder || f.OpenContainers {
		t.Fatalf("unexpected flags: %+v", f)
	}
	if _, err := ApplyFlags(f, map[string]bool{"fly": true}); err == nil {
		t.Fatalf("expected unknown flag error")
	}
	if m := FlagMap(modelpkg.DefaultZoneFlags()); len(m) != 7 || !m[FlagUseDoors] || m[FlagPvP] {
		t.Fatalf("unexpected default flag map: %#v", m)
	}
}

func TestCategorize(t *testing.T) {
	cases := map[string]BlockCategory{
		"minecraft:oak_door":                      BlockDoor,
		"minecraft:spruce_trapdoor":               BlockDoor,
		"minecraft:stone_button":                  BlockDoor,
		"minecraft:lever":                         BlockDoor,
		"minecraft:light_weighted_pressure_plate": BlockDoor,
		"minecraft:fence_gate":                    BlockDoor,
		"minecraft:chest":                         BlockContainer,
		"minecraft:trapped_chest":                 BlockContainer,
		"minecraft:red_shulker_box":               BlockContainer,
		"minecraft:barrel":                        BlockContainer,
		"minecraft:hopper":                        BlockContainer,
		"minecraft:stone":                         BlockOther,
	}
	for id, want := range cases {
		if got := Categorize(id); got != want {
			t.Fatalf("Categorize(%q)=%v want %v", id, got, want)
		}
	}
}

func TestShouldDespawn(t *testing.T) {
	z := &modelpkg.Zone{Flags: modelpkg.DefaultZoneFlags()}
	if !ShouldDespawn(z, "minecraft:zombie_villager", false) {
		t.Fatalf("hostile mob should despawn in default zone")
	}
	if !ShouldDespawn(z, "minecraft:cow", false) {
		t.Fatalf("passive mob should despawn in default zone")
	}
	if ShouldDespawn(z, "minecraft:zombie", true) {
		t.Fatalf("named mobs are kept")
	}
	if ShouldDespawn(z, "minecraft:villager_v2", false) {
		t.Fatalf("unlisted mob is kept")
	}
	z.Flags.HostileMobs = true
	if ShouldDespawn(z, "minecraft:creeper", false) {
		t.Fatalf("hostile allowed by flag")
	}
	if ShouldDespawn(nil, "minecraft:creeper", false) {
		t.Fatalf("no zone, no despawn")
	}
}
