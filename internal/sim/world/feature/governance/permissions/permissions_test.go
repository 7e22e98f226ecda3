package permissions

import (
	"testing"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

const day = int64(24 * 60 * 60 * 1000)

func testPlot(owner string, rentExpires int64) *modelpkg.LandPlot {
	p := &modelpkg.LandPlot{PlotID: "P000001", Owner: owner, Radius: 25, RentExpiresAt: rentExpires}
	p.InitDefaults()
	return p
}

func testZone(flags modelpkg.ZoneFlags) *modelpkg.Zone {
	return &modelpkg.Zone{
		ZoneID: "Z000001",
		Name:   "Spawn",
		Min:    modelpkg.Vec3i{X: -10, Y: -64, Z: -10},
		Max:    modelpkg.Vec3i{X: 10, Y: 320, Z: 10},
		Flags:  flags,
	}
}

var bunker = Bunker{HalfWidth: 7, DepthY: -52}

func TestCanMutate_AdminBypassesEverything(t *testing.T) {
	v := CanMutate(Input{
		Actor:        "root",
		ActorIsAdmin: true,
		Kind:         MutPlace,
		Zone:         testZone(modelpkg.DefaultZoneFlags()),
		Plot:         testPlot("alice", 10*day),
		NowMs:        day,
	})
	if !v.Allowed || v.Reason != ReasonAdmin {
		t.Fatalf("admin verdict: %+v", v)
	}
}

func TestCanMutate_ZoneOverridesOwnPlot(t *testing.T) {
	now := day
	plot := testPlot("alice", now+7*day)
	zone := testZone(modelpkg.DefaultZoneFlags())
	for _, kind := range []Mutation{MutBreak, MutPlace, MutInteract} {
		v := CanMutate(Input{Actor: "alice", Kind: kind, Block: "minecraft:stone", Zone: zone, Plot: plot, NowMs: now})
		if v.Allowed {
			t.Fatalf("%s in zone should be denied even for the plot owner: %+v", kind, v)
		}
		if v.ZoneName != "Spawn" || DeniedNotice(v) != "Protected: Spawn" {
			t.Fatalf("unexpected zone verdict: %+v notice=%q", v, DeniedNotice(v))
		}
	}
}

func TestCanMutate_ZoneCategoryExceptions(t *testing.T) {
	flags := modelpkg.DefaultZoneFlags()
	flags.UseDoors = true
	flags.OpenContainers = false
	zone := testZone(flags)

	cases := []struct {
		kind  Mutation
		block string
		want  bool
	}{
		{MutInteract, "minecraft:oak_door", true},
		{MutBreak, "minecraft:stone_button", true},
		{MutPlace, "minecraft:oak_door", false},
		{MutInteract, "minecraft:chest", false},
		{MutInteract, "minecraft:crafting_table", false},
	}
	for _, tc := range cases {
		v := CanMutate(Input{Actor: "bob", Kind: tc.kind, Block: tc.block, Zone: zone})
		if v.Allowed != tc.want {
			t.Fatalf("%s %s: got %+v want allowed=%v", tc.kind, tc.block, v, tc.want)
		}
	}

	zone.Flags.OpenContainers = true
	if v := CanMutate(Input{Actor: "bob", Kind: MutInteract, Block: "minecraft:barrel", Zone: zone}); !v.Allowed || v.Reason != ReasonZoneContainer {
		t.Fatalf("container flag: %+v", v)
	}
}

func TestCanMutate_OpenGroundAllowed(t *testing.T) {
	if v := CanMutate(Input{Actor: "bob", Kind: MutBreak}); !v.Allowed || v.Reason != ReasonOpen {
		t.Fatalf("open ground: %+v", v)
	}
}

func TestCanMutate_PlotOwnerGuestStranger(t *testing.T) {
	now := day
	plot := testPlot("alice", now+7*day)
	plot.Guests["carol"] = true

	if v := CanMutate(Input{Actor: "alice", Kind: MutPlace, Plot: plot, NowMs: now}); !v.Allowed || v.Reason != ReasonOwner {
		t.Fatalf("owner: %+v", v)
	}
	if v := CanMutate(Input{Actor: "carol", Kind: MutBreak, Plot: plot, NowMs: now}); !v.Allowed || v.Reason != ReasonGuest {
		t.Fatalf("guest: %+v", v)
	}
	v := CanMutate(Input{Actor: "bob", Kind: MutBreak, Plot: plot, NowMs: now})
	if v.Allowed || v.Owner != "alice" {
		t.Fatalf("stranger: %+v", v)
	}
	if got := DeniedNotice(v); got != "OWNED BY: ALICE" {
		t.Fatalf("notice=%q", got)
	}
}

func TestCanMutate_RentLapseOpensPlot(t *testing.T) {
	expiry := 8 * day
	plot := testPlot("alice", expiry)

	if v := CanMutate(Input{Actor: "bob", Kind: MutBreak, Plot: plot, NowMs: expiry}); v.Allowed {
		t.Fatalf("at expiry the plot is still protected: %+v", v)
	}
	v := CanMutate(Input{Actor: "bob", Kind: MutBreak, Plot: plot, NowMs: expiry + 1})
	if !v.Allowed || v.Reason != ReasonRentLapsed {
		t.Fatalf("after expiry: %+v", v)
	}
}

func TestCanMutate_ClanBunker(t *testing.T) {
	now := day
	plot := testPlot("alice", now+7*day)
	clan := &modelpkg.Clan{ClanID: "C000001", Leader: "alice", Base: modelpkg.Vec3i{X: 0, Y: -58, Z: 0}}
	clan.InitDefaults()

	in := Input{
		Actor:       "dave",
		ActorClanID: "C000001",
		Kind:        MutBreak,
		Plot:        plot,
		OwnerClan:   clan,
		NowMs:       now,
		Bunker:      bunker,
	}

	in.Pos = modelpkg.Vec3i{X: 7, Y: -52, Z: -7}
	if v := CanMutate(in); !v.Allowed || v.Reason != ReasonBunker {
		t.Fatalf("bunker corner: %+v", v)
	}
	in.Pos = modelpkg.Vec3i{X: 7, Y: -51, Z: 0}
	if v := CanMutate(in); v.Allowed {
		t.Fatalf("above depth threshold should be denied: %+v", v)
	}
	in.Pos = modelpkg.Vec3i{X: 8, Y: -55, Z: 0}
	if v := CanMutate(in); v.Allowed {
		t.Fatalf("outside bunker square should be denied: %+v", v)
	}
	in.Pos = modelpkg.Vec3i{X: 0, Y: -55, Z: 0}
	in.ActorClanID = "C000002"
	if v := CanMutate(in); v.Allowed {
		t.Fatalf("other clan should be denied: %+v", v)
	}
	in.ActorClanID = ""
	if v := CanMutate(in); v.Allowed {
		t.Fatalf("clanless actor should be denied: %+v", v)
	}
}

func TestCanMutate_PlotBoundary(t *testing.T) {
	now := day
	plot := testPlot("alice", now+7*day)
	inside := modelpkg.Vec3i{X: 24, Y: 64, Z: 0}
	outside := modelpkg.Vec3i{X: 26, Y: 64, Z: 0}
	if !plot.Contains(inside) || plot.Contains(outside) {
		t.Fatalf("containment mismatch")
	}
	if v := CanMutate(Input{Actor: "bob", Kind: MutBreak, Pos: inside, Plot: plot, NowMs: now}); v.Allowed {
		t.Fatalf("inside plot should be denied: %+v", v)
	}
	if v := CanMutate(Input{Actor: "bob", Kind: MutBreak, Pos: outside, NowMs: now}); !v.Allowed {
		t.Fatalf("outside plot should be allowed: %+v", v)
	}
}
