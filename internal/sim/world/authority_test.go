package world

import (
	"testing"
	"time"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/session/hud"
)

func breakAt(x, y, z int, block string) protocol.InstantReq {
	return protocol.InstantReq{Type: protocol.InstantBreakBlock, Pos: &[3]int{x, y, z}, Block: block}
}

func claimAtOrigin(t *testing.T, w *World, owner *Player) *LandPlot {
	t.Helper()
	w.book().SetBalance(owner.Name, 10_000)
	moveTo(t, w, owner, 0, 0, 0)
	res := mustOK(t, w, owner, protocol.InstantReq{Type: protocol.InstantLandClaim})
	lp := w.plots[res["plot_id"].(string)]
	if lp == nil {
		t.Fatalf("plot not stored")
	}
	return lp
}

func TestAuthority_PlotEdgeScenario(t *testing.T) {
	w, clk := newTestWorld(t)
	owner := joinTest(t, w, "owner", false)
	guest := joinTest(t, w, "guest", false)
	stranger := joinTest(t, w, "stranger", false)
	claimAtOrigin(t, w, owner)

	mustOK(t, w, owner, breakAt(24, 64, 0, "minecraft:stone"))
	mustFail(t, w, stranger, breakAt(24, 64, 0, "minecraft:stone"), protocol.ErrBlocked)
	mustFail(t, w, guest, breakAt(24, 64, 0, "minecraft:stone"), protocol.ErrBlocked)

	mustOK(t, w, owner, protocol.InstantReq{Type: protocol.InstantLandGuestAdd, Target: "guest"})
	mustOK(t, w, guest, breakAt(24, 64, 0, "minecraft:stone"))

	// Outside the footprint ownership is irrelevant.
	mustOK(t, w, stranger, breakAt(26, 64, 0, "minecraft:stone"))

	// Rent lapse opens the plot to everyone.
	clk.advance(7*24*time.Hour + time.Millisecond)
	mustOK(t, w, stranger, breakAt(24, 64, 0, "minecraft:stone"))
	res := mustOK(t, w, stranger, breakAt(0, 10, 0, "minecraft:dirt"))
	if res["reason"] != "rent_lapsed" {
		t.Fatalf("reason=%v", res["reason"])
	}
}

func TestAuthority_DenialPausesHUD(t *testing.T) {
	w, _ := newTestWorld(t)
	owner := joinTest(t, w, "owner", false)
	stranger := joinTest(t, w, "stranger", false)
	claimAtOrigin(t, w, owner)

	res, evs := do(w, stranger, breakAt(3, 5, 3, "minecraft:stone"))
	if res["ok"] != false || res["code"] != protocol.ErrBlocked {
		t.Fatalf("expected denial, got %v", res)
	}
	denied := findEvent(evs, "ACCESS_DENIED")
	if denied == nil || denied["message"] != "OWNED BY: OWNER" || denied["owner"] != "owner" {
		t.Fatalf("access denied event=%v", denied)
	}
	if !hud.Paused(stranger, w.nowMs) {
		t.Fatalf("hud should be paused after denial")
	}
	st := w.buildStatus(stranger, w.CurrentTick())
	if st.HUD != nil {
		t.Fatalf("hud lines shown while paused: %v", st.HUD)
	}
	if w.counters.denials != 1 {
		t.Fatalf("denials=%d", w.counters.denials)
	}
}

func TestAuthority_ZoneOverridesOwnPlot(t *testing.T) {
	w, _ := newTestWorld(t)
	admin := joinTest(t, w, "admin", true)
	owner := joinTest(t, w, "owner", false)
	claimAtOrigin(t, w, owner)

	mustOK(t, w, admin, protocol.InstantReq{
		Type: protocol.InstantZoneCreate, Name: "Spawn",
		Pos: &[3]int{10, 100, 10}, Pos2: &[3]int{0, 0, 0},
	})

	res := mustFail(t, w, owner, breakAt(5, 64, 5, "minecraft:stone"), protocol.ErrBlocked)
	if res["message"] != "Protected: Spawn" {
		t.Fatalf("message=%v", res["message"])
	}
	mustFail(t, w, owner, protocol.InstantReq{Type: protocol.InstantPlaceBlock, Pos: &[3]int{5, 64, 5}, Block: "minecraft:stone"}, protocol.ErrBlocked)
	mustFail(t, w, owner, protocol.InstantReq{Type: protocol.InstantInteractBlock, Pos: &[3]int{5, 64, 5}, Block: "minecraft:chest"}, protocol.ErrBlocked)
	mustOK(t, w, owner, protocol.InstantReq{Type: protocol.InstantInteractBlock, Pos: &[3]int{5, 64, 5}, Block: "minecraft:oak_door"})

	// Admins bypass everything.
	mustOK(t, w, admin, protocol.InstantReq{Type: protocol.InstantPlaceBlock, Pos: &[3]int{5, 64, 5}, Block: "minecraft:stone"})

	// Opening containers once the flag allows it.
	zoneID := w.zones[0].ZoneID
	mustOK(t, w, admin, protocol.InstantReq{Type: protocol.InstantZoneEdit, ZoneID: zoneID, Flags: map[string]bool{"open_containers": true}})
	mustOK(t, w, owner, protocol.InstantReq{Type: protocol.InstantInteractBlock, Pos: &[3]int{5, 64, 5}, Block: "minecraft:chest"})

	mustOK(t, w, admin, protocol.InstantReq{Type: protocol.InstantZoneDelete, ZoneID: zoneID})
	mustOK(t, w, owner, breakAt(5, 64, 5, "minecraft:stone"))
}

func TestAuthority_BunkerLetsClanmatesDig(t *testing.T) {
	w, _ := newTestWorld(t)
	leader := joinTest(t, w, "leader", false)
	mate := joinTest(t, w, "mate", false)
	claimAtOrigin(t, w, leader)
	w.book().SetBalance("leader", 10_000)
	mustOK(t, w, leader, protocol.InstantReq{Type: protocol.InstantClanCreate, Name: "Wolves", Color: "red"})
	mustOK(t, w, leader, protocol.InstantReq{Type: protocol.InstantClanInvite, Target: "mate"})
	mustOK(t, w, mate, protocol.InstantReq{Type: protocol.InstantClanInviteAnswer, Accept: boolPtr(true)})

	mustOK(t, w, mate, breakAt(3, -55, -3, "minecraft:deepslate"))
	mustFail(t, w, mate, breakAt(3, 40, -3, "minecraft:stone"), protocol.ErrBlocked)
	mustFail(t, w, mate, breakAt(9, -55, 0, "minecraft:deepslate"), protocol.ErrBlocked)
}

func TestMobSpawn_DespawnInsideZone(t *testing.T) {
	w, _ := newTestWorld(t)
	admin := joinTest(t, w, "admin", true)
	mustOK(t, w, admin, protocol.InstantReq{
		Type: protocol.InstantZoneCreate, Name: "Lobby",
		Pos: &[3]int{-5, 0, -5}, Pos2: &[3]int{5, 100, 5},
		Flags: map[string]bool{"passive_mobs": true},
	})

	res := mustOK(t, w, admin, protocol.InstantReq{Type: protocol.InstantMobSpawn, Mob: "minecraft:zombie", Pos: &[3]int{0, 64, 0}})
	if res["despawn"] != true {
		t.Fatalf("zombie in lobby should despawn: %v", res)
	}
	res = mustOK(t, w, admin, protocol.InstantReq{Type: protocol.InstantMobSpawn, Mob: "minecraft:cow", Pos: &[3]int{0, 64, 0}})
	if res["despawn"] != false {
		t.Fatalf("cow allowed by flag: %v", res)
	}
	res = mustOK(t, w, admin, protocol.InstantReq{Type: protocol.InstantMobSpawn, Mob: "minecraft:zombie", Pos: &[3]int{0, 64, 0}, Named: true})
	if res["despawn"] != false {
		t.Fatalf("named mobs are kept: %v", res)
	}
	res = mustOK(t, w, admin, protocol.InstantReq{Type: protocol.InstantMobSpawn, Mob: "minecraft:zombie", Pos: &[3]int{50, 64, 0}})
	if res["despawn"] != false {
		t.Fatalf("outside zones nothing despawns: %v", res)
	}
}

func TestAuthority_RevokedAdminLosesBypass(t *testing.T) {
	w, _ := newTestWorld(t)
	owner := joinTest(t, w, "owner", false)
	claimAtOrigin(t, w, owner)

	op := joinTest(t, w, "op", true)
	mustOK(t, w, op, breakAt(3, 5, 3, "minecraft:stone"))
	w.handleLeave("op")

	op = joinTest(t, w, "op", false)
	if w.isAdmin(op) {
		t.Fatalf("admin tag kept after a non-admin join")
	}
	mustFail(t, w, op, protocol.InstantReq{Type: protocol.InstantAdminGlobalMute, Enabled: boolPtr(true)}, protocol.ErrNoPermission)
	mustFail(t, w, op, breakAt(3, 5, 3, "minecraft:stone"), protocol.ErrBlocked)
}

func TestAuthority_TuningAdminsSurviveRejoin(t *testing.T) {
	w, _ := newTestWorld(t)
	w.tun.Admins = []string{"root"}
	root := joinTest(t, w, "root", false)
	w.handleLeave("root")
	root = joinTest(t, w, "root", false)
	if !w.isAdmin(root) {
		t.Fatalf("configured admin lost the tag")
	}
}
