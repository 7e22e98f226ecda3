package worldtest

import (
	"testing"
	"time"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/tuning"
)

func richTuning() tuning.Tuning {
	t := tuning.Defaults()
	t.Economy.StartingBalance = 1_000_000
	return t
}

// playScript drives a fixed session through land, clan and trade flows and
// returns the digest of every step.
func playScript(h *Harness) []string {
	h.Join("alice", false)
	h.Join("bob", false)
	var ds []string
	ds = append(ds, h.Act("alice",
		protocol.InstantReq{ID: "mv", Type: protocol.InstantMove, Pos: &[3]int{0, 64, 0}},
		protocol.InstantReq{ID: "claim", Type: protocol.InstantLandClaim},
	))
	ds = append(ds, h.Act("alice", protocol.InstantReq{ID: "clan", Type: protocol.InstantClanCreate, Name: "Builders", Color: "red"}))
	ds = append(ds, h.Act("alice", protocol.InstantReq{ID: "inv", Type: protocol.InstantInventorySync, Inventory: []protocol.ItemStack{{Item: "diamond", Count: 5}}}))
	ds = append(ds, h.Act("alice", protocol.InstantReq{ID: "offer", Type: protocol.InstantTradeOffer, Target: "bob", Item: "diamond", Count: 2, Price: 300}))
	ds = append(ds, h.Act("bob", protocol.InstantReq{ID: "accept", Type: protocol.InstantTradeAccept}))
	h.Clock.Advance(time.Hour)
	for i := 0; i < 5; i++ {
		ds = append(ds, h.Step())
	}
	return ds
}

func TestDeterminism_SameInputsSameDigests(t *testing.T) {
	h1 := NewHarness(t, richTuning())
	h2 := NewHarness(t, richTuning())
	d1 := playScript(h1)
	d2 := playScript(h2)
	if len(d1) != len(d2) {
		t.Fatalf("length mismatch: %d vs %d", len(d1), len(d2))
	}
	for i := range d1 {
		if d1[i] == "" || d1[i] != d2[i] {
			t.Fatalf("digest mismatch at step %d: %q vs %q", i, d1[i], d2[i])
		}
	}
	for _, ref := range []string{"claim", "clan", "inv", "offer"} {
		h1.MustOK("alice", ref)
	}
	h1.MustOK("bob", "accept")
	if h1.Event("alice", "TRADE_COMPLETED") == nil {
		t.Fatalf("seller should be told the trade completed")
	}
}

func TestDeterminism_DivergentInputChangesDigest(t *testing.T) {
	h1 := NewHarness(t, richTuning())
	h2 := NewHarness(t, richTuning())
	h1.Join("alice", false)
	h2.Join("alice", false)
	a := h1.Act("alice", protocol.InstantReq{ID: "mv", Type: protocol.InstantMove, Pos: &[3]int{1, 64, 1}})
	b := h2.Act("alice", protocol.InstantReq{ID: "mv", Type: protocol.InstantMove, Pos: &[3]int{2, 64, 1}})
	if a == b {
		t.Fatalf("different positions must give different digests")
	}
}
