package world

import (
	"encoding/json"
	"testing"
	"time"

	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/tuning"
)

type testClock struct{ ms int64 }

func (c *testClock) now() time.Time          { return time.UnixMilli(c.ms) }
func (c *testClock) advance(d time.Duration) { c.ms += d.Milliseconds() }

func newTestWorld(t *testing.T) (*World, *testClock) {
	t.Helper()
	clk := &testClock{ms: 1_700_000_000_000}
	w, err := New(WorldConfig{ID: "test", Tuning: tuning.Defaults(), Clock: clk.now})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w, clk
}

func joinTest(t *testing.T, w *World, name string, admin bool) *Player {
	t.Helper()
	w.nowMs = w.clock().UnixMilli()
	resp := w.joinPlayer(JoinRequest{Name: name, Admin: admin, Out: make(chan []byte, 64)}, w.CurrentTick())
	if resp.Err != "" {
		t.Fatalf("join %s: %s", name, resp.Err)
	}
	p := w.players[name]
	p.TakeEvents()
	return p
}

// do applies one instant and returns its ACTION_RESULT plus every event queued for p.
func do(w *World, p *Player, inst protocol.InstantReq) (protocol.Event, []protocol.Event) {
	w.nowMs = w.clock().UnixMilli()
	if inst.ID == "" {
		inst.ID = "i1"
	}
	w.applyInstant(p, inst, w.CurrentTick())
	evs := p.TakeEvents()
	var res protocol.Event
	for _, e := range evs {
		if e["type"] == "ACTION_RESULT" && e["ref"] == inst.ID {
			res = e
		}
	}
	return res, evs
}

func mustOK(t *testing.T, w *World, p *Player, inst protocol.InstantReq) protocol.Event {
	t.Helper()
	res, _ := do(w, p, inst)
	if res == nil || res["ok"] != true {
		t.Fatalf("%s by %s: expected ok, got %v", inst.Type, p.Name, res)
	}
	return res
}

func mustFail(t *testing.T, w *World, p *Player, inst protocol.InstantReq, code string) protocol.Event {
	t.Helper()
	res, _ := do(w, p, inst)
	if res == nil || res["ok"] != false || res["code"] != code {
		t.Fatalf("%s by %s: expected %s, got %v", inst.Type, p.Name, code, res)
	}
	return res
}

func findEvent(evs []protocol.Event, typ string) protocol.Event {
	for _, e := range evs {
		if e["type"] == typ {
			return e
		}
	}
	return nil
}

func moveTo(t *testing.T, w *World, p *Player, x, y, z int) {
	t.Helper()
	res, _ := do(w, p, protocol.InstantReq{Type: protocol.InstantMove, Pos: &[3]int{x, y, z}})
	if res != nil {
		t.Fatalf("move: %v", res)
	}
}

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }

// drainStatus decodes every STATUS frame queued on out.
func drainStatus(t *testing.T, out chan []byte) []protocol.StatusMsg {
	t.Helper()
	var frames []protocol.StatusMsg
	for {
		select {
		case b := <-out:
			var st protocol.StatusMsg
			if err := json.Unmarshal(b, &st); err != nil {
				t.Fatalf("decode status: %v", err)
			}
			frames = append(frames, st)
		default:
			return frames
		}
	}
}
