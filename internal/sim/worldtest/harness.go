package worldtest

import (
	"encoding/json"
	"testing"
	"time"

	"voxelkeep.ai/internal/persistence/snapshot"
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/tuning"
	world "voxelkeep.ai/internal/sim/world"
)

// Clock is a manual wall clock for rent, escrow and cooldown windows.
type Clock struct{ ms int64 }

func NewClock() *Clock { return &Clock{ms: 1_700_000_000_000} }

func (c *Clock) Now() time.Time          { return time.UnixMilli(c.ms) }
func (c *Clock) Advance(d time.Duration) { c.ms += d.Milliseconds() }

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Join() issues JoinRequest via StepOnce()
// - Act()/Step() issue ACT via StepOnce()
// - STATUS frames are drained after every step and their events kept per player
//
// It avoids world internals so tests can live outside the world package.
type Harness struct {
	T     *testing.T
	W     *world.World
	Clock *Clock

	sessions map[string]*session
}

type session struct {
	Player    string
	SessionID string
	Out       chan []byte
	last      protocol.StatusMsg
	events    []protocol.Event
}

func NewHarness(t *testing.T, tune tuning.Tuning) *Harness {
	t.Helper()
	clk := NewClock()
	w, err := world.New(world.WorldConfig{ID: "test", Tuning: tune, Clock: clk.Now})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w, clk)
}

// NewHarnessWithWorld wraps an already-constructed world, e.g. one that had a
// snapshot imported before anyone joined.
func NewHarnessWithWorld(t *testing.T, w *world.World, clk *Clock) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	return &Harness{T: t, W: w, Clock: clk, sessions: map[string]*session{}}
}

// Join steps one tick with a join and returns the WELCOME.
func (h *Harness) Join(name string, admin bool) protocol.WelcomeMsg {
	h.T.Helper()
	out := make(chan []byte, 64)
	resp := make(chan world.JoinResponse, 1)
	_, _ = h.W.StepOnce([]world.JoinRequest{{Name: name, Admin: admin, Out: out, Resp: resp}}, nil, nil)
	jr := <-resp
	if jr.Err != "" {
		h.T.Fatalf("join %s: %s", name, jr.Err)
	}
	s := &session{Player: jr.Welcome.PlayerName, SessionID: jr.Welcome.SessionID, Out: out}
	h.sessions[s.Player] = s
	h.drainAll()
	return jr.Welcome
}

func (h *Harness) Leave(name string) {
	h.T.Helper()
	s := h.session(name)
	_, _ = h.W.StepOnce(nil, []string{s.SessionID}, nil)
	delete(h.sessions, name)
	h.drainAll()
}

// Act steps one tick with the given instants from one player and returns
// the digest of that tick.
func (h *Harness) Act(name string, instants ...protocol.InstantReq) string {
	h.T.Helper()
	h.session(name)
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            h.W.CurrentTick(),
		Player:          name,
		Instants:        instants,
	}
	_, d := h.W.StepOnce(nil, nil, []world.ActionEnvelope{{Player: name, Act: act}})
	h.drainAll()
	return d
}

func (h *Harness) Step() string {
	h.T.Helper()
	_, d := h.W.StepOnce(nil, nil, nil)
	h.drainAll()
	return d
}

// Result finds the ACTION_RESULT for ref among everything name has received.
func (h *Harness) Result(name, ref string) protocol.Event {
	h.T.Helper()
	for _, e := range h.session(name).events {
		if e["type"] == "ACTION_RESULT" && e["ref"] == ref {
			return e
		}
	}
	return nil
}

func (h *Harness) MustOK(name, ref string) protocol.Event {
	h.T.Helper()
	e := h.Result(name, ref)
	if e == nil || e["ok"] != true {
		h.T.Fatalf("%s %s: expected ok, got %v", name, ref, e)
	}
	return e
}

// Event returns the last event of type typ name has received.
func (h *Harness) Event(name, typ string) protocol.Event {
	h.T.Helper()
	evs := h.session(name).events
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i]["type"] == typ {
			return evs[i]
		}
	}
	return nil
}

func (h *Harness) LastStatus(name string) protocol.StatusMsg {
	h.T.Helper()
	return h.session(name).last
}

func (h *Harness) Snapshot() (tick uint64, snap snapshot.SnapshotV1) {
	h.T.Helper()
	// Export at currentTick-1 so an import restores to currentTick.
	cur := h.W.CurrentTick()
	if cur == 0 {
		return 0, h.W.ExportSnapshot(0)
	}
	tick = cur - 1
	return tick, h.W.ExportSnapshot(tick)
}

func (h *Harness) session(name string) *session {
	h.T.Helper()
	s := h.sessions[name]
	if s == nil {
		h.T.Fatalf("unknown player: %q", name)
	}
	return s
}

func (h *Harness) drainAll() {
	h.T.Helper()
	for _, s := range h.sessions {
		h.drainOne(s)
	}
}

func (h *Harness) drainOne(s *session) {
	h.T.Helper()
	for {
		select {
		case b := <-s.Out:
			var st protocol.StatusMsg
			if err := json.Unmarshal(b, &st); err != nil {
				h.T.Fatalf("unmarshal STATUS: %v", err)
			}
			s.last = st
			s.events = append(s.events, st.Events...)
			continue
		default:
		}
		return
	}
}
