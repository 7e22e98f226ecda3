package world

import (
	"fmt"
	"time"
)

// Replay steps one logged tick for offline verification and returns the
// resulting state digest. The tick counter jumps forward to entry.Tick and
// the clock is pinned to entry.NowMs. Call only when the loop is not running.
func (w *World) Replay(entry TickLogEntry) (string, error) {
	cur := w.tick.Load()
	if entry.Tick < cur {
		return "", fmt.Errorf("replay: tick %d already stepped (at %d)", entry.Tick, cur)
	}
	w.tick.Store(entry.Tick)
	nowMs := entry.NowMs
	w.clock = func() time.Time { return time.UnixMilli(nowMs) }

	joins := make([]JoinRequest, 0, len(entry.Joins))
	for _, j := range entry.Joins {
		joins = append(joins, JoinRequest{Name: j.Player, Admin: j.Admin, Out: make(chan []byte, 1)})
	}
	// The log names players; the step wants session ids.
	leaves := make([]string, 0, len(entry.Leaves))
	for _, name := range entry.Leaves {
		if cl := w.clients[name]; cl != nil {
			leaves = append(leaves, cl.SessionID)
		}
	}
	acts := make([]ActionEnvelope, 0, len(entry.Actions))
	for _, ra := range entry.Actions {
		acts = append(acts, ActionEnvelope{Player: ra.Player, Act: ra.Act})
	}
	admin := make([]adminReq, 0, len(entry.Admin))
	for _, r := range entry.Admin {
		admin = append(admin, adminReq{Req: r})
	}

	w.stepInternal(nil, joins, leaves, acts, admin)
	return w.stateDigest(entry.Tick), nil
}
