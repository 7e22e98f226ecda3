package world

import (
	"context"
	"time"

	"voxelkeep.ai/internal/sim/tuning"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tun.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(w.done)

	var pendingActions []ActionEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingAdmin []adminReq
	var pendingSnap []adminSnapshotReq
	var pendingTuning []tuning.Tuning

	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case <-w.stop:
			w.flush()
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case sessionID := <-w.leave:
			pendingLeaves = append(pendingLeaves, sessionID)
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case req := <-w.adminSnap:
			pendingSnap = append(pendingSnap, req)
		case t := <-w.tuningReload:
			pendingTuning = append(pendingTuning, t)
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			w.stepInternal(pendingTuning, pendingJoins, pendingLeaves, pendingActions, pendingAdmin)
			w.handleAdminSnapshotRequests(pendingSnap)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingActions = pendingActions[:0]
			pendingAdmin = pendingAdmin[:0]
			pendingSnap = pendingSnap[:0]
			pendingTuning = pendingTuning[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) step(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	w.stepInternal(nil, joins, leaves, actions, nil)
}

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, actions []ActionEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.step(joins, leaves, actions)
	return tick, w.stateDigest(tick)
}

// flush commits anything left dirty when the loop exits.
func (w *World) flush() {
	if w.repo == nil {
		return
	}
	w.commit(w.tick.Load())
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
