package world

import (
	"encoding/json"
	"time"

	"voxelkeep.ai/internal/sim/tuning"
)

func (w *World) stepInternal(reloads []tuning.Tuning, joins []JoinRequest, leaves []string, actions []ActionEnvelope, admin []adminReq) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	w.nowMs = w.clock().UnixMilli()

	for _, t := range reloads {
		w.applyTuning(t)
	}

	// Apply leaves and joins at tick boundary.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, sessionID := range leaves {
		if name := w.sessionOwner(sessionID); name != "" {
			w.handleLeave(name)
			recordedLeaves = append(recordedLeaves, name)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		// A join that cannot take its WELCOME would leave a session nobody
		// reads or leaves, so it never reaches the world.
		if req.Resp != nil && len(req.Resp) == cap(req.Resp) {
			w.logf("join %s dropped: no room for the response", req.Name)
			continue
		}
		resp := w.joinPlayer(req, nowTick)
		if req.Resp != nil {
			req.Resp <- resp
		}
		if resp.Err == "" {
			recordedJoins = append(recordedJoins, RecordedJoin{Player: resp.Welcome.PlayerName, Admin: req.Admin})
		}
	}

	// Timers run before actions so an expired offer cannot be accepted.
	w.tickTimers(nowTick)

	// Apply actions in server receive order (the inbox order).
	recorded := make([]RecordedAction, 0, len(actions))
	for _, env := range actions {
		p := w.players[env.Player]
		if p == nil || w.clients[env.Player] == nil {
			continue
		}
		env.Act.Player = env.Player // trust session identity
		recorded = append(recorded, RecordedAction{Player: env.Player, Act: env.Act})
		w.applyAct(p, env.Act, nowTick)
	}

	recordedAdmin := w.handleAdminRequests(admin, nowTick)

	// STATUS every N ticks, or sooner when events are queued.
	every := uint64(w.tun.StatusEveryTicks)
	for _, name := range w.onlineNames() {
		p := w.players[name]
		cl := w.clients[name]
		if p == nil || cl == nil {
			continue
		}
		if every > 1 && nowTick%every != 0 && len(p.Events) == 0 {
			continue
		}
		st := w.buildStatus(p, nowTick)
		b, err := json.Marshal(st)
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}

	digest := w.stateDigest(nowTick)
	// Quiet ticks are not logged; Replay skips over them.
	if w.tickLogger != nil && (len(recordedJoins) > 0 || len(recordedLeaves) > 0 || len(recorded) > 0 || len(recordedAdmin) > 0) {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:    nowTick,
			NowMs:   w.nowMs,
			Joins:   recordedJoins,
			Leaves:  recordedLeaves,
			Actions: recorded,
			Admin:   recordedAdmin,
			Digest:  digest,
		})
	}

	if w.repo != nil {
		w.commit(nowTick)
	}

	// Snapshot every N ticks, starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.tun.SnapshotEveryTicks > 0 {
		if nowTick%uint64(w.tun.SnapshotEveryTicks) == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.publishMetrics(nextTick, stepMS, digest)
}

func (w *World) applyTuning(t tuning.Tuning) {
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		w.logf("tuning reload rejected: %v", err)
		return
	}
	// The loop rate is fixed at start.
	t.TickRateHz = w.tun.TickRateHz
	w.tun = t
	w.logf("tuning reloaded digest=%s", t.Digest())
}
