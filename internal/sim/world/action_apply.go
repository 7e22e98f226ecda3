package world

import "voxelkeep.ai/internal/protocol"

func (w *World) applyAct(p *Player, act protocol.ActMsg, nowTick uint64) {
	// Staleness check: accept only [now-2, now].
	if act.Tick+2 < nowTick || act.Tick > nowTick {
		p.AddEvent(actionResult(nowTick, "ACT", false, protocol.ErrStale, "act tick out of range"))
		return
	}
	for _, inst := range act.Instants {
		w.applyInstant(p, inst, nowTick)
	}
}

func (w *World) applyInstant(p *Player, inst protocol.InstantReq, nowTick uint64) {
	if h := instantDispatch[inst.Type]; h != nil {
		h(w, p, inst, nowTick)
		return
	}
	p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "unknown instant type"))
}

func actionResult(tick uint64, ref string, ok bool, code string, message string) protocol.Event {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
		if message == "" {
			message = "unknown error code"
		}
	}
	e := protocol.Event{
		"t":    tick,
		"type": "ACTION_RESULT",
		"ref":  ref,
		"ok":   ok,
	}
	if code != "" {
		e["code"] = code
	}
	if message != "" {
		e["message"] = message
	}
	return e
}

func okResult(tick uint64, ref string, kv ...interface{}) protocol.Event {
	e := actionResult(tick, ref, true, "", "")
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			e[k] = kv[i+1]
		}
	}
	return e
}
