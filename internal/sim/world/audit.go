package world

func (w *World) audit(tick uint64, actor, action, target string, pos *Vec3i, amount int64, reason string, details map[string]interface{}) {
	if w.auditLogger == nil {
		return
	}
	e := AuditEntry{
		Tick:    tick,
		NowMs:   w.nowMs,
		Actor:   actor,
		Action:  action,
		Target:  target,
		Amount:  amount,
		Reason:  reason,
		Details: details,
	}
	if pos != nil {
		a := pos.ToArray()
		e.Pos = &a
	}
	if err := w.auditLogger.WriteAudit(e); err != nil {
		w.logf("audit %s: %v", action, err)
	}
}
