package world

import (
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/economy/ledger"
)

func handleInstantTransfer(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	b := w.book()
	if ok, code, msg := ledger.ValidateTransfer(p.Name, inst.Target, w.online(inst.Target), inst.Amount, b.Balance(p.Name)); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}
	b.Transfer(p.Name, inst.Target, inst.Amount)
	w.markPlayer(p.Name)
	w.markPlayer(inst.Target)
	w.audit(nowTick, p.Name, "TRANSFER", inst.Target, nil, inst.Amount, "", nil)
	w.notify(inst.Target, protocol.Event{"t": nowTick, "type": "MONEY_RECEIVED", "from": p.Name, "amount": inst.Amount})
	p.AddEvent(okResult(nowTick, inst.ID, "balance", p.Balance))
}

func (w *World) leaderboard() ledger.Leaderboard {
	n := w.tun.Economy.LeaderboardSize
	return ledger.Leaderboard{
		Richest: ledger.TopBalances(w.balances, n),
		Online:  ledger.TopOnline(w.onlinePlayers(), n),
		Clans:   ledger.TopClans(w.clans, n),
	}
}

func handleInstantLeaderboard(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	p.AddEvent(okResult(nowTick, inst.ID, "leaderboard", w.leaderboard()))
}

func handleInstantAdminBalance(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if !w.book().Known(inst.Target) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "unknown player"))
		return
	}
	bal, ok := w.book().AdminAdjust(inst.Target, inst.Op, inst.Amount)
	if !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "op must be add|remove|set with amount >= 0"))
		return
	}
	w.markPlayer(inst.Target)
	w.audit(nowTick, p.Name, "ADMIN_BALANCE", inst.Target, nil, inst.Amount, inst.Op, map[string]interface{}{"balance": bal})
	p.AddEvent(okResult(nowTick, inst.ID, "target", inst.Target, "balance", bal))
}
