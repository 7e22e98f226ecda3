package world

import (
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/economy/trade"
	clanspkg "voxelkeep.ai/internal/sim/world/feature/governance/clans"
)

// tickTimers expires escrow offers, clan invites and temporary mutes.
func (w *World) tickTimers(nowTick uint64) {
	for _, buyer := range trade.ExpiredBuyers(w.sales, w.nowMs, w.tun.Session.EscrowTimeoutSeconds) {
		s := w.sales[buyer]
		delete(w.sales, buyer)
		w.markSale(buyer)
		w.returnEscrow(s, nowTick, "TRADE_EXPIRED")
		w.notify(buyer, protocol.Event{"t": nowTick, "type": "TRADE_EXPIRED", "sale_id": s.SaleID, "seller": s.Seller})
	}

	for _, name := range sortedNames(w.invites) {
		inv := w.invites[name]
		if !clanspkg.InviteExpired(inv, w.nowMs, w.tun.Clans.InviteTTLSeconds) {
			continue
		}
		delete(w.invites, name)
		w.markInvite(name)
		w.notify(name, protocol.Event{"t": nowTick, "type": "CLAN_INVITE_EXPIRED", "clan_id": inv.ClanID})
	}

	for _, name := range sortedNames(w.players) {
		p := w.players[name]
		if p.MuteUntil > 0 && w.nowMs >= p.MuteUntil {
			p.MuteUntil = 0
			w.markPlayer(name)
			w.notify(name, protocol.Event{"t": nowTick, "type": "UNMUTED"})
		}
	}
}

// returnEscrow gives the escrowed item back to the seller. An offline seller
// cannot receive it and the item is lost.
func (w *World) returnEscrow(s *PendingSale, nowTick uint64, reason string) {
	seller := w.players[s.Seller]
	if seller == nil || !w.online(s.Seller) {
		w.audit(nowTick, s.Seller, "TRADE_ITEM_LOST", s.Buyer, nil, s.Price, reason, map[string]interface{}{
			"sale_id": s.SaleID, "item": s.Item, "count": s.Count,
		})
		return
	}
	w.giveItems(seller, map[string]int{s.Item: s.Count}, nowTick)
	seller.AddEvent(protocol.Event{"t": nowTick, "type": reason, "sale_id": s.SaleID, "buyer": s.Buyer, "item": s.Item, "count": s.Count, "returned": true})
}
