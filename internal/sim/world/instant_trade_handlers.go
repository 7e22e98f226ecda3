package world

import (
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world/feature/economy/trade"
)

func handleInstantTradeOffer(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	if ok, cd := p.RateLimitAllow("TRADE_OFFER", nowTick, uint64(w.tun.RateLimits.OfferTradeWindowTicks), w.tun.RateLimits.OfferTradeMax); !ok {
		ev := actionResult(nowTick, inst.ID, false, protocol.ErrRateLimit, "too many TRADE_OFFER")
		ev["cooldown_ticks"] = cd
		ev["cooldown_until_tick"] = nowTick + cd
		p.AddEvent(ev)
		return
	}
	_, pending := w.sales[inst.Target]
	if ok, code, msg := trade.ValidateOffer(trade.OfferInput{
		Seller:       p.Name,
		Buyer:        inst.Target,
		BuyerOnline:  w.online(inst.Target),
		Item:         inst.Item,
		Count:        inst.Count,
		Price:        inst.Price,
		SellerHas:    p.Inventory[inst.Item],
		BuyerPending: pending,
	}); !ok {
		p.AddEvent(actionResult(nowTick, inst.ID, false, code, msg))
		return
	}

	// Escrow: the item leaves the seller now.
	w.takeItems(p, map[string]int{inst.Item: inst.Count}, nowTick)
	s := &PendingSale{
		SaleID:    w.newSaleID(),
		Buyer:     inst.Target,
		Seller:    p.Name,
		Item:      inst.Item,
		Count:     inst.Count,
		Price:     inst.Price,
		CreatedAt: w.nowMs,
	}
	w.sales[s.Buyer] = s
	w.markSale(s.Buyer)
	w.notify(s.Buyer, protocol.Event{
		"t": nowTick, "type": "TRADE_OFFER", "sale_id": s.SaleID, "seller": s.Seller,
		"item": s.Item, "count": s.Count, "price": s.Price,
		"expires_at": s.CreatedAt + int64(w.tun.Session.EscrowTimeoutSeconds)*1000,
	})
	p.AddEvent(okResult(nowTick, inst.ID, "sale_id", s.SaleID))
}

func handleInstantTradeAccept(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	s := w.sales[p.Name]
	if s == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no pending offer"))
		return
	}
	b := w.book()
	switch trade.ResolveAccept(w.online(s.Seller), b.Balance(p.Name), s.Price) {
	case trade.AcceptSellerGone:
		delete(w.sales, p.Name)
		w.markSale(p.Name)
		w.audit(nowTick, s.Seller, "TRADE_ITEM_LOST", p.Name, nil, s.Price, "seller disconnected", map[string]interface{}{
			"sale_id": s.SaleID, "item": s.Item, "count": s.Count,
		})
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "seller disconnected"))
		return
	case trade.AcceptNoFunds:
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoResource, "insufficient funds"))
		return
	}

	b.Transfer(p.Name, s.Seller, s.Price)
	w.markPlayer(s.Seller)
	overflow := w.giveItems(p, map[string]int{s.Item: s.Count}, nowTick)
	delete(w.sales, p.Name)
	w.markSale(p.Name)
	w.counters.trades++
	w.audit(nowTick, p.Name, "TRADE", s.Seller, nil, s.Price, "", map[string]interface{}{
		"sale_id": s.SaleID, "item": s.Item, "count": s.Count,
	})
	w.notify(s.Seller, protocol.Event{"t": nowTick, "type": "TRADE_COMPLETED", "sale_id": s.SaleID, "buyer": p.Name, "price": s.Price})
	ev := okResult(nowTick, inst.ID, "sale_id", s.SaleID, "balance", p.Balance)
	if n := overflow[s.Item]; n > 0 {
		ev["dropped"] = n
	}
	p.AddEvent(ev)
}

func handleInstantTradeReject(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	s := w.sales[p.Name]
	if s == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no pending offer"))
		return
	}
	delete(w.sales, p.Name)
	w.markSale(p.Name)
	w.returnEscrow(s, nowTick, "TRADE_REJECTED")
	p.AddEvent(okResult(nowTick, inst.ID, "sale_id", s.SaleID))
}
