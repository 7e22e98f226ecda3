package world

import (
	"testing"
	"time"

	"voxelkeep.ai/internal/protocol"
)

func offer(target, item string, count int, price int64) protocol.InstantReq {
	return protocol.InstantReq{Type: protocol.InstantTradeOffer, Target: target, Item: item, Count: count, Price: price}
}

func setupTraders(t *testing.T) (*World, *testClock, *Player, *Player) {
	t.Helper()
	w, clk := newTestWorld(t)
	seller := joinTest(t, w, "seller", false)
	buyer := joinTest(t, w, "buyer", false)
	seller.Inventory["minecraft:diamond"] = 5
	w.book().SetBalance("buyer", 500)
	return w, clk, seller, buyer
}

func TestTrade_OfferAccept(t *testing.T) {
	w, _, seller, buyer := setupTraders(t)

	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 3, 300))
	if seller.Inventory["minecraft:diamond"] != 2 {
		t.Fatalf("escrow should take items: %v", seller.Inventory)
	}
	if w.sales["buyer"] == nil {
		t.Fatalf("missing pending sale")
	}

	res, evs := do(w, buyer, protocol.InstantReq{Type: protocol.InstantTradeAccept})
	if res["ok"] != true {
		t.Fatalf("accept: %v", res)
	}
	if findEvent(evs, "GIVE_ITEMS") == nil {
		t.Fatalf("buyer should be told to receive items")
	}
	if buyer.Balance != 200 || seller.Balance != 300 {
		t.Fatalf("balances buyer=%d seller=%d", buyer.Balance, seller.Balance)
	}
	if buyer.Inventory["minecraft:diamond"] != 3 {
		t.Fatalf("buyer inventory=%v", buyer.Inventory)
	}
	if w.sales["buyer"] != nil {
		t.Fatalf("sale should be cleared")
	}
	if w.balances["buyer"] != 200 || w.balances["seller"] != 300 {
		t.Fatalf("balance cache out of sync: %v", w.balances)
	}
}

func TestTrade_SingleFlightPerBuyer(t *testing.T) {
	w, _, seller, _ := setupTraders(t)
	other := joinTest(t, w, "other", false)
	other.Inventory["minecraft:emerald"] = 1

	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 1, 10))
	first := *w.sales["buyer"]
	mustFail(t, w, other, offer("buyer", "minecraft:emerald", 1, 5), protocol.ErrConflict)
	if *w.sales["buyer"] != first {
		t.Fatalf("first offer altered: %+v", w.sales["buyer"])
	}
	if other.Inventory["minecraft:emerald"] != 1 {
		t.Fatalf("rejected offer must not take items")
	}
}

func TestTrade_ValidationFailures(t *testing.T) {
	w, _, seller, _ := setupTraders(t)
	mustFail(t, w, seller, offer("seller", "minecraft:diamond", 1, 10), protocol.ErrInvalidTarget)
	mustFail(t, w, seller, offer("nobody", "minecraft:diamond", 1, 10), protocol.ErrInvalidTarget)
	mustFail(t, w, seller, offer("buyer", "minecraft:diamond", 6, 10), protocol.ErrNoResource)
	mustFail(t, w, seller, offer("buyer", "minecraft:diamond", 1, -1), protocol.ErrBadRequest)
	mustFail(t, w, seller, offer("buyer", "minecraft:diamond", 0, 10), protocol.ErrBadRequest)
}

func TestTrade_AcceptWithoutFundsKeepsOffer(t *testing.T) {
	w, _, seller, buyer := setupTraders(t)
	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 1, 900))
	mustFail(t, w, buyer, protocol.InstantReq{Type: protocol.InstantTradeAccept}, protocol.ErrNoResource)
	if w.sales["buyer"] == nil {
		t.Fatalf("offer should survive a failed accept")
	}
	if buyer.Balance != 500 {
		t.Fatalf("balance changed: %d", buyer.Balance)
	}
}

func TestTrade_SellerOfflineLosesItem(t *testing.T) {
	w, _, seller, buyer := setupTraders(t)
	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 2, 100))
	w.handleLeave("seller")

	res := mustFail(t, w, buyer, protocol.InstantReq{Type: protocol.InstantTradeAccept}, protocol.ErrInvalidTarget)
	if res["message"] != "seller disconnected" {
		t.Fatalf("message=%v", res["message"])
	}
	if w.sales["buyer"] != nil {
		t.Fatalf("entry should be dropped")
	}
	if seller.Inventory["minecraft:diamond"] != 3 || buyer.Inventory["minecraft:diamond"] != 0 {
		t.Fatalf("item should be lost: seller=%v buyer=%v", seller.Inventory, buyer.Inventory)
	}
	if buyer.Balance != 500 {
		t.Fatalf("no money moves: %d", buyer.Balance)
	}
}

func TestTrade_RejectReturnsItem(t *testing.T) {
	w, _, seller, buyer := setupTraders(t)
	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 2, 100))
	mustOK(t, w, buyer, protocol.InstantReq{Type: protocol.InstantTradeReject})
	if seller.Inventory["minecraft:diamond"] != 5 {
		t.Fatalf("item not returned: %v", seller.Inventory)
	}
	if findEvent(seller.TakeEvents(), "TRADE_REJECTED") == nil {
		t.Fatalf("seller should be notified")
	}
}

func TestTrade_TimeoutReturnsItem(t *testing.T) {
	w, clk, seller, buyer := setupTraders(t)
	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 2, 100))

	clk.advance(4 * time.Minute)
	w.nowMs = clk.now().UnixMilli()
	w.tickTimers(w.CurrentTick())
	if w.sales["buyer"] == nil {
		t.Fatalf("offer expired early")
	}

	clk.advance(time.Minute)
	w.nowMs = clk.now().UnixMilli()
	w.tickTimers(w.CurrentTick())
	if w.sales["buyer"] != nil {
		t.Fatalf("offer should expire after five minutes")
	}
	if seller.Inventory["minecraft:diamond"] != 5 {
		t.Fatalf("item not returned: %v", seller.Inventory)
	}
	if findEvent(seller.TakeEvents(), "TRADE_EXPIRED") == nil || findEvent(buyer.TakeEvents(), "TRADE_EXPIRED") == nil {
		t.Fatalf("both parties should be notified")
	}
}

func TestTrade_RateLimited(t *testing.T) {
	w, _, seller, _ := setupTraders(t)
	for i := 0; i < 3; i++ {
		other := joinTest(t, w, "b"+string(rune('a'+i)), false)
		mustOK(t, w, seller, offer(other.Name, "minecraft:diamond", 1, 1))
	}
	mustFail(t, w, seller, offer("buyer", "minecraft:diamond", 1, 1), protocol.ErrRateLimit)
}

func TestTrade_FullInventoryDropsOverflow(t *testing.T) {
	w, clk, seller, buyer := setupTraders(t)
	w.tun.Session.InventorySlots = 2
	w.tun.Session.StackSize = 4
	buyer.Inventory["minecraft:stone"] = 4
	buyer.Inventory["minecraft:dirt"] = 4

	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 3, 100))
	res, evs := do(w, buyer, protocol.InstantReq{Type: protocol.InstantTradeAccept})
	if res["ok"] != true || res["dropped"] != 3 {
		t.Fatalf("accept: %v", res)
	}
	give := findEvent(evs, "GIVE_ITEMS")
	over, _ := give["overflow"].([]protocol.ItemStack)
	if len(over) != 1 || over[0] != (protocol.ItemStack{Item: "minecraft:diamond", Count: 3}) {
		t.Fatalf("give=%v", give)
	}
	if buyer.Inventory["minecraft:diamond"] != 0 || buyer.Balance != 400 {
		t.Fatalf("buyer inv=%v balance=%d", buyer.Inventory, buyer.Balance)
	}

	// Refill the seller to two full stacks so a returned item cannot fit.
	seller.Inventory["minecraft:stone"] = 4
	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 1, 10))
	seller.Inventory["minecraft:diamond"] = 4
	seller.TakeEvents()
	mustOK(t, w, buyer, protocol.InstantReq{Type: protocol.InstantTradeReject})
	give = findEvent(seller.TakeEvents(), "GIVE_ITEMS")
	over, _ = give["overflow"].([]protocol.ItemStack)
	if len(over) != 1 || over[0].Count != 1 || seller.Inventory["minecraft:diamond"] != 4 {
		t.Fatalf("reject give=%v inv=%v", give, seller.Inventory)
	}

	mustOK(t, w, seller, offer("buyer", "minecraft:diamond", 1, 10))
	seller.Inventory["minecraft:diamond"] = 4
	seller.TakeEvents()
	clk.advance(5 * time.Minute)
	w.nowMs = clk.now().UnixMilli()
	w.tickTimers(w.CurrentTick())
	give = findEvent(seller.TakeEvents(), "GIVE_ITEMS")
	over, _ = give["overflow"].([]protocol.ItemStack)
	if len(over) != 1 || over[0].Count != 1 {
		t.Fatalf("timeout give=%v", give)
	}
}
