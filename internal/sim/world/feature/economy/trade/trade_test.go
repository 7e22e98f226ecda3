package trade

import (
	"testing"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func TestValidateOffer(t *testing.T) {
	base := OfferInput{Seller: "alice", Buyer: "bob", BuyerOnline: true, Item: "minecraft:diamond", Count: 2, Price: 100, SellerHas: 5}
	if ok, _, msg := ValidateOffer(base); !ok {
		t.Fatalf("valid offer rejected: %s", msg)
	}

	cases := []struct {
		name string
		mut  func(*OfferInput)
		code string
	}{
		{"negative price", func(in *OfferInput) { in.Price = -1 }, "E_BAD_REQUEST"},
		{"zero count", func(in *OfferInput) { in.Count = 0 }, "E_BAD_REQUEST"},
		{"self", func(in *OfferInput) { in.Buyer = "alice" }, "E_INVALID_TARGET"},
		{"offline", func(in *OfferInput) { in.BuyerOnline = false }, "E_INVALID_TARGET"},
		{"pending", func(in *OfferInput) { in.BuyerPending = true }, "E_CONFLICT"},
		{"short", func(in *OfferInput) { in.SellerHas = 1 }, "E_NO_RESOURCE"},
	}
	for _, tc := range cases {
		in := base
		tc.mut(&in)
		if ok, code, _ := ValidateOffer(in); ok || code != tc.code {
			t.Fatalf("%s: ok=%v code=%s want %s", tc.name, ok, code, tc.code)
		}
	}

	free := base
	free.Price = 0
	if ok, _, _ := ValidateOffer(free); !ok {
		t.Fatalf("zero price should be allowed")
	}
}

func TestExpiry(t *testing.T) {
	sales := map[string]*modelpkg.PendingSale{
		"bob":   {SaleID: "S000001", Buyer: "bob", CreatedAt: 0},
		"carol": {SaleID: "S000002", Buyer: "carol", CreatedAt: 200_000},
	}
	if got := ExpiredBuyers(sales, 299_999, 300); len(got) != 0 {
		t.Fatalf("expired too early: %v", got)
	}
	got := ExpiredBuyers(sales, 300_000, 300)
	if len(got) != 1 || got[0] != "bob" {
		t.Fatalf("expired=%v", got)
	}
}

func TestResolveAccept(t *testing.T) {
	if ResolveAccept(false, 1000, 10) != AcceptSellerGone {
		t.Fatalf("offline seller should void the sale")
	}
	if ResolveAccept(true, 9, 10) != AcceptNoFunds {
		t.Fatalf("short buyer should be refused")
	}
	if ResolveAccept(true, 10, 10) != AcceptOK {
		t.Fatalf("exact funds should settle")
	}
}
