package trade

import (
	"fmt"
	"sort"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func SaleID(n uint64) string {
	return fmt.Sprintf("S%06d", n)
}

type OfferInput struct {
	Seller       string
	Buyer        string
	BuyerOnline  bool
	Item         string
	Count        int
	Price        int64
	SellerHas    int
	BuyerPending bool
}

func ValidateOffer(in OfferInput) (ok bool, code string, msg string) {
	if in.Item == "" || in.Count <= 0 {
		return false, "E_BAD_REQUEST", "missing item/count"
	}
	if in.Price < 0 {
		return false, "E_BAD_REQUEST", "price must be >= 0"
	}
	if in.Buyer == "" || in.Buyer == in.Seller {
		return false, "E_INVALID_TARGET", "cannot sell to yourself"
	}
	if !in.BuyerOnline {
		return false, "E_INVALID_TARGET", "buyer not online"
	}
	if in.BuyerPending {
		return false, "E_CONFLICT", in.Buyer + " already has a pending offer"
	}
	if in.SellerHas < in.Count {
		return false, "E_NO_RESOURCE", "not enough items"
	}
	return true, "", ""
}

// Expired reports whether the offer outlived its window.
func Expired(s *modelpkg.PendingSale, nowMs int64, timeoutSeconds int) bool {
	if s == nil || timeoutSeconds <= 0 {
		return false
	}
	return nowMs-s.CreatedAt >= int64(timeoutSeconds)*1000
}

// ExpiredBuyers lists buyers whose offers have timed out, sorted.
func ExpiredBuyers(sales map[string]*modelpkg.PendingSale, nowMs int64, timeoutSeconds int) []string {
	var out []string
	for buyer, s := range sales {
		if Expired(s, nowMs, timeoutSeconds) {
			out = append(out, buyer)
		}
	}
	sort.Strings(out)
	return out
}

type AcceptOutcome int

const (
	AcceptOK AcceptOutcome = iota
	AcceptSellerGone
	AcceptNoFunds
)

// ResolveAccept decides acceptance. An offline seller voids the sale and the
// escrowed item is not returned.
func ResolveAccept(sellerOnline bool, buyerBalance, price int64) AcceptOutcome {
	if !sellerOnline {
		return AcceptSellerGone
	}
	if buyerBalance < price {
		return AcceptNoFunds
	}
	return AcceptOK
}
