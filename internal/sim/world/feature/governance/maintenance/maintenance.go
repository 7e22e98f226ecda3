package maintenance

import (
	"sort"

	"voxelkeep.ai/internal/sim/tuning"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

const DayMs = int64(24 * 60 * 60 * 1000)

// EarlyPayLimitMs is the default remaining-time threshold above which rent cannot be paid again.
const EarlyPayLimitMs = DayMs * 69 / 10

type Discount struct {
	// Tenths of a percent, 0..700.
	PermilleOff int64
	Percent     float64
	Multiplier  float64
}

// RentDiscount gives clan members 0.7% off per level, capped at 70%.
func RentDiscount(clanLevel int) Discount {
	if clanLevel < 0 {
		clanLevel = 0
	}
	off := int64(clanLevel) * 7
	if off > 700 {
		off = 700
	}
	pct := float64(off) / 10
	return Discount{PermilleOff: off, Percent: pct, Multiplier: 1 - pct/100}
}

// PlotRentCost is the weekly rent owed by a payer; clan members get the level discount.
func PlotRentCost(weekly int64, clanLevel int, inClan bool) int64 {
	if weekly <= 0 {
		return 0
	}
	if !inClan {
		return weekly
	}
	d := RentDiscount(clanLevel)
	return weekly * (1000 - d.PermilleOff) / 1000
}

type RentState struct {
	Active        bool
	RemainingMs   int64
	DaysRemaining int // whole days, rounded down
}

func StateOf(p *modelpkg.LandPlot, nowMs int64) RentState {
	if p == nil || p.RentExpired(nowMs) {
		return RentState{}
	}
	rem := p.RentExpiresAt - nowMs
	return RentState{Active: true, RemainingMs: rem, DaysRemaining: int(rem / DayMs)}
}

// CanPayEarly refuses renewal while more than maxDays remain (6.9 when unset).
func CanPayEarly(expiresAt, nowMs int64, maxDays float64) bool {
	limit := EarlyPayLimitMs
	if maxDays > 0 {
		limit = int64(maxDays * float64(DayMs))
	}
	return expiresAt-nowMs <= limit
}

// NextRentExpiry resets the window; unused time is not carried over.
func NextRentExpiry(nowMs int64, rentDays int) int64 {
	if rentDays <= 0 {
		rentDays = 7
	}
	return nowMs + int64(rentDays)*DayMs
}

// EffectRentCost sums the weekly rent of every unlocked effect the catalog knows.
func EffectRentCost(cat []tuning.EffectDef, unlocked map[string]bool) int64 {
	var total int64
	for _, e := range cat {
		if unlocked[e.ID] {
			total += e.Rent
		}
	}
	return total
}

// ExtendEffectRent stacks a new period on top of any time still left.
func ExtendEffectRent(expiresAt, nowMs int64, days int) int64 {
	if days <= 0 {
		days = 7
	}
	base := expiresAt
	if nowMs > base {
		base = nowMs
	}
	return base + int64(days)*DayMs
}

// ExpiredPlots lists plot ids whose rent has lapsed, sorted.
func ExpiredPlots(plots map[string]*modelpkg.LandPlot, nowMs int64) []string {
	var out []string
	for id, p := range plots {
		if p != nil && p.RentExpired(nowMs) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
