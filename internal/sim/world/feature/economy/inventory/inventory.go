package inventory

import (
	"sort"

	"voxelkeep.ai/internal/protocol"
)

// StacksToMap folds host-reported stacks into item -> count.
func StacksToMap(stacks []protocol.ItemStack) map[string]int {
	out := map[string]int{}
	for _, s := range stacks {
		if s.Item == "" || s.Count <= 0 {
			continue
		}
		out[s.Item] += s.Count
	}
	return out
}

func MapToStacks(m map[string]int) []protocol.ItemStack {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]protocol.ItemStack, 0, len(keys))
	for _, k := range keys {
		out = append(out, protocol.ItemStack{Item: k, Count: m[k]})
	}
	return out
}

func HasItems(inv map[string]int, want map[string]int) bool {
	for item, c := range want {
		if inv[item] < c {
			return false
		}
	}
	return true
}

func DeductItems(inv map[string]int, cost map[string]int) {
	for item, c := range cost {
		if item == "" || c <= 0 {
			continue
		}
		inv[item] -= c
		if inv[item] <= 0 {
			delete(inv, item)
		}
	}
}

type Capacity struct {
	Slots     int
	StackSize int
}

// SlotsUsed counts stacks, rounding each item up to whole stacks.
func SlotsUsed(inv map[string]int, stackSize int, except string) int {
	if stackSize <= 0 {
		return 0
	}
	used := 0
	for item, c := range inv {
		if item == except || c <= 0 {
			continue
		}
		used += (c + stackSize - 1) / stackSize
	}
	return used
}

// Room is how many more of item fit.
func Room(inv map[string]int, item string, lim Capacity) int {
	if lim.Slots <= 0 || lim.StackSize <= 0 {
		return int(^uint(0) >> 1)
	}
	free := lim.Slots - SlotsUsed(inv, lim.StackSize, item)
	if free <= 0 {
		return 0
	}
	room := free*lim.StackSize - inv[item]
	if room < 0 {
		return 0
	}
	return room
}

// Give adds up to n of item and returns what did not fit; the host drops
// the overflow at the player's feet.
func Give(inv map[string]int, item string, n int, lim Capacity) (added int, overflow int) {
	if item == "" || n <= 0 {
		return 0, 0
	}
	added = n
	if r := Room(inv, item, lim); r < added {
		added = r
	}
	if added > 0 {
		inv[item] += added
	}
	return added, n - added
}

// GiveAll adds every item in sorted order and reports per-item overflow.
func GiveAll(inv map[string]int, items map[string]int, lim Capacity) map[string]int {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var over map[string]int
	for _, k := range keys {
		if _, o := Give(inv, k, items[k], lim); o > 0 {
			if over == nil {
				over = map[string]int{}
			}
			over[k] = o
		}
	}
	return over
}
