package ledger

import (
	"sort"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

// Book ties player balances to the name -> balance cache used for offline
// rankings. Writes always go to both.
type Book struct {
	Players map[string]*modelpkg.Player
	Cache   map[string]int64
}

func (b Book) Balance(name string) int64 {
	p := b.Players[name]
	if p == nil {
		return b.Cache[name]
	}
	if b.Cache != nil {
		b.Cache[name] = p.Balance
	}
	return p.Balance
}

// SetBalance clamps negatives to zero.
func (b Book) SetBalance(name string, v int64) int64 {
	if v < 0 {
		v = 0
	}
	if p := b.Players[name]; p != nil {
		p.Balance = v
	}
	if b.Cache != nil {
		b.Cache[name] = v
	}
	return v
}

func (b Book) Add(name string, delta int64) int64 {
	return b.SetBalance(name, b.Balance(name)+delta)
}

func (b Book) Known(name string) bool {
	if _, ok := b.Players[name]; ok {
		return true
	}
	_, ok := b.Cache[name]
	return ok
}

func ValidateTransfer(from, to string, targetOnline bool, amount, balance int64) (ok bool, code string, msg string) {
	if amount <= 0 {
		return false, "E_BAD_REQUEST", "amount must be > 0"
	}
	if to == "" || to == from {
		return false, "E_INVALID_TARGET", "cannot transfer to yourself"
	}
	if !targetOnline {
		return false, "E_INVALID_TARGET", "target not online"
	}
	if balance < amount {
		return false, "E_NO_RESOURCE", "insufficient funds"
	}
	return true, "", ""
}

func (b Book) Transfer(from, to string, amount int64) {
	b.SetBalance(from, b.Balance(from)-amount)
	b.SetBalance(to, b.Balance(to)+amount)
}

// AdminAdjust applies add|remove|set. Remove floors at zero.
func (b Book) AdminAdjust(name, op string, amount int64) (int64, bool) {
	if amount < 0 {
		return 0, false
	}
	switch op {
	case "add":
		return b.Add(name, amount), true
	case "remove":
		return b.Add(name, -amount), true
	case "set":
		return b.SetBalance(name, amount), true
	}
	return 0, false
}

type Entry struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type ClanEntry struct {
	ClanID string `json:"clan_id"`
	Name   string `json:"name"`
	Tag    string `json:"tag"`
	Level  int    `json:"level"`
	XP     int64  `json:"xp"`
}

type Leaderboard struct {
	Richest []Entry     `json:"richest"`
	Online  []Entry     `json:"online"`
	Clans   []ClanEntry `json:"clans"`
}

func TopBalances(cache map[string]int64, n int) []Entry {
	out := make([]Entry, 0, len(cache))
	for name, bal := range cache {
		out = append(out, Entry{Name: name, Balance: bal})
	}
	return topEntries(out, n)
}

func TopOnline(online []*modelpkg.Player, n int) []Entry {
	out := make([]Entry, 0, len(online))
	for _, p := range online {
		if p != nil {
			out = append(out, Entry{Name: p.Name, Balance: p.Balance})
		}
	}
	return topEntries(out, n)
}

func TopClans(all map[string]*modelpkg.Clan, n int) []ClanEntry {
	out := make([]ClanEntry, 0, len(all))
	for _, c := range all {
		if c == nil {
			continue
		}
		out = append(out, ClanEntry{ClanID: c.ClanID, Name: c.Name, Tag: c.Tag, Level: c.Level, XP: c.XP})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].ClanID < out[j].ClanID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func topEntries(out []Entry, n int) []Entry {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
