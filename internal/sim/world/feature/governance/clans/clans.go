package clans

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"voxelkeep.ai/internal/sim/tuning"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func ClanID(n uint64) string { return fmt.Sprintf("C%06d", n) }

var (
	folder = cases.Fold()
	upper  = cases.Upper(language.Und)
)

// FoldName is the key used for case-insensitive name uniqueness.
func FoldName(name string) string {
	return folder.String(strings.TrimSpace(name))
}

func MakeTag(name string) string {
	return "[" + upper.String(strings.TrimSpace(name)) + "]"
}

func ValidateName(name string, minLen, maxLen int) (ok bool, code string, msg string) {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minLen || n > maxLen {
		return false, "E_BAD_REQUEST", fmt.Sprintf("clan name must be %d-%d characters", minLen, maxLen)
	}
	return true, "", ""
}

// NameTaken reports whether another clan already uses name, ignoring case.
func NameTaken(all map[string]*modelpkg.Clan, name, exceptID string) bool {
	key := FoldName(name)
	for id, c := range all {
		if c == nil || id == exceptID {
			continue
		}
		if FoldName(c.Name) == key {
			return true
		}
	}
	return false
}

func ValidColor(allowed []string, color string) bool {
	return slices.Contains(allowed, strings.ToLower(strings.TrimSpace(color)))
}

// ClanOf returns the clan name belongs to, or nil.
func ClanOf(all map[string]*modelpkg.Clan, name string) *modelpkg.Clan {
	if name == "" {
		return nil
	}
	for _, id := range SortedIDs(all) {
		if c := all[id]; c.IsMember(name) {
			return c
		}
	}
	return nil
}

func SortedIDs(all map[string]*modelpkg.Clan) []string {
	out := make([]string, 0, len(all))
	for id, c := range all {
		if c != nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func SortedMembers(c *modelpkg.Clan) []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Members))
	for m, ok := range c.Members {
		if ok {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// SelectNextLeader picks the lexicographically smallest remaining member.
func SelectNextLeader(c *modelpkg.Clan, departing string) string {
	for _, m := range SortedMembers(c) {
		if m != departing {
			return m
		}
	}
	return ""
}

// XPThreshold is the XP needed to leave level: floor(base * level * tier).
func XPThreshold(level int, base int64) int64 {
	if level < modelpkg.ClanMinLevel {
		level = modelpkg.ClanMinLevel
	}
	var tenths int64
	switch {
	case level < 10:
		tenths = 10
	case level < 40:
		tenths = 25
	case level < 70:
		tenths = 50
	default:
		tenths = 100
	}
	return base * int64(level) * tenths / 10
}

// ApplyLevelUp promotes at most one level per call; leftover XP is kept.
func ApplyLevelUp(c *modelpkg.Clan, base int64) bool {
	if c == nil || c.Level >= modelpkg.ClanMaxLevel {
		return false
	}
	need := XPThreshold(c.Level, base)
	if c.XP < need {
		return false
	}
	c.XP -= need
	c.Level++
	return true
}

func ValidateLevelUp(c *modelpkg.Clan, base int64) (ok bool, code string, msg string) {
	if c.Level >= modelpkg.ClanMaxLevel {
		return false, "E_CONFLICT", "clan is at max level"
	}
	if need := XPThreshold(c.Level, base); c.XP < need {
		return false, "E_NO_RESOURCE", fmt.Sprintf("need %d xp", need)
	}
	return true, "", ""
}

// KitForLevel merges every tier at or below level.
func KitForLevel(kits []tuning.KitTier, level int) map[string]int {
	out := map[string]int{}
	for _, k := range kits {
		if level < k.Level {
			continue
		}
		for item, n := range k.Items {
			out[item] += n
		}
	}
	return out
}

func RankName(ranks []tuning.RankTier, level int) string {
	name := ""
	best := -1
	for _, r := range ranks {
		if level >= r.Level && r.Level > best {
			best = r.Level
			name = r.Name
		}
	}
	return name
}

func ValidateUnlock(c *modelpkg.Clan, e tuning.EffectDef, known bool) (ok bool, code string, msg string) {
	if !known {
		return false, "E_BAD_REQUEST", "unknown effect"
	}
	if c.UnlockedEffects[e.ID] {
		return false, "E_CONFLICT", "effect already unlocked"
	}
	if c.Level < e.Level {
		return false, "E_NO_PERMISSION", fmt.Sprintf("requires clan level %d", e.Level)
	}
	if c.Treasury < e.Price {
		return false, "E_NO_RESOURCE", "insufficient treasury"
	}
	return true, "", ""
}

type Kill struct {
	KillerClanID   string
	VictimIsPlayer bool
	VictimClanID   string
	// Configured reward for the victim type and whether one exists.
	Reward    int64
	HasReward bool
}

// KillXP is the clan XP earned for a kill. Clanless killers, friendly fire
// and clanless player victims earn nothing; player kills default to 1.
func KillXP(k Kill) int64 {
	if k.KillerClanID == "" {
		return 0
	}
	if k.VictimIsPlayer {
		if k.VictimClanID == "" || k.VictimClanID == k.KillerClanID {
			return 0
		}
		if k.HasReward && k.Reward > 0 {
			return k.Reward
		}
		return 1
	}
	if !k.HasReward || k.Reward < 0 {
		return 0
	}
	return k.Reward
}

// MobKey strips the namespace from an entity type id.
func MobKey(typeID string) string {
	typeID = strings.ToLower(strings.TrimSpace(typeID))
	if i := strings.IndexByte(typeID, ':'); i >= 0 {
		return typeID[i+1:]
	}
	return typeID
}

func InviteExpired(inv modelpkg.ClanInvite, nowMs int64, ttlSeconds int) bool {
	if ttlSeconds <= 0 {
		return false
	}
	return nowMs-inv.CreatedAt > int64(ttlSeconds)*1000
}

func AdjustXP(c *modelpkg.Clan, op string, amount int64) (ok bool, code string, msg string) {
	if amount < 0 {
		return false, "E_BAD_REQUEST", "amount must be >= 0"
	}
	switch op {
	case "add":
		c.XP += amount
	case "remove":
		c.XP -= amount
		if c.XP < 0 {
			c.XP = 0
		}
	case "set":
		c.XP = amount
	default:
		return false, "E_BAD_REQUEST", "op must be add|remove|set"
	}
	return true, "", ""
}
