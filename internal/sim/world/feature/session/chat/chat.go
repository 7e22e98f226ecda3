package chat

import (
	"fmt"
	"strings"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

type RateLimits struct {
	SayWindowTicks uint64
	SayMax         int
}

type RateLimitSpec struct {
	Kind       string
	Window     uint64
	Max        int
	RateErrMsg string
}

func LimitSpec(limits RateLimits) RateLimitSpec {
	return RateLimitSpec{
		Kind:       "SAY",
		Window:     limits.SayWindowTicks,
		Max:        limits.SayMax,
		RateErrMsg: "too many SAY",
	}
}

type MuteReason string

const (
	NotMuted      MuteReason = ""
	MutedTemp     MuteReason = "temporary"
	MutedForever  MuteReason = "permanent"
	MutedGlobally MuteReason = "global"
)

type MuteCheck struct {
	Reason MuteReason
	// RemainingMs is set for temporary mutes.
	RemainingMs int64
	// ClearExpired asks the caller to drop a temporary mute that has run out.
	ClearExpired bool
}

// CheckMute evaluates temporary, permanent and global mutes in that order.
// Admins are exempt from the global mute only.
func CheckMute(p *modelpkg.Player, nowMs int64, globalMute, isAdmin bool) MuteCheck {
	var out MuteCheck
	if p.MuteUntil > 0 {
		if nowMs < p.MuteUntil {
			return MuteCheck{Reason: MutedTemp, RemainingMs: p.MuteUntil - nowMs}
		}
		out.ClearExpired = true
	}
	if p.MutedPermanent {
		out.Reason = MutedForever
		return out
	}
	if globalMute && !isAdmin {
		out.Reason = MutedGlobally
	}
	return out
}

func (m MuteCheck) Message() string {
	switch m.Reason {
	case MutedTemp:
		secs := (m.RemainingMs + 999) / 1000
		return fmt.Sprintf("you are muted for %dm %ds", secs/60, secs%60)
	case MutedForever:
		return "you are muted by an administrator"
	case MutedGlobally:
		return "chat is globally disabled"
	}
	return ""
}

// ClanPrefix marks a message for the private clan channel.
const ClanPrefix = "."

// SplitClanMessage strips the clan-channel prefix. ok is false for public chat.
func SplitClanMessage(text string) (body string, ok bool) {
	if !strings.HasPrefix(text, ClanPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(text, ClanPrefix)), true
}

func ClanPrivatePrefix(c *modelpkg.Clan) string {
	return "[" + strings.ToUpper(c.Name) + " PRIVATE]"
}

func SpyPrefix(c *modelpkg.Clan) string {
	return "[SPY-" + c.Tag + "]"
}

type Delivery struct {
	To     string
	Prefix string
}

// ClanRecipients is every online clan member plus every online admin;
// admins outside the clan get the spy prefix.
func ClanRecipients(c *modelpkg.Clan, online []string, isAdmin func(string) bool) []Delivery {
	var out []Delivery
	for _, name := range online {
		member := c.IsMember(name)
		admin := isAdmin != nil && isAdmin(name)
		switch {
		case member:
			out = append(out, Delivery{To: name, Prefix: ClanPrivatePrefix(c)})
		case admin:
			out = append(out, Delivery{To: name, Prefix: SpyPrefix(c)})
		}
	}
	return out
}

// PublicPrefix is the colored tag shown before a clan member's public messages.
func PublicPrefix(c *modelpkg.Clan) string {
	if c == nil {
		return ""
	}
	return c.Tag
}
