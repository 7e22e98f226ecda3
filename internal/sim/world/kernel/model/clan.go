package model

const (
	ClanMinLevel = 1
	ClanMaxLevel = 100
)

type Clan struct {
	ClanID    string
	Name      string
	Tag       string
	Color     string
	Leader    string
	CreatedAt int64

	Members map[string]bool // player names

	Level    int
	XP       int64
	Treasury int64

	// Base is the bunker interior anchor; the bunker exception is measured from here.
	Base Vec3i

	UnlockedEffects     map[string]bool
	EffectRentExpiresAt int64
}

func (c *Clan) InitDefaults() {
	if c.Members == nil {
		c.Members = map[string]bool{}
	}
	if c.UnlockedEffects == nil {
		c.UnlockedEffects = map[string]bool{}
	}
	if c.Level < ClanMinLevel {
		c.Level = ClanMinLevel
	}
	if c.Level > ClanMaxLevel {
		c.Level = ClanMaxLevel
	}
	if c.XP < 0 {
		c.XP = 0
	}
	if c.Treasury < 0 {
		c.Treasury = 0
	}
	if c.Leader != "" {
		c.Members[c.Leader] = true
	}
}

func (c *Clan) IsMember(name string) bool {
	if c == nil || name == "" {
		return false
	}
	return c.Members[name]
}

func (c *Clan) EffectRentActive(nowMs int64) bool {
	return c != nil && nowMs < c.EffectRentExpiresAt
}

// ClanInvite is a pending membership offer, keyed by the invitee.
type ClanInvite struct {
	ClanID    string
	From      string
	CreatedAt int64
}
