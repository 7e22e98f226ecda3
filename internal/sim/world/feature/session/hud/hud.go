package hud

import (
	"fmt"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func Paused(p *modelpkg.Player, nowMs int64) bool {
	return nowMs < p.HUDPausedUntil
}

func Pause(p *modelpkg.Player, nowMs int64, ms int) {
	if ms <= 0 {
		return
	}
	if until := nowMs + int64(ms); until > p.HUDPausedUntil {
		p.HUDPausedUntil = until
	}
}

func ValidMode(mode int) bool {
	return mode >= modelpkg.HUDOff && mode <= modelpkg.HUDBoth
}

func MoneyLine(balance int64, currency string) string {
	return fmt.Sprintf("$ %d %s", balance, currency)
}

func ClanLine(c *modelpkg.Clan) string {
	if c == nil {
		return "[No Clan]"
	}
	return fmt.Sprintf("%s Lvl %d | XP %d", c.Tag, c.Level, c.XP)
}

// Lines renders the overlay for mode; nil means nothing is shown.
func Lines(mode int, balance int64, currency string, c *modelpkg.Clan) []string {
	switch mode {
	case modelpkg.HUDMoney:
		return []string{MoneyLine(balance, currency)}
	case modelpkg.HUDClan:
		return []string{ClanLine(c)}
	case modelpkg.HUDBoth:
		return []string{ClanLine(c), MoneyLine(balance, currency)}
	}
	return nil
}
