// Package resume decides whether a reconnecting host may take over a
// player's session.
package resume

import "crypto/subtle"

type Decision int

const (
	// Fresh: no live session to take over; a new token is issued.
	Fresh Decision = iota
	// Resumed: the presented token matches; the token is kept.
	Resumed
	// Refused: the player is connected and the token does not match.
	Refused
)

// Decide compares the presented token with the one last issued to the
// player. live reports whether the player still has a connected session.
func Decide(live bool, issued, presented string) Decision {
	if Match(issued, presented) {
		return Resumed
	}
	if live {
		return Refused
	}
	return Fresh
}

func Match(issued, presented string) bool {
	if issued == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(issued), []byte(presented)) == 1
}
