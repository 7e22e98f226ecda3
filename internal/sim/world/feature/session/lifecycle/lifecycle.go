package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

const MaxNameLen = 32

func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty player name")
	}
	if len(name) > MaxNameLen {
		return "", fmt.Errorf("player name longer than %d", MaxNameLen)
	}
	return name, nil
}

func NewSessionID() string {
	return uuid.NewString()
}

func NewResumeToken(worldID string) string {
	return "resume_" + worldID + "_" + uuid.NewString()
}

type JoinInput struct {
	Name            string
	Existing        *modelpkg.Player
	StartingBalance int64
	NowMs           int64
	AdminTag        string
	Admins          []string
	// GrantAdmin comes from a verified identity token. Admins from tuning
	// is the only other source; anything else clears the tag.
	GrantAdmin bool
}

// BuildJoinedPlayer returns the record for a joining player and whether it
// was already known.
func BuildJoinedPlayer(in JoinInput) (*modelpkg.Player, bool) {
	p := in.Existing
	returning := p != nil
	if p == nil {
		p = modelpkg.NewPlayer(in.Name, in.StartingBalance, in.NowMs)
	}
	p.InitDefaults()
	// Admin is recomputed on every join so a revoked claim takes effect.
	if in.AdminTag != "" {
		if in.GrantAdmin || slices.Contains(in.Admins, p.Name) {
			p.Tags[in.AdminTag] = true
		} else {
			delete(p.Tags, in.AdminTag)
		}
	}
	return p, returning
}
