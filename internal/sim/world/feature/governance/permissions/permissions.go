package permissions

import (
	"strings"

	"voxelkeep.ai/internal/sim/world/feature/governance/zones"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

type Mutation string

const (
	MutBreak    Mutation = "break"
	MutPlace    Mutation = "place"
	MutInteract Mutation = "interact"
)

// Verdict reasons.
const (
	ReasonAdmin         = "admin"
	ReasonZoneDoor      = "zone_door"
	ReasonZoneContainer = "zone_container"
	ReasonZone          = "zone"
	ReasonOpen          = "open"
	ReasonRentLapsed    = "rent_lapsed"
	ReasonOwner         = "owner"
	ReasonGuest         = "guest"
	ReasonBunker        = "bunker"
	ReasonOwned         = "owned"
)

type Bunker struct {
	HalfWidth int // horizontal half-extent around the clan base
	DepthY    int // positions at or below this y are inside
}

type Input struct {
	Actor        string
	ActorIsAdmin bool
	ActorClanID  string

	Pos   modelpkg.Vec3i
	Kind  Mutation
	Block string

	Zone *modelpkg.Zone
	Plot *modelpkg.LandPlot
	// OwnerClan is the plot owner's clan, nil if the owner has none.
	OwnerClan *modelpkg.Clan

	NowMs  int64
	Bunker Bunker
}

type Verdict struct {
	Allowed  bool
	Reason   string
	ZoneName string
	Owner    string
}

// CanMutate decides whether a block-level mutation is permitted.
// Precedence: admin > zone > plot (rent, owner/guest, clan bunker) > open.
// A matching zone ends evaluation; plot ownership is never consulted inside a zone.
func CanMutate(in Input) Verdict {
	if in.ActorIsAdmin {
		return Verdict{Allowed: true, Reason: ReasonAdmin}
	}
	if z := in.Zone; z != nil {
		v := Verdict{Reason: ReasonZone, ZoneName: z.Name}
		if in.Kind == MutPlace {
			return v
		}
		switch zones.Categorize(in.Block) {
		case zones.BlockDoor:
			if z.Flags.UseDoors {
				return Verdict{Allowed: true, Reason: ReasonZoneDoor, ZoneName: z.Name}
			}
		case zones.BlockContainer:
			if z.Flags.OpenContainers {
				return Verdict{Allowed: true, Reason: ReasonZoneContainer, ZoneName: z.Name}
			}
		}
		return v
	}
	p := in.Plot
	if p == nil {
		return Verdict{Allowed: true, Reason: ReasonOpen}
	}
	if p.RentExpired(in.NowMs) {
		return Verdict{Allowed: true, Reason: ReasonRentLapsed, Owner: p.Owner}
	}
	if p.Owner == in.Actor {
		return Verdict{Allowed: true, Reason: ReasonOwner, Owner: p.Owner}
	}
	if p.Guests[in.Actor] {
		return Verdict{Allowed: true, Reason: ReasonGuest, Owner: p.Owner}
	}
	if InBunker(in.ActorClanID, in.OwnerClan, in.Pos, in.Bunker) {
		return Verdict{Allowed: true, Reason: ReasonBunker, Owner: p.Owner}
	}
	return Verdict{Reason: ReasonOwned, Owner: p.Owner}
}

// InBunker is the clan-mate exception: same clan as the plot owner and pos
// inside the square under that clan's base, at or below the depth threshold.
func InBunker(actorClanID string, ownerClan *modelpkg.Clan, pos modelpkg.Vec3i, b Bunker) bool {
	if actorClanID == "" || ownerClan == nil || ownerClan.ClanID != actorClanID {
		return false
	}
	if pos.Y > b.DepthY {
		return false
	}
	dx := pos.X - ownerClan.Base.X
	if dx < 0 {
		dx = -dx
	}
	dz := pos.Z - ownerClan.Base.Z
	if dz < 0 {
		dz = -dz
	}
	return dx <= b.HalfWidth && dz <= b.HalfWidth
}

// DeniedNotice is the one-line overlay text shown on denial.
func DeniedNotice(v Verdict) string {
	if v.ZoneName != "" {
		return "Protected: " + v.ZoneName
	}
	if v.Owner != "" {
		return "OWNED BY: " + strings.ToUpper(v.Owner)
	}
	return "Protected"
}
