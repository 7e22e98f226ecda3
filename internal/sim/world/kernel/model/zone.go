package model

type ZoneFlags struct {
	PvP            bool
	OpenContainers bool
	UseDoors       bool
	ClanEffects    bool
	HostileMobs    bool
	PassiveMobs    bool
	ShowBorder     bool
}

func DefaultZoneFlags() ZoneFlags {
	return ZoneFlags{
		UseDoors:    true,
		ClanEffects: true,
		ShowBorder:  true,
	}
}

// Zone is an admin-defined cuboid with inclusive bounds. Zones override land plots.
type Zone struct {
	ZoneID string
	Name   string
	Min    Vec3i
	Max    Vec3i
	Flags  ZoneFlags

	CreatedAt int64
}

func (z *Zone) Contains(pos Vec3i) bool {
	return pos.X >= z.Min.X && pos.X <= z.Max.X &&
		pos.Y >= z.Min.Y && pos.Y <= z.Max.Y &&
		pos.Z >= z.Min.Z && pos.Z <= z.Max.Z
}
