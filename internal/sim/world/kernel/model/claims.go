package model

// LandPlot is a player-claimed square footprint, unbounded in y.
type LandPlot struct {
	PlotID string
	Owner  string // player name
	Center Vec3i
	Radius int // square radius in blocks

	// Unix ms. Past this instant the plot is open to everyone until rent is paid again.
	RentExpiresAt int64
	Guests        map[string]bool // player names

	CreatedAt int64
}

func (c *LandPlot) InitDefaults() {
	if c.Guests == nil {
		c.Guests = map[string]bool{}
	}
}

func (c *LandPlot) Contains(pos Vec3i) bool {
	dx := pos.X - c.Center.X
	if dx < 0 {
		dx = -dx
	}
	dz := pos.Z - c.Center.Z
	if dz < 0 {
		dz = -dz
	}
	return dx <= c.Radius && dz <= c.Radius
}

func (c *LandPlot) RentExpired(nowMs int64) bool {
	return nowMs > c.RentExpiresAt
}

func (c *LandPlot) IsOwnerOrGuest(name string) bool {
	if c == nil || name == "" {
		return false
	}
	return c.Owner == name || c.Guests[name]
}
