package snapshot

// Changeset is the set of record writes produced by one world tick. Stores
// apply it atomically.
type Changeset struct {
	Tick  uint64
	NowMs int64

	Players []PlayerV1
	Clans   []ClanV1
	Plots   []PlotV1
	Sales   []SaleV1
	Invites []InviteV1

	DeletedClans   []string
	DeletedPlots   []string
	DeletedSales   []string // buyer names
	DeletedInvites []string // invitee names

	// Zones and Warps are rewritten whole when non-nil.
	Zones []ZoneV1
	Warps []WaypointV1

	Balances map[string]int64

	Vars        map[string]int64
	DeletedVars []string

	GlobalMute *bool
	Counters   *CountersV1
}

func (c Changeset) Empty() bool {
	return len(c.Players) == 0 && len(c.Clans) == 0 && len(c.Plots) == 0 &&
		len(c.Sales) == 0 && len(c.Invites) == 0 &&
		len(c.DeletedClans) == 0 && len(c.DeletedPlots) == 0 &&
		len(c.DeletedSales) == 0 && len(c.DeletedInvites) == 0 &&
		c.Zones == nil && c.Warps == nil && len(c.Balances) == 0 &&
		len(c.Vars) == 0 && len(c.DeletedVars) == 0 &&
		c.GlobalMute == nil && c.Counters == nil
}
