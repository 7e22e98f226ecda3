package protocol

// STATUS (server -> host): per-player frame sent every few ticks.
type StatusMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Player          string `json:"player"`

	Balance   int64       `json:"balance"`
	Inventory []ItemStack `json:"inventory"`

	// HUD is omitted while the overlay is off or paused.
	HUD      *HUDObs     `json:"hud,omitempty"`
	Clan     *ClanObs    `json:"clan,omitempty"`
	Location LocationObs `json:"location"`
	Effects  []EffectObs `json:"effects"`
	Events   []Event     `json:"events"`
}

type HUDObs struct {
	Mode  int      `json:"mode"`
	Lines []string `json:"lines"`
}

type ClanObs struct {
	ClanID      string   `json:"clan_id"`
	Name        string   `json:"name"`
	Tag         string   `json:"tag"`
	Color       string   `json:"color"`
	Leader      string   `json:"leader"`
	Level       int      `json:"level"`
	Rank        string   `json:"rank"`
	XP          int64    `json:"xp"`
	XPNext      int64    `json:"xp_next"`
	Treasury    int64    `json:"treasury"`
	Members     []string `json:"members"`
	EffectsRent bool     `json:"effects_rent_active"`
}

type LocationObs struct {
	Pos        [3]int `json:"pos"`
	Dim        string `json:"dim"`
	ZoneID     string `json:"zone_id,omitempty"`
	ZoneName   string `json:"zone_name,omitempty"`
	PlotID     string `json:"plot_id,omitempty"`
	PlotOwner  string `json:"plot_owner,omitempty"`
	RentActive bool   `json:"rent_active,omitempty"`
	ShowBorder bool   `json:"show_border,omitempty"`
}

type EffectObs struct {
	Effect    string `json:"effect"`
	Amplifier int    `json:"amplifier"`
	Source    string `json:"source"`
}

type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type Event map[string]interface{}
