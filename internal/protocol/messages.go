package protocol

// HELLO (host -> server), one per player session.
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	PlayerName      string            `json:"player_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
	Auth            *HelloAuth        `json:"auth,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// HelloAuth carries a host-signed identity token. ResumeToken reattaches a
// dropped session without re-announcing the join.
type HelloAuth struct {
	Token       string `json:"token,omitempty"`
	ResumeToken string `json:"resume_token,omitempty"`
}

// WELCOME (server -> host)
type WelcomeMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	SessionID       string        `json:"session_id"`
	PlayerName      string        `json:"player_name"`
	ResumeToken     string        `json:"resume_token"`
	Admin           bool          `json:"admin"`
	Returning       bool          `json:"returning"`
	WorldID         string        `json:"world_id"`
	Economy         EconomyParams `json:"economy"`
}

type EconomyParams struct {
	TickRateHz     int    `json:"tick_rate_hz"`
	Currency       string `json:"currency"`
	MaxWaypoints   int    `json:"max_waypoints"`
	ClanCreateCost int64  `json:"clan_create_cost"`
	ClaimCost      int64  `json:"claim_cost"`
	WeeklyRent     int64  `json:"weekly_rent"`
	PlotRadius     int    `json:"plot_radius"`
	MaxMembers     int    `json:"max_members"`
	TuningDigest   string `json:"tuning_digest,omitempty"`
}

// ERROR (server -> host) reports a transport-level rejection. Rule
// failures travel as ACTION_RESULT events instead.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
	Retryable       bool   `json:"retryable,omitempty"`
}
