package welcome

import "voxelkeep.ai/internal/protocol"

type Input struct {
	SessionID    string
	PlayerName   string
	ResumeToken  string
	Admin        bool
	Returning    bool
	WorldID      string
	TickRateHz   int
	Currency     string
	MaxWaypoints int
	ClanCost     int64
	ClaimCost    int64
	WeeklyRent   int64
	PlotRadius   int
	MaxMembers   int
	TuningDigest string
}

func Build(in Input) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       in.SessionID,
		PlayerName:      in.PlayerName,
		ResumeToken:     in.ResumeToken,
		Admin:           in.Admin,
		Returning:       in.Returning,
		WorldID:         in.WorldID,
		Economy: protocol.EconomyParams{
			TickRateHz:     in.TickRateHz,
			Currency:       in.Currency,
			MaxWaypoints:   in.MaxWaypoints,
			ClanCreateCost: in.ClanCost,
			ClaimCost:      in.ClaimCost,
			WeeklyRent:     in.WeeklyRent,
			PlotRadius:     in.PlotRadius,
			MaxMembers:     in.MaxMembers,
			TuningDigest:   in.TuningDigest,
		},
	}
}
