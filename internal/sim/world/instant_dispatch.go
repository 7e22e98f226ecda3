package world

import "voxelkeep.ai/internal/protocol"

type instantHandler func(*World, *Player, protocol.InstantReq, uint64)

var instantDispatch = map[string]instantHandler{
	protocol.InstantMove:          handleInstantMove,
	protocol.InstantInventorySync: handleInstantInventorySync,

	protocol.InstantBreakBlock:    handleInstantBlock,
	protocol.InstantPlaceBlock:    handleInstantBlock,
	protocol.InstantInteractBlock: handleInstantBlock,
	protocol.InstantMobSpawn:      handleInstantMobSpawn,
	protocol.InstantKill:          handleInstantKill,

	protocol.InstantTransfer:    handleInstantTransfer,
	protocol.InstantLeaderboard: handleInstantLeaderboard,

	protocol.InstantClanCreate:       handleInstantClanCreate,
	protocol.InstantClanInvite:       handleInstantClanInvite,
	protocol.InstantClanInviteAnswer: handleInstantClanInviteAnswer,
	protocol.InstantClanKick:         handleInstantClanKick,
	protocol.InstantClanLeave:        handleInstantClanLeave,
	protocol.InstantClanDissolve:     handleInstantClanDissolve,
	protocol.InstantClanDeposit:      handleInstantClanDeposit,
	protocol.InstantClanEdit:         handleInstantClanEdit,
	protocol.InstantClanLevelUp:      handleInstantClanLevelUp,
	protocol.InstantClanUnlockEffect: handleInstantClanUnlockEffect,
	protocol.InstantClanPayEffects:   handleInstantClanPayEffects,
	protocol.InstantEffectToggle:     handleInstantEffectToggle,
	protocol.InstantKitClaim:         handleInstantKitClaim,

	protocol.InstantLandClaim:       handleInstantLandClaim,
	protocol.InstantLandPayRent:     handleInstantLandPayRent,
	protocol.InstantLandGuestAdd:    handleInstantLandGuestAdd,
	protocol.InstantLandGuestRemove: handleInstantLandGuestRemove,
	protocol.InstantLandAbandon:     handleInstantLandAbandon,

	protocol.InstantTradeOffer:  handleInstantTradeOffer,
	protocol.InstantTradeAccept: handleInstantTradeAccept,
	protocol.InstantTradeReject: handleInstantTradeReject,

	protocol.InstantWaypointAdd:    handleInstantWaypointAdd,
	protocol.InstantWaypointDelete: handleInstantWaypointDelete,
	protocol.InstantTravel:         handleInstantTravel,
	protocol.InstantSay:            handleInstantSay,
	protocol.InstantHUDMode:        handleInstantHUDMode,

	protocol.InstantZoneCreate: adminOnly(handleInstantZoneCreate),
	protocol.InstantZoneDelete: adminOnly(handleInstantZoneDelete),
	protocol.InstantZoneEdit:   adminOnly(handleInstantZoneEdit),
	protocol.InstantWarpAdd:    adminOnly(handleInstantWarpAdd),
	protocol.InstantWarpDelete: adminOnly(handleInstantWarpDelete),

	protocol.InstantAdminBalance:    adminOnly(handleInstantAdminBalance),
	protocol.InstantAdminClanLeader: adminOnly(handleInstantAdminClanLeader),
	protocol.InstantAdminClanXP:     adminOnly(handleInstantAdminClanXP),
	protocol.InstantAdminClanDelete: adminOnly(handleInstantAdminClanDelete),
	protocol.InstantAdminLandDelete: adminOnly(handleInstantAdminLandDelete),
	protocol.InstantAdminMute:       adminOnly(handleInstantAdminMute),
	protocol.InstantAdminUnmute:     adminOnly(handleInstantAdminUnmute),
	protocol.InstantAdminGlobalMute: adminOnly(handleInstantAdminGlobalMute),
	protocol.InstantAdminConfig:     adminOnly(handleInstantAdminConfig),
}

func adminOnly(h instantHandler) instantHandler {
	return func(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
		if !w.isAdmin(p) {
			p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "admin only"))
			return
		}
		h(w, p, inst, nowTick)
	}
}
