package world

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voxelkeep.ai/internal/persistence/snapshot"
)

// Admin request kinds served by RequestAdmin.
const (
	AdminState       = "state"
	AdminZones       = "zones"
	AdminBalance     = "balance"
	AdminConfig      = "config"
	AdminLeaderboard = "leaderboard"
)

type AdminRequest struct {
	Kind string `json:"kind"`

	// balance: Target with optional Op (add|remove|set) and Amount.
	Target string `json:"target,omitempty"`
	Op     string `json:"op,omitempty"`
	Amount int64  `json:"amount,omitempty"`

	// config: Key with Value sets; Key with Clear removes the override.
	Key   string `json:"key,omitempty"`
	Value *int64 `json:"value,omitempty"`
	Clear bool   `json:"clear,omitempty"`
}

// mutates reports whether serving the request may change world state.
func (r AdminRequest) mutates() bool {
	switch r.Kind {
	case AdminBalance:
		return r.Op != ""
	case AdminConfig:
		return r.Key != ""
	}
	return false
}

type adminReq struct {
	Req  AdminRequest
	Resp chan adminResp
}

type adminResp struct {
	Data interface{}
	Err  string
}

type StateView struct {
	WorldID      string           `json:"world_id"`
	Tick         uint64           `json:"tick"`
	NowMs        int64            `json:"now_ms"`
	Online       []string         `json:"online"`
	Players      int              `json:"players"`
	Clans        int              `json:"clans"`
	Plots        int              `json:"plots"`
	Zones        int              `json:"zones"`
	PendingSales int              `json:"pending_sales"`
	GlobalMute   bool             `json:"global_mute"`
	TuningDigest string           `json:"tuning_digest"`
	Vars         map[string]int64 `json:"vars"`
}

type BalanceView struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// RequestAdmin runs req inside the world loop at the next tick boundary.
// It is safe to call from other goroutines (e.g. HTTP handlers).
func (w *World) RequestAdmin(ctx context.Context, req AdminRequest) (interface{}, error) {
	if w == nil || w.admin == nil {
		return nil, errors.New("admin requests not available")
	}
	resp := make(chan adminResp, 1)
	select {
	case w.admin <- adminReq{Req: req, Resp: resp}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-resp:
		if r.Err != "" {
			return nil, errors.New(r.Err)
		}
		return r.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *World) handleAdminRequests(reqs []adminReq, nowTick uint64) []AdminRequest {
	var applied []AdminRequest
	for _, r := range reqs {
		data, err := w.serveAdmin(r.Req, nowTick)
		if err == nil && r.Req.mutates() {
			applied = append(applied, r.Req)
		}
		out := adminResp{Data: data}
		if err != nil {
			out.Err = err.Error()
		}
		if r.Resp == nil {
			continue
		}
		select {
		case r.Resp <- out:
		default:
			// Client timed out; don't block the sim loop.
		}
	}
	return applied
}

func (w *World) serveAdmin(req AdminRequest, nowTick uint64) (interface{}, error) {
	switch req.Kind {
	case AdminState:
		return StateView{
			WorldID:      w.cfg.ID,
			Tick:         nowTick,
			NowMs:        w.nowMs,
			Online:       w.onlineNames(),
			Players:      len(w.players),
			Clans:        len(w.clans),
			Plots:        len(w.plots),
			Zones:        len(w.zones),
			PendingSales: len(w.sales),
			GlobalMute:   w.globalMute,
			TuningDigest: w.tun.Digest(),
			Vars:         w.varsView(),
		}, nil
	case AdminZones:
		out := make([]snapshot.ZoneV1, 0, len(w.zones))
		for _, z := range w.zones {
			out = append(out, zoneToV1(z))
		}
		return out, nil
	case AdminBalance:
		b := w.book()
		if !b.Known(req.Target) {
			return nil, fmt.Errorf("unknown player %q", req.Target)
		}
		if req.Op == "" {
			return BalanceView{Name: req.Target, Balance: b.Balance(req.Target)}, nil
		}
		bal, ok := b.AdminAdjust(req.Target, req.Op, req.Amount)
		if !ok {
			return nil, errors.New("op must be add|remove|set with amount >= 0")
		}
		w.markPlayer(req.Target)
		w.audit(nowTick, "admin-http", "ADMIN_BALANCE", req.Target, nil, req.Amount, req.Op, map[string]interface{}{"balance": bal})
		return BalanceView{Name: req.Target, Balance: bal}, nil
	case AdminConfig:
		if req.Key == "" {
			return w.varsView(), nil
		}
		var v *int64
		if !req.Clear {
			if req.Value == nil || *req.Value < 0 {
				return nil, errors.New("value must be >= 0")
			}
			v = req.Value
		}
		if !w.setVar(req.Key, v) {
			return nil, fmt.Errorf("unknown variable %q", req.Key)
		}
		key := strings.ToLower(strings.TrimSpace(req.Key))
		cur, _ := w.varValue(key)
		w.audit(nowTick, "admin-http", "ADMIN_CONFIG", key, nil, cur, "", nil)
		return map[string]int64{key: cur}, nil
	case AdminLeaderboard:
		return w.leaderboard(), nil
	}
	return nil, fmt.Errorf("unknown admin request %q", req.Kind)
}

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Tick uint64
	Err  string
}

// RequestSnapshot asks the world loop goroutine to enqueue a snapshot.
func (w *World) RequestSnapshot(ctx context.Context) (tick uint64, err error) {
	if w == nil || w.adminSnap == nil {
		return 0, errors.New("admin snapshot not available")
	}
	resp := make(chan adminSnapshotResp, 1)
	select {
	case w.adminSnap <- adminSnapshotReq{Resp: resp}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-resp:
		if r.Err != "" {
			return r.Tick, errors.New(r.Err)
		}
		return r.Tick, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (w *World) handleAdminSnapshotRequests(reqs []adminSnapshotReq) {
	if w == nil || len(reqs) == 0 {
		return
	}
	cur := w.tick.Load()
	snapTick := uint64(0)
	if cur > 0 {
		snapTick = cur - 1
	}

	errStr := ""
	if w.snapshotSink == nil {
		errStr = "snapshot sink not configured"
	} else {
		snap := w.ExportSnapshot(snapTick)
		select {
		case w.snapshotSink <- snap:
		default:
			errStr = "snapshot sink backpressure"
		}
	}

	resp := adminSnapshotResp{Tick: snapTick, Err: errStr}
	for _, r := range reqs {
		if r.Resp == nil {
			continue
		}
		select {
		case r.Resp <- resp:
		default:
		}
	}
}
