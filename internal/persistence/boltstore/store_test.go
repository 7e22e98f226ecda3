package boltstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"voxelkeep.ai/internal/persistence/snapshot"
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/tuning"
	"voxelkeep.ai/internal/sim/world"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.bolt")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStore_EmptyLoad(t *testing.T) {
	s, _ := openTemp(t)
	if s.HasData() {
		t.Fatalf("fresh store should be empty")
	}
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Header.Version != snapshot.Version || snap.Header.Tick != 0 || len(snap.Players) != 0 {
		t.Fatalf("snap=%+v", snap)
	}
}

func TestStore_CommitPutsAndDeletes(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	mute := true
	cs := snapshot.Changeset{
		Tick:       12,
		NowMs:      1_700_000_000_000,
		Players:    []snapshot.PlayerV1{{Name: "alice", Balance: 500, Inventory: map[string]int{"diamond": 3}}},
		Balances:   map[string]int64{"alice": 500},
		Clans:      []snapshot.ClanV1{{ClanID: "C000001", Name: "wolves", Tag: "[WOLVES]", Leader: "alice", Members: []string{"alice"}, Level: 1}},
		Plots:      []snapshot.PlotV1{{PlotID: "P000001", Owner: "alice", Radius: 25}},
		Sales:      []snapshot.SaleV1{{SaleID: "S000001", Buyer: "bob", Seller: "alice", Item: "diamond", Count: 1, Price: 50}},
		Invites:    []snapshot.InviteV1{{Invitee: "bob", ClanID: "C000001", From: "alice"}},
		Zones:      []snapshot.ZoneV1{{ZoneID: "Z000001", Name: "spawn", Max: [3]int{10, 10, 10}, Flags: map[string]bool{"pvp": false}}},
		Warps:      []snapshot.WaypointV1{{Name: "hub", Pos: [3]int{1, 64, 1}, Dim: "overworld"}},
		Vars:       map[string]int64{"land.weekly_rent": 2000},
		GlobalMute: &mute,
		Counters:   &snapshot.CountersV1{NextPlot: 1, NextZone: 1, NextClan: 1, NextSale: 1},
	}
	if err := s.Commit(ctx, cs); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !s.HasData() {
		t.Fatalf("store should report data")
	}

	// Reopen to read from disk.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	snap, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Header.Tick != 12 || snap.Header.NowMs != cs.NowMs {
		t.Fatalf("header=%+v", snap.Header)
	}
	if len(snap.Players) != 1 || snap.Players[0].Inventory["diamond"] != 3 || snap.Balances["alice"] != 500 {
		t.Fatalf("players=%+v balances=%v", snap.Players, snap.Balances)
	}
	if len(snap.Clans) != 1 || snap.Clans[0].Tag != "[WOLVES]" || len(snap.Plots) != 1 {
		t.Fatalf("clans=%+v plots=%+v", snap.Clans, snap.Plots)
	}
	if len(snap.Sales) != 1 || len(snap.Invites) != 1 || len(snap.Zones) != 1 || len(snap.Warps) != 1 {
		t.Fatalf("snap=%+v", snap)
	}
	if !snap.GlobalMute || snap.Vars["land.weekly_rent"] != 2000 || snap.Counters.NextSale != 1 {
		t.Fatalf("meta: mute=%v vars=%v counters=%+v", snap.GlobalMute, snap.Vars, snap.Counters)
	}

	unmute := false
	del := snapshot.Changeset{
		Tick:           13,
		DeletedClans:   []string{"C000001"},
		DeletedPlots:   []string{"P000001"},
		DeletedSales:   []string{"bob"},
		DeletedInvites: []string{"bob"},
		DeletedVars:    []string{"land.weekly_rent"},
		Zones:          []snapshot.ZoneV1{},
		GlobalMute:     &unmute,
	}
	if err := s2.Commit(ctx, del); err != nil {
		t.Fatalf("commit deletes: %v", err)
	}
	snap, err = s2.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Clans) != 0 || len(snap.Plots) != 0 || len(snap.Sales) != 0 || len(snap.Invites) != 0 {
		t.Fatalf("deletes not applied: %+v", snap)
	}
	if len(snap.Zones) != 0 || len(snap.Warps) != 1 {
		t.Fatalf("zones=%v warps=%v", snap.Zones, snap.Warps)
	}
	if snap.GlobalMute || len(snap.Vars) != 0 || len(snap.Players) != 1 {
		t.Fatalf("snap=%+v", snap)
	}
}

func TestStore_CommitCanceledContext(t *testing.T) {
	s, _ := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Commit(ctx, snapshot.Changeset{Tick: 1}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestStore_ImportSnapshotReplaces(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	if err := s.Commit(ctx, snapshot.Changeset{
		Tick:  3,
		Plots: []snapshot.PlotV1{{PlotID: "P000009", Owner: "mallory"}},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	in := snapshot.SnapshotV1{
		Header:   snapshot.Header{Version: snapshot.Version, Tick: 40, NowMs: 99},
		Players:  []snapshot.PlayerV1{{Name: "bob", Balance: 7}},
		Plots:    []snapshot.PlotV1{{PlotID: "P000001", Owner: "bob"}},
		Balances: map[string]int64{"bob": 7},
		Counters: snapshot.CountersV1{NextPlot: 1},
	}
	if err := s.ImportSnapshot(in); err != nil {
		t.Fatalf("import: %v", err)
	}
	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Header.Tick != 40 || len(snap.Plots) != 1 || snap.Plots[0].PlotID != "P000001" {
		t.Fatalf("snap=%+v", snap)
	}
	if snap.Counters.NextPlot != 1 || snap.Balances["bob"] != 7 {
		t.Fatalf("counters=%+v balances=%v", snap.Counters, snap.Balances)
	}
}

func TestStore_Backup(t *testing.T) {
	s, _ := openTemp(t)
	if err := s.Commit(context.Background(), snapshot.Changeset{
		Tick:    1,
		Players: []snapshot.PlayerV1{{Name: "alice"}},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "backup.bolt")
	if err := s.Backup(dst); err != nil {
		t.Fatalf("backup: %v", err)
	}
	b, err := Open(dst)
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	defer b.Close()
	if !b.HasData() {
		t.Fatalf("backup should hold the player")
	}
}

func TestStore_WorldRestartKeepsRecords(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	tun := tuning.Defaults()
	tun.Economy.StartingBalance = 1000
	now := time.UnixMilli(1_700_000_000_000)
	clock := func() time.Time { return now }

	w, err := world.New(world.WorldConfig{ID: "test", Tuning: tun, Clock: clock})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	if err := w.LoadRepository(ctx, s); err != nil {
		t.Fatalf("load repository: %v", err)
	}
	resp := make(chan world.JoinResponse, 1)
	w.StepOnce([]world.JoinRequest{{Name: "alice", Out: make(chan []byte, 16), Resp: resp}}, nil, nil)
	if r := <-resp; r.Err != "" {
		t.Fatalf("join: %s", r.Err)
	}
	act := protocol.ActMsg{Tick: w.CurrentTick(), Instants: []protocol.InstantReq{{ID: "c", Type: protocol.InstantLandClaim}}}
	w.StepOnce(nil, nil, []world.ActionEnvelope{{Player: "alice", Act: act}})
	before := w.ExportSnapshot(w.CurrentTick())
	if len(before.Plots) != 1 {
		t.Fatalf("claim did not land: %+v", before.Plots)
	}
	lastTick := w.CurrentTick()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	w2, err := world.New(world.WorldConfig{ID: "test", Tuning: tun, Clock: clock})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	if err := w2.LoadRepository(ctx, s2); err != nil {
		t.Fatalf("reload: %v", err)
	}
	after := w2.ExportSnapshot(w2.CurrentTick())
	if len(after.Plots) != 1 || after.Plots[0].Owner != "alice" {
		t.Fatalf("plots=%+v", after.Plots)
	}
	if after.Balances["alice"] != before.Balances["alice"] || after.Balances["alice"] != 1000-tun.ClaimCost() {
		t.Fatalf("balance before=%d after=%d", before.Balances["alice"], after.Balances["alice"])
	}
	if after.Counters.NextPlot != 1 {
		t.Fatalf("counters=%+v", after.Counters)
	}
	if w2.CurrentTick() != lastTick {
		t.Fatalf("tick=%d want %d", w2.CurrentTick(), lastTick)
	}
}
