package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"voxelkeep.ai/internal/persistence/snapshot"
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/tuning"
	"voxelkeep.ai/internal/sim/world"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	_ = s.WriteAudit(world.AuditEntry{Tick: 2})
	s.RecordSnapshot("/tmp/2.snap.zst", snapshot.SnapshotV1{})

	st := s.Stats()
	if st.DropTickTotal != 1 || st.DropAuditTotal != 1 || st.DropSnapshotTotal != 1 {
		t.Fatalf("drops=%+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_WritesAndQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.RecordTuning(tuning.Defaults()); err != nil {
		t.Fatalf("tuning: %v", err)
	}
	_ = idx.WriteTick(world.TickLogEntry{
		Tick:    5,
		NowMs:   1000,
		Joins:   []world.RecordedJoin{{Player: "alice"}},
		Actions: []world.RecordedAction{{Player: "alice", Act: protocol.ActMsg{Tick: 5}}, {Player: "alice", Act: protocol.ActMsg{Tick: 5}}},
		Digest:  "d5",
	})
	_ = idx.WriteTick(world.TickLogEntry{Tick: 6, Leaves: []string{"alice"}, Digest: "d6"})
	pos := [3]int{1, 64, 2}
	_ = idx.WriteAudit(world.AuditEntry{Tick: 5, Actor: "alice", Action: "LAND_CLAIM", Target: "P000001", Pos: &pos, Amount: 142})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 5, Actor: "alice", Action: "TRANSFER", Target: "bob", Amount: 10})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 7, Actor: "admin", Action: "ADMIN_BALANCE", Target: "bob", Amount: 50, Reason: "set"})
	idx.RecordSnapshot("/tmp/10.snap.zst", snapshot.SnapshotV1{
		Header:   snapshot.Header{Tick: 10, Digest: "x"},
		Balances: map[string]int64{"alice": 848, "bob": 60},
	})
	idx.RecordSnapshot("/tmp/20.snap.zst", snapshot.SnapshotV1{
		Header:   snapshot.Header{Tick: 20, Digest: "y"},
		Balances: map[string]int64{"alice": 800},
	})
	// Close drains the queue and commits.
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if st := idx.Stats(); st.WriteErrorTotal != 0 {
		t.Fatalf("write errors: %+v", st)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	rows, err := r.Audits(ctx, AuditQuery{Actor: "alice"})
	if err != nil {
		t.Fatalf("audits: %v", err)
	}
	if len(rows) != 2 || rows[0].Action != "TRANSFER" || rows[1].Action != "LAND_CLAIM" {
		t.Fatalf("rows=%+v", rows)
	}
	if rows[1].Pos == nil || *rows[1].Pos != pos || rows[0].Pos != nil {
		t.Fatalf("pos: %+v %+v", rows[0].Pos, rows[1].Pos)
	}
	rows, err = r.Audits(ctx, AuditQuery{FromTick: 6})
	if err != nil || len(rows) != 1 || rows[0].Reason != "set" {
		t.Fatalf("from tick: rows=%+v err=%v", rows, err)
	}
	rows, err = r.Audits(ctx, AuditQuery{Action: "LAND_CLAIM", Limit: 1})
	if err != nil || len(rows) != 1 || rows[0].Target != "P000001" {
		t.Fatalf("by action: rows=%+v err=%v", rows, err)
	}

	hist, err := r.BalanceHistory(ctx, "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 || hist[0].Tick != 10 || hist[0].Balance != 848 || hist[1].Balance != 800 {
		t.Fatalf("hist=%+v", hist)
	}

	n, err := r.PlayerActions(ctx, "alice", 0, 10)
	if err != nil || n != 2 {
		t.Fatalf("actions=%d err=%v", n, err)
	}
}

func TestSQLiteIndex_WriteAfterCloseIsNoop(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := idx.WriteTick(world.TickLogEntry{Tick: 1}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestOpenReader_MissingFile(t *testing.T) {
	if _, err := OpenReader(filepath.Join(t.TempDir(), "nope.sqlite")); err == nil {
		t.Fatalf("expected error")
	}
}
