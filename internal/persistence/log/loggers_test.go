package log

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"voxelkeep.ai/internal/sim/world"
)

func TestJSONLZstdWriter_RotatesHourlyAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w := NewJSONLZstdWriter(filepath.Join(dir, "audit"), "audit")
	w.now = func() time.Time { return now }

	if err := w.Write(world.AuditEntry{Tick: 1, Actor: "alice", Action: "LAND_CLAIM"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write(world.AuditEntry{Tick: 2, Actor: "alice", Action: "TRANSFER"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if err := w.Write(world.AuditEntry{Tick: 3, Actor: "bob", Action: "CLAN_CREATE"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := LogFiles(dir, "audit")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "audit-2026-03-01-10.jsonl.zst" {
		t.Fatalf("files=%v", files)
	}
	var got []world.AuditEntry
	for _, f := range files {
		if err := ReadJSONL(f, func(line json.RawMessage) error {
			var e world.AuditEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return err
			}
			got = append(got, e)
			return nil
		}); err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
	}
	if len(got) != 3 || got[0].Action != "LAND_CLAIM" || got[2].Actor != "bob" {
		t.Fatalf("got=%+v", got)
	}
}

func TestJSONLZstdWriter_ReopenAppendsFrames(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		w := NewJSONLZstdWriter(dir, "events")
		w.now = func() time.Time { return now }
		if err := w.Write(world.TickLogEntry{Tick: uint64(i)}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	n := 0
	err := ReadJSONL(filepath.Join(dir, "events-2026-03-01-10.jsonl.zst"), func(json.RawMessage) error {
		n++
		return nil
	})
	if err != nil || n != 2 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

type countingAudit struct {
	n   int
	err error
}

func (c *countingAudit) WriteAudit(world.AuditEntry) error {
	c.n++
	return c.err
}

func TestTeeAudit_WritesAllAndJoinsErrors(t *testing.T) {
	a := &countingAudit{}
	b := &countingAudit{err: errors.New("full")}
	tee := TeeAudit{a, nil, b}
	err := tee.WriteAudit(world.AuditEntry{Tick: 1})
	if err == nil || a.n != 1 || b.n != 1 {
		t.Fatalf("a=%d b=%d err=%v", a.n, b.n, err)
	}
}
