package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelkeep.ai/internal/persistence/snapshot"
	"voxelkeep.ai/internal/sim/tuning"
	"voxelkeep.ai/internal/sim/world"
)

// SQLiteIndex is a queryable copy of the tick and audit logs. Writes are
// queued and batched on one goroutine; the JSONL logs stay the source of
// truth, so a full queue drops rows instead of stalling the world loop.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropAudit    atomic.Uint64
	dropSnapshot atomic.Uint64
	writeErrors  atomic.Uint64
}

type Stats struct {
	QueueDepth        int
	QueueCapacity     int
	DropTickTotal     uint64
	DropAuditTotal    uint64
	DropSnapshotTotal uint64
	WriteErrorTotal   uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqAudit
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	audit    world.AuditEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick     uint64
	NowMs    int64
	Path     string
	Digest   string
	Players  int
	Clans    int
	Plots    int
	Zones    int
	Balances map[string]int64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	return openSQLite(path, 65536)
}

func openSQLite(path string, queue int) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, queue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tuning (
			digest TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			applied_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			now_ms INTEGER NOT NULL,
			digest TEXT NOT NULL,
			joins INTEGER NOT NULL,
			leaves INTEGER NOT NULL,
			actions INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS joins (
			tick INTEGER NOT NULL,
			player TEXT NOT NULL,
			PRIMARY KEY (tick, player)
		);`,
		`CREATE TABLE IF NOT EXISTS leaves (
			tick INTEGER NOT NULL,
			player TEXT NOT NULL,
			PRIMARY KEY (tick, player)
		);`,
		`CREATE TABLE IF NOT EXISTS actions (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			player TEXT NOT NULL,
			act_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_player_tick ON actions(player, tick);`,
		`CREATE TABLE IF NOT EXISTS audits (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			now_ms INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			target TEXT,
			x INTEGER,
			y INTEGER,
			z INTEGER,
			amount INTEGER NOT NULL,
			reason TEXT,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_actor_tick ON audits(actor, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_action_tick ON audits(action, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			now_ms INTEGER NOT NULL,
			path TEXT NOT NULL,
			digest TEXT NOT NULL,
			players INTEGER NOT NULL,
			clans INTEGER NOT NULL,
			plots INTEGER NOT NULL,
			zones INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS balances (
			tick INTEGER NOT NULL,
			player TEXT NOT NULL,
			balance INTEGER NOT NULL,
			PRIMARY KEY (tick, player)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_balances_player_tick ON balances(player, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`)
	return err
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropAuditTotal:    s.dropAudit.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
		WriteErrorTotal:   s.writeErrors.Load(),
	}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		s.dropTick.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqAudit, audit: entry}:
	default:
		s.dropAudit.Add(1)
	}
	return nil
}

// RecordSnapshot indexes a written snapshot file and the balances it holds.
func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	bal := make(map[string]int64, len(snap.Balances))
	for k, v := range snap.Balances {
		bal[k] = v
	}
	r := snapshotRow{
		Tick:     snap.Header.Tick,
		NowMs:    snap.Header.NowMs,
		Path:     path,
		Digest:   snap.Header.Digest,
		Players:  len(snap.Players),
		Clans:    len(snap.Clans),
		Plots:    len(snap.Plots),
		Zones:    len(snap.Zones),
		Balances: bal,
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

// RecordTuning stores the tuning actually applied, keyed by its digest.
func (s *SQLiteIndex) RecordTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO tuning(digest,json,applied_at) VALUES(?,?,?)`,
		tune.Digest(), string(b), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,now_ms,digest,joins,leaves,actions,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertJoin, _ := s.db.Prepare(`INSERT OR REPLACE INTO joins(tick,player) VALUES(?,?)`)
	insertLeave, _ := s.db.Prepare(`INSERT OR REPLACE INTO leaves(tick,player) VALUES(?,?)`)
	insertAction, _ := s.db.Prepare(`INSERT OR REPLACE INTO actions(tick,seq,player,act_json) VALUES(?,?,?,?)`)
	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(tick,seq,now_ms,actor,action,target,x,y,z,amount,reason,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,now_ms,path,digest,players,clans,plots,zones) VALUES(?,?,?,?,?,?,?,?)`)
	insertBalance, _ := s.db.Prepare(`INSERT OR REPLACE INTO balances(tick,player,balance) VALUES(?,?,?)`)
	stmts := []*sql.Stmt{insertTick, insertJoin, insertLeave, insertAction, insertAudit, insertSnapshot, insertBalance}
	defer func() {
		for _, st := range stmts {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastAuditTick uint64
		auditSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			s.writeErrors.Add(1)
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.writeErrors.Add(1)
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		s.writeErrors.Add(1)
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil || tx == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			e := r.tick
			b, _ := json.Marshal(e)
			if !exec(insertTick, int64(e.Tick), e.NowMs, e.Digest, len(e.Joins), len(e.Leaves), len(e.Actions), string(b)) {
				continue
			}
			for _, j := range e.Joins {
				if !exec(insertJoin, int64(e.Tick), j.Player) {
					break
				}
			}
			for _, name := range e.Leaves {
				if !exec(insertLeave, int64(e.Tick), name) {
					break
				}
			}
			for i, a := range e.Actions {
				actJSON, _ := json.Marshal(a.Act)
				if !exec(insertAction, int64(e.Tick), i, a.Player, string(actJSON)) {
					break
				}
			}

		case reqAudit:
			a := r.audit
			if a.Tick != lastAuditTick {
				lastAuditTick = a.Tick
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			raw, _ := json.Marshal(a)
			var x, y, z any
			if a.Pos != nil {
				x, y, z = a.Pos[0], a.Pos[1], a.Pos[2]
			}
			exec(insertAudit, int64(a.Tick), seq, a.NowMs, a.Actor, a.Action, a.Target, x, y, z, a.Amount, a.Reason, string(raw))

		case reqSnapshot:
			sn := r.snapshot
			if !exec(insertSnapshot, int64(sn.Tick), sn.NowMs, sn.Path, sn.Digest, sn.Players, sn.Clans, sn.Plots, sn.Zones) {
				continue
			}
			names := make([]string, 0, len(sn.Balances))
			for name := range sn.Balances {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if !exec(insertBalance, int64(sn.Tick), name, sn.Balances[name]) {
					break
				}
			}
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
