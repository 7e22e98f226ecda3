package world

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"voxelkeep.ai/internal/persistence/snapshot"
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/tuning"
	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

type Vec3i = modelpkg.Vec3i
type Player = modelpkg.Player
type Clan = modelpkg.Clan
type LandPlot = modelpkg.LandPlot
type Zone = modelpkg.Zone
type PendingSale = modelpkg.PendingSale
type Waypoint = modelpkg.Waypoint

type WorldConfig struct {
	ID     string
	Tuning tuning.Tuning
	// Clock supplies wall time for rent, escrow, cooldown and mute windows.
	// Defaults to time.Now.
	Clock func() time.Time
}

type JoinRequest struct {
	Name string
	// Admin is set when a verified identity token grants admin.
	Admin       bool
	ResumeToken string
	Out         chan []byte
	// Resp must be buffered with room for the reply.
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Err     string
}

type ActionEnvelope struct {
	Player string
	Act    protocol.ActMsg
}

type RecordedJoin struct {
	Player string `json:"player"`
	Admin  bool   `json:"admin,omitempty"`
}

type RecordedAction struct {
	Player string          `json:"player"`
	Act    protocol.ActMsg `json:"act"`
}

// Repository is the durable store of world records. Load is called once
// before the loop starts; Commit receives one changeset per tick.
type Repository interface {
	Load(ctx context.Context) (snapshot.SnapshotV1, error)
	Commit(ctx context.Context, cs snapshot.Changeset) error
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick    uint64           `json:"tick"`
	NowMs   int64            `json:"now_ms"`
	Joins   []RecordedJoin   `json:"joins,omitempty"`
	Leaves  []string         `json:"leaves,omitempty"`
	Actions []RecordedAction `json:"actions,omitempty"`
	// Admin holds the admin requests that changed state this tick.
	Admin  []AdminRequest `json:"admin,omitempty"`
	Digest string         `json:"digest"`
}

type AuditEntry struct {
	Tick    uint64                 `json:"tick"`
	NowMs   int64                  `json:"now_ms"`
	Actor   string                 `json:"actor"`
	Action  string                 `json:"action"` // e.g. "LAND_CLAIM"
	Target  string                 `json:"target,omitempty"`
	Pos     *[3]int                `json:"pos,omitempty"`
	Amount  int64                  `json:"amount,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type clientState struct {
	Out         chan []byte
	SessionID   string
	ResumeToken string
}

// World is the single-threaded rule authority.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg   WorldConfig
	tun   tuning.Tuning
	clock func() time.Time

	tick    atomic.Uint64
	metrics atomic.Value
	nowMs   int64

	players  map[string]*Player // every known player, online or not
	clients  map[string]*clientState
	resume   map[string]string // player -> last issued resume token
	clans    map[string]*Clan
	plots    map[string]*LandPlot
	zones    []*Zone // registration order
	warps    []Waypoint
	sales    map[string]*PendingSale // keyed by buyer
	invites  map[string]modelpkg.ClanInvite
	balances map[string]int64
	vars     map[string]int64

	globalMute bool

	nextPlotNum atomic.Uint64
	nextZoneNum atomic.Uint64
	nextClanNum atomic.Uint64
	nextSaleNum atomic.Uint64

	dirty dirtySet

	inbox        chan ActionEnvelope
	join         chan JoinRequest
	leave        chan string
	admin        chan adminReq
	adminSnap    chan adminSnapshotReq
	tuningReload chan tuning.Tuning
	stop         chan struct{}
	done         chan struct{}

	repo        Repository
	logger      *log.Logger
	tickLogger  TickLogger
	auditLogger AuditLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	counters runtimeCounters
}

func New(cfg WorldConfig) (*World, error) {
	if cfg.ID == "" {
		cfg.ID = "main"
	}
	t := cfg.Tuning
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("world tuning: %w", err)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	w := &World{
		cfg:          cfg,
		tun:          t,
		clock:        clock,
		players:      map[string]*Player{},
		clients:      map[string]*clientState{},
		resume:       map[string]string{},
		clans:        map[string]*Clan{},
		plots:        map[string]*LandPlot{},
		sales:        map[string]*PendingSale{},
		invites:      map[string]modelpkg.ClanInvite{},
		balances:     map[string]int64{},
		vars:         map[string]int64{},
		dirty:        newDirtySet(),
		inbox:        make(chan ActionEnvelope, 1024),
		join:         make(chan JoinRequest, 64),
		leave:        make(chan string, 64),
		admin:        make(chan adminReq, 64),
		adminSnap:    make(chan adminSnapshotReq, 16),
		tuningReload: make(chan tuning.Tuning, 4),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	w.nowMs = clock().UnixMilli()
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)                  { w.auditLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }
func (w *World) SetLogger(l *log.Logger)                       { w.logger = l }

// LoadRepository replaces in-memory state with the repository contents and
// commits every later tick to it. Call before Run.
func (w *World) LoadRepository(ctx context.Context, repo Repository) error {
	if repo == nil {
		return fmt.Errorf("nil repository")
	}
	snap, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load repository: %w", err)
	}
	if err := w.importSnapshotV1(snap); err != nil {
		return err
	}
	if snap.Header.Tick > 0 {
		w.tick.Store(snap.Header.Tick + 1)
	}
	w.repo = repo
	return nil
}

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	return w.exportSnapshot(nowTick)
}

// ImportSnapshot replaces the current in-memory state with the snapshot and
// sets the tick to snapshotTick+1. Call only when the loop is not running.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if err := w.importSnapshotV1(s); err != nil {
		return err
	}
	w.tick.Store(s.Header.Tick + 1)
	return nil
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }

// Leave takes the session id from the WELCOME that opened the session.
func (w *World) Leave() chan<- string { return w.leave }

// Done is closed once Run returns. Nothing drains Join or Leave after that.
func (w *World) Done() <-chan struct{} { return w.done }

// ReloadTuning hands a new tuning to the loop; it applies at the next tick.
func (w *World) ReloadTuning(t tuning.Tuning) {
	select {
	case w.tuningReload <- t:
	default:
		w.logf("tuning reload dropped: queue full")
	}
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.tun.TickRateHz
}

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) logf(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
