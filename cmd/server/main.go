package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"voxelkeep.ai/internal/auth"
	"voxelkeep.ai/internal/persistence/boltstore"
	"voxelkeep.ai/internal/persistence/indexdb"
	persistlog "voxelkeep.ai/internal/persistence/log"
	"voxelkeep.ai/internal/persistence/snapshot"
	"voxelkeep.ai/internal/sim/tuning"
	"voxelkeep.ai/internal/sim/world"
	"voxelkeep.ai/internal/transport/ws"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "http listen address")
		worldID     = flag.String("world", "world_1", "world id")
		configDir   = flag.String("configs", "./configs", "config directory")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite index (tick/audit/snapshot metadata)")
		snapPath    = flag.String("snapshot", "", "restore the store from this snapshot before starting (optional)")
		loadLatest  = flag.Bool("load_latest_snapshot", true, "seed an empty store from the latest snapshot in the data dir")
		watchTuning = flag.Bool("watch_tuning", true, "reload tuning.yaml when it changes")
		jwtSecret   = flag.String("jwt_secret", "", "HS256 secret for host identity tokens (or set VK_JWT_SECRET)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	w, err := world.New(world.WorldConfig{ID: *worldID, Tuning: tune})
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	w.SetLogger(log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds))

	store, err := boltstore.Open(filepath.Join(worldDir, "world.bolt"))
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer store.Close()

	restore := strings.TrimSpace(*snapPath)
	if restore == "" && *loadLatest && !store.HasData() {
		restore = latestSnapshot(worldDir)
	}
	if restore != "" {
		if err := seedStore(store, restore, *worldID); err != nil {
			logger.Fatalf("restore snapshot: %v", err)
		}
		logger.Printf("store seeded from snapshot=%s", filepath.Base(restore))
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := w.LoadRepository(ctx, store); err != nil {
		logger.Fatalf("load store: %v", err)
	}
	logger.Printf("world %s loaded at tick=%d", *worldID, w.CurrentTick())

	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	idxPath := ""
	if idx != nil {
		defer idx.Close()
		idxPath = indexPath(worldDir)
		if err := idx.RecordTuning(tune); err != nil {
			logger.Printf("index: record tuning: %v", err)
		}
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer tickLog.Close()
	defer auditLog.Close()
	if idx != nil {
		w.SetTickLogger(persistlog.TeeTick{tickLog, idx})
		w.SetAuditLogger(persistlog.TeeAudit{auditLog, idx})
	} else {
		w.SetTickLogger(tickLog)
		w.SetAuditLogger(auditLog)
	}

	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go writeSnapshots(ctx, snapCh, worldDir, idx, logger)

	if *watchTuning {
		err := tuning.Watch(ctx, tp, logger, func(t tuning.Tuning) {
			w.ReloadTuning(t)
			if idx != nil {
				if err := idx.RecordTuning(t); err != nil {
					logger.Printf("index: record tuning: %v", err)
				}
			}
		})
		if err != nil {
			logger.Printf("tuning watch disabled: %v", err)
		}
	}

	secret := strings.TrimSpace(*jwtSecret)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("VK_JWT_SECRET"))
	}
	var signer *auth.Signer
	if secret != "" {
		signer, err = auth.NewSigner(secret, 24*time.Hour)
		if err != nil {
			logger.Fatalf("auth: %v", err)
		}
	} else {
		logger.Printf("identity tokens disabled (no -jwt_secret); HELLO player names are trusted")
	}

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, signer, logger)
	metrics := NewMetrics(w, wsSrv, idx, time.Now())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	if envBool("VK_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		api := &adminAPI{world: w, signer: signer, indexPath: idxPath, log: logger, timeout: 5 * time.Second}
		api.register(mux)
	} else {
		logger.Printf("admin endpoints disabled (VK_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("VK_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Printf("ListenAndServe: %v", err)
		cancel()
	}
	// The loop flushes dirty records to the store on exit.
	<-worldDone
}

// seedStore replaces the store contents with a snapshot file.
func seedStore(store *boltstore.Store, path, worldID string) error {
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return err
	}
	if snap.Header.WorldID != "" && snap.Header.WorldID != worldID {
		return fmt.Errorf("snapshot world id mismatch: flag=%s snap=%s", worldID, snap.Header.WorldID)
	}
	return store.ImportSnapshot(snap)
}

func writeSnapshots(ctx context.Context, ch <-chan snapshot.SnapshotV1, worldDir string, idx *indexdb.SQLiteIndex, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-ch:
			path := filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
			if err := snapshot.WriteSnapshot(path, snap); err != nil {
				logger.Printf("snapshot write: %v", err)
				continue
			}
			if h, err := snapshot.ReadHeader(path); err == nil {
				snap.Header.Digest = h.Digest
			}
			if idx != nil {
				idx.RecordSnapshot(path, snap)
			}
			logger.Printf("snapshot tick=%d written", snap.Header.Tick)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
