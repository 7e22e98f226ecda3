package main

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voxelkeep.ai/internal/persistence/indexdb"
	"voxelkeep.ai/internal/sim/world"
	"voxelkeep.ai/internal/transport/ws"
)

// Metrics exposes world, transport and index signals on a private registry.
type Metrics struct {
	world     *world.World
	ws        *ws.Server
	idx       *indexdb.SQLiteIndex
	startTime time.Time
	reg       *prometheus.Registry

	tick        prometheus.Gauge
	entities    *prometheus.GaugeVec
	moneySupply prometheus.Gauge
	queueDepth  *prometheus.GaugeVec
	stepMS      prometheus.Gauge
	connections prometheus.Gauge
	indexQueue  prometheus.Gauge
	indexDrops  *prometheus.GaugeVec
	uptime      prometheus.Gauge
	heapBytes   prometheus.Gauge
	goroutines  prometheus.Gauge
}

func NewMetrics(w *world.World, wsSrv *ws.Server, idx *indexdb.SQLiteIndex, startTime time.Time) *Metrics {
	worldLabel := prometheus.Labels{"world": w.ID()}
	m := &Metrics{
		world:     w,
		ws:        wsSrv,
		idx:       idx,
		startTime: startTime,
		reg:       prometheus.NewRegistry(),
		tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelkeep_world_tick", Help: "Current world tick.", ConstLabels: worldLabel,
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "voxelkeep_world_records", Help: "Records held by the world by kind.", ConstLabels: worldLabel,
		}, []string{"kind"}),
		moneySupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelkeep_money_supply", Help: "Sum of player balances and clan treasuries.", ConstLabels: worldLabel,
		}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "voxelkeep_world_queue_depth", Help: "World channel backlog by queue.", ConstLabels: worldLabel,
		}, []string{"queue"}),
		stepMS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelkeep_world_step_ms", Help: "Last tick step duration in milliseconds.", ConstLabels: worldLabel,
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelkeep_ws_connections", Help: "Open host websocket sessions.",
		}),
		indexQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelkeep_index_queue_depth", Help: "Pending sqlite index writes.",
		}),
		indexDrops: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "voxelkeep_index_dropped", Help: "Index rows dropped because the queue was full.",
		}, []string{"kind"}),
		uptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelkeep_uptime_seconds", Help: "Server uptime in seconds.",
		}),
		heapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelkeep_memory_heap_bytes", Help: "Go heap memory allocated in bytes.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelkeep_goroutines", Help: "Number of active goroutines.",
		}),
	}
	counter := func(name, help string, f func(world.WorldMetrics) uint64) prometheus.CounterFunc {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{Name: name, Help: help, ConstLabels: worldLabel}, func() float64 {
			return float64(f(w.Metrics()))
		})
	}
	m.reg.MustRegister(
		m.tick, m.entities, m.moneySupply, m.queueDepth, m.stepMS,
		m.connections, m.indexQueue, m.indexDrops,
		m.uptime, m.heapBytes, m.goroutines,
		counter("voxelkeep_denials_total", "Block mutations denied by the authority resolver.", func(x world.WorldMetrics) uint64 { return x.Denials }),
		counter("voxelkeep_trades_total", "Completed escrow trades.", func(x world.WorldMetrics) uint64 { return x.Trades }),
		counter("voxelkeep_commits_total", "Repository commits.", func(x world.WorldMetrics) uint64 { return x.Commits }),
		counter("voxelkeep_commit_errors_total", "Failed repository commits.", func(x world.WorldMetrics) uint64 { return x.CommitErrors }),
		counter("voxelkeep_ws_rate_limited_total", "ACT frames dropped by the per-connection limiter.", func(world.WorldMetrics) uint64 {
			if wsSrv == nil {
				return 0
			}
			return wsSrv.Stats().RateLimited
		}),
	)
	return m
}

// Update refreshes all gauges from current state.
func (m *Metrics) Update() {
	wm := m.world.Metrics()
	tick := m.world.CurrentTick()
	if wm.Tick != 0 {
		tick = wm.Tick
	}
	m.tick.Set(float64(tick))
	m.entities.WithLabelValues("players").Set(float64(wm.Players))
	m.entities.WithLabelValues("online").Set(float64(wm.Clients))
	m.entities.WithLabelValues("clans").Set(float64(wm.Clans))
	m.entities.WithLabelValues("plots").Set(float64(wm.Plots))
	m.entities.WithLabelValues("zones").Set(float64(wm.Zones))
	m.entities.WithLabelValues("pending_sales").Set(float64(wm.Sales))
	m.moneySupply.Set(float64(wm.MoneySupply))
	m.queueDepth.WithLabelValues("inbox").Set(float64(wm.QueueDepths.Inbox))
	m.queueDepth.WithLabelValues("join").Set(float64(wm.QueueDepths.Join))
	m.queueDepth.WithLabelValues("leave").Set(float64(wm.QueueDepths.Leave))
	m.queueDepth.WithLabelValues("admin").Set(float64(wm.QueueDepths.Admin))
	m.stepMS.Set(wm.StepMS)

	if m.ws != nil {
		m.connections.Set(float64(m.ws.Stats().Connections))
	}
	if m.idx != nil {
		st := m.idx.Stats()
		m.indexQueue.Set(float64(st.QueueDepth))
		m.indexDrops.WithLabelValues("tick").Set(float64(st.DropTickTotal))
		m.indexDrops.WithLabelValues("audit").Set(float64(st.DropAuditTotal))
		m.indexDrops.WithLabelValues("snapshot").Set(float64(st.DropSnapshotTotal))
	}

	m.uptime.Set(time.Since(m.startTime).Seconds())
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.heapBytes.Set(float64(mem.HeapAlloc))
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// Handler returns an http.Handler that updates metrics before serving them.
func (m *Metrics) Handler() http.Handler {
	h := promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Update()
		h.ServeHTTP(w, r)
	})
}
