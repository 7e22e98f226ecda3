package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Players int `json:"players"`
	Clients int `json:"clients"`
	Clans   int `json:"clans"`
	Plots   int `json:"plots"`
	Zones   int `json:"zones"`
	Sales   int `json:"pending_sales"`

	// MoneySupply is the sum of player balances and clan treasuries.
	MoneySupply int64 `json:"money_supply"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
	Digest string  `json:"digest"`

	Denials      uint64 `json:"denials_total"`
	Trades       uint64 `json:"trades_total"`
	Commits      uint64 `json:"commits_total"`
	CommitErrors uint64 `json:"commit_errors_total"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
	Admin int `json:"admin"`
}

// runtimeCounters are loop-owned totals copied into WorldMetrics each tick.
type runtimeCounters struct {
	denials      uint64
	trades       uint64
	commits      uint64
	commitErrors uint64
}

func (w *World) publishMetrics(tick uint64, stepMS float64, digest string) {
	var supply int64
	for _, p := range w.players {
		supply += p.Balance
	}
	for _, c := range w.clans {
		supply += c.Treasury
	}
	w.metrics.Store(WorldMetrics{
		Tick:        tick,
		Players:     len(w.players),
		Clients:     len(w.clients),
		Clans:       len(w.clans),
		Plots:       len(w.plots),
		Zones:       len(w.zones),
		Sales:       len(w.sales),
		MoneySupply: supply,
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
			Admin: len(w.admin),
		},
		StepMS:       stepMS,
		Digest:       digest,
		Denials:      w.counters.denials,
		Trades:       w.counters.trades,
		Commits:      w.counters.commits,
		CommitErrors: w.counters.commitErrors,
	})
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
