package daemon

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the process's Prometheus counters. It is nil when
// Config.Metrics.Enabled is false, gated exactly like the counters a
// metrics-aware service registers only when its own metrics server is
// turned on.
type metrics struct {
	commits      prometheus.Counter
	blocksStored prometheus.Counter
	watchEvents  prometheus.Counter
}

func newMetrics(registry prometheus.Registerer) *metrics {
	m := &metrics{
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reversion_commits_total",
			Help: "Number of snapshots committed by the watch daemon.",
		}),
		blocksStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reversion_blocks_written_total",
			Help: "Number of distinct blocks written to the block store.",
		}),
		watchEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reversion_watch_events_total",
			Help: "Number of filesystem events observed by tracked directory watchers.",
		}),
	}
	registry.MustRegister(m.commits, m.blocksStored, m.watchEvents)
	return m
}
