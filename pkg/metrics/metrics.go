// Package metrics exposes a reactor Root's activity counters as
// Prometheus metrics.
//
// The collector reads the Root's atomic stats snapshot, so it is safe to
// scrape from the metrics goroutine while the Root runs elsewhere.
//
//	root := reactor.NewRoot()
//	prometheus.MustRegister(metrics.NewCollector(root))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/reactor/pkg/reactor"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reactor",
	}
}

// Collector implements prometheus.Collector over a Root's stats.
type Collector struct {
	root *reactor.Root

	nodesLive         *prometheus.Desc
	arenaSlots        *prometheus.Desc
	scopesLive        *prometheus.Desc
	signalsCreated    *prometheus.Desc
	memosCreated      *prometheus.Desc
	effectsCreated    *prometheus.Desc
	memoRecomputes    *prometheus.Desc
	effectRuns        *prometheus.Desc
	propagationPasses *prometheus.Desc
	cleanupRuns       *prometheus.Desc
}

// NewCollector returns a collector for the given Root.
func NewCollector(root *reactor.Root, opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(config.Namespace, config.Subsystem, name),
			help, nil, config.ConstLabels,
		)
	}

	return &Collector{
		root:              root,
		nodesLive:         desc("nodes_live", "Number of live reactive nodes in the arena"),
		arenaSlots:        desc("arena_slots", "Total arena slots, live and free"),
		scopesLive:        desc("scopes_live", "Number of undisposed scopes"),
		signalsCreated:    desc("signals_created_total", "Total signals created"),
		memosCreated:      desc("memos_created_total", "Total memos created"),
		effectsCreated:    desc("effects_created_total", "Total effects created"),
		memoRecomputes:    desc("memo_recomputes_total", "Total memo recomputations"),
		effectRuns:        desc("effect_runs_total", "Total effect executions"),
		propagationPasses: desc("propagation_passes_total", "Total propagation passes"),
		cleanupRuns:       desc("cleanup_runs_total", "Total cleanup callback executions"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodesLive
	ch <- c.arenaSlots
	ch <- c.scopesLive
	ch <- c.signalsCreated
	ch <- c.memosCreated
	ch <- c.effectsCreated
	ch <- c.memoRecomputes
	ch <- c.effectRuns
	ch <- c.propagationPasses
	ch <- c.cleanupRuns
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.root.Stats()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}

	gauge(c.nodesLive, float64(stats.LiveNodes))
	gauge(c.arenaSlots, float64(stats.ArenaSlots))
	gauge(c.scopesLive, float64(stats.LiveScopes))
	counter(c.signalsCreated, float64(stats.SignalsCreated))
	counter(c.memosCreated, float64(stats.MemosCreated))
	counter(c.effectsCreated, float64(stats.EffectsCreated))
	counter(c.memoRecomputes, float64(stats.MemoRecomputes))
	counter(c.effectRuns, float64(stats.EffectRuns))
	counter(c.propagationPasses, float64(stats.PropagationPasses))
	counter(c.cleanupRuns, float64(stats.CleanupRuns))
}

var _ prometheus.Collector = (*Collector)(nil)
