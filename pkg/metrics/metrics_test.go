package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/reactor/pkg/reactor"
)

func TestCollectorRegistersAndGathers(t *testing.T) {
	root := reactor.NewRoot()
	defer root.Dispose()

	a := reactor.CreateSignal(root, 0)
	m := reactor.CreateMemo(root, func() int { return a.Get() + 1 })
	reactor.CreateEffect(root, func() { _ = m.Get() })
	a.Set(1)

	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(root)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	got := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetGauge() != nil:
				got[mf.GetName()] = metric.GetGauge().GetValue()
			case metric.GetCounter() != nil:
				got[mf.GetName()] = metric.GetCounter().GetValue()
			}
		}
	}

	checks := map[string]float64{
		"reactor_nodes_live":               3,
		"reactor_signals_created_total":    1,
		"reactor_memos_created_total":      1,
		"reactor_effects_created_total":    1,
		"reactor_propagation_passes_total": 1,
	}
	for name, want := range checks {
		v, ok := got[name]
		if !ok {
			t.Errorf("metric %s missing; have %v", name, got)
			continue
		}
		if v != want {
			t.Errorf("metric %s: expected %v, got %v", name, want, v)
		}
	}

	// Effect runs: one at creation plus one in the pass.
	if got["reactor_effect_runs_total"] != 2 {
		t.Errorf("expected 2 effect runs, got %v", got["reactor_effect_runs_total"])
	}
}

func TestCollectorNamespaceOptions(t *testing.T) {
	root := reactor.NewRoot()
	defer root.Dispose()

	reg := prometheus.NewRegistry()
	c := NewCollector(root,
		WithNamespace("myapp"),
		WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"root": "session-1"}),
	)
	if err := reg.Register(c); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected metric families")
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "myapp_ui_") {
			t.Errorf("expected myapp_ui_ prefix, got %s", mf.GetName())
		}
		for _, metric := range mf.GetMetric() {
			found := false
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "root" && lp.GetValue() == "session-1" {
					found = true
				}
			}
			if !found {
				t.Errorf("metric %s missing const label", mf.GetName())
			}
		}
	}
}
