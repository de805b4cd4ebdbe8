package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRunCollectorCountsVisibility(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	collector.ObserveVisibility(true)
	collector.ObserveVisibility(true)
	collector.ObserveVisibility(false)

	if got := testutil.ToFloat64(collector.VisibilityChecks.WithLabelValues("visible")); got != 2 {
		t.Fatalf("relay_visibility_checks_total{result=visible} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.VisibilityChecks.WithLabelValues("blocked")); got != 1 {
		t.Fatalf("relay_visibility_checks_total{result=blocked} = %v, want 1", got)
	}
}

func TestRunCollectorStageDurations(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	collector.ObserveStage(StageBuild, 3*time.Millisecond)
	collector.ObserveStage(StageSearch, time.Millisecond)

	if count := histogramSampleCount(t, reg, "relay_stage_duration_seconds", map[string]string{"stage": StageBuild}); count != 1 {
		t.Fatalf("relay_stage_duration_seconds{stage=build} sample_count = %d, want 1", count)
	}
}

func TestRunCollectorGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	collector.SetNetworkSize(7, 30)
	collector.SetPathResult(true, 3, 12345)

	if got := testutil.ToFloat64(collector.NetworkNodes); got != 7 {
		t.Fatalf("relay_network_nodes = %v, want 7", got)
	}
	if got := testutil.ToFloat64(collector.NetworkEdges); got != 30 {
		t.Fatalf("relay_network_edges = %v, want 30", got)
	}
	if got := testutil.ToFloat64(collector.RouteFound); got != 1 {
		t.Fatalf("relay_route_found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.PathRelays); got != 3 {
		t.Fatalf("relay_path_relays = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.PathCostKm); got != 12345 {
		t.Fatalf("relay_path_cost_km = %v, want 12345", got)
	}

	collector.SetPathResult(false, 0, 0)
	if got := testutil.ToFloat64(collector.RouteFound); got != 0 {
		t.Fatalf("relay_route_found = %v, want 0", got)
	}
}

func TestRunCollectorReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("first NewRunCollector: %v", err)
	}
	second, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("second NewRunCollector: %v", err)
	}

	first.ObserveVisibility(true)
	if got := testutil.ToFloat64(second.VisibilityChecks.WithLabelValues("visible")); got != 1 {
		t.Fatalf("second collector does not share counters, got %v", got)
	}
}

func TestRunCollectorWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}
	collector.SetNetworkSize(4, 6)
	collector.ObserveVisibility(false)

	path := filepath.Join(t.TempDir(), "relay.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	body := string(raw)
	for _, metric := range []string{
		"relay_network_nodes 4",
		"relay_network_edges 6",
		`relay_visibility_checks_total{result="blocked"} 1`,
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in textfile:\n%s", metric, body)
		}
	}
}

func TestNilRunCollectorIsSafe(t *testing.T) {
	var c *RunCollector
	c.ObserveVisibility(true)
	c.ObserveStage(StageLoad, time.Second)
	c.SetNetworkSize(1, 1)
	c.SetPathResult(true, 1, 1)
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
