package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline stage labels used by RunCollector.StageDurations.
const (
	StageLoad   = "load"
	StageBuild  = "build"
	StageSearch = "search"
)

// RunCollector bundles Prometheus metrics for a single relay planning run.
// It satisfies both core.VisibilityRecorder and relay.MetricsRecorder.
type RunCollector struct {
	gatherer prometheus.Gatherer

	VisibilityChecks *prometheus.CounterVec
	StageDurations   *prometheus.HistogramVec

	NetworkNodes prometheus.Gauge
	NetworkEdges prometheus.Gauge
	RouteFound   prometheus.Gauge
	PathRelays   prometheus.Gauge
	PathCostKm   prometheus.Gauge
}

// NewRunCollector registers run metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	checks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_visibility_checks_total",
		Help: "Pairwise line-of-sight tests performed while building the network, labeled by result.",
	}, []string{"result"}), "relay_visibility_checks_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_stage_duration_seconds",
		Help:    "Wall time spent in each pipeline stage.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"stage"}), "relay_stage_duration_seconds")
	if err != nil {
		return nil, err
	}

	nodes, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_network_nodes",
		Help: "Number of nodes in the visibility graph, route endpoints included.",
	}), "relay_network_nodes")
	if err != nil {
		return nil, err
	}
	edges, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_network_edges",
		Help: "Number of directed edges in the visibility graph.",
	}), "relay_network_edges")
	if err != nil {
		return nil, err
	}
	found, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_route_found",
		Help: "1 if a relay path between the route endpoints was found, 0 otherwise.",
	}), "relay_route_found")
	if err != nil {
		return nil, err
	}
	hops, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_path_relays",
		Help: "Number of relay points on the chosen path, route endpoints excluded.",
	}), "relay_path_relays")
	if err != nil {
		return nil, err
	}
	cost, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_path_cost_km",
		Help: "Total cost of the chosen path in whole kilometres.",
	}), "relay_path_cost_km")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:         gatherer,
		VisibilityChecks: checks,
		StageDurations:   durations,
		NetworkNodes:     nodes,
		NetworkEdges:     edges,
		RouteFound:       found,
		PathRelays:       hops,
		PathCostKm:       cost,
	}, nil
}

// ObserveVisibility counts a single pairwise visibility test.
func (c *RunCollector) ObserveVisibility(visible bool) {
	if c == nil || c.VisibilityChecks == nil {
		return
	}
	result := "blocked"
	if visible {
		result = "visible"
	}
	c.VisibilityChecks.WithLabelValues(result).Inc()
}

// ObserveStage records how long a pipeline stage took.
func (c *RunCollector) ObserveStage(stage string, d time.Duration) {
	if c == nil || c.StageDurations == nil {
		return
	}
	c.StageDurations.WithLabelValues(stage).Observe(d.Seconds())
}

// SetNetworkSize publishes the size of the built graph.
func (c *RunCollector) SetNetworkSize(nodes, edges int) {
	if c == nil {
		return
	}
	if c.NetworkNodes != nil {
		c.NetworkNodes.Set(float64(nodes))
	}
	if c.NetworkEdges != nil {
		c.NetworkEdges.Set(float64(edges))
	}
}

// SetPathResult publishes the outcome of the path search.
func (c *RunCollector) SetPathResult(found bool, relays int, costKm int64) {
	if c == nil {
		return
	}
	if c.RouteFound != nil {
		v := 0.0
		if found {
			v = 1
		}
		c.RouteFound.Set(v)
	}
	if c.PathRelays != nil {
		c.PathRelays.Set(float64(relays))
	}
	if c.PathCostKm != nil {
		c.PathCostKm.Set(float64(costKm))
	}
}

// WriteTextfile dumps every gathered metric to path in the Prometheus text
// exposition format, suitable for the node exporter textfile collector.
func (c *RunCollector) WriteTextfile(path string) error {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
