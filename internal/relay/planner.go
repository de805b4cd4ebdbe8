// Package relay runs the relay planning pipeline: load a scenario, build
// the visibility network with the route endpoints attached, and search it.
package relay

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/relay-simulator/core"
	"github.com/signalsfoundry/relay-simulator/internal/logging"
	"github.com/signalsfoundry/relay-simulator/internal/observability"
)

// MetricsRecorder receives per-run measurements from a Planner.
// *observability.RunCollector satisfies it.
type MetricsRecorder interface {
	core.VisibilityRecorder
	ObserveStage(stage string, d time.Duration)
	SetNetworkSize(nodes, edges int)
	SetPathResult(found bool, relays int, costKm int64)
}

// Plan is the outcome of one planning run.
type Plan struct {
	Graph      *core.Graph
	StartIndex int
	EndIndex   int

	// Path holds graph indices from StartIndex to EndIndex inclusive.
	Path []int
	// Relays lists the IDs along Path with both route endpoints removed.
	Relays []string
	Found  bool
	CostKm int64
}

// Planner wires the core algorithms together with logging, metrics and
// tracing.
type Planner struct {
	planet     core.Planet
	maxRangeKm float64
	log        logging.Logger
	metrics    MetricsRecorder
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(log logging.Logger) Option {
	return func(p *Planner) {
		p.log = log
	}
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(p *Planner) {
		p.metrics = m
	}
}

// WithMaxRangeKm limits links to km. Zero means unlimited.
func WithMaxRangeKm(km float64) Option {
	return func(p *Planner) {
		p.maxRangeKm = km
	}
}

// NewPlanner returns a planner for scenarios on planet.
func NewPlanner(planet core.Planet, opts ...Option) *Planner {
	p := &Planner{planet: planet}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.log == nil {
		p.log = logging.Noop()
	}
	return p
}

// Load reads a scenario file, placing every position on the planner's
// planet.
func (p *Planner) Load(ctx context.Context, path string, routeMarginKm float64) (*core.Scenario, error) {
	ctx, span := startStage(ctx, observability.StageLoad, attribute.String("scenario.path", path))
	defer span.End()
	began := time.Now()

	sc, err := core.LoadScenarioFile(path, p.planet, routeMarginKm)
	p.observeStage(observability.StageLoad, time.Since(began))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("scenario.locations", len(sc.Locations)))
	p.log.Info(ctx, "scenario loaded",
		logging.String("path", path),
		logging.String("header", sc.Header),
		logging.Int("locations", len(sc.Locations)),
	)
	return sc, nil
}

// Plan builds the network for sc and searches it for the cheapest relay
// chain between the route endpoints. The endpoints occupy indices N and
// N+1 after the N scenario locations. An unreachable route is reported
// through Plan.Found, not as an error.
func (p *Planner) Plan(ctx context.Context, sc *core.Scenario) (*Plan, error) {
	if sc == nil || sc.Route == nil {
		return nil, core.ErrMissingRoute
	}

	start, end := sc.Route.Endpoints()
	locations := make([]*core.Location, 0, len(sc.Locations)+2)
	locations = append(locations, sc.Locations...)
	locations = append(locations, start, end)

	plan := &Plan{
		StartIndex: len(sc.Locations),
		EndIndex:   len(sc.Locations) + 1,
	}

	plan.Graph = p.build(ctx, locations)
	p.search(ctx, plan)

	p.log.Info(ctx, "route planned",
		logging.Bool("found", plan.Found),
		logging.Int("relays", len(plan.Relays)),
		logging.Strings("relay_ids", plan.Relays),
		logging.Int64("cost_km", plan.CostKm),
		logging.Float64("ground_distance_km", sc.Route.GroundDistanceKm()),
	)
	return plan, nil
}

func (p *Planner) build(ctx context.Context, locations []*core.Location) *core.Graph {
	ctx, span := startStage(ctx, observability.StageBuild,
		attribute.Int("network.nodes", len(locations)),
		attribute.Float64("network.max_range_km", p.maxRangeKm),
	)
	defer span.End()
	began := time.Now()

	opts := []core.NetworkBuilderOption{core.WithMaxRangeKm(p.maxRangeKm)}
	if p.metrics != nil {
		opts = append(opts, core.WithVisibilityRecorder(p.metrics))
	}
	g := core.NewNetworkBuilder(p.planet, opts...).Build(locations)

	elapsed := time.Since(began)
	p.observeStage(observability.StageBuild, elapsed)
	if p.metrics != nil {
		p.metrics.SetNetworkSize(g.Len(), g.EdgeCount())
	}

	span.SetAttributes(attribute.Int("network.edges", g.EdgeCount()))
	p.log.Debug(ctx, "network built",
		logging.Int("nodes", g.Len()),
		logging.Int("edges", g.EdgeCount()),
		logging.String("elapsed", elapsed.String()),
	)
	return g
}

func (p *Planner) search(ctx context.Context, plan *Plan) {
	ctx, span := startStage(ctx, observability.StageSearch)
	defer span.End()
	began := time.Now()

	path, found := core.ShortestPath(plan.Graph, plan.StartIndex, plan.EndIndex)
	p.observeStage(observability.StageSearch, time.Since(began))

	plan.Found = found
	plan.Relays = []string{}
	if found {
		plan.Path = path
		plan.Relays = interiorIDs(plan.Graph, path)
		plan.CostKm = plan.Graph.PathCost(path)
	}
	if p.metrics != nil {
		p.metrics.SetPathResult(plan.Found, len(plan.Relays), plan.CostKm)
	}

	span.SetAttributes(
		attribute.Bool("route.found", plan.Found),
		attribute.Int("route.relays", len(plan.Relays)),
	)
	if !found {
		p.log.Warn(ctx, "no line-of-sight route between endpoints")
	}
}

// interiorIDs returns the IDs along path with its first and last hop
// removed.
func interiorIDs(g *core.Graph, path []int) []string {
	if len(path) < 2 {
		return []string{}
	}
	return g.IDs(path[1 : len(path)-1])
}

func (p *Planner) observeStage(stage string, d time.Duration) {
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, d)
	}
}

func startStage(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, "relay/"+stage, trace.WithAttributes(attrs...))
}
